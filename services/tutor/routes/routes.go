// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routes wires the tutor HTTP endpoints onto a gin engine.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/hangeul/services/tutor/handlers"
	"github.com/AleutianAI/hangeul/services/tutor/middleware"
	"github.com/AleutianAI/hangeul/services/tutor/observability"
	"github.com/AleutianAI/hangeul/services/tutor/transcribe"
)

// Dependencies carries everything the routes need.
type Dependencies struct {
	Runner      handlers.AgentRunner
	Transcriber transcribe.Transcriber
	Logs        handlers.InteractionRecorder
	Metrics     *observability.TutorMetrics

	// APISecret guards the chat routes. Must not be empty.
	APISecret string

	// EnableMetrics exposes GET /metrics when true.
	EnableMetrics bool
}

// Register attaches all tutor routes to the engine.
//
// # Description
//
// /health and /metrics are unauthenticated so probes and scrapers work
// without the shared secret. Everything else sits behind the
// access_token middleware.
func Register(router *gin.Engine, deps Dependencies) {
	router.GET("/health", handlers.HealthCheck)
	if deps.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	authed := router.Group("/", middleware.AccessTokenAuth(deps.APISecret))
	authed.POST("/chat/text", handlers.ChatText(deps.Runner, deps.Logs, deps.Metrics))
	authed.POST("/chat/audio", handlers.ChatAudio(deps.Runner, deps.Transcriber, deps.Logs, deps.Metrics))
	authed.POST("/delete_history", handlers.DeleteHistory(deps.Runner))
}
