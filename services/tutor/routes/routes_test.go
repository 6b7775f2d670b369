// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/hangeul/services/tutor/chatlog"
	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
	"github.com/AleutianAI/hangeul/services/tutor/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRunner struct{}

func (stubRunner) Invoke(context.Context, string, datatypes.Message) (string, error) {
	return "ответ", nil
}

func (stubRunner) ClearHistory(context.Context, string) error { return nil }

type stubRecorder struct{}

func (stubRecorder) Enqueue(chatlog.Record) bool { return true }

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(context.Context, string, io.Reader) (string, error) {
	return "", nil
}

func testEngine(enableMetrics bool) *gin.Engine {
	router := gin.New()
	Register(router, Dependencies{
		Runner:        stubRunner{},
		Transcriber:   stubTranscriber{},
		Logs:          stubRecorder{},
		APISecret:     "s3cret",
		EnableMetrics: enableMetrics,
	})
	return router
}

func TestHealthIsUnauthenticated(t *testing.T) {
	router := testEngine(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsExposedWhenEnabled(t *testing.T) {
	router := testEngine(true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	disabled := testEngine(false)
	w = httptest.NewRecorder()
	disabled.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatRoutesRequireToken(t *testing.T) {
	router := testEngine(false)

	paths := []string{"/chat/text", "/chat/audio", "/delete_history"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestChatTextWithTokenReachesHandler(t *testing.T) {
	router := testEngine(false)

	form := url.Values{}
	form.Set("user_id", "42")
	form.Set("question", "вопрос")

	req := httptest.NewRequest(http.MethodPost, "/chat/text", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.AccessTokenHeader, "s3cret")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"42","response":"ответ"}`, w.Body.String())
}
