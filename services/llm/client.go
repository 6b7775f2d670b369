// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm defines the LLM backend abstraction for the tutor service.
package llm

import (
	"context"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

// GenerationParams tunes a single model call. Nil pointer fields fall back
// to the backend's defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`

	// Tools the model may call during this request. Empty disables tool
	// calling entirely, which forces a plain text completion.
	Tools []datatypes.ToolDefinition `json:"tools,omitempty"`
}

// ChatResult is the model's reply to a Chat call.
//
// Exactly one of Content or ToolCalls is meaningful per turn: a non-empty
// ToolCalls list means the model wants tool executions before answering.
type ChatResult struct {
	Content   string               `json:"content"`
	ToolCalls []datatypes.ToolCall `json:"tool_calls,omitempty"`
}

// LLMClient defines the standard interface for any LLM backend.
type LLMClient interface {
	// Generate produces a plain completion for a single prompt.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)

	// Chat runs a full conversation turn, including multimodal content
	// and tool calling, and returns the model's reply.
	Chat(ctx context.Context, messages []datatypes.Message, params GenerationParams) (*ChatResult, error)
}
