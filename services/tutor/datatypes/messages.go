// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the shared data shapes for the tutor service:
// conversation messages, tool calling structures, request/response payloads,
// and the Weaviate schema and query types.
package datatypes

import (
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// Message Roles
// =============================================================================

// Conversation roles, mirroring the standard OpenAI message format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// =============================================================================
// Content Parts
// =============================================================================

// Content part types for multimodal user messages.
const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
)

// ContentPart is one element of a multimodal message body.
//
// A part is either text (Type == PartTypeText, Text set) or an image
// (Type == PartTypeImageURL, ImageURL set, typically a base64 data URL).
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// =============================================================================
// Messages
// =============================================================================

// Message represents a single turn in a conversation thread.
//
// # Description
//
// Message carries either plain text Content or a multimodal Parts list,
// never both. Assistant messages may request tool executions via ToolCalls;
// the matching tool result messages carry the ToolCallID they answer.
//
// # Fields
//
//   - ID: Unique message id, assigned at construction.
//   - Role: One of the Role* constants.
//   - Content: Plain text body. Empty when Parts is set.
//   - Parts: Multimodal body (text + image parts). Nil for plain messages.
//   - ToolCallID: Set on tool result messages only.
//   - ToolCalls: Set on assistant messages that request tool executions.
//
// # Thread Safety
//
// Messages are value types; copy freely.
type Message struct {
	ID         string        `json:"id"`
	Role       string        `json:"role"`
	Content    string        `json:"content,omitempty"`
	Parts      []ContentPart `json:"parts,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall    `json:"tool_calls,omitempty"`
}

// NewSystemText creates a system message with plain text content.
func NewSystemText(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleSystem, Content: text}
}

// NewUserText creates a user message with plain text content.
func NewUserText(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: text}
}

// NewUserParts creates a multimodal user message from content parts.
func NewUserParts(parts []ContentPart) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Parts: parts}
}

// NewAssistantText creates an assistant message with plain text content.
func NewAssistantText(text string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: text}
}

// NewAssistantToolCalls creates an assistant message requesting tool
// executions, optionally alongside partial text content.
func NewAssistantToolCalls(content string, calls []ToolCall) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		ToolCalls: calls,
	}
}

// NewToolResult creates a tool result message answering the given tool call.
func NewToolResult(toolCallID, content string) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
	}
}

// IsTool reports whether the message is a tool result.
func (m Message) IsTool() bool {
	return m.Role == RoleTool
}

// Text returns the textual content of the message. For multimodal messages
// the text parts are joined with a single space.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var texts []string
	for _, p := range m.Parts {
		if p.Type == PartTypeText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}

// =============================================================================
// Tool Calling
// =============================================================================

// ToolCall represents the model's request to execute a function.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the function name and its JSON-encoded arguments,
// e.g. '{"query": "..."}'.
type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a function the model is allowed to call.
//
// Parameters is a JSON Schema object in the OpenAI function calling format.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// =============================================================================
// Retrieved Documents
// =============================================================================

// RetrievedDocument is one lesson passage returned by the vector index.
type RetrievedDocument struct {
	PageContent string  `json:"page_content"`
	Source      string  `json:"source"`
	Score       float64 `json:"score,omitempty"`
}
