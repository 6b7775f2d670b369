// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Request Types
// =============================================================================

// RequestType labels what kind of input a chat turn carried. It is stored
// alongside every interaction log row.
type RequestType string

const (
	RequestTypeText       RequestType = "text"
	RequestTypeTextImage  RequestType = "text_image"
	RequestTypeImage      RequestType = "image"
	RequestTypeAudio      RequestType = "audio"
	RequestTypeAudioImage RequestType = "audio_image"
)

// ClassifyRequest maps the presence of question text, an image, and audio
// to a RequestType.
//
// # Description
//
// Audio takes precedence over plain text for labelling because the question
// text of an audio turn is a transcript, not typed input. Image-only turns
// are labelled image, not text_image.
//
// # Inputs
//
//   - hasQuestion: A typed question was provided.
//   - hasImage: An image was attached.
//   - hasAudio: A voice note was attached.
//
// # Outputs
//
//   - RequestType: The label for the turn. Defaults to text when nothing
//     is attached (the empty-input case is rejected before classification).
func ClassifyRequest(hasQuestion, hasImage, hasAudio bool) RequestType {
	switch {
	case hasAudio && hasImage:
		return RequestTypeAudioImage
	case hasAudio:
		return RequestTypeAudio
	case hasImage && hasQuestion:
		return RequestTypeTextImage
	case hasImage:
		return RequestTypeImage
	default:
		return RequestTypeText
	}
}

// =============================================================================
// HTTP Payloads
// =============================================================================

// Form field byte caps. Oversized fields are rejected before the agent runs.
const (
	MaxUserIDBytes   = 100
	MaxQuestionBytes = 8192
)

// TextChatRequest is the form payload for POST /chat/text.
type TextChatRequest struct {
	UserID   string `form:"user_id" validate:"required,max=100"`
	Question string `form:"question" validate:"omitempty,max=8192"`
}

// AudioChatRequest is the form payload for POST /chat/audio.
type AudioChatRequest struct {
	UserID string `form:"user_id" validate:"required,max=100"`
}

// DeleteHistoryRequest is the form payload for POST /delete_history.
type DeleteHistoryRequest struct {
	UserID string `form:"user_id" validate:"required,max=100"`
}

// ChatResponse is the success payload for the chat endpoints.
type ChatResponse struct {
	UserID   string `json:"user_id"`
	Response string `json:"response"`
}

// ErrorDetail is the error payload shape for every non-2xx response.
type ErrorDetail struct {
	Detail string `json:"detail"`
}

// Validate is the shared validator instance for request payloads.
var Validate = validator.New()
