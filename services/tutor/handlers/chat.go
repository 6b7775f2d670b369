// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP endpoints of the tutor service.
package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/hangeul/services/tutor/agent"
	"github.com/AleutianAI/hangeul/services/tutor/chatlog"
	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
	"github.com/AleutianAI/hangeul/services/tutor/observability"
	"github.com/AleutianAI/hangeul/services/tutor/transcribe"
)

// maxImageBytes caps an uploaded image. Telegram photos are far below
// this; anything bigger is rejected before base64 inflation.
const maxImageBytes = 10 << 20

// AgentRunner is the agent dependency of the chat handlers.
type AgentRunner interface {
	Invoke(ctx context.Context, threadID string, userMsg datatypes.Message) (string, error)
	ClearHistory(ctx context.Context, threadID string) error
}

// InteractionRecorder is the async interaction log dependency.
type InteractionRecorder interface {
	Enqueue(rec chatlog.Record) bool
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ChatText handles POST /chat/text.
//
// # Description
//
// Multipart form with user_id (required), question (optional text), and
// image (optional file). At least one of question and image must be
// present. The image is inlined as a base64 JPEG data URL; an image-only
// turn gets the fixed describe-the-image prompt as its text part.
//
// The interaction is enqueued to the chat log after the response is
// written; logging never delays or fails a turn.
func ChatText(runner AgentRunner, logs InteractionRecorder, metrics *observability.TutorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		req := datatypes.TextChatRequest{
			UserID:   c.PostForm("user_id"),
			Question: c.PostForm("question"),
		}
		if err := datatypes.Validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorDetail{Detail: "user_id is required"})
			return
		}

		imageURL, hasImage, err := readImageForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorDetail{Detail: err.Error()})
			return
		}
		if req.Question == "" && !hasImage {
			c.JSON(http.StatusBadRequest, datatypes.ErrorDetail{Detail: "question or image is required"})
			return
		}

		userMsg := buildUserMessage(req.Question, imageURL, hasImage)
		requestType := datatypes.ClassifyRequest(req.Question != "", hasImage, false)

		slog.Info("Processing text chat turn",
			"user_id", req.UserID,
			"request_type", requestType,
			"question_bytes", len(req.Question))

		response, err := runner.Invoke(c.Request.Context(), req.UserID, userMsg)
		if metrics != nil {
			metrics.RecordTurn(string(requestType), err == nil, time.Since(started).Seconds())
		}
		if err != nil {
			slog.Error("Chat turn failed", "user_id", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorDetail{Detail: err.Error()})
			return
		}

		c.JSON(http.StatusOK, datatypes.ChatResponse{UserID: req.UserID, Response: response})

		logs.Enqueue(chatlog.Record{
			UserID:      req.UserID,
			RequestType: string(requestType),
			UserQuery:   req.Question,
			AIResponse:  response,
		})
	}
}

// ChatAudio handles POST /chat/audio.
//
// # Description
//
// Multipart form with user_id (required), audio (optional voice note),
// and image (optional file). Audio is transcribed first and the
// transcript becomes the question text. An image-only turn falls back to
// the describe-the-image prompt, and the logged query falls back to the
// fixed transcript placeholder.
func ChatAudio(runner AgentRunner, transcriber transcribe.Transcriber, logs InteractionRecorder,
	metrics *observability.TutorMetrics) gin.HandlerFunc {

	return func(c *gin.Context) {
		started := time.Now()

		req := datatypes.AudioChatRequest{UserID: c.PostForm("user_id")}
		if err := datatypes.Validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorDetail{Detail: "user_id is required"})
			return
		}

		audioHeader, hasAudio := formFile(c, "audio")
		imageURL, hasImage, err := readImageForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorDetail{Detail: err.Error()})
			return
		}
		if !hasAudio && !hasImage {
			c.JSON(http.StatusBadRequest, datatypes.ErrorDetail{Detail: "audio or image is required"})
			return
		}

		transcript := ""
		if hasAudio {
			transcript, err = transcribeUpload(c.Request.Context(), transcriber, audioHeader)
			if err != nil {
				slog.Error("Transcription failed", "user_id", req.UserID, "error", err)
				c.JSON(http.StatusInternalServerError, datatypes.ErrorDetail{Detail: err.Error()})
				return
			}
		}

		userMsg := buildUserMessage(transcript, imageURL, hasImage)
		requestType := datatypes.ClassifyRequest(false, hasImage, hasAudio)

		loggedQuery := transcript
		if loggedQuery == "" {
			loggedQuery = agent.DefaultTranscript
		}

		slog.Info("Processing audio chat turn",
			"user_id", req.UserID,
			"request_type", requestType,
			"transcript_bytes", len(transcript))

		response, err := runner.Invoke(c.Request.Context(), req.UserID, userMsg)
		if metrics != nil {
			metrics.RecordTurn(string(requestType), err == nil, time.Since(started).Seconds())
		}
		if err != nil {
			slog.Error("Chat turn failed", "user_id", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorDetail{Detail: err.Error()})
			return
		}

		c.JSON(http.StatusOK, datatypes.ChatResponse{UserID: req.UserID, Response: response})

		logs.Enqueue(chatlog.Record{
			UserID:      req.UserID,
			RequestType: string(requestType),
			UserQuery:   loggedQuery,
			AIResponse:  response,
		})
	}
}

// DeleteHistory handles POST /delete_history.
func DeleteHistory(runner AgentRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := datatypes.DeleteHistoryRequest{UserID: c.PostForm("user_id")}
		if err := datatypes.Validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorDetail{Detail: "user_id is required"})
			return
		}

		if err := runner.ClearHistory(c.Request.Context(), req.UserID); err != nil {
			slog.Error("Failed to clear chat history", "user_id", req.UserID, "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorDetail{Detail: err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"detail": "Successfully cleared chat history"})
	}
}

// =============================================================================
// Helpers
// =============================================================================

// buildUserMessage assembles the user turn message. Image turns become
// multimodal; an empty question with an image gets the fixed prompt.
func buildUserMessage(question, imageURL string, hasImage bool) datatypes.Message {
	if !hasImage {
		return datatypes.NewUserText(question)
	}

	text := question
	if text == "" {
		text = agent.ImageOnlyPrompt
	}
	return datatypes.NewUserParts([]datatypes.ContentPart{
		{Type: datatypes.PartTypeText, Text: text},
		{Type: datatypes.PartTypeImageURL, ImageURL: imageURL},
	})
}

// readImageForm reads the optional image file into a base64 data URL.
func readImageForm(c *gin.Context) (string, bool, error) {
	header, ok := formFile(c, "image")
	if !ok {
		return "", false, nil
	}
	if header.Size > maxImageBytes {
		return "", false, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	file, err := header.Open()
	if err != nil {
		return "", false, fmt.Errorf("failed to open image upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return "", false, fmt.Errorf("failed to read image upload: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", false, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), true, nil
}

// transcribeUpload runs the transcriber over an uploaded voice note.
func transcribeUpload(ctx context.Context, transcriber transcribe.Transcriber,
	header *multipart.FileHeader) (string, error) {

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open audio upload: %w", err)
	}
	defer file.Close()

	return transcriber.Transcribe(ctx, header.Filename, file)
}

// formFile returns the named upload, reporting absence without error.
func formFile(c *gin.Context, name string) (*multipart.FileHeader, bool) {
	header, err := c.FormFile(name)
	if err != nil {
		return nil, false
	}
	return header, true
}
