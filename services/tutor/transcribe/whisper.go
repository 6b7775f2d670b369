// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transcribe converts voice notes to text.
package transcribe

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// DefaultModel is the Whisper model used for transcription.
const DefaultModel = "whisper-1"

// Transcriber converts an audio stream to text.
type Transcriber interface {
	// Transcribe returns the transcript of the audio stream. filename
	// hints the container format (e.g. "voice.ogg").
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// WhisperTranscriber implements Transcriber via the OpenAI audio API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a Whisper-backed transcriber.
//
// # Inputs
//
//   - apiKey: OpenAI API key. Must not be empty.
//   - model: Transcription model. Empty defaults to DefaultModel.
func NewWhisperTranscriber(apiKey, model string) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	if model == "" {
		model = DefaultModel
	}
	return &WhisperTranscriber{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Transcribe implements the Transcriber interface.
//
// Errors propagate to the caller; there is no fallback transcript.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		slog.Error("Transcription failed", "filename", filename, "error", err)
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	slog.Debug("Transcribed audio", "filename", filename, "transcript_bytes", len(resp.Text))
	return resp.Text, nil
}

var _ Transcriber = (*WhisperTranscriber)(nil)
