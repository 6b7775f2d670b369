// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
	"github.com/AleutianAI/hangeul/services/tutor/middleware"
)

// requestTimeout bounds one backend call. Chat turns with retrieval can
// take tens of seconds.
const requestTimeout = 60 * time.Second

// ErrUnavailable marks transport-level failures, as opposed to an error
// response from the backend itself.
var ErrUnavailable = errors.New("backend unavailable")

// upload is one file part of a multipart request.
type upload struct {
	field    string
	filename string
	data     []byte
}

// Client talks to the tutor backend over its authenticated HTTP API.
//
// # Thread Safety
//
// Safe for concurrent use.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

// NewClient creates a backend client.
//
// # Inputs
//
//   - baseURL: Backend base URL, e.g. "http://localhost:12310".
//   - secret: Shared secret sent in the access_token header.
func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// SendText posts a text turn, optionally with an image.
func (c *Client) SendText(ctx context.Context, userID, question string, image []byte) (string, error) {
	fields := map[string]string{"user_id": userID}
	if question != "" {
		fields["question"] = question
	}

	var files []upload
	if len(image) > 0 {
		files = append(files, upload{field: "image", filename: "photo.jpg", data: image})
	}

	return c.chat(ctx, "/chat/text", fields, files)
}

// SendAudio posts a voice turn, optionally with an image.
func (c *Client) SendAudio(ctx context.Context, userID string, audio, image []byte) (string, error) {
	fields := map[string]string{"user_id": userID}

	var files []upload
	if len(audio) > 0 {
		files = append(files, upload{field: "audio", filename: "voice.ogg", data: audio})
	}
	if len(image) > 0 {
		files = append(files, upload{field: "image", filename: "photo.jpg", data: image})
	}

	return c.chat(ctx, "/chat/audio", fields, files)
}

// ClearHistory wipes the user's conversation on the backend.
func (c *Client) ClearHistory(ctx context.Context, userID string) error {
	body, err := c.post(ctx, "/delete_history", map[string]string{"user_id": userID}, nil)
	if err != nil {
		return err
	}
	slog.Debug("Cleared history", "user_id", userID, "response_bytes", len(body))
	return nil
}

// chat posts a turn and decodes the answer.
func (c *Client) chat(ctx context.Context, path string, fields map[string]string, files []upload) (string, error) {
	body, err := c.post(ctx, path, fields, files)
	if err != nil {
		return "", err
	}

	var resp datatypes.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode backend response: %w", err)
	}
	return resp.Response, nil
}

// post performs one authenticated multipart request.
func (c *Client) post(ctx context.Context, path string, fields map[string]string, files []upload) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build request form: %w", err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to build request form: %w", err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, fmt.Errorf("failed to build request form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.AccessTokenHeader, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var detail datatypes.ErrorDetail
		if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
			return nil, fmt.Errorf("backend returned %d: %s", resp.StatusCode, detail.Detail)
		}
		return nil, fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	return body, nil
}
