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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hangeul/services/tutor/middleware"
)

func TestSendTextSuccess(t *testing.T) {
	var gotToken, gotUserID, gotQuestion string

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/text", r.URL.Path)
		gotToken = r.Header.Get(middleware.AccessTokenHeader)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotUserID = r.FormValue("user_id")
		gotQuestion = r.FormValue("question")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"42","response":"Частица 은/는 обозначает тему."}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, "s3cret")
	answer, err := client.SendText(context.Background(), "42", "Что такое 은/는?", nil)

	require.NoError(t, err)
	assert.Equal(t, "Частица 은/는 обозначает тему.", answer)
	assert.Equal(t, "s3cret", gotToken)
	assert.Equal(t, "42", gotUserID)
	assert.Equal(t, "Что такое 은/는?", gotQuestion)
}

func TestSendTextWithImageUpload(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.jpg", header.Filename)
		w.Write([]byte(`{"user_id":"42","response":"ok"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, "s3cret")
	_, err := client.SendText(context.Background(), "42", "", []byte{0xFF, 0xD8})
	require.NoError(t, err)
}

func TestSendAudioUploadsVoice(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/audio", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("audio")
		require.NoError(t, err)
		assert.Equal(t, "voice.ogg", header.Filename)
		w.Write([]byte(`{"user_id":"42","response":"ответ"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, "s3cret")
	answer, err := client.SendAudio(context.Background(), "42", []byte("OggS"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ответ", answer)
}

func TestBackendErrorDetailSurfaces(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"model unavailable"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, "s3cret")
	_, err := client.SendText(context.Background(), "42", "вопрос", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // connection refused from here on

	client := NewClient(backend.URL, "s3cret")
	_, err := client.SendText(context.Background(), "42", "вопрос", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClearHistory(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/delete_history", r.URL.Path)
		w.Write([]byte(`{"detail":"Successfully cleared chat history"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, "s3cret")
	assert.NoError(t, client.ClearHistory(context.Background(), "42"))
}
