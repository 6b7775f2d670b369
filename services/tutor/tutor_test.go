// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyConfigDefaults(t *testing.T) {
	cfg := applyConfigDefaults(Config{})

	assert.Equal(t, 12310, cfg.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "whisper-1", cfg.WhisperModel)
	assert.Equal(t, "./logs/chat_logs.db", cfg.ChatLogPath)
	assert.Equal(t, 256, cfg.ChatLogQueueSize)
	assert.Equal(t, 10, cfg.KeepMessages)
	assert.Equal(t, 5, cfg.MaxToolRounds)
	assert.Equal(t, 4, cfg.RetrievalTopK)
	assert.Equal(t, float32(0.5), cfg.RetrievalAlpha)
	assert.Equal(t, "aleutian-otel-collector:4317", cfg.OTelEndpoint)
	assert.True(t, cfg.EnableMetrics)
}

func TestApplyConfigDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := applyConfigDefaults(Config{
		Port:          9000,
		ChatModel:     "gpt-4o",
		KeepMessages:  20,
		RetrievalTopK: 8,
	})

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "gpt-4o", cfg.ChatModel)
	assert.Equal(t, 20, cfg.KeepMessages)
	assert.Equal(t, 8, cfg.RetrievalTopK)
}

func TestNewRequiresSecrets(t *testing.T) {
	_, err := New(Config{OpenAIKey: "sk-test"})
	assert.Error(t, err, "missing API secret must fail")

	_, err = New(Config{APISecret: "s3cret"})
	assert.Error(t, err, "missing OpenAI key must fail")
}
