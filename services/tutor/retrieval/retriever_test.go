// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

func TestSerializeDocuments(t *testing.T) {
	docs := []datatypes.RetrievedDocument{
		{PageContent: "Particle 은/는 marks the topic.", Source: "lesson_02.md"},
		{PageContent: "Particle 이/가 marks the subject.", Source: "lesson_02.md"},
	}

	got := SerializeDocuments(docs)

	want := "Context: Particle 은/는 marks the topic.\n\n" +
		"Context: Particle 이/가 marks the subject."
	assert.Equal(t, want, got)
}

func TestSerializeDocumentsEmpty(t *testing.T) {
	assert.Equal(t, "", SerializeDocuments(nil))
	assert.Equal(t, "", SerializeDocuments([]datatypes.RetrievedDocument{}))
}

func TestToolDefinition(t *testing.T) {
	def := ToolDefinition()

	assert.Equal(t, "retrieve_docs", def.Name)
	assert.Equal(t, "Retrieve lesson Context for the answer", def.Description)

	props, ok := def.Parameters["properties"].(map[string]any)
	require.True(t, ok)
	_, hasQuery := props["query"]
	assert.True(t, hasQuery)
}

func TestNewRetrieverAppliesDefaults(t *testing.T) {
	r := NewRetriever(nil, nil, Config{})

	assert.Equal(t, 4, r.config.TopK)
	assert.InDelta(t, 0.5, r.config.Alpha, 0.001)
	assert.Equal(t, 4096, r.config.MaxQueryBytes)

	custom := NewRetriever(nil, nil, Config{TopK: 8, Alpha: 0.25, MaxQueryBytes: 1024})
	assert.Equal(t, 8, custom.config.TopK)
	assert.InDelta(t, 0.25, custom.config.Alpha, 0.001)

	outOfRange := NewRetriever(nil, nil, Config{Alpha: 1.5})
	assert.InDelta(t, 0.5, outOfRange.config.Alpha, 0.001)
}
