// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLessonShortTextSingleChunk(t *testing.T) {
	chunks, err := SplitLesson("# Урок 1\n\nЧастица 은/는 обозначает тему предложения.")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "은/는")
}

func TestSplitLessonPrefersHeadingBoundaries(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Урок 1\n\n")
	b.WriteString(strings.Repeat("Частица 은/는 обозначает тему. ", 40))
	b.WriteString("\n# Урок 2\n\n")
	b.WriteString(strings.Repeat("Частица 이/가 обозначает подлежащее. ", 40))

	chunks, err := SplitLesson(b.String())
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// No chunk mixes both lessons: the heading separator splits first.
	for _, chunk := range chunks {
		mixed := strings.Contains(chunk, "Урок 1") && strings.Contains(chunk, "Урок 2")
		assert.False(t, mixed, "chunk spans lesson boundary: %q", chunk)
	}
}

func TestSplitLessonEmptyInput(t *testing.T) {
	chunks, err := SplitLesson("")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkIDDeterministic(t *testing.T) {
	a := ChunkID("Частица 은/는 обозначает тему.")
	b := ChunkID("Частица 은/는 обозначает тему.")
	c := ChunkID("Частица 이/가 обозначает подлежащее.")

	assert.Equal(t, a, b, "same content must map to the same id")
	assert.NotEqual(t, a, c)

	_, err := uuid.Parse(a)
	assert.NoError(t, err, "chunk id must be a valid UUID")
}
