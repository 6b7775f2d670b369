// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

func TestMemoryStoreMissingThreadIsEmpty(t *testing.T) {
	store := NewMemoryStore()

	msgs, err := store.GetState(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMemoryStoreReplaceAll(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := []datatypes.Message{
		datatypes.NewSystemText("seed"),
		datatypes.NewUserText("q1"),
	}
	require.NoError(t, store.UpdateState(ctx, "42", first))

	second := []datatypes.Message{
		datatypes.NewSystemText("seed"),
		datatypes.NewUserText("q2"),
		datatypes.NewAssistantText("a2"),
	}
	require.NoError(t, store.UpdateState(ctx, "42", second))

	got, err := store.GetState(ctx, "42")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "q2", got[1].Content)
}

func TestMemoryStoreClearSeedsThread(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.UpdateState(ctx, "42", []datatypes.Message{
		datatypes.NewUserText("q"),
		datatypes.NewAssistantText("a"),
	}))

	seed := datatypes.NewAssistantText("system prompt restored")
	require.NoError(t, store.Clear(ctx, "42", seed))

	got, err := store.GetState(ctx, "42")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, datatypes.RoleAssistant, got[0].Role)
	assert.Equal(t, "system prompt restored", got[0].Content)
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	input := []datatypes.Message{datatypes.NewUserText("original")}
	require.NoError(t, store.UpdateState(ctx, "42", input))
	input[0].Content = "mutated"

	got, err := store.GetState(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "original", got[0].Content)

	got[0].Content = "mutated again"
	fresh, err := store.GetState(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "original", fresh[0].Content)
}
