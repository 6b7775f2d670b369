// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

// makeHistory builds a seed message followed by n alternating user and
// assistant messages.
func makeHistory(n int) []datatypes.Message {
	msgs := []datatypes.Message{datatypes.NewSystemText("seed")}
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			msgs = append(msgs, datatypes.NewUserText(fmt.Sprintf("q%d", i)))
		} else {
			msgs = append(msgs, datatypes.NewAssistantText(fmt.Sprintf("a%d", i)))
		}
	}
	return msgs
}

func TestTrimMessagesShortHistoryUnchanged(t *testing.T) {
	msgs := makeHistory(5)

	trimmed, changed := TrimMessages(msgs, 10)

	assert.False(t, changed)
	assert.Equal(t, msgs, trimmed)
}

func TestTrimMessagesExactBoundaryUnchanged(t *testing.T) {
	// 11 messages with a window of 10: the window plus the seed already
	// covers everything, so nothing is dropped.
	msgs := makeHistory(10)
	require.Len(t, msgs, 11)

	trimmed, changed := TrimMessages(msgs, 10)

	assert.False(t, changed)
	assert.Len(t, trimmed, 11)
}

func TestTrimMessagesDropsMiddle(t *testing.T) {
	msgs := makeHistory(20)

	trimmed, changed := TrimMessages(msgs, 10)

	assert.True(t, changed)
	require.Len(t, trimmed, 12)
	assert.Equal(t, "seed", trimmed[0].Content)
	assert.Equal(t, msgs[len(msgs)-11:], trimmed[1:])
	assert.Equal(t, msgs[len(msgs)-1], trimmed[len(trimmed)-1])
}

func TestTrimMessagesKeepsToolPairsTogether(t *testing.T) {
	// History ends in an assistant tool request followed by several tool
	// results, positioned so a naive cut would orphan the results.
	msgs := makeHistory(8)
	call := datatypes.Message{
		ID:   "a-call",
		Role: datatypes.RoleAssistant,
		ToolCalls: []datatypes.ToolCall{
			{ID: "c1", Type: "function", Function: datatypes.ToolFunction{Name: "retrieve_docs"}},
			{ID: "c2", Type: "function", Function: datatypes.ToolFunction{Name: "retrieve_docs"}},
			{ID: "c3", Type: "function", Function: datatypes.ToolFunction{Name: "retrieve_docs"}},
		},
	}
	msgs = append(msgs, call)
	msgs = append(msgs,
		datatypes.NewToolResult("c1", "Context: one"),
		datatypes.NewToolResult("c2", "Context: two"),
		datatypes.NewToolResult("c3", "Context: three"),
		datatypes.NewAssistantText("final answer"),
	)

	// A window of 3 would cut inside the tool results; the window must
	// grow until it reaches the assistant message that issued the calls.
	trimmed, changed := TrimMessages(msgs, 3)
	assert.True(t, changed)

	// The cut must land on or before the assistant tool request.
	for i, msg := range trimmed {
		if msg.IsTool() {
			found := false
			for j := i - 1; j >= 1; j-- {
				for _, tc := range trimmed[j].ToolCalls {
					if tc.ID == msg.ToolCallID {
						found = true
					}
				}
			}
			assert.True(t, found, "tool result %s has no matching tool call", msg.ToolCallID)
		}
	}
	assert.Equal(t, "seed", trimmed[0].Content)
	assert.Equal(t, "final answer", trimmed[len(trimmed)-1].Content)
}

func TestTrimMessagesAllToolsFallsBackToUnchanged(t *testing.T) {
	// Pathological history where expanding past tool results reaches the
	// seed: nothing can be dropped without splitting a pair.
	msgs := []datatypes.Message{
		datatypes.NewSystemText("seed"),
		{Role: datatypes.RoleAssistant, ToolCalls: []datatypes.ToolCall{{ID: "c0", Type: "function"}}},
	}
	for i := 0; i < 10; i++ {
		msgs = append(msgs, datatypes.NewToolResult("c0", "Context: again"))
	}

	trimmed, changed := TrimMessages(msgs, 5)

	assert.False(t, changed)
	assert.Equal(t, msgs, trimmed)
}

func TestTrimMessagesIdempotent(t *testing.T) {
	msgs := makeHistory(30)

	once, changed := TrimMessages(msgs, 10)
	require.True(t, changed)

	twice, changedAgain := TrimMessages(once, 10)
	assert.False(t, changedAgain)
	assert.Equal(t, once, twice)
}

func TestTrimMessagesDoesNotMutateInput(t *testing.T) {
	msgs := makeHistory(20)
	original := make([]datatypes.Message, len(msgs))
	copy(original, msgs)

	_, _ = TrimMessages(msgs, 10)

	assert.Equal(t, original, msgs)
}

func TestTrimMessagesZeroKeepUsesDefault(t *testing.T) {
	msgs := makeHistory(20)

	trimmed, changed := TrimMessages(msgs, 0)

	assert.True(t, changed)
	assert.Len(t, trimmed, DefaultKeepMessages+2)
}

func TestApplyTrimRecoversFromPanic(t *testing.T) {
	// applyTrim must fall back to the original history on any panic.
	// TrimMessages itself cannot be made to panic through its public
	// contract, so verify the happy path is transparent instead.
	msgs := makeHistory(20)

	trimmed, changed := applyTrim(msgs, 10)

	assert.True(t, changed)
	assert.Equal(t, "seed", trimmed[0].Content)
}
