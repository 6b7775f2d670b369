// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "gpt-4o-mini")
	assert.Error(t, err)

	c, err := NewOpenAIClient("sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.model)
}

func TestToOpenAIMessagesPlainText(t *testing.T) {
	msgs := toOpenAIMessages([]datatypes.Message{
		datatypes.NewSystemText("you are a teacher"),
		datatypes.NewUserText("annyeong"),
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, "you are a teacher", msgs[0].Content)
	assert.Empty(t, msgs[0].MultiContent)
	assert.Equal(t, "annyeong", msgs[1].Content)
}

func TestToOpenAIMessagesMultimodal(t *testing.T) {
	msgs := toOpenAIMessages([]datatypes.Message{
		datatypes.NewUserParts([]datatypes.ContentPart{
			{Type: datatypes.PartTypeText, Text: "what does this say"},
			{Type: datatypes.PartTypeImageURL, ImageURL: "data:image/jpeg;base64,abcd"},
		}),
	})

	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].MultiContent, 2)
	assert.Equal(t, openai.ChatMessagePartTypeText, msgs[0].MultiContent[0].Type)
	assert.Equal(t, "what does this say", msgs[0].MultiContent[0].Text)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, msgs[0].MultiContent[1].Type)
	require.NotNil(t, msgs[0].MultiContent[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,abcd", msgs[0].MultiContent[1].ImageURL.URL)
	assert.Empty(t, msgs[0].Content)
}

func TestToOpenAIMessagesToolRoundTrip(t *testing.T) {
	assistant := datatypes.Message{
		Role: datatypes.RoleAssistant,
		ToolCalls: []datatypes.ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: datatypes.ToolFunction{
				Name:      "retrieve_docs",
				Arguments: `{"query":"particles"}`,
			},
		}},
	}
	result := datatypes.NewToolResult("call_1", "Context: passage")

	msgs := toOpenAIMessages([]datatypes.Message{assistant, result})

	require.Len(t, msgs, 2)
	require.Len(t, msgs[0].ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[0].ToolCalls[0].ID)
	assert.Equal(t, openai.ToolTypeFunction, msgs[0].ToolCalls[0].Type)
	assert.Equal(t, "retrieve_docs", msgs[0].ToolCalls[0].Function.Name)

	assert.Equal(t, openai.ChatMessageRoleTool, msgs[1].Role)
	assert.Equal(t, "call_1", msgs[1].ToolCallID)
	assert.Equal(t, "Context: passage", msgs[1].Content)
}
