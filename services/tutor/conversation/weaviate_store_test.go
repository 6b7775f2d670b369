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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

func TestMetadataPreservesToolStructures(t *testing.T) {
	assistant := datatypes.Message{
		ID:   "msg-1",
		Role: datatypes.RoleAssistant,
		ToolCalls: []datatypes.ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: datatypes.ToolFunction{
				Name:      "retrieve_docs",
				Arguments: `{"query":"-(으)려고 하다"}`,
			},
		}},
	}

	encoded, err := encodeMetadata(assistant)
	require.NoError(t, err)

	decoded := decodeMessage(datatypes.ThreadMessageResult{
		Role:     datatypes.RoleAssistant,
		Metadata: encoded,
	})

	assert.Equal(t, "msg-1", decoded.ID)
	require.Len(t, decoded.ToolCalls, 1)
	assert.Equal(t, "call_1", decoded.ToolCalls[0].ID)
	assert.Equal(t, "retrieve_docs", decoded.ToolCalls[0].Function.Name)
}

func TestMetadataPreservesImageParts(t *testing.T) {
	user := datatypes.NewUserParts([]datatypes.ContentPart{
		{Type: datatypes.PartTypeText, Text: "что на фото?"},
		{Type: datatypes.PartTypeImageURL, ImageURL: "data:image/jpeg;base64,abcd"},
	})

	encoded, err := encodeMetadata(user)
	require.NoError(t, err)

	decoded := decodeMessage(datatypes.ThreadMessageResult{
		Role:     datatypes.RoleUser,
		Metadata: encoded,
	})

	require.Len(t, decoded.Parts, 2)
	assert.Equal(t, "что на фото?", decoded.Parts[0].Text)
	assert.Equal(t, "data:image/jpeg;base64,abcd", decoded.Parts[1].ImageURL)
}

func TestDecodeMessageToleratesBadMetadata(t *testing.T) {
	decoded := decodeMessage(datatypes.ThreadMessageResult{
		ThreadID: "42",
		Role:     datatypes.RoleUser,
		Content:  "plain question",
		Metadata: "{not json",
	})

	assert.Equal(t, datatypes.RoleUser, decoded.Role)
	assert.Equal(t, "plain question", decoded.Content)
	assert.Empty(t, decoded.ToolCalls)
}
