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
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

var tracer = otel.Tracer("hangeul.tutor.conversation")

// maxThreadRead bounds a single thread read. Threads are trimmed every
// turn, so this is far above anything a healthy thread can reach.
const maxThreadRead = 500

// messageMetadata is the JSON document stored in the metadata property.
// It carries everything a Message holds beyond role and plain content.
type messageMetadata struct {
	ID         string                  `json:"id,omitempty"`
	Parts      []datatypes.ContentPart `json:"parts,omitempty"`
	ToolCallID string                  `json:"tool_call_id,omitempty"`
	ToolCalls  []datatypes.ToolCall    `json:"tool_calls,omitempty"`
}

// WeaviateStore is the Weaviate-backed Store implementation.
//
// # Description
//
// Each message is one ThreadMessage object. Reads filter by thread_id and
// sort by position; writes are replace-all (batch delete by thread filter,
// then batch insert the new history).
//
// # Thread Safety
//
// Safe for concurrent use. The agent serializes turns per thread, so a
// thread never sees interleaved replace-all writes.
type WeaviateStore struct {
	client *weaviate.Client
}

// NewWeaviateStore creates a Weaviate-backed thread store.
func NewWeaviateStore(client *weaviate.Client) *WeaviateStore {
	return &WeaviateStore{client: client}
}

// GetState implements the Store interface.
//
// # Description
//
// Reads the thread's messages ordered by position and rebuilds full
// Message values from the stored metadata documents. A missing thread
// yields an empty slice.
func (s *WeaviateStore) GetState(ctx context.Context, threadID string) ([]datatypes.Message, error) {
	ctx, span := tracer.Start(ctx, "conversation.GetState")
	defer span.End()

	whereFilter := filters.Where().
		WithPath([]string{"thread_id"}).
		WithOperator(filters.Equal).
		WithValueText(threadID)

	sortBy := graphql.Sort{
		Path:  []string{"position"},
		Order: graphql.Asc,
	}

	fields := []graphql.Field{
		{Name: "thread_id"},
		{Name: "position"},
		{Name: "role"},
		{Name: "content"},
		{Name: "metadata"},
		{Name: "timestamp"},
	}

	resp, err := s.client.GraphQL().Get().
		WithClassName(datatypes.ThreadMessageClass).
		WithFields(fields...).
		WithWhere(whereFilter).
		WithSort(sortBy).
		WithLimit(maxThreadRead).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query thread %s: %w", threadID, err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.ThreadMessageQueryResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse thread query response: %w", err)
	}

	msgs := make([]datatypes.Message, 0, len(parsed.Get.ThreadMessage))
	for _, result := range parsed.Get.ThreadMessage {
		msgs = append(msgs, decodeMessage(result))
	}
	return msgs, nil
}

// UpdateState implements the Store interface.
//
// # Description
//
// Replace-all write: deletes every object for the thread, then batch
// inserts the new history with fresh positions. A failed insert after a
// successful delete loses the thread; the next turn reseeds it.
func (s *WeaviateStore) UpdateState(ctx context.Context, threadID string, msgs []datatypes.Message) error {
	ctx, span := tracer.Start(ctx, "conversation.UpdateState")
	defer span.End()

	if err := s.deleteThread(ctx, threadID); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now().UnixMilli()
	objects := make([]*models.Object, len(msgs))
	for i, msg := range msgs {
		metadata, err := encodeMetadata(msg)
		if err != nil {
			return fmt.Errorf("failed to encode message metadata: %w", err)
		}
		props := datatypes.ThreadMessageProperties{
			ThreadID:  threadID,
			Position:  i,
			Role:      msg.Role,
			Content:   msg.Content,
			Metadata:  metadata,
			Timestamp: now,
		}
		objects[i] = &models.Object{
			Class:      datatypes.ThreadMessageClass,
			Properties: props.ToMap(),
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to write thread %s: %w", threadID, err)
	}
	for _, item := range resp {
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			slog.Warn("Error in thread write batch item",
				"thread_id", threadID,
				"error", item.Result.Errors.Error[0].Message)
		}
	}

	slog.Debug("Replaced thread state", "thread_id", threadID, "messages", len(msgs))
	return nil
}

// Clear implements the Store interface.
func (s *WeaviateStore) Clear(ctx context.Context, threadID string, seed datatypes.Message) error {
	ctx, span := tracer.Start(ctx, "conversation.Clear")
	defer span.End()

	return s.UpdateState(ctx, threadID, []datatypes.Message{seed})
}

// deleteThread removes every stored message for the thread.
func (s *WeaviateStore) deleteThread(ctx context.Context, threadID string) error {
	whereFilter := filters.Where().
		WithPath([]string{"thread_id"}).
		WithOperator(filters.Equal).
		WithValueText(threadID)

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(datatypes.ThreadMessageClass).
		WithOutput("minimal").
		WithWhere(whereFilter).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete thread %s: %w", threadID, err)
	}
	return nil
}

// encodeMetadata serializes the non-column parts of a message.
func encodeMetadata(msg datatypes.Message) (string, error) {
	meta := messageMetadata{
		ID:         msg.ID,
		Parts:      msg.Parts,
		ToolCallID: msg.ToolCallID,
		ToolCalls:  msg.ToolCalls,
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// decodeMessage rebuilds a Message from a query result row.
//
// Unparseable metadata degrades to a plain message rather than failing
// the whole thread read.
func decodeMessage(result datatypes.ThreadMessageResult) datatypes.Message {
	msg := datatypes.Message{
		Role:    result.Role,
		Content: result.Content,
	}
	if result.Metadata == "" {
		return msg
	}

	var meta messageMetadata
	if err := json.Unmarshal([]byte(result.Metadata), &meta); err != nil {
		slog.Warn("Failed to decode message metadata, keeping plain content",
			"thread_id", result.ThreadID,
			"position", result.Position,
			"error", err)
		return msg
	}

	msg.ID = meta.ID
	msg.Parts = meta.Parts
	msg.ToolCallID = meta.ToolCallID
	msg.ToolCalls = meta.ToolCalls
	return msg
}

var _ Store = (*WeaviateStore)(nil)
