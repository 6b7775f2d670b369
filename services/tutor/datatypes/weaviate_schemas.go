// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// Weaviate class names used by the tutor service.
const (
	LessonClass        = "Lesson"
	ThreadMessageClass = "ThreadMessage"
)

// GetLessonSchema returns the schema for the Lesson class.
//
// # Description
//
// Lesson stores chunked Korean lesson passages with externally computed
// vectors. BM25 over the content property provides the sparse half of
// hybrid retrieval; the supplied vector provides the dense half.
func GetLessonSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       LessonClass,
		Description: "A chunk of a Korean lesson used for retrieval grounding.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The lesson passage text.",
				Tokenization: "word",
			},
			{
				Name:            "source",
				DataType:        []string{"text"},
				Description:     "The lesson file this chunk came from.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "chunk_index",
				DataType:        []string{"int"},
				Description:     "Position of the chunk within its source file.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "ingested_at",
				DataType:        []string{"number"},
				Description:     "Timestamp (Unix ms) of when the chunk was ingested.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

// GetThreadMessageSchema returns the schema for the ThreadMessage class.
//
// # Description
//
// ThreadMessage persists conversation threads. Each object is one message;
// position orders messages within a thread, and metadata carries tool call
// structures and multimodal parts as a JSON document.
func GetThreadMessageSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       ThreadMessageClass,
		Description: "A single message within a user's conversation thread.",
		Vectorizer:  "none",
		InvertedIndexConfig: &models.InvertedIndexConfig{
			IndexNullState:  true,
			IndexTimestamps: true,
		},
		Properties: []*models.Property{
			{
				Name:            "thread_id",
				DataType:        []string{"text"},
				Description:     "The thread this message belongs to (the user id).",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "position",
				DataType:        []string{"int"},
				Description:     "Zero-based position of the message within the thread.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "role",
				DataType:        []string{"text"},
				Description:     "Message role: system, user, assistant, or tool.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "Plain text content of the message.",
				Tokenization: "word",
			},
			{
				Name:        "metadata",
				DataType:    []string{"text"},
				Description: "JSON document carrying parts, tool calls, and tool call id.",
			},
			{
				Name:            "timestamp",
				DataType:        []string{"number"},
				Description:     "Timestamp (Unix ms) of when the message was stored.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

// EnsureWeaviateSchema creates any missing tutor classes.
//
// # Description
//
// Checks each class and creates it when the getter returns an error
// (the client errors on missing classes). Existing classes are left
// untouched; property drift is not reconciled.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - client: Connected Weaviate client. Must not be nil.
//
// # Outputs
//
//   - error: Non-nil if a missing class could not be created.
func EnsureWeaviateSchema(ctx context.Context, client *weaviate.Client) error {
	schemaGetters := []func() *models.Class{
		GetLessonSchema,
		GetThreadMessageSchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()
		slog.Info("Checking schema", "class", class.Class)

		_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(ctx)
		if err == nil {
			slog.Info("Schema already exists", "class", class.Class)
			continue
		}

		slog.Info("Schema not found, creating it", "class", class.Class)
		if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
			return fmt.Errorf("failed to create schema for class %s: %w", class.Class, err)
		}
		slog.Info("Successfully created schema", "class", class.Class)
	}

	return nil
}
