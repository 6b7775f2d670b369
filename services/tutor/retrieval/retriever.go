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
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

var tracer = otel.Tracer("hangeul.tutor.retrieval")

// ToolName is the function name the model uses to request retrieval.
const ToolName = "retrieve_docs"

// serializedPrefix is prepended to every passage handed to the model.
const serializedPrefix = "Context: "

// =============================================================================
// Configuration
// =============================================================================

// Config tunes hybrid retrieval.
//
// # Fields
//
//   - TopK: Number of passages per query. Default: 4.
//   - Alpha: Hybrid weighting, 0 = pure BM25, 1 = pure dense. Default: 0.5.
//   - MaxQueryBytes: Queries longer than this are truncated before
//     embedding. Default: 4096.
type Config struct {
	TopK          int
	Alpha         float32
	MaxQueryBytes int
}

// DefaultConfig returns the production retrieval defaults.
func DefaultConfig() Config {
	return Config{
		TopK:          4,
		Alpha:         0.5,
		MaxQueryBytes: 4096,
	}
}

// =============================================================================
// Retriever
// =============================================================================

// Retriever performs hybrid lesson retrieval over the Lesson class.
//
// # Description
//
// A query is embedded once and sent to Weaviate as a hybrid search: the
// raw query text drives BM25 keyword scoring, the vector drives dense
// similarity, and alpha blends the two rankings.
//
// # Thread Safety
//
// Safe for concurrent use.
type Retriever struct {
	client   *weaviate.Client
	embedder EmbeddingProvider
	config   Config
}

// NewRetriever creates a hybrid lesson retriever.
//
// # Inputs
//
//   - client: Connected Weaviate client. Must not be nil.
//   - embedder: Provider for query embeddings. Must not be nil.
//   - config: Retrieval configuration. Zero values use defaults.
func NewRetriever(client *weaviate.Client, embedder EmbeddingProvider, config Config) *Retriever {
	defaults := DefaultConfig()
	if config.TopK <= 0 {
		config.TopK = defaults.TopK
	}
	if config.Alpha <= 0 || config.Alpha > 1 {
		config.Alpha = defaults.Alpha
	}
	if config.MaxQueryBytes <= 0 {
		config.MaxQueryBytes = defaults.MaxQueryBytes
	}
	return &Retriever{client: client, embedder: embedder, config: config}
}

// Retrieve runs a hybrid search and serializes the hits for the model.
//
// # Description
//
// Returns the serialized passage block and the raw documents. An empty
// index is not an error: the serialized string is empty and the document
// slice is empty, which the system prompt turns into a refusal.
//
// # Inputs
//
//   - ctx: Context for cancellation and timeout.
//   - query: The search query (typically a hypothetical answer).
//
// # Outputs
//
//   - string: Passages prefixed with "Context: ", joined by blank lines.
//   - []datatypes.RetrievedDocument: The raw hits, best first.
//   - error: Non-nil if embedding or the search fails.
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, []datatypes.RetrievedDocument, error) {
	ctx, span := tracer.Start(ctx, "retrieval.Retrieve")
	defer span.End()

	if len(query) > r.config.MaxQueryBytes {
		query = query[:r.config.MaxQueryBytes]
		slog.Debug("Truncated retrieval query", "max_bytes", r.config.MaxQueryBytes)
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hybrid := r.client.GraphQL().HybridArgumentBuilder().
		WithQuery(query).
		WithVector(vector).
		WithAlpha(r.config.Alpha)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "score"},
		}},
	}

	resp, err := r.client.GraphQL().Get().
		WithClassName(datatypes.LessonClass).
		WithFields(fields...).
		WithHybrid(hybrid).
		WithLimit(r.config.TopK).
		Do(ctx)
	if err != nil {
		slog.Error("Hybrid lesson search failed", "error", err)
		return "", nil, fmt.Errorf("weaviate hybrid search failed: %w", err)
	}

	parsed, err := datatypes.ParseGraphQLResponse[datatypes.LessonQueryResponse](resp)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse lesson results: %w", err)
	}

	docs := make([]datatypes.RetrievedDocument, 0, len(parsed.Get.Lesson))
	for _, hit := range parsed.Get.Lesson {
		doc := datatypes.RetrievedDocument{
			PageContent: hit.Content,
			Source:      hit.Source,
		}
		if hit.Additional.Score != nil {
			doc.Score = *hit.Additional.Score
		}
		docs = append(docs, doc)
	}

	slog.Debug("Retrieved lesson passages", "count", len(docs))
	return SerializeDocuments(docs), docs, nil
}

// SerializeDocuments renders retrieved passages as the tool result text.
//
// Each passage is prefixed with "Context: " and passages are joined by a
// blank line. Zero documents serialize to the empty string.
func SerializeDocuments(docs []datatypes.RetrievedDocument) string {
	if len(docs) == 0 {
		return ""
	}
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = serializedPrefix + doc.PageContent
	}
	return strings.Join(parts, "\n\n")
}

// ToolDefinition returns the retrieve_docs tool description for the model.
func ToolDefinition() datatypes.ToolDefinition {
	return datatypes.ToolDefinition{
		Name:        ToolName,
		Description: "Retrieve lesson Context for the answer",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query for lesson passages",
				},
			},
			"required": []string{"query"},
		},
	}
}
