// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest loads lesson material into the Weaviate Lesson class.
//
// Lessons are markdown files. Each file is split into overlapping chunks,
// embedded, and written as one batch. Chunk ids derive from the chunk
// content, so re-ingesting an unchanged file is idempotent.
package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate/entities/models"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
	"github.com/AleutianAI/hangeul/services/tutor/retrieval"
)

var (
	chunkSize    = 1024
	chunkOverlap = 200

	markdownSeparators = []string{
		"\n# ", "\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
		"\n\n", "\n", " ", "",
	}
)

// embedBatchSize bounds one embeddings API call.
const embedBatchSize = 64

// embedConcurrency bounds parallel embedding calls.
const embedConcurrency = 4

// Ingestor writes lesson chunks into Weaviate.
//
// # Thread Safety
//
// Safe for concurrent use.
type Ingestor struct {
	client   *weaviate.Client
	embedder retrieval.EmbeddingProvider
	class    string
}

// NewIngestor creates an ingestor.
//
// # Inputs
//
//   - client: Connected Weaviate client. Must not be nil.
//   - embedder: Provider for chunk embeddings. Must not be nil.
//   - class: Target Weaviate class. Empty uses the Lesson class.
func NewIngestor(client *weaviate.Client, embedder retrieval.EmbeddingProvider, class string) *Ingestor {
	if class == "" {
		class = datatypes.LessonClass
	}
	return &Ingestor{client: client, embedder: embedder, class: class}
}

// SplitLesson splits markdown lesson text into chunks.
func SplitLesson(content string) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators(markdownSeparators),
	)
	return splitter.SplitText(content)
}

// ChunkID derives a stable object id from chunk content.
func ChunkID(chunk string) string {
	hash := sha256.Sum256([]byte(chunk))
	id, _ := uuid.FromBytes(hash[:16])
	return id.String()
}

// IngestFile loads one markdown file into the Lesson class.
//
// # Description
//
// Any chunks previously ingested for the same source are removed first,
// so re-ingesting an edited file never leaves stale passages behind.
//
// # Outputs
//
//   - int: Chunks successfully written.
//   - error: Non-nil if reading, embedding, or the batch write fails.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read lesson file: %w", err)
	}
	source := filepath.Base(path)

	chunks, err := SplitLesson(string(content))
	if err != nil {
		return 0, fmt.Errorf("failed to split lesson %s: %w", source, err)
	}
	if len(chunks) == 0 {
		slog.Warn("No chunks produced after splitting", "source", source)
		return 0, nil
	}
	slog.Info("Split lesson into chunks", "source", source, "chunk_count", len(chunks))

	vectors, err := in.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}

	if err := in.DeleteSource(ctx, source); err != nil {
		return 0, err
	}

	objects := make([]*models.Object, len(chunks))
	now := time.Now().UnixMilli()
	for i, chunk := range chunks {
		props := datatypes.LessonProperties{
			Content:    chunk,
			Source:     source,
			ChunkIndex: i,
			IngestedAt: now,
		}
		objects[i] = &models.Object{
			Class:      in.class,
			ID:         strfmt.UUID(ChunkID(chunk)),
			Vector:     vectors[i],
			Properties: props.ToMap(),
		}
	}

	resp, err := in.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to save lesson chunks: %w", err)
	}

	written := 0
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			written++
			continue
		}
		slog.Warn("Failed Weaviate batch item", "source", source)
	}

	slog.Info("Ingested lesson", "source", source, "chunks_written", written)
	return written, nil
}

// IngestDir loads every markdown file under dir.
func (in *Ingestor) IngestDir(ctx context.Context, dir string) (int, error) {
	total := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		written, err := in.IngestFile(ctx, path)
		if err != nil {
			return err
		}
		total += written
		return nil
	})
	if err != nil {
		return total, fmt.Errorf("failed to ingest directory %s: %w", dir, err)
	}
	return total, nil
}

// DeleteSource removes all chunks ingested for one source file.
func (in *Ingestor) DeleteSource(ctx context.Context, source string) error {
	where := filters.Where().
		WithPath([]string{"source"}).
		WithOperator(filters.Equal).
		WithValueText(source)

	_, err := in.client.Batch().ObjectsBatchDeleter().
		WithClassName(in.class).
		WithOutput("minimal").
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", source, err)
	}
	return nil
}

// embedChunks embeds all chunks with bounded concurrency, preserving
// input order.
func (in *Ingestor) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		start := start
		end := min(start+embedBatchSize, len(chunks))

		g.Go(func() error {
			batch, err := in.embedder.EmbedBatch(ctx, chunks[start:end])
			if err != nil {
				return err
			}
			copy(vectors[start:], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
