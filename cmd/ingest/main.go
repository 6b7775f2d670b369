// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command ingest loads lesson markdown into the Weaviate Lesson class.
//
// # Usage
//
//	# One-shot ingestion of a file or directory
//	ingest --source ./lessons
//
//	# Keep watching the directory for edits
//	ingest --source ./lessons --watch
//
// # Environment Variables
//
//   - OPENAI_API_KEY: OpenAI API key for embeddings (required)
//   - WEAVIATE_SERVICE_URL: Weaviate URL (default: http://localhost:8080)
//   - EMBEDDING_MODEL: embedding model (default: text-embedding-3-small)
//   - LOG_LEVEL: minimum log level (debug, info, warn, error)
//   - LOG_DIR: directory for the service log file (optional)
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"github.com/AleutianAI/hangeul/pkg/logging"
	"github.com/AleutianAI/hangeul/services/ingest"
	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
	"github.com/AleutianAI/hangeul/services/tutor/retrieval"
)

var (
	sourcePath string
	collection string
	watchMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load lesson markdown into the vector index",
	RunE:  runIngest,
}

func main() {
	closeLogs, err := logging.Setup(logging.Config{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Service: "ingest",
		LogDir:  os.Getenv("LOG_DIR"),
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogs()

	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.Flags().StringVar(&sourcePath, "source", "", "lesson file or directory to ingest")
	rootCmd.Flags().StringVar(&collection, "collection", datatypes.LessonClass, "target Weaviate class")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "keep watching the directory for changes")
	rootCmd.MarkFlagRequired("source")
}

func runIngest(cmd *cobra.Command, args []string) error {
	client, err := connectWeaviate()
	if err != nil {
		return err
	}

	embedder, err := retrieval.NewOpenAIEmbedder(
		os.Getenv("OPENAI_API_KEY"), os.Getenv("EMBEDDING_MODEL"))
	if err != nil {
		return err
	}

	ingestor := ingest.NewIngestor(client, embedder, collection)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("cannot read source %s: %w", sourcePath, err)
	}

	if info.IsDir() {
		written, err := ingestor.IngestDir(ctx, sourcePath)
		if err != nil {
			return err
		}
		slog.Info("Directory ingestion complete", "chunks_written", written)

		if watchMode {
			if err := ingestor.Watch(ctx, sourcePath); err != nil &&
				!errors.Is(err, context.Canceled) {
				return err
			}
		}
		return nil
	}

	if watchMode {
		return fmt.Errorf("--watch requires a directory source")
	}

	written, err := ingestor.IngestFile(ctx, sourcePath)
	if err != nil {
		return err
	}
	slog.Info("File ingestion complete", "chunks_written", written)
	return nil
}

// connectWeaviate dials Weaviate and ensures the schema exists.
func connectWeaviate() (*weaviate.Client, error) {
	rawURL := os.Getenv("WEAVIATE_SERVICE_URL")
	if rawURL == "" {
		rawURL = "http://localhost:8080"
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid Weaviate URL: %s", rawURL)
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsed.Host,
		Scheme: parsed.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	if err := datatypes.EnsureWeaviateSchema(context.Background(), client); err != nil {
		return nil, fmt.Errorf("failed to ensure Weaviate schema: %w", err)
	}
	return client, nil
}
