// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command tutor starts the Korean-tutor backend HTTP server.
//
// This is the main entry point for the containerized tutor service. It
// reads configuration from environment variables (a local .env file is
// loaded if present) and starts the server.
//
// # Environment Variables
//
//   - TUTOR_PORT: HTTP server port (default: 12310)
//   - API_SECRET: shared secret for the access_token header (required)
//   - OPENAI_API_KEY: OpenAI API key (required)
//   - WEAVIATE_SERVICE_URL: Weaviate vector DB URL (optional)
//   - CHAT_MODEL: chat completion model (default: gpt-4o-mini)
//   - EMBEDDING_MODEL: embedding model (default: text-embedding-3-small)
//   - WHISPER_MODEL: transcription model (default: whisper-1)
//   - CHAT_LOG_PATH: SQLite interaction log path (default: ./logs/chat_logs.db)
//   - KEEP_MESSAGES: history window size (default: 10)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (default: aleutian-otel-collector:4317)
//   - GIN_MODE: gin framework mode (debug, release, test)
//   - LOG_LEVEL: minimum log level (debug, info, warn, error)
//   - LOG_DIR: directory for the service log file (optional)
//
// # Usage
//
//	# Build
//	go build -o tutor ./cmd/tutor
//
//	# Run
//	./tutor
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/AleutianAI/hangeul/pkg/logging"
	"github.com/AleutianAI/hangeul/services/tutor"
)

func main() {
	closeLogs, err := logging.Setup(logging.Config{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Service: "tutor",
		LogDir:  os.Getenv("LOG_DIR"),
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogs()

	// Local development convenience; the file is optional.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	cfg := tutor.Config{
		Port:           getEnvInt("TUTOR_PORT", 12310),
		APISecret:      os.Getenv("API_SECRET"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		WeaviateURL:    os.Getenv("WEAVIATE_SERVICE_URL"),
		ChatModel:      os.Getenv("CHAT_MODEL"),
		EmbeddingModel: os.Getenv("EMBEDDING_MODEL"),
		WhisperModel:   os.Getenv("WHISPER_MODEL"),
		ChatLogPath:    os.Getenv("CHAT_LOG_PATH"),
		KeepMessages:   getEnvInt("KEEP_MESSAGES", 0),
		OTelEndpoint:   getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "aleutian-otel-collector:4317"),
		GinMode:        os.Getenv("GIN_MODE"),
	}

	slog.Info("Starting tutor",
		"port", cfg.Port,
		"weaviate_url", cfg.WeaviateURL,
		"chat_model", cfg.ChatModel,
	)

	svc, err := tutor.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create tutor service: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Tutor service error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
