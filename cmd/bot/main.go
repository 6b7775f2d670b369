// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command bot starts the Telegram front end for the tutor backend.
//
// # Environment Variables
//
//   - TELEGRAM_BOT_TOKEN: Telegram bot API token (required)
//   - TUTOR_SERVICE_URL: tutor backend base URL (default: http://localhost:12310)
//   - API_SECRET: shared secret for the access_token header (required)
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AleutianAI/hangeul/pkg/logging"
	"github.com/AleutianAI/hangeul/services/bot"
)

func main() {
	closeLogs, err := logging.Setup(logging.Config{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Service: "bot",
		LogDir:  os.Getenv("LOG_DIR"),
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogs()

	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	secret := os.Getenv("API_SECRET")
	backendURL := os.Getenv("TUTOR_SERVICE_URL")
	if backendURL == "" {
		backendURL = "http://localhost:12310"
	}

	backend := bot.NewClient(backendURL, secret)
	b, err := bot.New(token, backend)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting bot", "backend_url", backendURL)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot error: %v", err)
	}
}
