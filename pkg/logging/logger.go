// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging configures structured logging for the hangeul services.
//
// All services log JSON via the standard slog package. This package
// centralizes handler setup so every binary gets the same shape of log
// line: stdout by default, plus an optional per-service log file.
//
// # Usage
//
//	closer, err := logging.Setup(logging.Config{
//	    Level:   logging.LevelInfo,
//	    Service: "tutor",
//	    LogDir:  "./logs",
//	})
//	if err != nil { ... }
//	defer closer()
//
// # Security Considerations
//
// This package does NOT redact sensitive data. Callers must ensure user
// messages, tokens, and secrets are not logged verbatim.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a config string to a Level. Unknown values get Info.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config holds logging configuration.
//
// # Fields
//
//   - Level: Minimum severity to emit. Default: LevelInfo.
//   - Service: Name stamped on every log line and used in the log file
//     name. Default: "hangeul".
//   - LogDir: Directory for the log file. Empty disables file logging.
type Config struct {
	Level   Level
	Service string
	LogDir  string
}

// Setup installs the process-wide default slog logger.
//
// # Description
//
// Logs go to stdout as JSON. When LogDir is set, lines are additionally
// written to {service}_{date}.log in that directory; the directory is
// created if missing.
//
// # Outputs
//
//   - func(): Closer that flushes and closes the log file. Never nil.
//   - error: Non-nil if the log directory or file cannot be created.
func Setup(cfg Config) (func(), error) {
	if cfg.Service == "" {
		cfg.Service = "hangeul"
	}

	out := io.Writer(os.Stdout)
	closer := func() {}

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		name := fmt.Sprintf("%s_%s.log", cfg.Service, time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(filepath.Join(cfg.LogDir, name),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = func() { file.Close() }
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.Level.toSlogLevel(),
	})
	slog.SetDefault(slog.New(handler).With("service", cfg.Service))

	return closer, nil
}
