// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of events an editor save produces.
const debounceWindow = 2 * time.Second

// Watch re-ingests markdown files under dir as they change.
//
// # Description
//
// Blocks until the context is cancelled. Writes and creates are
// debounced per file; removes and renames drop the file's chunks from
// the index.
func (in *Ingestor) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	slog.Info("Watching lesson directory", "dir", dir)

	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				source := filepath.Base(event.Name)
				if err := in.DeleteSource(ctx, source); err != nil {
					slog.Error("Failed to drop removed lesson", "source", source, "error", err)
				} else {
					slog.Info("Dropped removed lesson", "source", source)
				}

			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				path := event.Name
				if timer, ok := pending[path]; ok {
					timer.Stop()
				}
				pending[path] = time.AfterFunc(debounceWindow, func() {
					if _, err := in.IngestFile(ctx, path); err != nil {
						slog.Error("Failed to re-ingest lesson", "path", path, "error", err)
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", "error", err)
		}
	}
}
