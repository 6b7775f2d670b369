// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package conversation persists per-user conversation threads.
//
// A thread is the full ordered message history for one user; the thread id
// is the user id. Two implementations are provided: a Weaviate-backed store
// for production and an in-memory store for tests and lightweight mode.
package conversation

import (
	"context"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

// Store is the contract for thread persistence.
//
// # Description
//
// UpdateState replaces the whole thread. Replace-all semantics keep the
// store trivially consistent with trimming: whatever the agent ends the
// turn with is exactly what the next turn loads.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Callers serialize
// writes to the same thread id; concurrent writes to the same thread
// have last-writer-wins semantics.
type Store interface {
	// GetState returns the thread's messages in order. A missing thread
	// yields an empty slice, not an error.
	GetState(ctx context.Context, threadID string) ([]datatypes.Message, error)

	// UpdateState replaces the thread's messages with msgs.
	UpdateState(ctx context.Context, threadID string, msgs []datatypes.Message) error

	// Clear replaces the thread with the single seed message. The seed
	// keeps a cleared thread from ever being empty.
	Clear(ctx context.Context, threadID string, seed datatypes.Message) error
}
