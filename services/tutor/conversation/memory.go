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
	"sync"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

// MemoryStore is an in-memory Store implementation.
//
// # Description
//
// Used when no Weaviate URL is configured (lightweight mode) and in tests.
// Threads live only as long as the process.
//
// # Thread Safety
//
// All methods are safe for concurrent use; state is guarded by a mutex.
type MemoryStore struct {
	mu      sync.Mutex
	threads map[string][]datatypes.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string][]datatypes.Message)}
}

// GetState implements the Store interface.
func (s *MemoryStore) GetState(_ context.Context, threadID string) ([]datatypes.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.threads[threadID]
	out := make([]datatypes.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// UpdateState implements the Store interface.
func (s *MemoryStore) UpdateState(_ context.Context, threadID string, msgs []datatypes.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]datatypes.Message, len(msgs))
	copy(stored, msgs)
	s.threads[threadID] = stored
	return nil
}

// Clear implements the Store interface.
func (s *MemoryStore) Clear(_ context.Context, threadID string, seed datatypes.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[threadID] = []datatypes.Message{seed}
	return nil
}

var _ Store = (*MemoryStore)(nil)
