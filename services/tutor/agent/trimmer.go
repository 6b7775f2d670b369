// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agent

import (
	"log/slog"

	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
)

// DefaultKeepMessages is the default sliding window size.
const DefaultKeepMessages = 10

// TrimMessages bounds a conversation history to a sliding window.
//
// # Description
//
// Keeps the first message (the persona seed) plus a window of the most
// recent messages. The window starts at the last keep+1 messages and
// grows backwards while its first element is a tool result, so a tool
// result is never separated from the assistant message that requested it.
//
// If the grown window would reach the seed, the history is returned
// unchanged: there is nothing left to drop and the seed must not be
// duplicated.
//
// # Inputs
//
//   - msgs: The full history, oldest first.
//   - keep: Window size. Values < 1 use DefaultKeepMessages.
//
// # Outputs
//
//   - []datatypes.Message: The bounded history. The input slice is never
//     mutated.
//   - bool: True if messages were dropped.
//
// # Examples
//
//	trimmed, changed := TrimMessages(history, 10)
//	if changed {
//	    metrics.RecordTrim()
//	}
//
// # Limitations
//
//   - Operates on message count, not tokens.
func TrimMessages(msgs []datatypes.Message, keep int) ([]datatypes.Message, bool) {
	if keep < 1 {
		keep = DefaultKeepMessages
	}
	if len(msgs) <= keep {
		return msgs, false
	}

	start := len(msgs) - keep - 1
	for start > 1 && msgs[start].IsTool() {
		start--
	}
	if start <= 1 {
		return msgs, false
	}

	trimmed := make([]datatypes.Message, 0, len(msgs)-start+1)
	trimmed = append(trimmed, msgs[0])
	trimmed = append(trimmed, msgs[start:]...)
	return trimmed, true
}

// applyTrim is the fail-safe wrapper around TrimMessages.
//
// A panic during trimming must never lose a conversation: the original
// history is returned instead and the failure is logged.
func applyTrim(msgs []datatypes.Message, keep int) (out []datatypes.Message, changed bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Error truncating messages, keeping full history", "panic", r)
			out = msgs
			changed = false
		}
	}()

	return TrimMessages(msgs, keep)
}
