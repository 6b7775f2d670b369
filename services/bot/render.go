// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bot implements the Telegram front end for the tutor backend.
package bot

import (
	"html"
	"regexp"
	"strings"
)

// Telegram only accepts a small HTML subset, so the model's markdown is
// converted instead of sent raw.

var (
	boldRe   = regexp.MustCompile(`(?s)\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`(?s)\*(.+?)\*`)
	codeRe   = regexp.MustCompile("(?s)`([^`]+)`")
	langRe   = regexp.MustCompile(`^[A-Za-z0-9_+\-]*\n`)
)

// ToTelegramHTML converts model markdown to Telegram-safe HTML.
//
// # Description
//
// Handles the constructs the tutor actually emits: fenced code blocks,
// inline code, bold, and italic. Everything else is HTML-escaped so a
// stray < in the answer cannot break the Telegram parse.
//
// # Examples
//
//	ToTelegramHTML("**은/는** - тема")  // "<b>은/는</b> - тема"
//	ToTelegramHTML("скажи `안녕`")      // "скажи <code>안녕</code>"
func ToTelegramHTML(text string) string {
	segments := strings.Split(text, "```")

	var b strings.Builder
	for i, segment := range segments {
		if i%2 == 1 {
			if i == len(segments)-1 {
				// Unterminated fence: treat the rest as plain text.
				b.WriteString(renderInline("```" + segment))
				continue
			}
			// Fenced block. Drop the language tag line if present.
			segment = langRe.ReplaceAllString(segment, "")
			b.WriteString("<pre>")
			b.WriteString(html.EscapeString(strings.TrimRight(segment, "\n")))
			b.WriteString("</pre>")
			continue
		}
		b.WriteString(renderInline(segment))
	}
	return strings.TrimSpace(b.String())
}

// renderInline converts inline markdown within one text segment.
func renderInline(segment string) string {
	escaped := html.EscapeString(segment)
	escaped = codeRe.ReplaceAllString(escaped, "<code>$1</code>")
	escaped = boldRe.ReplaceAllString(escaped, "<b>$1</b>")
	escaped = italicRe.ReplaceAllString(escaped, "<i>$1</i>")
	return escaped
}
