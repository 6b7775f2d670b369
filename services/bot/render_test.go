// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToTelegramHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"plain text untouched",
			"Частица 은/는 обозначает тему.",
			"Частица 은/는 обозначает тему.",
		},
		{
			"bold",
			"**은/는** - тема предложения",
			"<b>은/는</b> - тема предложения",
		},
		{
			"italic",
			"это *очень* важно",
			"это <i>очень</i> важно",
		},
		{
			"inline code",
			"скажи `안녕하세요`",
			"скажи <code>안녕하세요</code>",
		},
		{
			"fenced block with language tag",
			"Пример:\n```text\n저는 학생이에요\n```",
			"Пример:\n<pre>저는 학생이에요</pre>",
		},
		{
			"html is escaped",
			"сравни <тему> и & подлежащее",
			"сравни &lt;тему&gt; и &amp; подлежащее",
		},
		{
			"html escaped inside code",
			"`a < b`",
			"<code>a &lt; b</code>",
		},
		{
			"unterminated fence stays plain",
			"вот ```저는",
			"вот ```저는",
		},
		{
			"bold wins over italic",
			"**жирный** и *курсив*",
			"<b>жирный</b> и <i>курсив</i>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToTelegramHTML(tt.in))
		})
	}
}
