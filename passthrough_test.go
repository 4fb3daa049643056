// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package asciidoc

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestExtractPassthroughs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
		want     Passthroughs
	}{
		{
			name:     "None",
			input:    "plain text",
			wantText: "plain text",
		},
		{
			name:     "TriplePlus",
			input:    "a +++<b>+++ c",
			wantText: "a " + placeholderStart + "0" + placeholderEnd + " c",
			want:     Passthroughs{{Text: "<b>", Subs: NoSubstitutions}},
		},
		{
			name:     "DoublePlus",
			input:    "++<b>++",
			wantText: placeholderStart + "0" + placeholderEnd,
			want:     Passthroughs{{Text: "<b>", Subs: VerbatimSubstitutions}},
		},
		{
			name:     "DoubleDollar",
			input:    "$$*x*$$",
			wantText: placeholderStart + "0" + placeholderEnd,
			want:     Passthroughs{{Text: "*x*", Subs: VerbatimSubstitutions}},
		},
		{
			name:     "Attrlist",
			input:    "[.red]+++x+++",
			wantText: placeholderStart + "0" + placeholderEnd,
			want:     Passthroughs{{Text: "x", Subs: NoSubstitutions, Type: Unquoted, Attrlist: ".red"}},
		},
		{
			name:     "PassMacro",
			input:    "pass:[a\\]b] and pass:q,a[*{sp}*]",
			wantText: placeholderStart + "0" + placeholderEnd + " and " + placeholderStart + "1" + placeholderEnd,
			want: Passthroughs{
				{Text: "a]b", Subs: NoSubstitutions},
				{Text: "*{sp}*", Subs: CustomSubstitutions(Quotes, AttributeReferences)},
			},
		},
		{
			name:     "PassMacroUnknownSub",
			input:    "pass:bogus[x]",
			wantText: "pass:bogus[x]",
		},
		{
			name:     "PassMacroInWord",
			input:    "bypass:[x]",
			wantText: "bypass:[x]",
		},
		{
			name:     "Escaped",
			input:    `\+++x+++`,
			wantText: "+++x+++",
		},
		{
			name:     "Unterminated",
			input:    "+++x",
			wantText: "+++x",
		},
		{
			name:     "Multiline",
			input:    "+++a\nb+++",
			wantText: placeholderStart + "0" + placeholderEnd,
			want:     Passthroughs{{Text: "a\nb", Subs: NoSubstitutions}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewContent(NewSpan(test.input))
			got := ExtractPassthroughs(c)
			if c.Rendered() != test.wantText {
				t.Errorf("text = %q; want %q", c.Rendered(), test.wantText)
			}
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty(), cmp.Comparer(SubstitutionGroup.Equal)); diff != "" {
				t.Errorf("passthroughs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRestorePassthroughs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Raw",
			input: "x +++<b>&+++ y",
			want:  "x <b>& y",
		},
		{
			name:  "Verbatim",
			input: "++<b>++",
			want:  "&lt;b&gt;",
		},
		{
			name:  "Role",
			input: "[.red]++<i>++",
			want:  `<span class="red">&lt;i&gt;</span>`,
		},
		{
			name:  "PassMacroQuotes",
			input: "pass:q[*bold* <i>]",
			want:  "<strong>bold</strong> <i>",
		},
		{
			name:  "ProtectedFromOuterSubstitutions",
			input: "*a* pass:[*b*] {sp}",
			want:  "<strong>a</strong> *b*  ",
		},
		{
			name:  "SurvivesReplacements",
			input: "(C) +++(C)+++",
			want:  "&#169; (C)",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := applySubs(NormalSubstitutions, nil, test.input); got != test.want {
				t.Errorf("NormalSubstitutions.Apply(%q) = %q; want %q", test.input, got, test.want)
			}
		})
	}
}

func TestRestoreOutOfRangePlaceholder(t *testing.T) {
	pt := Passthroughs{{Text: "zero", Subs: NoSubstitutions}}
	c := &Content{rendered: placeholderStart + "0" + placeholderEnd + placeholderStart + "7" + placeholderEnd}
	pt.RestoreTo(c, nil)
	want := "zero" + placeholderStart + "7" + placeholderEnd
	if c.Rendered() != want {
		t.Errorf("RestoreTo(...) = %q; want %q", c.Rendered(), want)
	}
}

func TestPassthroughSourceCannotForgePlaceholders(t *testing.T) {
	doc := Parse("text \u00960\u0097 +++<b>+++\n")
	got := doc.Blocks[0].Content().Rendered()
	if strings.ContainsAny(got, placeholderStart+placeholderEnd) {
		t.Errorf("rendered = %q; contains placeholder characters", got)
	}
	if want := "text \ufffd0\ufffd <b>"; got != want {
		t.Errorf("rendered = %q; want %q", got, want)
	}
}
