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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// attrSummary is a comparable summary of an [ElementAttribute].
type attrSummary struct {
	Name     string
	Value    string
	Position int
}

func TestParseAttrlist(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		want         []attrSummary
		wantStyle    string
		wantID       string
		wantRoles    []string
		wantOptions  []string
		wantWarnings []WarningType
	}{
		{
			name:   "Empty",
			source: "",
		},
		{
			name:      "Positional",
			source:    "source,go",
			want:      []attrSummary{{Value: "source", Position: 1}, {Value: "go", Position: 2}},
			wantStyle: "source",
		},
		{
			name:   "Named",
			source: "width=300, height = 200",
			want: []attrSummary{
				{Name: "width", Value: "300"},
				{Name: "height", Value: "200"},
			},
		},
		{
			name:   "Quoted",
			source: `quote, "Abraham Lincoln", 'Gettysburg, 1863'`,
			want: []attrSummary{
				{Value: "quote", Position: 1},
				{Value: "Abraham Lincoln", Position: 2},
				{Value: "Gettysburg, 1863", Position: 3},
			},
			wantStyle: "quote",
		},
		{
			name:   "EscapedQuote",
			source: `title="Say \"hi\""`,
			want:   []attrSummary{{Name: "title", Value: `Say "hi"`}},
		},
		{
			name:        "Shorthand",
			source:      "sidebar#intro.lead.dark%collapsible",
			want:        []attrSummary{{Value: "sidebar#intro.lead.dark%collapsible", Position: 1}},
			wantStyle:   "sidebar",
			wantID:      "intro",
			wantRoles:   []string{"lead", "dark"},
			wantOptions: []string{"collapsible"},
		},
		{
			name:   "RoleAndOptionAttributes",
			source: `.lead, role="big bold", opts="a,b"`,
			want: []attrSummary{
				{Value: ".lead", Position: 1},
				{Name: "role", Value: "big bold"},
				{Name: "opts", Value: "a,b"},
			},
			wantRoles:   []string{"lead", "big", "bold"},
			wantOptions: []string{"a", "b"},
		},
		{
			name:   "IDAttribute",
			source: "#short, id=long",
			want: []attrSummary{
				{Value: "#short", Position: 1},
				{Name: "id", Value: "long"},
			},
			wantID: "long",
		},
		{
			name:   "EmptyValue",
			source: "blah,,blap",
			want: []attrSummary{
				{Value: "blah", Position: 1},
				{Value: "blap", Position: 3},
			},
			wantStyle:    "blah",
			wantWarnings: []WarningType{EmptyAttributeValue},
		},
		{
			name:   "MissingComma",
			source: `"quoted" trailing, next`,
			want: []attrSummary{
				{Value: "quoted", Position: 1},
				{Value: "trailing", Position: 2},
				{Value: "next", Position: 3},
			},
			wantWarnings: []WarningType{MissingCommaAfterQuotedAttributeValue},
		},
		{
			name:   "MissingTerminatingQuote",
			source: `"foo, bar`,
			want: []attrSummary{
				{Value: `"foo`, Position: 1},
				{Value: "bar", Position: 2},
			},
			wantStyle:    `"foo`,
			wantWarnings: []WarningType{AttributeValueMissingTerminatingQuote},
		},
		{
			name:         "EmptyShorthandItem",
			source:       "#id.",
			want:         []attrSummary{{Value: "#id.", Position: 1}},
			wantID:       "id",
			wantWarnings: []WarningType{EmptyShorthandItem},
		},
		{
			name:   "AttributeReference",
			source: "alt={sp}x",
			want:   []attrSummary{{Name: "alt", Value: " x"}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			al, warnings := parseAttrlist(NewSpan(test.source), NewParser())
			var got []attrSummary
			for _, attr := range al.Attributes() {
				got = append(got, attrSummary{
					Name:     attr.Name(),
					Value:    attr.Value(),
					Position: attr.Position(),
				})
			}
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("attributes (-want +got):\n%s", diff)
			}
			if got := al.BlockStyle(); got != test.wantStyle {
				t.Errorf("BlockStyle() = %q; want %q", got, test.wantStyle)
			}
			if got := al.ID(); got != test.wantID {
				t.Errorf("ID() = %q; want %q", got, test.wantID)
			}
			if diff := cmp.Diff(test.wantRoles, al.Roles(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Roles() (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.wantOptions, al.Options(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Options() (-want +got):\n%s", diff)
			}
			var gotWarnings []WarningType
			for _, w := range warnings {
				gotWarnings = append(gotWarnings, w.Type)
			}
			if diff := cmp.Diff(test.wantWarnings, gotWarnings, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("warnings (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmptyAttributeValueIsDeterministic(t *testing.T) {
	const source = "image::bar[blah,,blap]\n"
	var first []Warning
	for i := 0; i < 10; i++ {
		doc := Parse(source)
		if len(doc.Warnings) != 1 {
			t.Fatalf("Parse(%q).Warnings = %v; want 1 warning", source, doc.Warnings)
		}
		if i == 0 {
			first = doc.Warnings
			continue
		}
		if got, want := doc.Warnings[0].String(), first[0].String(); got != want {
			t.Errorf("run %d: warning = %q; want %q", i, got, want)
		}
	}
	w := first[0]
	if w.Type != EmptyAttributeValue {
		t.Errorf("Type = %v; want %v", w.Type, EmptyAttributeValue)
	}
	if got, want := w.Source.Data(), "blah,,blap"; got != want {
		t.Errorf("Source.Data() = %q; want %q", got, want)
	}
	if got, want := w.Source.Col(), 12; got != want {
		t.Errorf("Source.Col() = %d; want %d", got, want)
	}
}

func TestWarningShow(t *testing.T) {
	const source = "Intro.\n\nimage::bar[blah,,blap]\n"
	doc := Parse(source)
	if len(doc.Warnings) != 1 {
		t.Fatalf("Warnings = %v; want 1 warning", doc.Warnings)
	}
	got := doc.Warnings[0].Show("doc.adoc", doc.Source)
	want := "doc.adoc:3:12: empty attribute value\n" +
		"    image::bar[blah,,blap]\n" +
		"               ^~~~~~~~~~"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Show(...) (-want +got):\n%s", diff)
	}
}

func TestAttrlistMerge(t *testing.T) {
	doc := Parse("[source]\n[,python,role=big]\n----\nprint()\n----\n")
	b := doc.Blocks[0]
	if got, want := b.Context(), "listing"; got != want {
		t.Errorf("Context() = %q; want %q", got, want)
	}
	if lang, _ := b.Attrlist().NthAttribute(2); lang.Value() != "python" {
		t.Errorf("NthAttribute(2).Value() = %q; want %q", lang.Value(), "python")
	}
	if diff := cmp.Diff([]string{"big"}, b.Attrlist().Roles()); diff != "" {
		t.Errorf("Roles() (-want +got):\n%s", diff)
	}
}
