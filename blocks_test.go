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

func TestBreakType(t *testing.T) {
	tests := []struct {
		line string
		want BreakType
	}{
		{"'''", ThematicBreak},
		{"''''''", ThematicBreak},
		{"<<<", PageBreak},
		{"<<<<", PageBreak},
		{"---", ThematicBreak},
		{"- - -", ThematicBreak},
		{"*  *  *", ThematicBreak},
		{"___", ThematicBreak},
		{"''", 0},
		{"- --", 0},
		{"-- -", 0},
		{"- -  -", 0},
		{"----", 0},
		{"'''x", 0},
		{"-*-", 0},
	}
	for _, test := range tests {
		if got := breakType(test.line); got != test.want {
			t.Errorf("breakType(%q) = %v; want %v", test.line, got, test.want)
		}
	}
}

func TestSectionLevel(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"= Document", 1},
		{"== Section", 2},
		{"###### Deep", 6},
		{"####### Too deep", 0},
		{"==No space", 0},
		{"==   ", 0},
		{"=#= Mixed", 0},
		{"Text", 0},
	}
	for _, test := range tests {
		if got := sectionLevel(test.line); got != test.want {
			t.Errorf("sectionLevel(%q) = %d; want %d", test.line, got, test.want)
		}
	}
}

func TestSections(t *testing.T) {
	doc := Parse("== A\n\nIn A.\n\n=== A.1\n\nIn A.1.\n\n== B\n\n==== B.1.1\n")
	if len(doc.Blocks) != 2 {
		t.Fatalf("len(doc.Blocks) = %d; want 2", len(doc.Blocks))
	}
	a, b := doc.Blocks[0], doc.Blocks[1]
	if got := a.Level(); got != 2 {
		t.Errorf("A.Level() = %d; want 2", got)
	}
	if got := a.SectionTitle().Rendered(); got != "A" {
		t.Errorf("A.SectionTitle() = %q; want %q", got, "A")
	}
	if got := a.ChildCount(); got != 2 {
		t.Fatalf("A.ChildCount() = %d; want 2", got)
	}
	if got := a.Child(1).Level(); got != 3 {
		t.Errorf("A.Child(1).Level() = %d; want 3", got)
	}
	if got, want := a.Source().Data(), "== A\n\nIn A.\n\n=== A.1\n\nIn A.1."; got != want {
		t.Errorf("A.Source() = %q; want %q", got, want)
	}
	if got := b.ChildCount(); got != 1 {
		t.Fatalf("B.ChildCount() = %d; want 1", got)
	}
	if got := b.Child(0).Level(); got != 4 {
		t.Errorf("B.Child(0).Level() = %d; want 4", got)
	}
}

func TestDelimitedBlocks(t *testing.T) {
	t.Run("NestedFences", func(t *testing.T) {
		doc := Parse("====\nOuter.\n\n======\nInner.\n======\n====\n")
		if len(doc.Blocks) != 1 {
			t.Fatalf("len(doc.Blocks) = %d; want 1", len(doc.Blocks))
		}
		outer := doc.Blocks[0]
		if got := outer.Kind(); got != CompoundDelimitedKind {
			t.Errorf("outer.Kind() = %v; want %v", got, CompoundDelimitedKind)
		}
		if got := outer.Delimiter().Data(); got != "====" {
			t.Errorf("outer.Delimiter() = %q; want %q", got, "====")
		}
		if got := outer.ChildCount(); got != 2 {
			t.Fatalf("outer.ChildCount() = %d; want 2", got)
		}
		inner := outer.Child(1)
		if got := inner.Delimiter().Data(); got != "======" {
			t.Errorf("inner.Delimiter() = %q; want %q", got, "======")
		}
		if got := inner.Child(0).Content().Rendered(); got != "Inner." {
			t.Errorf("inner paragraph = %q; want %q", got, "Inner.")
		}
	})

	t.Run("SameFenceClosesEarly", func(t *testing.T) {
		doc := Parse("====\nA\n====\nB\n====\n")
		if got, want := outline(doc.Blocks), "example(paragraph) paragraph paragraph"; got != want {
			t.Errorf("outline = %q; want %q", got, want)
		}
		if len(doc.Warnings) != 1 || doc.Warnings[0].Type != UnterminatedDelimitedBlock {
			t.Errorf("Warnings = %v; want one UnterminatedDelimitedBlock", doc.Warnings)
		}
	})

	t.Run("RawLines", func(t *testing.T) {
		doc := Parse("----\n\n  if x < 1 {\n\n  }\n\n----\n")
		b := doc.Blocks[0]
		if got := b.Kind(); got != RawDelimitedKind {
			t.Errorf("Kind() = %v; want %v", got, RawDelimitedKind)
		}
		var lines []string
		for _, line := range b.Lines() {
			lines = append(lines, line.Data())
		}
		want := []string{"", "  if x < 1 {", "", "  }", ""}
		if diff := cmp.Diff(want, lines); diff != "" {
			t.Errorf("Lines() (-want +got):\n%s", diff)
		}
		if got, want := b.Content().Rendered(), "  if x &lt; 1 {\n\n  }"; got != want {
			t.Errorf("Content().Rendered() = %q; want %q", got, want)
		}
	})

	t.Run("Unterminated", func(t *testing.T) {
		doc := Parse("Intro.\n\n----\ncode\n")
		if got, want := outline(doc.Blocks), "paragraph paragraph"; got != want {
			t.Errorf("outline = %q; want %q", got, want)
		}
		if len(doc.Warnings) != 1 {
			t.Fatalf("Warnings = %v; want 1 warning", doc.Warnings)
		}
		w := doc.Warnings[0]
		if w.Type != UnterminatedDelimitedBlock || w.Source.Line() != 3 || w.Source.Data() != "----" {
			t.Errorf("Warnings[0] = %v %v; want UnterminatedDelimitedBlock at 3:1 %q", w.Type, w.Source, "----")
		}
	})

	t.Run("RawFenceLength", func(t *testing.T) {
		doc := Parse("----\n-----\ncode\n---\n----\n")
		if len(doc.Blocks) != 1 {
			t.Fatalf("len(doc.Blocks) = %d; want 1", len(doc.Blocks))
		}
		b := doc.Blocks[0]
		if got := b.Kind(); got != RawDelimitedKind {
			t.Errorf("Kind() = %v; want %v", got, RawDelimitedKind)
		}
		if got, want := b.Content().Rendered(), "-----\ncode\n---"; got != want {
			t.Errorf("Content().Rendered() = %q; want %q", got, want)
		}
		if len(doc.Warnings) > 0 {
			t.Errorf("Warnings = %v; want none", doc.Warnings)
		}
	})

	t.Run("PassthroughContent", func(t *testing.T) {
		doc := Parse("++++\n<video src=\"a&b\">\n++++\n")
		if got, want := doc.Blocks[0].Content().Rendered(), `<video src="a&b">`; got != want {
			t.Errorf("Content().Rendered() = %q; want %q", got, want)
		}
	})

	t.Run("SubsAttribute", func(t *testing.T) {
		doc := Parse("[subs=\"+quotes\"]\n----\n*bold* <tag>\n----\n")
		if got, want := doc.Blocks[0].Content().Rendered(), "<strong>bold</strong> &lt;tag&gt;"; got != want {
			t.Errorf("Content().Rendered() = %q; want %q", got, want)
		}
	})
}

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantContext string
		wantModel   ContentModel
		wantText    string
	}{
		{
			name:        "Normal",
			source:      "Some *bold*\ntext.  \n",
			wantContext: "paragraph",
			wantModel:   SimpleModel,
			wantText:    "Some <strong>bold</strong>\ntext.",
		},
		{
			name:        "Literal",
			source:      "  indented *not bold*\n    more\n",
			wantContext: "literal",
			wantModel:   VerbatimModel,
			wantText:    "indented *not bold*\n  more",
		},
		{
			name:        "NormalStyleOverridesIndent",
			source:      "[normal]\n  indented\n",
			wantContext: "paragraph",
			wantModel:   SimpleModel,
			wantText:    "  indented",
		},
		{
			name:        "Source",
			source:      "[source,go]\nif a < b {}\n",
			wantContext: "listing",
			wantModel:   VerbatimModel,
			wantText:    "if a &lt; b {}",
		},
		{
			name:        "Admonition",
			source:      "[WARNING]\nHot _coffee_.\n",
			wantContext: "admonition",
			wantModel:   SimpleModel,
			wantText:    "Hot <em>coffee</em>.",
		},
		{
			name:        "Pass",
			source:      "[pass]\n<b>{sp}</b>\n",
			wantContext: "pass",
			wantModel:   RawModel,
			wantText:    "<b>{sp}</b>",
		},
		{
			name:        "UnknownStyle",
			source:      "[glossary]\nTerm.\n",
			wantContext: "paragraph",
			wantModel:   SimpleModel,
			wantText:    "Term.",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse(test.source)
			if len(doc.Blocks) != 1 {
				t.Fatalf("len(doc.Blocks) = %d; want 1", len(doc.Blocks))
			}
			b := doc.Blocks[0]
			if got := b.Context(); got != test.wantContext {
				t.Errorf("Context() = %q; want %q", got, test.wantContext)
			}
			if got := b.ContentModel(); got != test.wantModel {
				t.Errorf("ContentModel() = %v; want %v", got, test.wantModel)
			}
			if got := b.Content().Rendered(); got != test.wantText {
				t.Errorf("Content().Rendered() = %q; want %q", got, test.wantText)
			}
		})
	}
}

func TestParagraphInterruptions(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"Text\n'''\n", "paragraph thematic_break"},
		{"Text\n<<<\n", "paragraph page_break"},
		{"Text\nimage::a.png[]\n", "paragraph image"},
		{"Text\nimage::a.png\n", "paragraph"},
		{"Text\n== Title\n", "paragraph section"},
		{"Text\n****\nSide\n****\n", "paragraph sidebar(paragraph)"},
		{"Text\n:name: value\n", "paragraph"},
		{"Text\n.Not a title\n", "paragraph"},
	}
	for _, test := range tests {
		doc := Parse(test.source)
		if got := outline(doc.Blocks); got != test.want {
			t.Errorf("Parse(%q) outline = %q; want %q", test.source, got, test.want)
		}
	}
}

func TestMediaBlocks(t *testing.T) {
	doc := Parse(".Sunset\n[#sun.wide]\nimage::sunset.jpg[Sunset,300,200]\n")
	if len(doc.Blocks) != 1 {
		t.Fatalf("len(doc.Blocks) = %d; want 1", len(doc.Blocks))
	}
	b := doc.Blocks[0]
	if got := b.MediaType(); got != ImageMedia {
		t.Errorf("MediaType() = %v; want %v", got, ImageMedia)
	}
	if got := b.Target().Data(); got != "sunset.jpg" {
		t.Errorf("Target() = %q; want %q", got, "sunset.jpg")
	}
	var values []string
	for _, attr := range b.MacroAttrlist().Attributes() {
		values = append(values, attr.Value())
	}
	if diff := cmp.Diff([]string{"Sunset", "300", "200"}, values); diff != "" {
		t.Errorf("MacroAttrlist() values (-want +got):\n%s", diff)
	}
	if got := b.ID(); got != "sun" {
		t.Errorf("ID() = %q; want %q", got, "sun")
	}
	if got := b.Title().Rendered(); got != "Sunset" {
		t.Errorf("Title() = %q; want %q", got, "Sunset")
	}
	if got, want := b.MetadataSource().Data(), ".Sunset\n[#sun.wide]"; got != want {
		t.Errorf("MetadataSource() = %q; want %q", got, want)
	}
	if got, want := b.Source().Data(), ".Sunset\n[#sun.wide]\nimage::sunset.jpg[Sunset,300,200]"; got != want {
		t.Errorf("Source() = %q; want %q", got, want)
	}
}

func TestMediaMacroWarnings(t *testing.T) {
	tests := []struct {
		source string
		want   []WarningType
	}{
		{"image::[]\n", []WarningType{MediaMacroMissingTarget}},
		{"video::clip.mp4\n", []WarningType{MacroMissingAttributeList}},
		{"audio:clip.mp3[]\n", []WarningType{MacroMissingDoubleColon}},
		{"image:inline.png[]\n", nil},
		{"video games [1]\n", nil},
		{"toc::[]\n", nil},
		{"image::a.png[]trailing\n", nil},
	}
	for _, test := range tests {
		doc := Parse(test.source)
		var got []WarningType
		for _, w := range doc.Warnings {
			got = append(got, w.Type)
		}
		if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Parse(%q) warnings (-want +got):\n%s", test.source, diff)
		}
	}
}

func TestParseBlock(t *testing.T) {
	source := NewSpan("\n\n[NOTE]\nFirst.\n\n\nSecond.\n")
	result := NewParser().ParseBlock(source)
	if !result.Matched {
		t.Fatal("ParseBlock(...).Matched = false; want true")
	}
	b := result.Item.Item
	if got := b.Context(); got != "admonition" {
		t.Errorf("Context() = %q; want %q", got, "admonition")
	}
	if got := b.Source().Line(); got != 3 {
		t.Errorf("Source().Line() = %d; want 3", got)
	}
	if got, want := result.Item.After.Data(), "Second.\n"; got != want {
		t.Errorf("After = %q; want %q", got, want)
	}

	empty := NewParser().ParseBlock(NewSpan("\n  \n"))
	if empty.Matched || len(empty.Warnings) > 0 {
		t.Errorf("ParseBlock(blank) = %+v; want no match and no warnings", empty)
	}
}

func TestParseBlockInsecureCharacters(t *testing.T) {
	result := NewParser().ParseBlock(NewSpan("text \u00960\u0097 +++<b>+++\n"))
	if !result.Matched {
		t.Fatal("ParseBlock(...).Matched = false; want true")
	}
	got := result.Item.Item.Content().Rendered()
	if want := "text \ufffd0\ufffd <b>"; got != want {
		t.Errorf("Content().Rendered() = %q; want %q", got, want)
	}
}
