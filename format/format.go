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

// Package format provides a function to format an AsciiDoc document
// that is equivalent to the original AsciiDoc.
//
// Blocks are separated by exactly one blank line,
// trailing whitespace is removed,
// blank lines between a block's metadata and its body are dropped,
// and section headings, breaks, and attribute entries
// are written in their canonical forms.
// The text of paragraphs and the interiors of raw blocks are kept as-is.
package format

import (
	"io"
	"strings"

	"zombiezen.com/go/asciidoc"
)

// Format writes the document's blocks as AsciiDoc to the given writer.
// It will return the first error encountered, if any.
func Format(w io.Writer, doc *asciidoc.Document) error {
	ww := &errWriter{w: w}
	atStart := true
	asciidoc.Walk(doc.Root(), &asciidoc.WalkOptions{
		Pre: func(c *asciidoc.Cursor) bool {
			b := c.Block()
			if c.Parent() == nil {
				return true
			}
			if !atStart {
				ww.WriteString("\n")
			}
			writeLines(ww, b.MetadataSource().Data(), true)
			descend := writeBlock(ww, b)
			atStart = descend && b.Kind() == asciidoc.CompoundDelimitedKind
			return descend
		},
		Post: func(c *asciidoc.Cursor) bool {
			if b := c.Block(); b.Kind() == asciidoc.CompoundDelimitedKind {
				ww.WriteString(b.Delimiter().Data())
				ww.WriteString("\n")
				atStart = false
			}
			return ww.err == nil
		},
	})
	return ww.err
}

// writeBlock writes the body of b
// and reports whether b's children should be written after it.
func writeBlock(w *errWriter, b *asciidoc.Block) (descend bool) {
	switch b.Kind() {
	case asciidoc.SectionKind:
		w.WriteString(strings.Repeat("=", b.Level()))
		w.WriteString(" ")
		w.WriteString(strings.TrimSpace(b.SectionTitle().Original().Data()))
		w.WriteString("\n")
		return true
	case asciidoc.BreakKind:
		if b.BreakType() == asciidoc.PageBreak {
			w.WriteString("<<<\n")
		} else {
			w.WriteString("'''\n")
		}
		return false
	case asciidoc.MediaKind:
		w.WriteString(b.MediaType().String())
		w.WriteString("::")
		w.WriteString(b.Target().Data())
		w.WriteString("[")
		w.WriteString(strings.TrimSpace(b.MacroAttrlist().Source().Data()))
		w.WriteString("]\n")
		return false
	case asciidoc.DocumentAttributeKind:
		if v := b.AttributeValue(); v != nil {
			w.WriteString(":")
			w.WriteString(b.AttributeName())
			w.WriteString(":")
			if data := v.Original().Data(); data != "" {
				w.WriteString(" ")
				w.WriteString(data)
			}
		} else {
			w.WriteString(":!")
			w.WriteString(b.AttributeName())
			w.WriteString(":")
		}
		w.WriteString("\n")
		return false
	case asciidoc.RawDelimitedKind:
		w.WriteString(b.Delimiter().Data())
		w.WriteString("\n")
		for _, line := range b.Lines() {
			w.WriteString(line.Data())
			w.WriteString("\n")
		}
		w.WriteString(b.Delimiter().Data())
		w.WriteString("\n")
		return false
	case asciidoc.CompoundDelimitedKind:
		w.WriteString(b.Delimiter().Data())
		w.WriteString("\n")
		return true
	case asciidoc.SimpleKind:
		// Literal paragraphs keep their indentation.
		writeLines(w, b.Content().Original().Data(), false)
		return false
	default:
		return false
	}
}

// writeLines writes each line of s with its trailing whitespace removed.
// If skipBlank is true, blank lines are omitted.
func writeLines(w *errWriter, s string, skipBlank bool) {
	if s == "" {
		return
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if skipBlank && line == "" {
			continue
		}
		w.WriteString(line)
		w.WriteString("\n")
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	return n, w.err
}
