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
	"unicode/utf8"
)

// BlockMetadata holds the lines that may precede a block:
// a title (".Title"), an anchor ("[[id,reftext]]"),
// and one or more attribute lists ("[style,name=value]").
type BlockMetadata struct {
	// Source is the span the metadata was parsed from.
	// It begins at the first metadata line (if any)
	// and extends to the end of the input.
	Source Span
	// Title is the text following the leading "." of a title line.
	Title Span
	// Anchor is the ID declared by an anchor line.
	Anchor Span
	// AnchorReftext is the optional reference text of an anchor line.
	AnchorReftext Span
	// Attrlist is the merged content of all attribute list lines.
	Attrlist *Attrlist
	// BlockStart is the remaining input, beginning at the block itself.
	BlockStart Span
}

// IsEmpty reports whether md has no title, anchor, or attribute list.
// Skipped comment lines do not count.
func (md *BlockMetadata) IsEmpty() bool {
	return md.Title.IsEmpty() && md.Anchor.IsEmpty() && md.Attrlist == nil
}

// lines returns the span covering the metadata lines,
// without the block that follows them.
func (md *BlockMetadata) lines() Span {
	return md.Source.TrimRemainder(md.BlockStart).TrimTrailingWhitespace()
}

// ParseBlockMetadata consumes the metadata lines at the beginning of source.
// Lines are read in any order until one is found that is not metadata;
// single-line comments are skipped.
// Blank lines between the metadata and the block are discarded.
func (p *Parser) ParseBlockMetadata(source Span) (BlockMetadata, []Warning) {
	md := BlockMetadata{Source: source}
	var warnings []Warning
	rest := source
loop:
	for !rest.IsEmpty() {
		line := rest.TakeNormalizedLine()
		data := line.Item.Data()
		switch {
		case isCommentLine(data):
		case strings.HasPrefix(data, "[["):
			id, reftext, ok := parseAnchorLine(line.Item)
			if !ok {
				break loop
			}
			md.Anchor, md.AnchorReftext = id, reftext
		case isTitleLine(data):
			md.Title = line.Item.Discard(1)
		case isAttrlistLine(data):
			al, alWarnings := parseAttrlist(line.Item.Slice(1, line.Item.Len()-1), p)
			warnings = append(warnings, alWarnings...)
			md.Attrlist = md.Attrlist.merge(al)
		default:
			break loop
		}
		rest = line.After
	}
	if rest.Len() < source.Len() {
		rest = rest.DiscardEmptyLines()
	}
	md.BlockStart = rest
	return md, warnings
}

// isCommentLine reports whether the line is a single-line comment.
// Four or more slashes begin a comment block instead.
func isCommentLine(line string) bool {
	return strings.HasPrefix(line, "//") && !strings.HasPrefix(line, "///")
}

// isTitleLine reports whether the line is a block title:
// a "." immediately followed by something other than "." or whitespace.
func isTitleLine(line string) bool {
	if len(line) < 2 || line[0] != '.' {
		return false
	}
	c, _ := utf8.DecodeRuneInString(line[1:])
	return c != '.' && c != ' ' && c != '\t'
}

// isAttrlistLine reports whether the line is a block attribute list.
// A line missing its closing bracket is body text.
func isAttrlistLine(line string) bool {
	if len(line) < 2 || line[0] != '[' || line[len(line)-1] != ']' {
		return false
	}
	inner := line[1 : len(line)-1]
	if inner == "" {
		return true
	}
	switch inner[0] {
	case '#', '.', '%', '"', '\'', '{', ',':
		return true
	}
	c, _ := utf8.DecodeRuneInString(inner)
	return isWordChar(c)
}

// parseAnchorLine parses a line of the form "[[id]]" or "[[id,reftext]]".
func parseAnchorLine(line Span) (id, reftext Span, ok bool) {
	if !line.HasPrefix("[[") || !line.HasSuffix("]]") || line.Len() < 5 {
		return Span{}, Span{}, false
	}
	inner := line.Slice(2, line.Len()-2)
	name := inner.TakeWhile(func(c rune) bool { return c != ',' })
	id = name.Item.Trim()
	if !isXMLName(id.Data()) {
		return Span{}, Span{}, false
	}
	if comma, ok := name.After.TakePrefix(","); ok {
		reftext = comma.After.Trim()
	}
	return id, reftext, true
}

// isXMLName reports whether s is usable as an element ID:
// a letter, underscore, or colon followed by word characters,
// hyphens, periods, or colons.
func isXMLName(s string) bool {
	for i, c := range s {
		switch {
		case c == '_' || c == ':':
		case i == 0 && !isWordChar(c):
			return false
		case i == 0 && c >= '0' && c <= '9':
			return false
		case i > 0 && !(isWordChar(c) || c == '-' || c == '.'):
			return false
		}
	}
	return s != ""
}
