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
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A Span is an immutable view of a contiguous region of the source text
// that remembers where in the source it begins.
// Spans are only ever re-sliced, never mutated,
// so position information survives all the way to diagnostics.
//
// The zero value is an empty span at an unknown position.
type Span struct {
	data   string
	line   int
	col    int
	offset int
}

// NewSpan returns a span covering all of source,
// positioned at line 1, column 1.
func NewSpan(source string) Span {
	return Span{data: source, line: 1, col: 1}
}

// Data returns the text the span covers.
func (s Span) Data() string {
	return s.data
}

// Line returns the 1-based line number of the start of the span.
func (s Span) Line() int {
	return s.line
}

// Col returns the 1-based column (in runes) of the start of the span.
func (s Span) Col() int {
	return s.col
}

// ByteOffset returns the offset in bytes of the start of the span
// from the beginning of the source.
func (s Span) ByteOffset() int {
	return s.offset
}

// EndOffset returns the offset in bytes just past the end of the span.
func (s Span) EndOffset() int {
	return s.offset + len(s.data)
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return len(s.data)
}

// IsEmpty reports whether the span covers no text.
func (s Span) IsEmpty() bool {
	return len(s.data) == 0
}

// String formats the span's position and text for debugging.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d(@%d) %q", s.line, s.col, s.offset, s.data)
}

// Discard returns the span that remains after removing the first n bytes.
// n is clamped to the span's length.
func (s Span) Discard(n int) Span {
	if n <= 0 {
		return s
	}
	if n > len(s.data) {
		n = len(s.data)
	}
	prefix := s.data[:n]
	line, col := s.line, s.col
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		line += strings.Count(prefix, "\n")
		col = 1 + utf8.RuneCountInString(prefix[i+1:])
	} else {
		col += utf8.RuneCountInString(prefix)
	}
	return Span{
		data:   s.data[n:],
		line:   line,
		col:    col,
		offset: s.offset + n,
	}
}

// Slice returns the span covering s.Data()[start:end].
// Out-of-range bounds are clamped.
func (s Span) Slice(start, end int) Span {
	if end > len(s.data) {
		end = len(s.data)
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	t := s.Discard(start)
	t.data = t.data[:end-start]
	return t
}

// TrimRemainder returns the portion of s that precedes after,
// where after is a span derived from s.
func (s Span) TrimRemainder(after Span) Span {
	return s.Slice(0, after.offset-s.offset)
}

// Trim returns the span with leading and trailing whitespace removed.
func (s Span) Trim() Span {
	return s.TakeWhile(unicode.IsSpace).After.TrimTrailingWhitespace()
}

// TrimTrailingWhitespace returns the span with trailing whitespace removed.
func (s Span) TrimTrailingWhitespace() Span {
	t := s
	t.data = strings.TrimRightFunc(s.data, unicode.IsSpace)
	return t
}

func (s Span) split(i int) MatchedItem[Span] {
	return MatchedItem[Span]{
		Item:  s.Slice(0, i),
		After: s.Discard(i),
	}
}

// TakeWhile splits the span after the longest prefix
// whose runes all satisfy f.
func (s Span) TakeWhile(f func(rune) bool) MatchedItem[Span] {
	i := strings.IndexFunc(s.data, func(c rune) bool { return !f(c) })
	if i < 0 {
		i = len(s.data)
	}
	return s.split(i)
}

// TakeWhitespace splits off any leading spaces and tabs.
func (s Span) TakeWhitespace() MatchedItem[Span] {
	return s.TakeWhile(isSpaceOrTab)
}

// HasPrefix reports whether the span's text begins with prefix.
func (s Span) HasPrefix(prefix string) bool {
	return strings.HasPrefix(s.data, prefix)
}

// HasSuffix reports whether the span's text ends with suffix.
func (s Span) HasSuffix(suffix string) bool {
	return strings.HasSuffix(s.data, suffix)
}

// TakePrefix splits the literal prefix off the span.
// ok is false if the span does not begin with prefix.
func (s Span) TakePrefix(prefix string) (mi MatchedItem[Span], ok bool) {
	if !s.HasPrefix(prefix) {
		return MatchedItem[Span]{After: s}, false
	}
	return s.split(len(prefix)), true
}

// TakeLine splits the first line off the span.
// The line terminator is not included in the item, but is consumed.
func (s Span) TakeLine() MatchedItem[Span] {
	i := strings.IndexByte(s.data, '\n')
	if i < 0 {
		return s.split(len(s.data))
	}
	line := s.Slice(0, i)
	line.data = strings.TrimSuffix(line.data, "\r")
	return MatchedItem[Span]{
		Item:  line,
		After: s.Discard(i + 1),
	}
}

// TakeNormalizedLine splits the first line off the span
// with any trailing whitespace removed.
func (s Span) TakeNormalizedLine() MatchedItem[Span] {
	mi := s.TakeLine()
	mi.Item = mi.Item.TrimTrailingWhitespace()
	return mi
}

// DiscardEmptyLines returns the span with any leading blank
// (empty or whitespace-only) lines removed.
func (s Span) DiscardEmptyLines() Span {
	for !s.IsEmpty() {
		line := s.TakeLine()
		if !isBlankLine(line.Item.data) {
			break
		}
		s = line.After
	}
	return s
}

// TakeIdent splits off an identifier:
// an ASCII letter or underscore followed by ASCII letters, digits, underscores, or hyphens.
func (s Span) TakeIdent() (mi MatchedItem[Span], ok bool) {
	if s.IsEmpty() || !(isASCIILetter(s.data[0]) || s.data[0] == '_') {
		return MatchedItem[Span]{After: s}, false
	}
	n := 1
	for n < len(s.data) && isIdentByte(s.data[n]) {
		n++
	}
	return s.split(n), true
}

// TakeAttributeName splits off an attribute name:
// a word character followed by word characters or hyphens.
func (s Span) TakeAttributeName() (mi MatchedItem[Span], ok bool) {
	if s.IsEmpty() || !(isASCIILetter(s.data[0]) || isASCIIDigit(s.data[0]) || s.data[0] == '_') {
		return MatchedItem[Span]{After: s}, false
	}
	n := 1
	for n < len(s.data) && isIdentByte(s.data[n]) {
		n++
	}
	return s.split(n), true
}

// TakeQuotedString splits off a string enclosed in single or double quotes.
// The item is the text between the quotes, without unescaping.
// ok is false if the span does not begin with a quote
// or the closing quote is missing.
func (s Span) TakeQuotedString() (mi MatchedItem[Span], ok bool) {
	if s.IsEmpty() || (s.data[0] != '"' && s.data[0] != '\'') {
		return MatchedItem[Span]{After: s}, false
	}
	quote := s.data[0]
	for i := 1; i < len(s.data); i++ {
		switch s.data[i] {
		case '\\':
			i++
		case quote:
			return MatchedItem[Span]{
				Item:  s.Slice(1, i),
				After: s.Discard(i + 1),
			}, true
		}
	}
	return MatchedItem[Span]{After: s}, false
}

// TakeNonEmptyLines splits off the run of lines up to the first blank line.
// The item does not include the final line terminator.
func (s Span) TakeNonEmptyLines() (mi MatchedItem[Span], ok bool) {
	next := s
	end := s
	for !next.IsEmpty() {
		line := next.TakeLine()
		if isBlankLine(line.Item.data) {
			break
		}
		end = line.After
		next = line.After
	}
	if end.offset == s.offset {
		return MatchedItem[Span]{After: s}, false
	}
	return MatchedItem[Span]{
		Item:  s.TrimRemainder(end).TrimTrailingWhitespace(),
		After: end,
	}, true
}

// A MatchedItem is the result of a successful recognizer:
// the recognized value and the unconsumed input that follows it.
type MatchedItem[T any] struct {
	Item  T
	After Span
}

func isBlankLine(line string) bool {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}

func isSpaceOrTab(c rune) bool {
	return c == ' ' || c == '\t'
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentByte(c byte) bool {
	return isASCIILetter(c) || isASCIIDigit(c) || c == '_' || c == '-'
}

// isWordChar reports whether c is a word character
// (letter, mark, decimal digit, or connector punctuation).
func isWordChar(c rune) bool {
	return unicode.In(c, unicode.L, unicode.M, unicode.Nd, unicode.Pc)
}
