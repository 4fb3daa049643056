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

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxSectionLevel is the largest number of markers in a section heading.
const maxSectionLevel = 6

// parseSection attempts to parse a section:
// a heading line followed by all the blocks
// up to the next heading with the same or fewer markers.
func (p *Parser) parseSection(md *BlockMetadata) blockResult {
	line := md.BlockStart.TakeNormalizedLine()
	level := sectionLevel(line.Item.Data())
	if level == 0 {
		return blockResult{}
	}
	title := NewContent(line.Item.Discard(level).TakeWhitespace().After)
	NormalSubstitutions.Apply(title, p, nil)

	children, after, warnings := p.parseBlocksUntil(line.After, func(line Span) bool {
		n := sectionLevel(line.Data())
		return n > 0 && n <= level
	})
	b := &Block{
		kind:         SectionKind,
		level:        level,
		content:      title,
		children:     children,
		contentModel: CompoundModel,
	}
	if p.HasAttribute("sectids") {
		prefix, _ := p.Attribute("idprefix")
		sep, _ := p.Attribute("idseparator")
		b.id = SectionID(title.Rendered(), prefix, sep)
		b.generatedID = true
	}
	return blockResult{
		Item: MatchedItem[*Block]{
			Item:  b,
			After: after,
		},
		Matched:  true,
		Warnings: warnings,
	}
}

// SectionTitle returns the title of a section after substitutions.
func (b *Block) SectionTitle() *Content {
	if b.Kind() != SectionKind {
		return nil
	}
	return b.content
}

// sectionLevel returns the number of heading markers
// at the beginning of the line
// or zero if the line is not a section heading.
// A heading is one to six "=" (or "#") characters,
// at least one space, and a non-empty title.
func sectionLevel(line string) int {
	if line == "" || line[0] != '=' && line[0] != '#' {
		return 0
	}
	n := 1
	for n < len(line) && line[n] == line[0] {
		n++
	}
	if n > maxSectionLevel || n >= len(line) || !isSpaceOrTab(rune(line[n])) {
		return 0
	}
	if strings.TrimSpace(line[n:]) == "" {
		return 0
	}
	return n
}

// SectionID generates an element ID from a section title
// that has already been through substitutions.
// HTML tags and character references are dropped,
// the text is lowercased,
// runs of spaces, periods, and hyphens become the separator,
// and any other characters that are not word characters are removed.
func SectionID(title, prefix, separator string) string {
	title = cases.Lower(language.Und).String(title)
	sb := new(strings.Builder)
	sb.WriteString(prefix)
	pending := false
	wrote := false
	for i := 0; i < len(title); {
		switch c := title[i]; {
		case c == '<':
			if end := strings.IndexByte(title[i:], '>'); end >= 0 {
				i += end + 1
				continue
			}
		case c == '&':
			if end := charRefEnd(title[i:]); end > 0 {
				i += end
				continue
			}
		case c == ' ' || c == '.' || c == '-':
			pending = wrote
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(title[i:])
		i += size
		if !isWordChar(r) {
			continue
		}
		if pending {
			sb.WriteString(separator)
			pending = false
		}
		sb.WriteRune(r)
		wrote = true
	}
	return sb.String()
}

// charRefEnd returns the length of the character reference
// (like "&amp;" or "&#8212;") at the start of s
// or zero if s does not start with one.
func charRefEnd(s string) int {
	if !strings.HasPrefix(s, "&") {
		return 0
	}
	if n := charRefBodyEnd(s[1:]); n > 0 {
		return 1 + n
	}
	return 0
}

// charRefBodyEnd returns the length of the part of a character reference
// after the "&", including the ";",
// or zero if s does not start with one.
func charRefBodyEnd(s string) int {
	i := 0
	if strings.HasPrefix(s, "#") {
		i++
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			i++
		}
	}
	start := i
	for i < len(s) && i-start < 32 && (isASCIILetter(s[i]) || isASCIIDigit(s[i])) {
		i++
	}
	if i == start || i >= len(s) || s[i] != ';' {
		return 0
	}
	return i + 1
}
