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
)

// blockResult is the result of a block recognizer.
type blockResult = MatchAndWarnings[MatchedItem[*Block]]

// blockRecognizers is the list of block recognizers in priority order.
// The first to match wins.
// Recognizers may report warnings even when they do not match.
// The last recognizer matches any non-empty input.
// It is populated in init because sections and delimited blocks
// parse their bodies through the recognizers.
var blockRecognizers []func(*Parser, *BlockMetadata) blockResult

func init() {
	blockRecognizers = []func(*Parser, *BlockMetadata) blockResult{
		(*Parser).parseBreak,
		(*Parser).parseMediaMacro,
		(*Parser).parseAttributeEntry,
		(*Parser).parseSection,
		(*Parser).parseDelimitedBlock,
		(*Parser).parseSimpleBlock,
	}
}

// ParseBlock parses the block at the beginning of source,
// including any metadata lines that precede it.
// Leading blank lines are skipped.
// The remainder in the result has its leading blank lines discarded.
// ParseBlock only fails to match if source contains no block,
// possibly reporting a warning about dangling metadata.
//
// NUL and passthrough placeholder characters in source
// are replaced with U+FFFD as in [Parser.Parse],
// which shifts the byte offsets of spans that follow them.
func (p *Parser) ParseBlock(source Span) MatchAndWarnings[MatchedItem[*Block]] {
	source.data = sanitize(source.data)
	md, warnings := p.ParseBlockMetadata(source.DiscardEmptyLines())
	result := p.parseBlockBody(&md)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// parseBlockBody dispatches md.BlockStart to the block recognizers
// and attaches the metadata to the result.
func (p *Parser) parseBlockBody(md *BlockMetadata) blockResult {
	if md.BlockStart.IsEmpty() {
		if md.IsEmpty() {
			return blockResult{}
		}
		return blockResult{
			Warnings: []Warning{{
				Source: md.lines(),
				Type:   MissingBlockAfterTitleOrAttributeList,
			}},
		}
	}

	var warnings []Warning
	for _, recognize := range blockRecognizers {
		result := recognize(p, md)
		warnings = append(warnings, result.Warnings...)
		if !result.Matched {
			continue
		}
		b := result.Item.Item
		after := result.Item.After.DiscardEmptyLines()
		start := md.Source
		if md.IsEmpty() {
			start = md.BlockStart
		}
		b.source = start.TrimRemainder(after).TrimTrailingWhitespace()
		p.attachMetadata(b, md)
		tracer().Debugf("%d:%d: %v (%s)", b.source.Line(), b.source.Col(), b.kind, b.Context())
		return blockResult{
			Item: MatchedItem[*Block]{
				Item:  b,
				After: after,
			},
			Matched:  true,
			Warnings: warnings,
		}
	}
	// Unreachable for non-empty input: simple blocks always match.
	return blockResult{Warnings: warnings}
}

// attachMetadata copies the title, anchor, and attribute list onto b.
func (p *Parser) attachMetadata(b *Block, md *BlockMetadata) {
	if md.IsEmpty() {
		return
	}
	b.metadata = md.lines()
	b.attrlist = md.Attrlist
	if !md.Title.IsEmpty() {
		b.title = NewContent(md.Title)
		NormalSubstitutions.Apply(b.title, p, nil)
	}
	if !md.Anchor.IsEmpty() {
		b.anchor = md.Anchor
		b.anchorReftext = md.AnchorReftext
		b.hasAnchor = true
	}
	switch {
	case b.hasAnchor:
		b.id = b.anchor.Data()
		b.generatedID = false
	case b.attrlist.ID() != "":
		b.id = b.attrlist.ID()
		b.generatedID = false
	}
}

// parseBlocks parses all the blocks in source.
func (p *Parser) parseBlocks(source Span) ([]*Block, []Warning) {
	blocks, _, warnings := p.parseBlocksUntil(source, nil)
	return blocks, warnings
}

// parseBlocksUntil parses blocks from source until it reaches the end of input
// or a block whose first line (after its metadata) satisfies stop.
// after begins at the metadata of the block that stopped the parse.
// Document attribute entries apply to the blocks that follow them.
func (p *Parser) parseBlocksUntil(source Span, stop func(line Span) bool) (blocks []*Block, after Span, warnings []Warning) {
	for {
		source = source.DiscardEmptyLines()
		if source.IsEmpty() {
			return blocks, source, warnings
		}
		md, mdWarnings := p.ParseBlockMetadata(source)
		if stop != nil && !md.BlockStart.IsEmpty() && stop(md.BlockStart.TakeNormalizedLine().Item) {
			return blocks, source, warnings
		}
		warnings = append(warnings, mdWarnings...)
		if md.IsEmpty() && md.BlockStart.ByteOffset() > source.ByteOffset() {
			// Only comment lines.
			source = md.BlockStart
			continue
		}
		result := p.parseBlockBody(&md)
		warnings = append(warnings, result.Warnings...)
		if !result.Matched {
			source = md.BlockStart
			continue
		}
		b := result.Item.Item
		blocks = append(blocks, b)
		p = p.withAttributeEntry(b)
		source = result.Item.After
	}
}

// parseBreak attempts to parse a thematic or page break.
func (p *Parser) parseBreak(md *BlockMetadata) blockResult {
	line := md.BlockStart.TakeNormalizedLine()
	t := breakType(line.Item.Data())
	if t == 0 {
		return blockResult{}
	}
	return blockResult{
		Item: MatchedItem[*Block]{
			Item: &Block{
				kind:         BreakKind,
				breakType:    t,
				contentModel: EmptyModel,
			},
			After: line.After,
		},
		Matched: true,
	}
}

// breakType returns the type of break the line represents
// or zero if the line is not a break.
// Breaks are three or more single quotes (thematic),
// three or more less-than signs (page),
// or one of the Markdown-style rules "---", "***", "___"
// optionally with a consistent single run of spaces between characters.
func breakType(line string) BreakType {
	if len(line) < 3 {
		return 0
	}
	switch c := line[0]; c {
	case '\'', '<':
		if strings.Trim(line, string(c)) != "" {
			return 0
		}
		if c == '<' {
			return PageBreak
		}
		return ThematicBreak
	case '-', '*', '_':
		rest := line[1:]
		gap := len(rest) - len(strings.TrimLeft(rest, " "))
		want := string(c) + strings.Repeat(" ", gap) + string(c) + strings.Repeat(" ", gap) + string(c)
		if line == want {
			return ThematicBreak
		}
		return 0
	default:
		return 0
	}
}

// mediaTypes maps block macro names to media types.
var mediaTypes = map[string]MediaType{
	"image": ImageMedia,
	"video": VideoMedia,
	"audio": AudioMedia,
}

// parseMediaMacro attempts to parse an image, video, or audio block macro
// of the form "name::target[attrlist]".
// Macros with other names are not recognized
// and do not produce warnings.
// A single colon after "image" is an inline image, not a mistake.
func (p *Parser) parseMediaMacro(md *BlockMetadata) blockResult {
	line := md.BlockStart.TakeNormalizedLine()
	if data := line.Item.Data(); !strings.Contains(data, "::") && !strings.HasSuffix(data, "]") {
		return blockResult{}
	}
	name, ok := line.Item.TakeIdent()
	if !ok {
		return blockResult{}
	}
	mediaType := mediaTypes[name.Item.Data()]
	if mediaType == 0 {
		return blockResult{}
	}
	colons, ok := name.After.TakePrefix("::")
	if !ok {
		if !name.After.HasPrefix(":") || mediaType == ImageMedia {
			return blockResult{}
		}
		return blockResult{
			Warnings: []Warning{{
				Source: name.After,
				Type:   MacroMissingDoubleColon,
			}},
		}
	}
	target := colons.After.TakeWhile(func(c rune) bool { return c != '[' })
	open, ok := target.After.TakePrefix("[")
	if !ok {
		return blockResult{
			Warnings: []Warning{{
				Source: line.Item,
				Type:   MacroMissingAttributeList,
			}},
		}
	}
	if !open.After.HasSuffix("]") {
		// Unterminated attribute list or trailing text.
		return blockResult{}
	}
	if target.Item.IsEmpty() {
		return blockResult{
			Warnings: []Warning{{
				Source: target.Item,
				Type:   MediaMacroMissingTarget,
			}},
		}
	}
	attrlist, warnings := parseAttrlist(open.After.Slice(0, open.After.Len()-1), p)
	return blockResult{
		Item: MatchedItem[*Block]{
			Item: &Block{
				kind:          MediaKind,
				mediaType:     mediaType,
				target:        target.Item,
				macroAttrlist: attrlist,
				contentModel:  EmptyModel,
			},
			After: line.After,
		},
		Matched:  true,
		Warnings: warnings,
	}
}

// isMediaMacro reports whether the line is a well-formed media block macro.
func isMediaMacro(line Span) bool {
	result := (*Parser)(nil).parseMediaMacro(&BlockMetadata{BlockStart: line})
	return result.Matched
}

// parseAttributeEntry attempts to parse a document attribute entry:
// ":name: value", ":name!:", or ":!name:".
func (p *Parser) parseAttributeEntry(md *BlockMetadata) blockResult {
	line := md.BlockStart.TakeNormalizedLine()
	open, ok := line.Item.TakePrefix(":")
	if !ok {
		return blockResult{}
	}
	unset, hasBang := open.After.TakePrefix("!")
	name, ok := unset.After.TakeAttributeName()
	if !ok {
		return blockResult{}
	}
	rest := name.After
	if !hasBang {
		var bang MatchedItem[Span]
		bang, hasBang = rest.TakePrefix("!")
		rest = bang.After
	}
	closer, ok := rest.TakePrefix(":")
	if !ok {
		return blockResult{}
	}
	value := closer.After
	if !value.IsEmpty() && !strings.HasPrefix(value.Data(), " ") && !strings.HasPrefix(value.Data(), "\t") {
		return blockResult{}
	}
	b := &Block{
		kind:         DocumentAttributeKind,
		attrName:     foldName(name.Item.Data()),
		attrUnset:    hasBang,
		contentModel: EmptyModel,
	}
	if !hasBang {
		b.attrValue = NewContent(value.Trim())
		headerSubstitutions.Apply(b.attrValue, p, nil)
	}
	return blockResult{
		Item: MatchedItem[*Block]{
			Item:  b,
			After: line.After,
		},
		Matched: true,
	}
}

// parseSimpleBlock parses a paragraph:
// a run of non-blank lines that ends at a blank line
// or a line that would start a higher-priority block.
// An indented first line makes a literal paragraph.
func (p *Parser) parseSimpleBlock(md *BlockMetadata) blockResult {
	first := md.BlockStart.TakeLine()
	end := first.After
	for !end.IsEmpty() {
		line := end.TakeNormalizedLine()
		if isBlankLine(line.Item.Data()) || interruptsParagraph(line.Item) {
			break
		}
		end = line.After
	}
	source := md.BlockStart.TrimRemainder(end).TrimTrailingWhitespace()

	b := &Block{
		kind:         SimpleKind,
		contentModel: SimpleModel,
	}
	style := md.Attrlist.BlockStyle()
	if style == "" && (strings.HasPrefix(source.Data(), " ") || strings.HasPrefix(source.Data(), "\t")) {
		b.context = "literal"
		b.contentModel = VerbatimModel
	} else if ctx, model, ok := resolveStyle("paragraph", style); ok {
		b.context = ctx
		b.contentModel = model
	}

	lines := splitLines(source)
	if b.context == "literal" {
		lines = trimCommonIndent(lines)
	}
	b.content = joinLines(source, lines)
	p.substitutionsFor(b.contentModel, md.Attrlist).Apply(b.content, p, md.Attrlist)
	return blockResult{
		Item: MatchedItem[*Block]{
			Item:  b,
			After: end,
		},
		Matched: true,
	}
}

// interruptsParagraph reports whether the line ends a paragraph
// because it starts a block of higher priority.
func interruptsParagraph(line Span) bool {
	data := line.Data()
	return breakType(data) != 0 ||
		isMediaMacro(line) ||
		sectionLevel(data) > 0 ||
		isDelimiter(data)
}

// substitutionsFor returns the substitutions for text in a block
// with the given content model and attribute list.
func (p *Parser) substitutionsFor(model ContentModel, attrlist *Attrlist) SubstitutionGroup {
	group := model.substitutionGroup()
	if attr, ok := attrlist.NamedAttribute("subs"); ok {
		group = ParseSubstitutionGroup(attr.Value(), group)
	}
	return group
}

// splitLines splits source into lines without their terminators.
func splitLines(source Span) []Span {
	var lines []Span
	for rest := source; !rest.IsEmpty(); {
		line := rest.TakeLine()
		lines = append(lines, line.Item)
		rest = line.After
	}
	return lines
}

// joinLines returns a Content whose original text is source
// and whose text is lines joined by newlines with trailing whitespace removed.
func joinLines(source Span, lines []Span) *Content {
	sb := new(strings.Builder)
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line.TrimTrailingWhitespace().Data())
	}
	return &Content{
		original: source,
		rendered: sb.String(),
	}
}

// trimCommonIndent removes the longest run of leading whitespace
// shared by all non-blank lines.
func trimCommonIndent(lines []Span) []Span {
	indent := -1
	for _, line := range lines {
		if isBlankLine(line.Data()) {
			continue
		}
		n := line.TakeWhitespace().Item.Len()
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return lines
	}
	trimmed := make([]Span, len(lines))
	for i, line := range lines {
		trimmed[i] = line.Discard(indent)
	}
	return trimmed
}
