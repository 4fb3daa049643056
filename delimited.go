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

// minFenceLength is the minimum number of repeated characters in a fence
// (other than the open block's "--").
const minFenceLength = 4

// openBlockFence is the fixed delimiter of an open block.
const openBlockFence = "--"

// fenceContexts maps fence characters to the context of the block they delimit.
var fenceContexts = map[byte]string{
	'/': "comment",
	'=': "example",
	'-': "listing",
	'.': "literal",
	'*': "sidebar",
	'+': "pass",
	'_': "quote",
}

// contextModels maps the contexts of delimited blocks to their content models.
var contextModels = map[string]ContentModel{
	"comment": RawModel,
	"example": CompoundModel,
	"listing": VerbatimModel,
	"literal": VerbatimModel,
	"sidebar": CompoundModel,
	"pass":    RawModel,
	"quote":   CompoundModel,
	"open":    CompoundModel,
}

// delimitedContext returns the context of the delimited block
// that the fence line opens
// or the empty string if the line is not a valid fence.
// The line must not have trailing whitespace.
func delimitedContext(line string) string {
	if line == openBlockFence {
		return "open"
	}
	if len(line) < minFenceLength {
		return ""
	}
	for i := 1; i < len(line); i++ {
		if line[i] != line[0] {
			return ""
		}
	}
	return fenceContexts[line[0]]
}

// isDelimiter reports whether the line is a valid fence.
func isDelimiter(line string) bool {
	return delimitedContext(line) != ""
}

// parseDelimitedBlock attempts to parse a delimited block.
// The block ends at the first line identical to its opening fence,
// so a nested block must use a fence of a different length
// (or a different character).
// Compound blocks parse their interior as blocks;
// raw blocks keep their interior lines as-is.
// An opening fence without a closing fence does not match
// and produces an [UnterminatedDelimitedBlock] warning.
func (p *Parser) parseDelimitedBlock(md *BlockMetadata) blockResult {
	open := md.BlockStart.TakeNormalizedLine()
	fence := open.Item
	rawContext := delimitedContext(fence.Data())
	if rawContext == "" {
		return blockResult{}
	}

	var interior, after Span
	found := false
	for rest := open.After; !rest.IsEmpty(); {
		line := rest.TakeNormalizedLine()
		if line.Item.Data() == fence.Data() {
			interior = open.After.TrimRemainder(rest)
			after = line.After
			found = true
			break
		}
		rest = line.After
	}
	if !found {
		tracer().Debugf("%d:%d: unterminated %s block", fence.Line(), fence.Col(), rawContext)
		return blockResult{
			Warnings: []Warning{{
				Source: fence,
				Type:   UnterminatedDelimitedBlock,
			}},
		}
	}

	b := &Block{
		delimiter:    fence,
		contentModel: contextModels[rawContext],
	}
	if context, model, ok := resolveStyle(rawContext, md.Attrlist.BlockStyle()); ok {
		b.context = context
		b.contentModel = model
	}
	var warnings []Warning
	if b.contentModel == CompoundModel {
		b.kind = CompoundDelimitedKind
		b.children, warnings = p.parseBlocks(interior)
	} else {
		b.kind = RawDelimitedKind
		b.lines = splitLines(interior)
		b.content = joinLines(interior.TrimTrailingWhitespace(), trimBlankLines(b.lines))
		p.substitutionsFor(b.contentModel, md.Attrlist).Apply(b.content, p, md.Attrlist)
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

// trimBlankLines removes leading and trailing blank lines.
func trimBlankLines(lines []Span) []Span {
	for len(lines) > 0 && isBlankLine(lines[0].Data()) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isBlankLine(lines[len(lines)-1].Data()) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type styleResolution struct {
	context string
	model   ContentModel
}

// blockStyles maps raw contexts to the block styles they accept.
var blockStyles = map[string]map[string]styleResolution{
	"paragraph": withAdmonitions(SimpleModel, map[string]styleResolution{
		"normal":    {"paragraph", SimpleModel},
		"literal":   {"literal", VerbatimModel},
		"listing":   {"listing", VerbatimModel},
		"source":    {"listing", VerbatimModel},
		"verse":     {"verse", SimpleModel},
		"quote":     {"quote", SimpleModel},
		"pass":      {"pass", RawModel},
		"stem":      {"stem", RawModel},
		"latexmath": {"stem", RawModel},
		"asciimath": {"stem", RawModel},
		"sidebar":   {"sidebar", SimpleModel},
		"example":   {"example", SimpleModel},
		"abstract":  {"abstract", SimpleModel},
		"partintro": {"partintro", SimpleModel},
		"comment":   {"comment", RawModel},
	}),
	"open": withAdmonitions(CompoundModel, map[string]styleResolution{
		"abstract":  {"abstract", CompoundModel},
		"partintro": {"partintro", CompoundModel},
		"comment":   {"comment", RawModel},
		"example":   {"example", CompoundModel},
		"sidebar":   {"sidebar", CompoundModel},
		"quote":     {"quote", CompoundModel},
		"verse":     {"verse", SimpleModel},
		"literal":   {"literal", VerbatimModel},
		"listing":   {"listing", VerbatimModel},
		"source":    {"listing", VerbatimModel},
		"pass":      {"pass", RawModel},
		"stem":      {"stem", RawModel},
		"latexmath": {"stem", RawModel},
		"asciimath": {"stem", RawModel},
	}),
	"example": withAdmonitions(CompoundModel, nil),
	"quote": {
		"verse": {"verse", SimpleModel},
	},
	"listing": {
		"source": {"listing", VerbatimModel},
	},
	"literal": {
		"source": {"listing", VerbatimModel},
	},
	"pass": {
		"stem":      {"stem", RawModel},
		"latexmath": {"stem", RawModel},
		"asciimath": {"stem", RawModel},
	},
}

// admonitionStyles is the set of admonition block styles.
var admonitionStyles = []string{"NOTE", "TIP", "IMPORTANT", "CAUTION", "WARNING"}

func withAdmonitions(model ContentModel, m map[string]styleResolution) map[string]styleResolution {
	if m == nil {
		m = make(map[string]styleResolution)
	}
	for _, name := range admonitionStyles {
		m[name] = styleResolution{"admonition", model}
	}
	return m
}

// resolveStyle returns the context and content model
// of a block with the given raw context and block style.
// ok is false if the style does not apply to the raw context.
func resolveStyle(rawContext, style string) (context string, model ContentModel, ok bool) {
	if style == "" {
		return "", 0, false
	}
	res, ok := blockStyles[rawContext][style]
	if !ok {
		return "", 0, false
	}
	return res.context, res.model, true
}
