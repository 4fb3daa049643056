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

import "fmt"

// A Block is a structural element in an AsciiDoc document.
// Which accessors return meaningful values depends on the block's [BlockKind];
// the rest return zero values.
// All accessors are safe to call on a nil *Block.
type Block struct {
	kind   BlockKind
	source Span

	// Shared block metadata.
	metadata      Span
	title         *Content
	anchor        Span
	anchorReftext Span
	hasAnchor     bool
	attrlist      *Attrlist

	context      string
	contentModel ContentModel
	id           string
	generatedID  bool

	// Kind-specific data.
	content       *Content
	delimiter     Span
	lines         []Span
	children      []*Block
	level         int
	breakType     BreakType
	mediaType     MediaType
	target        Span
	macroAttrlist *Attrlist
	attrName      string
	attrValue     *Content
	attrUnset     bool
}

// Kind returns the type of block
// or zero if the block is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// Source returns the span of source text consumed to produce the block,
// including its metadata lines and excluding trailing blank lines.
func (b *Block) Source() Span {
	if b == nil {
		return Span{}
	}
	return b.source
}

// MetadataSource returns the span of the title, anchor, attribute list,
// and comment lines that precede the block's body.
// It is empty if the block has no metadata.
func (b *Block) MetadataSource() Span {
	if b == nil {
		return Span{}
	}
	return b.metadata
}

// Title returns the block's title (from a ".Title" line)
// after substitutions, or nil if the block has no title.
func (b *Block) Title() *Content {
	if b == nil {
		return nil
	}
	return b.title
}

// Anchor returns the ID given by a "[[id]]" line preceding the block.
func (b *Block) Anchor() (Span, bool) {
	if b == nil {
		return Span{}, false
	}
	return b.anchor, b.hasAnchor
}

// AnchorReftext returns the reference text given by a "[[id,reftext]]" line.
func (b *Block) AnchorReftext() Span {
	if b == nil {
		return Span{}
	}
	return b.anchorReftext
}

// Attrlist returns the block attribute list given by a "[...]" line
// preceding the block, or nil if there was none.
func (b *Block) Attrlist() *Attrlist {
	if b == nil {
		return nil
	}
	return b.attrlist
}

// ID returns the block's ID:
// an anchor, an id from the attribute list,
// or an ID generated from a section title.
func (b *Block) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// RawContext returns the context name implied by the block's syntax alone,
// such as "paragraph", "example", "listing", "section", or "thematic_break".
func (b *Block) RawContext() string {
	if b == nil {
		return ""
	}
	switch b.kind {
	case SimpleKind:
		return "paragraph"
	case MediaKind:
		return b.mediaType.String()
	case BreakKind:
		return b.breakType.String()
	case RawDelimitedKind, CompoundDelimitedKind:
		return delimitedContext(b.delimiter.Data())
	case SectionKind:
		return "section"
	case DocumentAttributeKind:
		return "attribute"
	default:
		return ""
	}
}

// Context returns the block's context name after applying its block style.
// For example, a paragraph with a [source] style has the context "listing"
// and an example block with a [NOTE] style has the context "admonition".
func (b *Block) Context() string {
	if b == nil {
		return ""
	}
	if b.context != "" {
		return b.context
	}
	return b.RawContext()
}

// Style returns the block style named in the block's attribute list.
func (b *Block) Style() string {
	return b.Attrlist().BlockStyle()
}

// ContentModel returns how the block's content is structured,
// which in turn determines which substitutions apply to it.
func (b *Block) ContentModel() ContentModel {
	if b == nil {
		return 0
	}
	return b.contentModel
}

// Content returns the text of a paragraph, raw delimited block,
// or the title of a section after substitutions.
func (b *Block) Content() *Content {
	if b == nil {
		return nil
	}
	return b.content
}

// Lines returns the lines inside a raw delimited block
// exactly as they appear in the source.
func (b *Block) Lines() []Span {
	if b == nil {
		return nil
	}
	return b.lines
}

// Delimiter returns the opening fence of a delimited block.
func (b *Block) Delimiter() Span {
	if b == nil {
		return Span{}
	}
	return b.delimiter
}

// ChildCount returns the number of nested blocks
// in a compound delimited block or section.
func (b *Block) ChildCount() int {
	if b == nil {
		return 0
	}
	return len(b.children)
}

// Child returns the i'th nested block.
func (b *Block) Child(i int) *Block {
	return b.children[i]
}

// Children returns the nested blocks in source order.
func (b *Block) Children() []*Block {
	if b == nil {
		return nil
	}
	return b.children
}

// Level returns the number of markers in a section heading,
// or zero if the block is not a section.
func (b *Block) Level() int {
	if b.Kind() != SectionKind {
		return 0
	}
	return b.level
}

// BreakType returns the type of a break block.
func (b *Block) BreakType() BreakType {
	if b == nil {
		return 0
	}
	return b.breakType
}

// MediaType returns the type of a media block macro.
func (b *Block) MediaType() MediaType {
	if b == nil {
		return 0
	}
	return b.mediaType
}

// Target returns the target of a media block macro.
func (b *Block) Target() Span {
	if b == nil {
		return Span{}
	}
	return b.target
}

// MacroAttrlist returns the attribute list inside a block macro's brackets.
func (b *Block) MacroAttrlist() *Attrlist {
	if b == nil {
		return nil
	}
	return b.macroAttrlist
}

// AttributeName returns the name set or unset by a document attribute entry.
func (b *Block) AttributeName() string {
	if b == nil {
		return ""
	}
	return b.attrName
}

// AttributeValue returns the value assigned by a document attribute entry,
// or nil if the entry unsets the attribute.
func (b *Block) AttributeValue() *Content {
	if b == nil || b.attrUnset {
		return nil
	}
	return b.attrValue
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	// SimpleKind is a paragraph-like block of inline text.
	SimpleKind BlockKind = 1 + iota
	// MediaKind is an image, video, or audio block macro.
	MediaKind
	// BreakKind is a thematic or page break.
	BreakKind
	// RawDelimitedKind is a fenced block whose lines are kept verbatim.
	RawDelimitedKind
	// CompoundDelimitedKind is a fenced block containing nested blocks.
	CompoundDelimitedKind
	// SectionKind is a heading and the blocks that belong to it.
	SectionKind
	// DocumentAttributeKind is an attribute entry line such as ":name: value".
	DocumentAttributeKind
)

func (kind BlockKind) String() string {
	switch kind {
	case SimpleKind:
		return "SimpleKind"
	case MediaKind:
		return "MediaKind"
	case BreakKind:
		return "BreakKind"
	case RawDelimitedKind:
		return "RawDelimitedKind"
	case CompoundDelimitedKind:
		return "CompoundDelimitedKind"
	case SectionKind:
		return "SectionKind"
	case DocumentAttributeKind:
		return "DocumentAttributeKind"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint16(kind))
	}
}

// ContentModel is an enumeration of the ways a block's content is structured.
type ContentModel uint8

const (
	// EmptyModel blocks have no content.
	EmptyModel ContentModel = 1 + iota
	// SimpleModel blocks contain inline text with normal substitutions.
	SimpleModel
	// CompoundModel blocks contain other blocks.
	CompoundModel
	// VerbatimModel blocks contain text with only special characters escaped.
	VerbatimModel
	// RawModel blocks contain text passed through unmodified.
	RawModel
	// TableModel blocks contain table cells.
	TableModel
)

func (m ContentModel) String() string {
	switch m {
	case EmptyModel:
		return "empty"
	case SimpleModel:
		return "simple"
	case CompoundModel:
		return "compound"
	case VerbatimModel:
		return "verbatim"
	case RawModel:
		return "raw"
	case TableModel:
		return "table"
	default:
		return fmt.Sprintf("ContentModel(%d)", uint8(m))
	}
}

// substitutionGroup returns the default substitutions for text in the model.
func (m ContentModel) substitutionGroup() SubstitutionGroup {
	switch m {
	case SimpleModel:
		return NormalSubstitutions
	case VerbatimModel:
		return VerbatimSubstitutions
	default:
		return NoSubstitutions
	}
}

// BreakType is an enumeration of break blocks.
type BreakType uint8

const (
	// ThematicBreak is a horizontal rule: ''' or a Markdown-style ---.
	ThematicBreak BreakType = 1 + iota
	// PageBreak is a page break: <<<.
	PageBreak
)

// String returns the break's context name.
func (t BreakType) String() string {
	switch t {
	case ThematicBreak:
		return "thematic_break"
	case PageBreak:
		return "page_break"
	default:
		return fmt.Sprintf("BreakType(%d)", uint8(t))
	}
}

// MediaType is an enumeration of media block macros.
type MediaType uint8

const (
	ImageMedia MediaType = 1 + iota
	VideoMedia
	AudioMedia
)

// String returns the media macro's name, which is also its context name.
func (t MediaType) String() string {
	switch t {
	case ImageMedia:
		return "image"
	case VideoMedia:
		return "video"
	case AudioMedia:
		return "audio"
	default:
		return fmt.Sprintf("MediaType(%d)", uint8(t))
	}
}
