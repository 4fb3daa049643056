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
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// An HTMLRenderer converts parsed AsciiDoc blocks into HTML
// in the style of Asciidoctor's HTML5 converter.
//
// # Security considerations
//
// AsciiDoc permits raw HTML in pass blocks and passthroughs,
// which can introduce [Cross-Site Scripting (XSS)] vulnerabilities
// when used with untrusted inputs.
// The resulting HTML should be sent through an HTML sanitizer.
// Set IgnoreRaw to drop pass blocks,
// or use FilterTag to escape some tags in them.
//
// [Cross-Site Scripting (XSS)]: https://owasp.org/www-community/attacks/xss/
type HTMLRenderer struct {
	// If IgnoreRaw is true, the renderer skips pass blocks.
	IgnoreRaw bool
	// FilterTag is a predicate function
	// that reports whether an element in a pass block
	// with the given lowercased tag name
	// should have its leading angle bracket escaped.
	// If FilterTag is nil, then no filtering will occur.
	//
	// FilterTag functions must not modify the byte slice
	// nor retain the slice after the function returns.
	FilterTag func(tag []byte) bool
}

// RenderHTML writes the document's blocks to the given writer as HTML
// using the default options for [HTMLRenderer].
// It will return the first error encountered, if any.
func RenderHTML(w io.Writer, doc *Document) error {
	return new(HTMLRenderer).Render(w, doc.Blocks)
}

// Render writes the given sequence of parsed blocks
// to the given writer as HTML.
// Blocks that produce no output (like comments) are skipped.
// It will return the first error encountered, if any.
func (r *HTMLRenderer) Render(w io.Writer, blocks []*Block) error {
	var buf []byte
	first := true
	for _, b := range blocks {
		buf = buf[:0]
		if !first {
			buf = append(buf, '\n')
		}
		n := len(buf)
		buf = r.AppendBlock(buf, b)
		if len(buf) == n {
			continue
		}
		first = false
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("render asciidoc to html: %w", err)
		}
	}
	return nil
}

// AppendBlock appends the rendered HTML of a parsed block to dst
// and returns the resulting byte slice.
func (r *HTMLRenderer) AppendBlock(dst []byte, block *Block) []byte {
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
	}
	state.block(block)
	return state.dst
}

type renderState struct {
	*HTMLRenderer
	dst      []byte
	lowerBuf []byte
}

func (r *renderState) openTagAttr(name atom.Atom) {
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name.String()...)
}

func (r *renderState) openTag(name atom.Atom) {
	r.openTagAttr(name)
	r.dst = append(r.dst, '>')
}

func (r *renderState) closeTag(name atom.Atom) {
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name.String()...)
	r.dst = append(r.dst, '>')
}

// attr appends an attribute whose value is plain text.
func (r *renderState) attr(name, value string) {
	r.dst = append(r.dst, ' ')
	r.dst = append(r.dst, name...)
	r.dst = append(r.dst, `="`...)
	r.dst = append(r.dst, html.EscapeString(value)...)
	r.dst = append(r.dst, '"')
}

// openDiv starts the wrapper element of a block,
// including the block's ID and roles.
func (r *renderState) openDiv(b *Block, class string) {
	r.openTagAttr(atom.Div)
	if id := b.ID(); id != "" {
		r.attr("id", id)
	}
	r.attr("class", strings.Join(append([]string{class}, b.Attrlist().Roles()...), " "))
	r.dst = append(r.dst, ">\n"...)
}

func (r *renderState) closeDiv() {
	r.closeTag(atom.Div)
	r.dst = append(r.dst, '\n')
}

func (r *renderState) title(b *Block) {
	if t := b.Title(); !t.IsEmpty() {
		r.dst = append(r.dst, `<div class="title">`...)
		r.dst = append(r.dst, t.Rendered()...)
		r.dst = append(r.dst, "</div>\n"...)
	}
}

func (r *renderState) block(b *Block) {
	switch b.Kind() {
	case DocumentAttributeKind:
		return
	case SectionKind:
		r.section(b)
		return
	case BreakKind:
		if b.BreakType() == PageBreak {
			r.dst = append(r.dst, `<div style="page-break-after: always;"></div>`...)
		} else {
			r.openTag(atom.Hr)
		}
		r.dst = append(r.dst, '\n')
		return
	case MediaKind:
		r.media(b)
		return
	}

	switch ctx := b.Context(); ctx {
	case "comment":
	case "paragraph":
		r.openDiv(b, "paragraph")
		r.title(b)
		r.openTag(atom.P)
		r.dst = append(r.dst, b.Content().Rendered()...)
		r.closeTag(atom.P)
		r.dst = append(r.dst, '\n')
		r.closeDiv()
	case "literal":
		r.openDiv(b, "literalblock")
		r.title(b)
		r.dst = append(r.dst, `<div class="content">`+"\n"...)
		r.openTag(atom.Pre)
		r.dst = append(r.dst, b.Content().Rendered()...)
		r.closeTag(atom.Pre)
		r.dst = append(r.dst, '\n')
		r.closeDiv()
		r.closeDiv()
	case "listing":
		r.listing(b)
	case "pass":
		if !r.IgnoreRaw {
			r.raw(b.Content().Rendered())
			r.dst = append(r.dst, '\n')
		}
	case "stem":
		r.openDiv(b, "stemblock")
		r.title(b)
		r.dst = append(r.dst, `<div class="content">`+"\n"...)
		r.dst = append(r.dst, `\[`...)
		r.dst = append(r.dst, b.Content().Rendered()...)
		r.dst = append(r.dst, `\]`+"\n"...)
		r.closeDiv()
		r.closeDiv()
	case "example", "sidebar", "open", "abstract", "partintro":
		class := ctx + "block"
		switch ctx {
		case "abstract":
			class = "quoteblock abstract"
		case "partintro":
			class = "openblock partintro"
		}
		r.openDiv(b, class)
		if ctx != "sidebar" {
			r.title(b)
		}
		r.dst = append(r.dst, `<div class="content">`+"\n"...)
		if ctx == "sidebar" {
			r.title(b)
		}
		r.body(b)
		r.closeDiv()
		r.closeDiv()
	case "quote":
		r.openDiv(b, "quoteblock")
		r.title(b)
		r.openTag(atom.Blockquote)
		r.dst = append(r.dst, '\n')
		r.body(b)
		r.closeTag(atom.Blockquote)
		r.dst = append(r.dst, '\n')
		r.attribution(b)
		r.closeDiv()
	case "verse":
		r.openDiv(b, "verseblock")
		r.title(b)
		r.dst = append(r.dst, `<pre class="content">`...)
		r.dst = append(r.dst, b.Content().Rendered()...)
		r.closeTag(atom.Pre)
		r.dst = append(r.dst, '\n')
		r.attribution(b)
		r.closeDiv()
	case "admonition":
		name := strings.ToLower(b.Style())
		r.openDiv(b, "admonitionblock "+name)
		r.dst = append(r.dst, "<table>\n<tr>\n"...)
		r.dst = append(r.dst, `<td class="icon">`+"\n"+`<div class="title">`...)
		if name != "" {
			r.dst = append(r.dst, strings.ToUpper(name[:1])...)
			r.dst = append(r.dst, name[1:]...)
		}
		r.dst = append(r.dst, "</div>\n</td>\n"...)
		r.dst = append(r.dst, `<td class="content">`+"\n"...)
		r.title(b)
		r.body(b)
		r.dst = append(r.dst, "</td>\n</tr>\n</table>\n"...)
		r.closeDiv()
	default:
		// Unknown contexts only happen with a zero Block.
		r.body(b)
	}
}

// body appends a block's children or, for a block without children,
// its rendered content.
func (r *renderState) body(b *Block) {
	if b.Kind() == CompoundDelimitedKind {
		for _, c := range b.Children() {
			r.block(c)
		}
		return
	}
	if c := b.Content(); !c.IsEmpty() {
		r.dst = append(r.dst, c.Rendered()...)
		r.dst = append(r.dst, '\n')
	}
}

func (r *renderState) section(b *Block) {
	level := b.Level()
	heading := headingTags[level-1]
	r.openTagAttr(atom.Div)
	r.attr("class", "sect"+strconv.Itoa(level-1))
	r.dst = append(r.dst, ">\n"...)
	r.openTagAttr(heading)
	if id := b.ID(); id != "" {
		r.attr("id", id)
	}
	r.dst = append(r.dst, '>')
	r.dst = append(r.dst, b.SectionTitle().Rendered()...)
	r.closeTag(heading)
	r.dst = append(r.dst, '\n')
	if level == 2 {
		r.dst = append(r.dst, `<div class="sectionbody">`+"\n"...)
	}
	for _, c := range b.Children() {
		r.block(c)
	}
	if level == 2 {
		r.closeDiv()
	}
	r.closeDiv()
}

var headingTags = [maxSectionLevel]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func (r *renderState) listing(b *Block) {
	r.openDiv(b, "listingblock")
	r.title(b)
	r.dst = append(r.dst, `<div class="content">`+"\n"...)
	if b.Style() != "source" {
		r.openTag(atom.Pre)
		r.dst = append(r.dst, b.Content().Rendered()...)
		r.closeTag(atom.Pre)
	} else {
		r.openTagAttr(atom.Pre)
		r.attr("class", "highlight")
		r.dst = append(r.dst, '>')
		r.openTagAttr(atom.Code)
		if lang, ok := b.Attrlist().NthOrNamed(2, "language"); ok && lang.Value() != "" {
			r.attr("class", "language-"+lang.Value())
			r.attr("data-lang", lang.Value())
		}
		r.dst = append(r.dst, '>')
		r.dst = append(r.dst, b.Content().Rendered()...)
		r.closeTag(atom.Code)
		r.closeTag(atom.Pre)
	}
	r.dst = append(r.dst, '\n')
	r.closeDiv()
	r.closeDiv()
}

// attribution appends the author and citation
// given by the second and third positional attributes of a quote or verse.
func (r *renderState) attribution(b *Block) {
	al := b.Attrlist()
	author, hasAuthor := al.NthOrNamed(2, "attribution")
	cite, hasCite := al.NthOrNamed(3, "citetitle")
	if !hasAuthor && !hasCite {
		return
	}
	r.dst = append(r.dst, `<div class="attribution">`+"\n"...)
	if hasAuthor {
		r.dst = append(r.dst, "&#8212; "...)
		r.dst = append(r.dst, html.EscapeString(author.Value())...)
		if hasCite {
			r.dst = append(r.dst, "<br>\n"...)
		}
	}
	if hasCite {
		r.openTag(atom.Cite)
		r.dst = append(r.dst, html.EscapeString(cite.Value())...)
		r.closeTag(atom.Cite)
	}
	r.dst = append(r.dst, '\n')
	r.closeDiv()
}

func (r *renderState) media(b *Block) {
	al := b.MacroAttrlist()
	target := NormalizeURI(b.Target().Data())
	switch b.MediaType() {
	case ImageMedia:
		r.openDiv(b, "imageblock")
		r.dst = append(r.dst, `<div class="content">`+"\n"...)
		r.openTagAttr(atom.Img)
		r.attr("src", target)
		alt := defaultAltText(b.Target().Data())
		if attr, ok := al.NthOrNamed(1, "alt"); ok && attr.Value() != "" {
			alt = attr.Value()
		}
		r.attr("alt", alt)
		if attr, ok := al.NthOrNamed(2, "width"); ok && attr.Value() != "" {
			r.attr("width", attr.Value())
		}
		if attr, ok := al.NthOrNamed(3, "height"); ok && attr.Value() != "" {
			r.attr("height", attr.Value())
		}
		r.dst = append(r.dst, ">\n"...)
		r.closeDiv()
		r.title(b)
		r.closeDiv()
	case VideoMedia, AudioMedia:
		tag, class := atom.Video, "videoblock"
		if b.MediaType() == AudioMedia {
			tag, class = atom.Audio, "audioblock"
		}
		r.openDiv(b, class)
		r.title(b)
		r.dst = append(r.dst, `<div class="content">`+"\n"...)
		r.openTagAttr(tag)
		r.attr("src", target)
		if tag == atom.Video {
			if attr, ok := al.NthOrNamed(2, "width"); ok && attr.Value() != "" {
				r.attr("width", attr.Value())
			}
			if attr, ok := al.NthOrNamed(3, "height"); ok && attr.Value() != "" {
				r.attr("height", attr.Value())
			}
		}
		for _, opt := range []string{"autoplay", "loop", "muted"} {
			if al.HasOption(opt) {
				r.dst = append(r.dst, ' ')
				r.dst = append(r.dst, opt...)
			}
		}
		r.dst = append(r.dst, " controls>"...)
		r.dst = append(r.dst, "Your browser does not support the "...)
		r.dst = append(r.dst, tag.String()...)
		r.dst = append(r.dst, " tag."...)
		r.closeTag(tag)
		r.dst = append(r.dst, '\n')
		r.closeDiv()
		r.closeDiv()
	}
}

// raw appends the content of a pass block,
// escaping tags selected by FilterTag.
func (r *renderState) raw(rawHTML string) {
	if r.FilterTag == nil {
		r.dst = append(r.dst, rawHTML...)
		return
	}
	r.filterRaw([]byte(rawHTML))
}

const (
	htmlCommentPrefix = "<!--"
	htmlCommentSuffix = "-->"

	processingInstructionPrefix = "<?"
	processingInstructionSuffix = "?>"

	cdataPrefix = "<![CDATA["
	cdataSuffix = "]]>"
)

// filterRaw escapes the tags in rawHTML that FilterTag reports,
// like the GitHub Flavored Markdown [tagfilter extension].
//
// It cannot use a conventional HTML parser,
// since a pass block may contain incomplete HTML.
//
// [tagfilter extension]: https://github.github.com/gfm/#disallowed-raw-html-extension-
func (r *renderState) filterRaw(rawHTML []byte) {
	const (
		copyState = iota
		commentState
		piState
		declState
		cdataState
	)
	state := copyState
	copyStart := 0
	for i := 0; i < len(rawHTML); {
		switch state {
		case copyState:
			if rawHTML[i] != '<' {
				i++
				break
			}
			rest := rawHTML[i:]
			switch {
			case bytes.HasPrefix(rest, []byte(cdataPrefix)):
				state = cdataState
				i += len(cdataPrefix)
			case bytes.HasPrefix(rest, []byte(htmlCommentPrefix)):
				state = commentState
				i += len(htmlCommentPrefix)
			case bytes.HasPrefix(rest, []byte(processingInstructionPrefix)):
				state = piState
				i += len(processingInstructionPrefix)
			case len(rest) >= 3 && rest[1] == '!' && isASCIILetter(rest[2]):
				state = declState
				i += len("<!x")
			default:
				tagNameStart := i + 1
				if tagNameStart < len(rawHTML) && rawHTML[tagNameStart] == '/' {
					tagNameStart++
				}
				tagEnd := len(rawHTML)
				if j := bytes.IndexByte(rawHTML[tagNameStart:], '>'); j >= 0 {
					tagEnd = tagNameStart + j + len(">")
				}
				tagNameEnd := tagNameStart + htmlTagNameEnd(rawHTML[tagNameStart:tagEnd])
				tagName := maybeLower(rawHTML[tagNameStart:tagNameEnd], &r.lowerBuf)
				if tagNameEnd > tagNameStart && r.FilterTag(tagName) {
					r.dst = append(r.dst, rawHTML[copyStart:i]...)
					r.dst = append(r.dst, "&lt;"...)
					r.dst = append(r.dst, rawHTML[i+1:tagEnd]...)
					copyStart = tagEnd
				}
				i = tagEnd
			}
		case commentState:
			if bytes.HasPrefix(rawHTML[i:], []byte(htmlCommentSuffix)) {
				state = copyState
				i += len(htmlCommentSuffix)
			} else {
				i++
			}
		case piState:
			if bytes.HasPrefix(rawHTML[i:], []byte(processingInstructionSuffix)) {
				state = copyState
				i += len(processingInstructionSuffix)
			} else {
				i++
			}
		case declState:
			if rawHTML[i] == '>' {
				state = copyState
			}
			i++
		case cdataState:
			if bytes.HasPrefix(rawHTML[i:], []byte(cdataSuffix)) {
				state = copyState
				i += len(cdataSuffix)
			} else {
				i++
			}
		default:
			panic("unreachable")
		}
	}

	r.dst = append(r.dst, rawHTML[copyStart:]...)
}

// htmlTagNameEnd returns the length of the HTML tag name at the start of b.
func htmlTagNameEnd(b []byte) int {
	if len(b) == 0 || !isASCIILetter(b[0]) {
		return 0
	}
	n := 1
	for n < len(b) && (isASCIILetter(b[n]) || isASCIIDigit(b[n]) || b[n] == '-') {
		n++
	}
	return n
}

func maybeLower(x []byte, buf *[]byte) []byte {
	hasUpper := false
	for _, b := range x {
		if 'A' <= b && b <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return x
	}

	*buf = (*buf)[:0]
	for _, b := range x {
		if 'A' <= b && b <= 'Z' {
			*buf = append(*buf, b-'A'+'a')
		} else {
			*buf = append(*buf, b)
		}
	}
	return *buf
}

// FilterTagGFM performs the same tag filtering as the
// GitHub Flavored Markdown [tagfilter extension].
// It is suitable for use as the FilterTag field in [HTMLRenderer].
//
// [tagfilter extension]: https://github.github.com/gfm/#disallowed-raw-html-extension-
func FilterTagGFM(tag []byte) bool {
	tagAtom := atom.Lookup(tag)
	return tagAtom == atom.Title ||
		tagAtom == atom.Textarea ||
		tagAtom == atom.Style ||
		tagAtom == atom.Xmp ||
		tagAtom == atom.Iframe ||
		tagAtom == atom.Noembed ||
		tagAtom == atom.Noframes ||
		tagAtom == atom.Script ||
		tagAtom == atom.Plaintext
}

// NormalizeURI percent-encodes any characters in a string
// that are not reserved or unreserved URI characters.
// It is used to turn block macro targets
// into strings suitable for src attributes.
func NormalizeURI(s string) string {
	// RFC 3986 reserved and unreserved characters.
	const safeSet = `;/?:@&=+$,-_.!~*'()#`

	sb := new(strings.Builder)
	sb.Grow(len(s))
	skip := 0
	var buf [utf8.UTFMax]byte
	for i, c := range s {
		if skip > 0 {
			skip--
			sb.WriteRune(c)
			continue
		}
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				skip = 2
				sb.WriteByte('%')
			} else {
				sb.WriteString("%25")
			}
		case (c < 0x80 && (isASCIILetter(byte(c)) || isASCIIDigit(byte(c)))) || strings.ContainsRune(safeSet, c):
			sb.WriteRune(c)
		default:
			n := utf8.EncodeRune(buf[:], c)
			for _, b := range buf[:n] {
				sb.WriteByte('%')
				sb.WriteByte(urlHexDigit(b >> 4))
				sb.WriteByte(urlHexDigit(b & 0x0f))
			}
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' || isASCIIDigit(c)
}

func urlHexDigit(x byte) byte {
	switch {
	case x < 0xa:
		return '0' + x
	case x < 0x10:
		return 'A' + x - 0xa
	default:
		panic("out of bounds")
	}
}
