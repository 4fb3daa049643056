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
	"path"
	"strings"
	"unicode/utf8"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"
)

// An inlineMacroFunc attempts to match an inline macro at s[i:].
// before is the character preceding the macro
// or zero if the macro is at the start of the text.
type inlineMacroFunc func(p *Parser, s string, i int, before rune) (macroMatch, bool)

// macroMatch is the HTML replacement for s[i:end].
type macroMatch struct {
	html string
	end  int
}

// inlineMacros is the ordered list of inline macro recognizers.
// The first one to match at a position wins.
var inlineMacros = []inlineMacroFunc{
	(*Parser).kbdMacro,
	(*Parser).buttonMacro,
	(*Parser).menuMacro,
	(*Parser).imageMacro,
	(*Parser).iconMacro,
	(*Parser).linkMacro,
	(*Parser).mailtoMacro,
	(*Parser).autolink,
	(*Parser).bracketedAutolink,
	(*Parser).inlineAnchor,
	(*Parser).anchorMacro,
	(*Parser).angleXref,
	(*Parser).xrefMacro,
}

// applyMacros replaces inline macros, URLs, anchors, and cross references
// with HTML in a single left-to-right scan.
// Replaced text is never rescanned.
// A backslash before a macro removes the backslash
// and leaves the macro's text in place.
func (p *Parser) applyMacros(s string) string {
	if !strings.ContainsAny(s, ":[&") {
		return s
	}
	sb := new(strings.Builder)
	written := 0
	for i := 0; i < len(s); i++ {
		start := i
		escaped := s[i] == '\\'
		if escaped {
			start++
			if start >= len(s) {
				break
			}
		}
		if !mayStartMacro(s[start]) {
			continue
		}
		var before rune
		if i > 0 {
			before, _ = utf8.DecodeLastRuneInString(s[:i])
		}
		m, ok := p.matchInlineMacro(s, start, before)
		if !ok {
			if escaped {
				i = start
			}
			continue
		}
		sb.WriteString(s[written:i])
		if escaped {
			sb.WriteString(s[start:m.end])
		} else {
			sb.WriteString(m.html)
		}
		written = m.end
		i = m.end - 1
	}
	if written == 0 {
		return s
	}
	sb.WriteString(s[written:])
	return sb.String()
}

func (p *Parser) matchInlineMacro(s string, i int, before rune) (macroMatch, bool) {
	for _, f := range inlineMacros {
		if m, ok := f(p, s, i, before); ok {
			return m, true
		}
	}
	return macroMatch{}, false
}

func mayStartMacro(c byte) bool {
	return strings.IndexByte("abfhiklmx[&", c) >= 0
}

// namedMacro is an occurrence of name:target[text].
type namedMacro struct {
	target string
	// text is the bracketed text with "\]" unescaped.
	text string
	end  int
}

// matchNamedMacro matches name:target[text] at s[i:].
// The target may be empty but may not contain whitespace.
func matchNamedMacro(s string, i int, before rune, name string) (namedMacro, bool) {
	if isWordChar(before) || !strings.HasPrefix(s[i:], name+":") {
		return namedMacro{}, false
	}
	targetStart := i + len(name) + 1
	j := targetStart
	for ; j < len(s) && s[j] != '['; j++ {
		if isSpaceByte(s[j]) || strings.IndexByte(`]<"`, s[j]) >= 0 {
			return namedMacro{}, false
		}
	}
	if j >= len(s) {
		return namedMacro{}, false
	}
	textEnd := closingBracket(s, j+1)
	if textEnd < 0 {
		return namedMacro{}, false
	}
	return namedMacro{
		target: s[targetStart:j],
		text:   strings.ReplaceAll(s[j+1:textEnd], `\]`, "]"),
		end:    textEnd + 1,
	}, true
}

// closingBracket returns the index of the first "]" in s[start:]
// that is not preceded by a backslash,
// or -1 if there is none.
func closingBracket(s string, start int) int {
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case ']':
			return j
		}
	}
	return -1
}

// kbdMacro matches kbd:[keys].
// Keys are separated by "+" or ",".
func (p *Parser) kbdMacro(s string, i int, before rune) (macroMatch, bool) {
	if !p.HasAttribute("experimental") {
		return macroMatch{}, false
	}
	m, ok := matchNamedMacro(s, i, before, "kbd")
	if !ok || m.target != "" {
		return macroMatch{}, false
	}
	keys := splitKeys(strings.TrimSpace(m.text))
	if len(keys) == 0 {
		return macroMatch{}, false
	}
	var dst []byte
	if len(keys) == 1 {
		dst = appendElement(dst, atom.Kbd, nil, keys[0])
		return macroMatch{html: string(dst), end: m.end}, true
	}
	dst = appendOpenTag(dst, atom.Span, "", []string{"keyseq"})
	for k, key := range keys {
		if k > 0 {
			dst = append(dst, '+')
		}
		dst = appendElement(dst, atom.Kbd, nil, key)
	}
	dst = appendCloseTag(dst, atom.Span)
	return macroMatch{html: string(dst), end: m.end}, true
}

// splitKeys splits a key combination like "Ctrl+Shift+T".
// A trailing delimiter is itself a key, as in "Ctrl++".
func splitKeys(text string) []string {
	if len(text) <= 1 {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	delim := "+"
	if strings.Contains(text, ",") {
		delim = ","
	}
	trailing := strings.HasSuffix(text, delim)
	if trailing {
		text = text[:len(text)-len(delim)]
	}
	var keys []string
	for _, key := range strings.Split(text, delim) {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	if trailing {
		keys = append(keys, delim)
	}
	return keys
}

// buttonMacro matches btn:[label].
func (p *Parser) buttonMacro(s string, i int, before rune) (macroMatch, bool) {
	if !p.HasAttribute("experimental") {
		return macroMatch{}, false
	}
	m, ok := matchNamedMacro(s, i, before, "btn")
	if !ok || m.target != "" {
		return macroMatch{}, false
	}
	dst := appendElement(nil, atom.B, []string{"button"}, m.text)
	return macroMatch{html: string(dst), end: m.end}, true
}

// menuMacro matches menu:Menu[Submenu > Item].
func (p *Parser) menuMacro(s string, i int, before rune) (macroMatch, bool) {
	const caret = "&#160;<b class=\"caret\">&#8250;</b> "
	if !p.HasAttribute("experimental") {
		return macroMatch{}, false
	}
	m, ok := matchNamedMacro(s, i, before, "menu")
	if !ok || m.target == "" {
		return macroMatch{}, false
	}
	var items []string
	for _, item := range strings.Split(m.text, "&gt;") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		dst := appendElement(nil, atom.B, []string{"menuref"}, m.target)
		return macroMatch{html: string(dst), end: m.end}, true
	}
	dst := appendOpenTag(nil, atom.Span, "", []string{"menuseq"})
	dst = appendElement(dst, atom.B, []string{"menu"}, m.target)
	for _, item := range items[:len(items)-1] {
		dst = append(dst, caret...)
		dst = appendElement(dst, atom.B, []string{"submenu"}, item)
	}
	dst = append(dst, caret...)
	dst = appendElement(dst, atom.B, []string{"menuitem"}, items[len(items)-1])
	dst = appendCloseTag(dst, atom.Span)
	return macroMatch{html: string(dst), end: m.end}, true
}

// imageMacro matches image:target[alt,width,height].
func (p *Parser) imageMacro(s string, i int, before rune) (macroMatch, bool) {
	if before == ':' {
		return macroMatch{}, false
	}
	m, ok := matchNamedMacro(s, i, before, "image")
	if !ok || m.target == "" || m.target[0] == ':' {
		return macroMatch{}, false
	}
	attrlist, _ := parseAttrlist(NewSpan(m.text), p)
	alt := defaultAltText(m.target)
	if attr, ok := attrlist.NthOrNamed(1, "alt"); ok && attr.Value() != "" {
		alt = attr.Value()
	}

	dst := appendOpenTag(nil, atom.Span, "", append([]string{"image"}, attrlist.Roles()...))
	link, hasLink := attrlist.NamedAttribute("link")
	if hasLink {
		dst = append(dst, `<a class="image"`...)
		dst = appendAttribute(dst, "href", link.Value())
		dst = append(dst, '>')
	}
	dst = append(dst, "<img"...)
	dst = appendAttribute(dst, "src", p.imagePath(m.target))
	dst = appendAttribute(dst, "alt", alt)
	if attr, ok := attrlist.NthOrNamed(2, "width"); ok && attr.Value() != "" {
		dst = appendAttribute(dst, "width", attr.Value())
	}
	if attr, ok := attrlist.NthOrNamed(3, "height"); ok && attr.Value() != "" {
		dst = appendAttribute(dst, "height", attr.Value())
	}
	if attr, ok := attrlist.NamedAttribute("title"); ok {
		dst = appendAttribute(dst, "title", attr.Value())
	}
	dst = append(dst, '>')
	if hasLink {
		dst = appendCloseTag(dst, atom.A)
	}
	dst = appendCloseTag(dst, atom.Span)
	return macroMatch{html: string(dst), end: m.end}, true
}

// imagePath resolves an image target against the imagesdir attribute.
func (p *Parser) imagePath(target string) string {
	dir, _ := p.Attribute("imagesdir")
	if dir == "" || strings.HasPrefix(target, "/") || strings.Contains(target, "://") {
		return target
	}
	return strings.TrimSuffix(dir, "/") + "/" + target
}

// defaultAltText derives alternate text from an image's file name:
// "sunset_over-sea.jpg" becomes "sunset over sea".
func defaultAltText(target string) string {
	base := path.Base(target)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, base)
}

// iconMacro matches icon:name[attrs].
// The icons attribute selects between text, font, and image icons.
func (p *Parser) iconMacro(s string, i int, before rune) (macroMatch, bool) {
	m, ok := matchNamedMacro(s, i, before, "icon")
	if !ok || m.target == "" {
		return macroMatch{}, false
	}
	attrlist, _ := parseAttrlist(NewSpan(m.text), p)
	dst := appendOpenTag(nil, atom.Span, "", append([]string{"icon"}, attrlist.Roles()...))
	icons, hasIcons := p.Attribute("icons")
	switch {
	case !hasIcons:
		dst = append(dst, '[')
		dst = append(dst, m.target...)
		dst = append(dst, "&#93;"...)
	case icons == "font":
		classes := []string{"fa", "fa-" + m.target}
		if size, ok := attrlist.NthOrNamed(1, "size"); ok && size.Value() != "" {
			classes = append(classes, "fa-"+size.Value())
		}
		dst = appendElement(dst, atom.I, classes, "")
	default:
		dir, ok := p.Attribute("iconsdir")
		if !ok {
			dir = "./images/icons"
		}
		dst = append(dst, "<img"...)
		dst = appendAttribute(dst, "src", strings.TrimSuffix(dir, "/")+"/"+m.target+".png")
		dst = appendAttribute(dst, "alt", m.target)
		dst = append(dst, '>')
	}
	dst = appendCloseTag(dst, atom.Span)
	return macroMatch{html: string(dst), end: m.end}, true
}

// link is an HTML hyperlink to be rendered.
type link struct {
	href   string
	text   string
	roles  []string
	window string
}

func (l link) appendHTML(dst []byte) []byte {
	dst = append(dst, "<a"...)
	dst = appendAttribute(dst, "href", l.href)
	if len(l.roles) > 0 {
		dst = appendAttribute(dst, "class", strings.Join(l.roles, " "))
	}
	if l.window != "" {
		dst = appendAttribute(dst, "target", l.window)
		if l.window == "_blank" {
			dst = appendAttribute(dst, "rel", "noopener")
		}
	}
	dst = append(dst, '>')
	dst = append(dst, l.text...)
	return appendCloseTag(dst, atom.A)
}

// parseLinkText fills in the text, roles, and window of l
// from a link macro's bracketed text.
// Text containing "=" is parsed as an attribute list
// whose first positional attribute is the link text.
// A trailing "^" opens the link in a new window.
func (p *Parser) parseLinkText(l *link, text string) {
	l.text = text
	if strings.Contains(text, "=") {
		attrlist, _ := parseAttrlist(NewSpan(text), p)
		first, _ := attrlist.NthAttribute(1)
		l.text = first.Value()
		if attr, ok := attrlist.NamedAttribute("role"); ok {
			l.roles = append(l.roles, strings.Fields(attr.Value())...)
		}
		if attr, ok := attrlist.NamedAttribute("window"); ok {
			l.window = attr.Value()
		}
	}
	if strings.HasSuffix(l.text, "^") {
		l.text = l.text[:len(l.text)-1]
		l.window = "_blank"
	}
}

// bareLink sets l's text to its target, marking the link as bare.
func (p *Parser) bareLink(l *link) {
	l.text = l.href
	if p.HasAttribute("hide-uri-scheme") {
		if _, rest, ok := strings.Cut(l.href, "://"); ok {
			l.text = rest
		}
	}
	l.roles = append([]string{"bare"}, l.roles...)
}

// linkMacro matches link:target[text].
func (p *Parser) linkMacro(s string, i int, before rune) (macroMatch, bool) {
	m, ok := matchNamedMacro(s, i, before, "link")
	if !ok || m.target == "" {
		return macroMatch{}, false
	}
	l := link{href: m.target}
	p.parseLinkText(&l, m.text)
	if l.text == "" {
		p.bareLink(&l)
	}
	return macroMatch{html: string(l.appendHTML(nil)), end: m.end}, true
}

// mailtoMacro matches mailto:address[text].
func (p *Parser) mailtoMacro(s string, i int, before rune) (macroMatch, bool) {
	m, ok := matchNamedMacro(s, i, before, "mailto")
	if !ok || m.target == "" {
		return macroMatch{}, false
	}
	l := link{href: "mailto:" + m.target}
	p.parseLinkText(&l, m.text)
	if l.text == "" {
		l.text = m.target
	}
	return macroMatch{html: string(l.appendHTML(nil)), end: m.end}, true
}

var autolinkSchemes = []string{"https://", "http://", "ftp://", "irc://"}

func urlScheme(s string) string {
	for _, scheme := range autolinkSchemes {
		if strings.HasPrefix(s, scheme) {
			return scheme
		}
	}
	return ""
}

// autolink matches a URL with an optional [text] suffix.
// Trailing punctuation is not part of the URL.
func (p *Parser) autolink(s string, i int, before rune) (macroMatch, bool) {
	if before != 0 && !strings.ContainsRune(" \t\n([;>", before) {
		return macroMatch{}, false
	}
	scheme := urlScheme(s[i:])
	if scheme == "" {
		return macroMatch{}, false
	}
	end := i + len(scheme)
	for end < len(s) && !isSpaceByte(s[end]) && strings.IndexByte(`[]<"`, s[end]) < 0 &&
		!strings.HasPrefix(s[end:], "&gt;") && !strings.HasPrefix(s[end:], "&lt;") {
		end++
	}
	l := link{}
	if end < len(s) && s[end] == '[' {
		if textEnd := closingBracket(s, end+1); textEnd >= 0 {
			l.href = s[i:end]
			p.parseLinkText(&l, strings.ReplaceAll(s[end+1:textEnd], `\]`, "]"))
			end = textEnd + 1
		}
	}
	if l.href == "" {
		end = i + len(trimURLPunctuation(s[i:end]))
		l.href = s[i:end]
	}
	if len(l.href) == len(scheme) {
		return macroMatch{}, false
	}
	if l.text == "" {
		p.bareLink(&l)
	}
	return macroMatch{html: string(l.appendHTML(nil)), end: end}, true
}

// trimURLPunctuation removes sentence punctuation from the end of a URL.
// A closing parenthesis is only removed if the URL has no opening one.
func trimURLPunctuation(url string) string {
	for url != "" {
		c := url[len(url)-1]
		if strings.IndexByte(".,?!:;", c) < 0 && (c != ')' || strings.Contains(url, "(")) {
			break
		}
		url = url[:len(url)-1]
	}
	return url
}

// bracketedAutolink matches a URL in angle brackets, like <https://example.com>.
// The brackets are dropped from the output.
func (p *Parser) bracketedAutolink(s string, i int, before rune) (macroMatch, bool) {
	const open, close = "&lt;", "&gt;"
	if !strings.HasPrefix(s[i:], open) {
		return macroMatch{}, false
	}
	start := i + len(open)
	scheme := urlScheme(s[start:])
	if scheme == "" {
		return macroMatch{}, false
	}
	n := strings.Index(s[start:], close)
	if n <= len(scheme) || strings.ContainsAny(s[start:start+n], " \t\n") {
		return macroMatch{}, false
	}
	l := link{href: s[start : start+n]}
	p.bareLink(&l)
	return macroMatch{html: string(l.appendHTML(nil)), end: start + n + len(close)}, true
}

// inlineAnchor matches [[id]] or [[id,reftext]].
func (p *Parser) inlineAnchor(s string, i int, before rune) (macroMatch, bool) {
	if before == '[' || !strings.HasPrefix(s[i:], "[[") || strings.HasPrefix(s[i:], "[[[") {
		return macroMatch{}, false
	}
	n := strings.Index(s[i+2:], "]]")
	if n < 0 {
		return macroMatch{}, false
	}
	inner := s[i+2 : i+2+n]
	id, _, _ := strings.Cut(inner, ",")
	if !isXMLName(strings.TrimSpace(id)) || strings.Contains(inner, "\n") {
		return macroMatch{}, false
	}
	return macroMatch{html: anchorHTML(strings.TrimSpace(id)), end: i + 2 + n + 2}, true
}

// anchorMacro matches anchor:id[reftext].
func (p *Parser) anchorMacro(s string, i int, before rune) (macroMatch, bool) {
	m, ok := matchNamedMacro(s, i, before, "anchor")
	if !ok || !isXMLName(m.target) {
		return macroMatch{}, false
	}
	return macroMatch{html: anchorHTML(m.target), end: m.end}, true
}

func anchorHTML(id string) string {
	dst := appendOpenTag(nil, atom.A, id, nil)
	return string(appendCloseTag(dst, atom.A))
}

// angleXref matches <<id>> or <<id,text>>.
func (p *Parser) angleXref(s string, i int, before rune) (macroMatch, bool) {
	const open, close = "&lt;&lt;", "&gt;&gt;"
	if !strings.HasPrefix(s[i:], open) {
		return macroMatch{}, false
	}
	start := i + len(open)
	n := strings.Index(s[start:], close)
	if n <= 0 {
		return macroMatch{}, false
	}
	inner := s[start : start+n]
	target, text, _ := strings.Cut(inner, ",")
	target = strings.TrimSpace(target)
	if target == "" || strings.ContainsAny(target, " \t\n") || strings.Contains(text, "\n") {
		return macroMatch{}, false
	}
	return macroMatch{
		html: p.xrefHTML(target, strings.TrimSpace(text)),
		end:  start + n + len(close),
	}, true
}

// xrefMacro matches xref:id[text].
func (p *Parser) xrefMacro(s string, i int, before rune) (macroMatch, bool) {
	m, ok := matchNamedMacro(s, i, before, "xref")
	if !ok || m.target == "" {
		return macroMatch{}, false
	}
	return macroMatch{html: p.xrefHTML(m.target, strings.TrimSpace(m.text)), end: m.end}, true
}

// xrefHTML returns a link to the cross reference target.
// A target naming an AsciiDoc file links to the converted file.
// Without text, the link text is the target in brackets.
func (p *Parser) xrefHTML(target, text string) string {
	if text == "" {
		text = "[" + target + "]"
	}
	l := link{href: p.xrefHref(target), text: text}
	return string(l.appendHTML(nil))
}

func (p *Parser) xrefHref(target string) string {
	file, fragment, hasFragment := strings.Cut(target, "#")
	if !hasFragment && !strings.HasSuffix(file, ".adoc") {
		return "#" + target
	}
	if base, ok := strings.CutSuffix(file, ".adoc"); ok {
		suffix, _ := p.Attribute("outfilesuffix")
		file = base + suffix
	}
	if !hasFragment {
		return file
	}
	return file + "#" + fragment
}

var quoteEscaper = bytereplacer.New(`"`, "&quot;")

// appendAttribute appends an HTML attribute whose value
// has already been through the special characters substitution.
func appendAttribute(dst []byte, name, value string) []byte {
	dst = append(dst, ' ')
	dst = append(dst, name...)
	dst = append(dst, `="`...)
	dst = append(dst, quoteEscaper.Replace([]byte(value))...)
	return append(dst, '"')
}

// appendElement appends an element with the given classes and inner HTML.
func appendElement(dst []byte, tag atom.Atom, classes []string, inner string) []byte {
	dst = appendOpenTag(dst, tag, "", classes)
	dst = append(dst, inner...)
	return appendCloseTag(dst, tag)
}
