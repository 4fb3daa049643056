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

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"
)

// QuoteType is an enumeration of inline formatting.
type QuoteType uint8

const (
	Emphasis QuoteType = 1 + iota
	Strong
	Monospaced
	Superscript
	Subscript
	DoubleQuoted
	SingleQuoted
	Mark
	// Unquoted is text with an attribute list but no other formatting.
	Unquoted
)

func (t QuoteType) String() string {
	switch t {
	case Emphasis:
		return "Emphasis"
	case Strong:
		return "Strong"
	case Monospaced:
		return "Monospaced"
	case Superscript:
		return "Superscript"
	case Subscript:
		return "Subscript"
	case DoubleQuoted:
		return "DoubleQuoted"
	case SingleQuoted:
		return "SingleQuoted"
	case Mark:
		return "Mark"
	case Unquoted:
		return "Unquoted"
	default:
		return fmt.Sprintf("QuoteType(%d)", uint8(t))
	}
}

// quoteForm describes how a quote's delimiters relate to its surroundings.
type quoteForm int8

const (
	// unconstrained quotes use doubled delimiters
	// and may appear anywhere, even in the middle of a word.
	unconstrained quoteForm = iota
	// constrained quotes use single delimiters
	// and must not be adjacent to word characters on the outside
	// or whitespace on the inside.
	constrained
	// unbroken quotes may appear anywhere
	// but must not contain whitespace.
	unbroken
)

type quoteRule struct {
	typ   QuoteType
	form  quoteForm
	open  string
	close string
	// notBefore is the set of characters (besides word characters)
	// that may not precede a constrained opening delimiter.
	notBefore string
	// notAfter is the set of characters (besides word characters)
	// that may not follow a constrained closing delimiter.
	notAfter string
}

// quoteRules is the ordered list of quote substitutions.
var quoteRules = []quoteRule{
	{typ: Strong, form: unconstrained, open: "**", close: "**"},
	{typ: Strong, form: constrained, open: "*", close: "*", notBefore: ";:}"},
	{typ: DoubleQuoted, form: constrained, open: "\"`", close: "`\"", notBefore: ";:}"},
	{typ: SingleQuoted, form: constrained, open: "'`", close: "`'", notBefore: ";:`}"},
	{typ: Monospaced, form: unconstrained, open: "``", close: "``"},
	{typ: Monospaced, form: constrained, open: "`", close: "`", notBefore: ";:\"'`}", notAfter: "\"'`"},
	{typ: Emphasis, form: unconstrained, open: "__", close: "__"},
	{typ: Emphasis, form: constrained, open: "_", close: "_", notBefore: ";:}"},
	{typ: Mark, form: unconstrained, open: "##", close: "##"},
	{typ: Mark, form: constrained, open: "#", close: "#", notBefore: "&;:}"},
	{typ: Superscript, form: unbroken, open: "^", close: "^"},
	{typ: Subscript, form: unbroken, open: "~", close: "~"},
}

// applyQuotes applies each quote rule in order.
func applyQuotes(s string) string {
	for _, rule := range quoteRules {
		if strings.Contains(s, rule.open) {
			s = rule.apply(s)
		}
	}
	return s
}

// apply replaces every match of the rule in s.
func (rule quoteRule) apply(s string) string {
	sb := new(strings.Builder)
	i := 0
	for i < len(s) {
		j := strings.Index(s[i:], rule.open)
		if j < 0 {
			break
		}
		j += i
		start, attrs := j, ""
		if k := attrlistStart(s[i:j]); k >= 0 {
			start = i + k
			attrs = s[start+1 : j-1]
		}
		escaped := start > 0 && s[start-1] == '\\'
		if !escaped && rule.form == constrained && !rule.boundaryBefore(s[:start]) {
			// Try again without the attribute list.
			if start < j && rule.boundaryBefore(s[:j]) {
				start, attrs = j, ""
			} else {
				sb.WriteString(s[i : j+1])
				i = j + 1
				continue
			}
		}
		contentStart := j + len(rule.open)
		contentEnd := rule.findClose(s, contentStart)
		if contentEnd < 0 {
			sb.WriteString(s[i : j+1])
			i = j + 1
			continue
		}
		end := contentEnd + len(rule.close)
		if escaped {
			sb.WriteString(s[i : start-1])
			sb.WriteString(s[start:end])
		} else {
			sb.WriteString(s[i:start])
			sb.WriteString(convertQuoted(rule.typ, s[contentStart:contentEnd], attrs))
		}
		i = end
	}
	sb.WriteString(s[i:])
	return sb.String()
}

// attrlistStart returns the index of the "[" of an attribute list
// at the end of s, or -1 if s does not end with one.
func attrlistStart(s string) int {
	if !strings.HasSuffix(s, "]") {
		return -1
	}
	k := strings.LastIndexAny(s[:len(s)-1], "[]\n")
	if k < 0 || s[k] != '[' || k == len(s)-2 {
		return -1
	}
	return k
}

// boundaryBefore reports whether a constrained quote may begin after before.
func (rule quoteRule) boundaryBefore(before string) bool {
	if before == "" {
		return true
	}
	c, _ := utf8.DecodeLastRuneInString(before)
	return !isWordChar(c) && !strings.ContainsRune(rule.notBefore, c)
}

// findClose returns the index of the closing delimiter
// for content that begins at s[start], or -1 if there is none.
func (rule quoteRule) findClose(s string, start int) int {
	if start >= len(s) {
		return -1
	}
	first, _ := utf8.DecodeRuneInString(s[start:])
	if rule.form != unconstrained && unicode.IsSpace(first) {
		return -1
	}
	for k := start + 1; k < len(s); k++ {
		if rule.form == unbroken && isSpaceByte(s[k]) {
			return -1
		}
		if !strings.HasPrefix(s[k:], rule.close) {
			continue
		}
		if rule.form != constrained {
			return k
		}
		last, _ := utf8.DecodeLastRuneInString(s[:k])
		if unicode.IsSpace(last) {
			continue
		}
		if after := s[k+len(rule.close):]; after != "" {
			c, _ := utf8.DecodeRuneInString(after)
			if isWordChar(c) || strings.ContainsRune(rule.notAfter, c) {
				continue
			}
		}
		return k
	}
	return -1
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// convertQuoted returns the HTML for quoted text.
func convertQuoted(typ QuoteType, text, attrs string) string {
	id, roles := inlineAttributes(attrs)
	var dst []byte
	switch typ {
	case DoubleQuoted, SingleQuoted:
		open, close := "&#8220;", "&#8221;"
		if typ == SingleQuoted {
			open, close = "&#8216;", "&#8217;"
		}
		if id == "" && len(roles) == 0 {
			return open + text + close
		}
		dst = appendOpenTag(dst, atom.Span, id, roles)
		dst = append(dst, open...)
		dst = append(dst, text...)
		dst = append(dst, close...)
		return string(appendCloseTag(dst, atom.Span))
	case Mark:
		if attrs != "" {
			typ = Unquoted
		}
	}
	tag := quoteTags[typ]
	dst = appendOpenTag(dst, tag, id, roles)
	dst = append(dst, text...)
	return string(appendCloseTag(dst, tag))
}

var quoteTags = map[QuoteType]atom.Atom{
	Emphasis:    atom.Em,
	Strong:      atom.Strong,
	Monospaced:  atom.Code,
	Superscript: atom.Sup,
	Subscript:   atom.Sub,
	Mark:        atom.Mark,
	Unquoted:    atom.Span,
}

// inlineAttributes returns the ID and roles given by an inline attribute list.
// A first positional attribute without a shorthand prefix is a role.
func inlineAttributes(attrs string) (id string, roles []string) {
	if attrs == "" {
		return "", nil
	}
	al, _ := parseAttrlist(NewSpan(attrs), nil)
	if style := al.BlockStyle(); style != "" {
		roles = append(roles, style)
	}
	return al.ID(), append(roles, al.Roles()...)
}

var attributeEscaper = bytereplacer.New(
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
)

// appendOpenTag appends an HTML start tag with optional id and class attributes.
func appendOpenTag(dst []byte, tag atom.Atom, id string, roles []string) []byte {
	dst = append(dst, "<"...)
	dst = append(dst, tag.String()...)
	if id != "" {
		dst = append(dst, ` id="`...)
		dst = append(dst, attributeEscaper.Replace([]byte(id))...)
		dst = append(dst, `"`...)
	}
	if len(roles) > 0 {
		dst = append(dst, ` class="`...)
		dst = append(dst, attributeEscaper.Replace([]byte(strings.Join(roles, " ")))...)
		dst = append(dst, `"`...)
	}
	return append(dst, ">"...)
}

func appendCloseTag(dst []byte, tag atom.Atom) []byte {
	dst = append(dst, "</"...)
	dst = append(dst, tag.String()...)
	return append(dst, ">"...)
}
