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
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"
)

// Placeholders are written in place of passthroughs during substitution.
// They consist of the index of the passthrough between two C1 control characters,
// which cannot appear in parsed source.
const (
	placeholderStart = "\u0096"
	placeholderEnd   = "\u0097"
)

// A Passthrough is a region of inline text
// that is protected from the substitutions applied to its surroundings.
type Passthrough struct {
	// Text is the protected text, without its delimiters.
	Text string
	// Subs is the substitutions applied to Text when it is restored.
	Subs SubstitutionGroup
	// Type is [Unquoted] if the passthrough had an attribute list
	// and zero otherwise.
	Type QuoteType
	// Attrlist is the text of the attribute list
	// preceding the passthrough, without brackets.
	Attrlist string
}

// Passthroughs is the list of passthroughs extracted from a [Content].
// The position of each passthrough in the list
// is the number in its placeholder.
type Passthroughs []Passthrough

// ExtractPassthroughs replaces each passthrough in the content's rendered text
// with a placeholder and returns the extracted passthroughs.
//
// The recognized forms are:
//
//   - +++text+++ (no substitutions)
//   - ++text++ (verbatim substitutions)
//   - $$text$$ (verbatim substitutions)
//   - pass:[text] (no substitutions)
//   - pass:subs[text], where subs is a comma-separated list of substitution names
//
// The triple-plus, double-plus, and double-dollar forms
// may be preceded by an attribute list such as [.role].
// A backslash before a passthrough escapes it:
// the backslash is removed and the passthrough's text is left in place.
func ExtractPassthroughs(c *Content) Passthroughs {
	if c == nil || !strings.ContainsAny(c.rendered, "+$:") {
		return nil
	}
	var passthroughs Passthroughs
	changed := false
	s := c.rendered
	sb := new(strings.Builder)
	for i := 0; i < len(s); {
		m, ok := matchPassthrough(s, i)
		if !ok {
			sb.WriteByte(s[i])
			i++
			continue
		}
		changed = true
		if m.escaped {
			sb.WriteString(s[i+1 : m.end])
			i = m.end
			continue
		}
		tracer().Debugf("passthrough %d: %q (subs=%v)", len(passthroughs), m.pass.Text, m.pass.Subs)
		sb.WriteString(placeholderStart)
		sb.WriteString(strconv.Itoa(len(passthroughs)))
		sb.WriteString(placeholderEnd)
		passthroughs = append(passthroughs, m.pass)
		i = m.end
	}
	if changed {
		c.rendered = sb.String()
	}
	return passthroughs
}

type passthroughMatch struct {
	pass    Passthrough
	end     int
	escaped bool
}

// matchPassthrough attempts to match a passthrough starting at s[i].
func matchPassthrough(s string, i int) (passthroughMatch, bool) {
	escaped := false
	start := i
	if s[i] == '\\' {
		escaped = true
		start++
	}
	if start >= len(s) {
		return passthroughMatch{}, false
	}
	var m passthroughMatch
	var ok bool
	switch s[start] {
	case '[', '+', '$':
		m, ok = matchDelimitedPassthrough(s, start)
	case 'p':
		m, ok = matchPassMacro(s, start)
	}
	if !ok {
		return passthroughMatch{}, false
	}
	m.escaped = escaped
	return m, true
}

// matchDelimitedPassthrough matches [attrs]+++text+++, ++text++, or $$text$$.
func matchDelimitedPassthrough(s string, i int) (passthroughMatch, bool) {
	var attrs string
	hasAttrs := false
	if s[i] == '[' {
		end := strings.IndexAny(s[i+1:], "]\n")
		if end <= 0 || s[i+1+end] != ']' {
			return passthroughMatch{}, false
		}
		attrs = s[i+1 : i+1+end]
		hasAttrs = true
		i += end + 2
	}
	rest := s[i:]
	var m passthroughMatch
	switch {
	case strings.HasPrefix(rest, "+++"):
		if end := strings.Index(rest[3:], "+++"); end >= 0 {
			m.pass = Passthrough{Text: rest[3 : 3+end], Subs: NoSubstitutions}
			m.end = i + 3 + end + 3
			break
		}
		fallthrough
	case strings.HasPrefix(rest, "++"):
		end := strings.Index(rest[2:], "++")
		if end < 0 {
			return passthroughMatch{}, false
		}
		m.pass = Passthrough{Text: rest[2 : 2+end], Subs: VerbatimSubstitutions}
		m.end = i + 2 + end + 2
	case strings.HasPrefix(rest, "$$"):
		end := strings.Index(rest[2:], "$$")
		if end < 0 {
			return passthroughMatch{}, false
		}
		m.pass = Passthrough{Text: rest[2 : 2+end], Subs: VerbatimSubstitutions}
		m.end = i + 2 + end + 2
	default:
		return passthroughMatch{}, false
	}
	if hasAttrs {
		m.pass.Type = Unquoted
		m.pass.Attrlist = attrs
	}
	return m, true
}

// matchPassMacro matches pass:subs[text].
// The macro is not recognized if any substitution name is unknown.
func matchPassMacro(s string, i int) (passthroughMatch, bool) {
	const prefix = "pass:"
	if !strings.HasPrefix(s[i:], prefix) {
		return passthroughMatch{}, false
	}
	if i > 0 && isWordChar(rune(s[i-1])) {
		return passthroughMatch{}, false
	}
	open := strings.IndexByte(s[i+len(prefix):], '[')
	if open < 0 {
		return passthroughMatch{}, false
	}
	subsStart := i + len(prefix)
	subsSpec := s[subsStart : subsStart+open]
	subs, ok := parsePassSubs(subsSpec)
	if !ok {
		return passthroughMatch{}, false
	}
	textStart := subsStart + open + 1
	textEnd := closingBracket(s, textStart)
	if textEnd < 0 {
		return passthroughMatch{}, false
	}
	return passthroughMatch{
		pass: Passthrough{
			Text: strings.ReplaceAll(s[textStart:textEnd], `\]`, "]"),
			Subs: subs,
		},
		end: textEnd + 1,
	}, true
}

// parsePassSubs parses the substitution list of a pass macro.
func parsePassSubs(spec string) (SubstitutionGroup, bool) {
	if spec == "" {
		return NoSubstitutions, true
	}
	if g, ok := groupNames[spec]; ok {
		return g, true
	}
	var steps []SubstitutionStep
	for _, name := range strings.Split(spec, ",") {
		step, ok := ParseSubstitutionStep(strings.TrimSpace(name))
		if !ok {
			return SubstitutionGroup{}, false
		}
		steps = append(steps, step)
	}
	if len(steps) == 1 && steps[0] == SpecialCharacters {
		return VerbatimSubstitutions, true
	}
	return CustomSubstitutions(steps...), true
}

// RestoreTo replaces each placeholder in the content's rendered text
// with its passthrough's text after applying the passthrough's substitutions.
// Placeholders produced by restoring a passthrough are restored in turn.
// Placeholders with an index outside the list are left as-is.
func (pt Passthroughs) RestoreTo(c *Content, p *Parser) {
	if c == nil || len(pt) == 0 {
		return
	}
	c.rendered = pt.restore(c.rendered, p, 0)
}

func (pt Passthroughs) restore(s string, p *Parser, depth int) string {
	if depth > len(pt) || !strings.Contains(s, placeholderStart) {
		return s
	}
	sb := new(strings.Builder)
	for {
		i := strings.Index(s, placeholderStart)
		if i < 0 {
			break
		}
		j := strings.Index(s[i:], placeholderEnd)
		if j < 0 {
			break
		}
		j += i
		n, err := strconv.Atoi(s[i+len(placeholderStart) : j])
		if err != nil || n < 0 || n >= len(pt) {
			sb.WriteString(s[:j+len(placeholderEnd)])
			s = s[j+len(placeholderEnd):]
			continue
		}
		sb.WriteString(s[:i])
		sb.WriteString(pt.restore(pt[n].render(p), p, depth+1))
		s = s[j+len(placeholderEnd):]
	}
	sb.WriteString(s)
	return sb.String()
}

// render returns the passthrough's text after its substitutions.
func (pass Passthrough) render(p *Parser) string {
	c := &Content{rendered: pass.Text}
	pass.Subs.Apply(c, p, nil)
	if pass.Type != Unquoted || pass.Attrlist == "" {
		return c.rendered
	}
	attrlist, _ := parseAttrlist(NewSpan(pass.Attrlist), p)
	var dst []byte
	dst = appendOpenTag(dst, atom.Span, attrlist.ID(), attrlist.Roles())
	dst = append(dst, c.rendered...)
	dst = appendCloseTag(dst, atom.Span)
	return string(dst)
}
