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

	"go4.org/bytereplacer"
)

// A SubstitutionStep is a single named transformation of a [Content] value's text.
type SubstitutionStep uint8

const (
	// SpecialCharacters replaces "&", "<", and ">" with character references.
	SpecialCharacters SubstitutionStep = 1 + iota
	// Quotes replaces inline formatting marks (like *strong* or _emphasis_)
	// with HTML elements.
	Quotes
	// AttributeReferences replaces {name} with the value of the document attribute.
	AttributeReferences
	// CharacterReplacements replaces textual symbols like "(C)", "--", and "->"
	// with typographic characters.
	CharacterReplacements
	// Macros replaces inline macros, URLs, and cross references with HTML.
	Macros
	// PostReplacement replaces a trailing " +" on a line with a line break.
	PostReplacement
)

var stepNames = map[string]SubstitutionStep{
	"specialcharacters": SpecialCharacters,
	"specialchars":      SpecialCharacters,
	"c":                 SpecialCharacters,
	"quotes":            Quotes,
	"q":                 Quotes,
	"attributes":        AttributeReferences,
	"a":                 AttributeReferences,
	"replacements":      CharacterReplacements,
	"r":                 CharacterReplacements,
	"macros":            Macros,
	"m":                 Macros,
	"post_replacements": PostReplacement,
	"p":                 PostReplacement,
}

// ParseSubstitutionStep returns the step with the given name or alias,
// such as "quotes" or "q".
func ParseSubstitutionStep(name string) (SubstitutionStep, bool) {
	step, ok := stepNames[name]
	return step, ok
}

// String returns the step's name as used in a subs attribute.
func (step SubstitutionStep) String() string {
	switch step {
	case SpecialCharacters:
		return "specialcharacters"
	case Quotes:
		return "quotes"
	case AttributeReferences:
		return "attributes"
	case CharacterReplacements:
		return "replacements"
	case Macros:
		return "macros"
	case PostReplacement:
		return "post_replacements"
	default:
		return fmt.Sprintf("SubstitutionStep(%d)", uint8(step))
	}
}

// Apply runs the step over the content's rendered text.
// attrlist is the attribute list of the enclosing block and may be nil.
func (step SubstitutionStep) Apply(c *Content, p *Parser, attrlist *Attrlist) {
	if c == nil {
		return
	}
	switch step {
	case SpecialCharacters:
		c.rendered = escapeSpecialCharacters(c.rendered)
	case Quotes:
		c.rendered = applyQuotes(c.rendered)
	case AttributeReferences:
		c.rendered = p.resolveAttributeReferences(c.rendered)
	case CharacterReplacements:
		c.rendered = applyReplacements(c.rendered)
	case Macros:
		c.rendered = p.applyMacros(c.rendered)
	case PostReplacement:
		c.rendered = applyPostReplacements(c.rendered, attrlist.HasOption("hardbreaks") || p.HasAttribute("hardbreaks-option"))
	}
}

// A SubstitutionGroup is an ordered list of substitution steps.
// The zero value is equivalent to [NoSubstitutions].
type SubstitutionGroup struct {
	name  string
	steps []SubstitutionStep
}

var (
	// NoSubstitutions is the empty group.
	NoSubstitutions = SubstitutionGroup{name: "none"}
	// VerbatimSubstitutions only escapes special characters.
	// It is the default for listing and literal blocks.
	VerbatimSubstitutions = SubstitutionGroup{
		name:  "verbatim",
		steps: []SubstitutionStep{SpecialCharacters},
	}
	// NormalSubstitutions runs every step.
	// It is the default for paragraphs and titles.
	NormalSubstitutions = SubstitutionGroup{
		name: "normal",
		steps: []SubstitutionStep{
			SpecialCharacters,
			Quotes,
			AttributeReferences,
			CharacterReplacements,
			Macros,
			PostReplacement,
		},
	}

	headerSubstitutions = SubstitutionGroup{
		name:  "header",
		steps: []SubstitutionStep{SpecialCharacters, AttributeReferences},
	}
)

var groupNames = map[string]SubstitutionGroup{
	"none":     NoSubstitutions,
	"verbatim": VerbatimSubstitutions,
	"v":        VerbatimSubstitutions,
	"normal":   NormalSubstitutions,
	"n":        NormalSubstitutions,
}

// CustomSubstitutions returns a group that runs the given steps in order.
func CustomSubstitutions(steps ...SubstitutionStep) SubstitutionGroup {
	return SubstitutionGroup{steps: append([]SubstitutionStep(nil), steps...)}
}

// Name returns the name of a built-in group
// or the empty string for a custom group.
func (g SubstitutionGroup) Name() string {
	if g.name == "" && len(g.steps) == 0 {
		return "none"
	}
	return g.name
}

// Steps returns a copy of the group's steps in order.
func (g SubstitutionGroup) Steps() []SubstitutionStep {
	return append([]SubstitutionStep(nil), g.steps...)
}

// Has reports whether the group includes the step.
func (g SubstitutionGroup) Has(step SubstitutionStep) bool {
	for _, s := range g.steps {
		if s == step {
			return true
		}
	}
	return false
}

// Equal reports whether g and other run the same steps in the same order.
func (g SubstitutionGroup) Equal(other SubstitutionGroup) bool {
	if len(g.steps) != len(other.steps) {
		return false
	}
	for i := range g.steps {
		if g.steps[i] != other.steps[i] {
			return false
		}
	}
	return true
}

// String returns the group's name or its comma-separated steps.
func (g SubstitutionGroup) String() string {
	if name := g.Name(); name != "" {
		return name
	}
	names := make([]string, len(g.steps))
	for i, step := range g.steps {
		names[i] = step.String()
	}
	return strings.Join(names, ",")
}

// Apply runs each of the group's steps over the content in order.
// If the group includes [Macros],
// passthroughs are extracted before the first step
// and restored after the last.
func (g SubstitutionGroup) Apply(c *Content, p *Parser, attrlist *Attrlist) {
	if c == nil || len(g.steps) == 0 {
		return
	}
	var passthroughs Passthroughs
	if g.Has(Macros) {
		passthroughs = ExtractPassthroughs(c)
	}
	for _, step := range g.steps {
		step.Apply(c, p, attrlist)
	}
	passthroughs.RestoreTo(c, p)
}

// ParseSubstitutionGroup parses the value of a subs attribute,
// a comma-separated list of step names, group names, or modifiers.
// A step prefixed with "+" is appended, one suffixed with "+" is prepended,
// and one prefixed with "-" is removed.
// If the first entry is a modifier, the modifications apply to base;
// otherwise the group starts out empty.
// Unknown names are ignored.
func ParseSubstitutionGroup(spec string, base SubstitutionGroup) SubstitutionGroup {
	spec = strings.TrimSpace(spec)
	if g, ok := groupNames[spec]; ok {
		return g
	}
	var steps []SubstitutionStep
	for i, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		op := byte(0)
		switch {
		case strings.HasPrefix(item, "+"):
			op, item = '+', item[1:]
		case strings.HasPrefix(item, "-"):
			op, item = '-', item[1:]
		case strings.HasSuffix(item, "+"):
			op, item = '^', item[:len(item)-1]
		}
		if i == 0 && op != 0 {
			steps = base.Steps()
		}
		var named []SubstitutionStep
		if g, ok := groupNames[item]; ok {
			named = g.steps
		} else if step, ok := ParseSubstitutionStep(item); ok {
			named = []SubstitutionStep{step}
		} else {
			tracer().Debugf("unknown substitution %q", item)
			continue
		}
		switch op {
		case '-':
			steps = removeSteps(steps, named)
		case '^':
			steps = append(append([]SubstitutionStep(nil), named...), removeSteps(steps, named)...)
		default:
			steps = append(removeSteps(steps, named), named...)
		}
	}
	return CustomSubstitutions(steps...)
}

func removeSteps(steps, remove []SubstitutionStep) []SubstitutionStep {
	var kept []SubstitutionStep
	for _, s := range steps {
		drop := false
		for _, r := range remove {
			drop = drop || s == r
		}
		if !drop {
			kept = append(kept, s)
		}
	}
	return kept
}

var specialCharactersReplacer = bytereplacer.New(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeSpecialCharacters(s string) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	return string(specialCharactersReplacer.Replace([]byte(s)))
}

// resolveAttributeReferences replaces {name} with the value of the attribute.
// References to missing attributes are left as-is,
// and a backslash before the opening brace escapes the reference.
func (p *Parser) resolveAttributeReferences(s string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	sb := new(strings.Builder)
	for {
		i := strings.IndexByte(s, '{')
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		end := attributeReferenceEnd(s[i:])
		if end < 0 {
			sb.WriteString(s[:i+1])
			s = s[i+1:]
			continue
		}
		if i > 0 && s[i-1] == '\\' {
			sb.WriteString(s[:i-1])
			sb.WriteString(s[i : i+end])
			s = s[i+end:]
			continue
		}
		sb.WriteString(s[:i])
		ref := s[i : i+end]
		if value, ok := p.Attribute(ref[1 : len(ref)-1]); ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(ref)
		}
		s = s[i+end:]
	}
}

// attributeReferenceEnd returns the length of the attribute reference
// at the start of s or -1 if s does not start with one.
func attributeReferenceEnd(s string) int {
	name, ok := NewSpan(s[1:]).TakeAttributeName()
	if !ok || !name.After.HasPrefix("}") {
		return -1
	}
	return 1 + name.Item.Len() + 1
}

// applyPostReplacements replaces a " +" at the end of a line with a line break.
// If hardbreaks is true, every line but the last ends with a line break.
func applyPostReplacements(s string, hardbreaks bool) string {
	if !hardbreaks && !strings.Contains(s, " +") {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case strings.HasSuffix(line, " +"):
			lines[i] = strings.TrimRight(line[:len(line)-2], " \t") + "<br>"
		case hardbreaks && i < len(lines)-1 && !strings.HasSuffix(line, "<br>"):
			lines[i] = line + "<br>"
		}
	}
	return strings.Join(lines, "\n")
}
