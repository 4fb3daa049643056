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

// An Attrlist is the parsed form of a bracketed attribute list,
// such as the [source,go] line before a block
// or the bracketed part of a macro.
// Attribute order is preserved.
type Attrlist struct {
	attributes []ElementAttribute
	source     Span
}

// An ElementAttribute is a single named or positional entry of an [Attrlist].
type ElementAttribute struct {
	name      string
	value     string
	position  int
	source    Span
	shorthand []Span
}

// Name returns the attribute's name
// or the empty string for a positional attribute.
func (attr ElementAttribute) Name() string {
	return attr.name
}

// Value returns the attribute's value with quotes removed
// and attribute references resolved.
func (attr ElementAttribute) Value() string {
	return attr.value
}

// Position returns the 1-based position of a positional attribute
// or zero for a named attribute.
func (attr ElementAttribute) Position() int {
	return attr.position
}

// Source returns the span of the attribute in the source.
func (attr ElementAttribute) Source() Span {
	return attr.source
}

// ShorthandItems returns the shorthand items of the first positional attribute,
// such as "quote", "#id", ".role", or "%option".
func (attr ElementAttribute) ShorthandItems() []Span {
	return attr.shorthand
}

// BlockStyle returns the leading shorthand item without a prefix, if any.
func (attr ElementAttribute) BlockStyle() string {
	if len(attr.shorthand) == 0 {
		return ""
	}
	if first := attr.shorthand[0].Data(); !isShorthandPrefix(first[0]) {
		return first
	}
	return ""
}

// ID returns the value of the first "#" shorthand item.
func (attr ElementAttribute) ID() string {
	for _, item := range attr.shorthand {
		if data := item.Data(); data[0] == '#' {
			return data[1:]
		}
	}
	return ""
}

// Roles returns the values of the "." shorthand items.
func (attr ElementAttribute) Roles() []string {
	return attr.shorthandValues('.')
}

// Options returns the values of the "%" shorthand items.
func (attr ElementAttribute) Options() []string {
	return attr.shorthandValues('%')
}

func (attr ElementAttribute) shorthandValues(prefix byte) []string {
	var values []string
	for _, item := range attr.shorthand {
		if data := item.Data(); data[0] == prefix {
			values = append(values, data[1:])
		}
	}
	return values
}

// Source returns the span of the attribute list's text,
// not including the enclosing brackets.
func (al *Attrlist) Source() Span {
	if al == nil {
		return Span{}
	}
	return al.source
}

// Len returns the number of attributes in the list.
func (al *Attrlist) Len() int {
	if al == nil {
		return 0
	}
	return len(al.attributes)
}

// Attributes returns the attributes in source order.
func (al *Attrlist) Attributes() []ElementAttribute {
	if al == nil {
		return nil
	}
	return al.attributes
}

// NamedAttribute returns the last attribute with the given name.
func (al *Attrlist) NamedAttribute(name string) (ElementAttribute, bool) {
	if al == nil {
		return ElementAttribute{}, false
	}
	for i := len(al.attributes) - 1; i >= 0; i-- {
		if al.attributes[i].name == name {
			return al.attributes[i], true
		}
	}
	return ElementAttribute{}, false
}

// NthAttribute returns the positional attribute at the 1-based position n.
// When lists have been merged, a later empty value
// does not shadow an earlier non-empty one.
func (al *Attrlist) NthAttribute(n int) (ElementAttribute, bool) {
	if al == nil || n <= 0 {
		return ElementAttribute{}, false
	}
	var found ElementAttribute
	ok := false
	for i := len(al.attributes) - 1; i >= 0; i-- {
		attr := al.attributes[i]
		if attr.position != n {
			continue
		}
		if attr.value != "" {
			return attr, true
		}
		if !ok {
			found, ok = attr, true
		}
	}
	return found, ok
}

// NthOrNamed returns the named attribute if present,
// falling back to the positional attribute at position n.
func (al *Attrlist) NthOrNamed(n int, name string) (ElementAttribute, bool) {
	if attr, ok := al.NamedAttribute(name); ok {
		return attr, true
	}
	return al.NthAttribute(n)
}

// BlockStyle returns the style named by the first positional attribute's shorthand.
func (al *Attrlist) BlockStyle() string {
	first, ok := al.NthAttribute(1)
	if !ok {
		return ""
	}
	return first.BlockStyle()
}

// ID returns the element ID given by an id attribute
// or by "#" shorthand.
func (al *Attrlist) ID() string {
	if attr, ok := al.NamedAttribute("id"); ok {
		return attr.value
	}
	first, _ := al.NthAttribute(1)
	return first.ID()
}

// Roles returns the roles given by "." shorthand followed by
// the space-separated words of a role attribute.
func (al *Attrlist) Roles() []string {
	first, _ := al.NthAttribute(1)
	roles := first.Roles()
	if attr, ok := al.NamedAttribute("role"); ok {
		roles = append(roles, strings.Fields(attr.value)...)
	}
	return roles
}

// Options returns the options given by "%" shorthand followed by
// the comma-separated values of an opts or options attribute.
func (al *Attrlist) Options() []string {
	first, _ := al.NthAttribute(1)
	opts := first.Options()
	for _, name := range []string{"opts", "options"} {
		if attr, ok := al.NamedAttribute(name); ok {
			for _, o := range strings.Split(attr.value, ",") {
				if o = strings.TrimSpace(o); o != "" {
					opts = append(opts, o)
				}
			}
		}
	}
	return opts
}

// HasOption reports whether the named option is set.
func (al *Attrlist) HasOption(name string) bool {
	if attr, ok := al.NamedAttribute(name + "-option"); ok && attr.value == "" {
		return true
	}
	for _, o := range al.Options() {
		if o == name {
			return true
		}
	}
	return false
}

// merge returns the attribute list formed by appending other's attributes to al's.
// Positional attributes in other shadow those at the same position in al.
func (al *Attrlist) merge(other *Attrlist) *Attrlist {
	if al == nil {
		return other
	}
	if other == nil {
		return al
	}
	merged := &Attrlist{
		attributes: make([]ElementAttribute, 0, len(al.attributes)+len(other.attributes)),
		source:     other.source,
	}
	merged.attributes = append(merged.attributes, al.attributes...)
	merged.attributes = append(merged.attributes, other.attributes...)
	return merged
}

// parseAttrlist parses the text between the brackets of an attribute list.
// It always succeeds; malformed input produces warnings.
// Attribute references in values are resolved against p, which may be nil.
func parseAttrlist(source Span, p *Parser) (*Attrlist, []Warning) {
	al := &Attrlist{source: source}
	var warnings []Warning
	position := 0
	next := source.TakeWhitespace().After
	for !next.IsEmpty() {
		attr, rest, attrWarnings := parseElementAttribute(next, p, position == 0)
		warnings = append(warnings, attrWarnings...)
		if attr.name == "" {
			position++
			attr.position = position
		}
		al.attributes = append(al.attributes, attr)

		rest = rest.TakeWhitespace().After
		if rest.IsEmpty() {
			break
		}
		comma, ok := rest.TakePrefix(",")
		if !ok {
			// Recovering from a quoted value with trailing text:
			// the remainder starts a new attribute.
			next = rest
			continue
		}
		next = comma.After.TakeWhitespace().After
		for next.HasPrefix(",") {
			warnings = append(warnings, Warning{
				Source: source,
				Type:   EmptyAttributeValue,
			})
			position++
			next = next.Discard(1).TakeWhitespace().After
		}
	}
	return al, warnings
}

// parseElementAttribute parses a single attribute starting at the beginning of source.
// after begins at the first byte that is not part of the attribute:
// a comma, the end of the list, or text that follows a quoted value.
func parseElementAttribute(source Span, p *Parser, first bool) (attr ElementAttribute, after Span, warnings []Warning) {
	start := source
	if name, ok := source.TakeAttributeName(); ok {
		ws := name.After.TakeWhitespace()
		if eq, ok := ws.After.TakePrefix("="); ok {
			attr.name = name.Item.Data()
			source = eq.After.TakeWhitespace().After
		}
	}

	if source.HasPrefix(`"`) || source.HasPrefix("'") {
		quoted, ok := source.TakeQuotedString()
		if ok {
			attr.value = unescapeQuoted(quoted.Item.Data(), source.Data()[0])
			if source.Data()[0] == '"' {
				attr.value = p.resolveAttributeReferences(attr.value)
			}
			attr.source = start.TrimRemainder(quoted.After)
			rest := quoted.After.TakeWhitespace().After
			if !rest.IsEmpty() && !rest.HasPrefix(",") {
				warnings = append(warnings, Warning{
					Source: rest.TakeWhile(func(c rune) bool { return c != ',' }).Item.TrimTrailingWhitespace(),
					Type:   MissingCommaAfterQuotedAttributeValue,
				})
				return attr, rest, warnings
			}
			return attr, quoted.After, warnings
		}
		warnings = append(warnings, Warning{
			Source: source.TakeWhile(func(c rune) bool { return c != ',' }).Item.TrimTrailingWhitespace(),
			Type:   AttributeValueMissingTerminatingQuote,
		})
	}

	value := source.TakeWhile(func(c rune) bool { return c != ',' })
	valueSpan := value.Item.TrimTrailingWhitespace()
	attr.value = p.resolveAttributeReferences(valueSpan.Data())
	attr.source = start.TrimRemainder(value.After).TrimTrailingWhitespace()
	if first && attr.name == "" && !valueSpan.IsEmpty() {
		var shorthandWarnings []Warning
		attr.shorthand, shorthandWarnings = parseShorthand(valueSpan)
		warnings = append(warnings, shorthandWarnings...)
	}
	return attr, value.After, warnings
}

// parseShorthand splits the first positional attribute into shorthand items:
// an optional leading style followed by "#id", ".role", and "%option" items.
// Values containing whitespace are treated as a single style item.
func parseShorthand(value Span) ([]Span, []Warning) {
	if strings.ContainsAny(value.Data(), " \t") {
		return []Span{value}, nil
	}
	var items []Span
	var warnings []Warning
	for rest := value; !rest.IsEmpty(); {
		start := 0
		if isShorthandPrefix(rest.Data()[0]) {
			start = 1
		}
		end := len(rest.Data())
		if i := strings.IndexAny(rest.Data()[start:], "#.%"); i >= 0 {
			end = start + i
		}
		item := rest.Slice(0, end)
		if end == start {
			// A prefix with nothing after it, as in "#." or a trailing ".".
			warnings = append(warnings, Warning{
				Source: item,
				Type:   EmptyShorthandItem,
			})
		} else {
			items = append(items, item)
		}
		rest = rest.Discard(end)
	}
	return items, warnings
}

func isShorthandPrefix(c byte) bool {
	return c == '#' || c == '.' || c == '%'
}

// unescapeQuoted removes backslashes that escape the enclosing quote character.
func unescapeQuoted(s string, quote byte) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return strings.ReplaceAll(s, `\`+string(quote), string(quote))
}
