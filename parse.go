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

// Package asciidoc provides an [AsciiDoc] parser.
//
// Parsing happens in two stages.
// The block parser splits the source into a tree of [Block] values
// (paragraphs, delimited blocks, sections, and so on),
// recording [Warning] values for malformed but recoverable input.
// Then the text of each block is run through a [SubstitutionGroup],
// which rewrites inline markup into HTML
// while protecting passthrough regions from some or all of the steps.
//
// [AsciiDoc]: https://docs.asciidoctor.org/asciidoc/latest/
package asciidoc

import (
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// tracer returns the trace used by the parser.
func tracer() tracing.Trace {
	return tracing.Select("asciidoc.parse")
}

// A Parser holds the configuration for parsing AsciiDoc:
// the document attributes available to attribute references.
// A Parser is never modified after it is created,
// so it is safe to use from multiple goroutines.
// A nil *Parser uses only the intrinsic attributes.
type Parser struct {
	attributes map[string]string
}

// An Option configures a [Parser].
type Option func(*Parser)

// WithAttribute sets a document attribute.
// The name is case-insensitive.
func WithAttribute(name, value string) Option {
	return func(p *Parser) {
		p.attributes[foldName(name)] = value
	}
}

// WithoutAttribute removes a document attribute,
// including an intrinsic one.
func WithoutAttribute(name string) Option {
	return func(p *Parser) {
		delete(p.attributes, foldName(name))
	}
}

// NewParser returns a new parser with the intrinsic attributes
// and then the given options applied.
func NewParser(opts ...Option) *Parser {
	p := &Parser{attributes: make(map[string]string, len(intrinsicAttributes)+len(opts))}
	for k, v := range intrinsicAttributes {
		p.attributes[k] = v
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// intrinsicAttributes is the set of attributes defined in every document.
var intrinsicAttributes = map[string]string{
	"empty":          "",
	"sp":             " ",
	"nbsp":           "&#160;",
	"zwsp":           "&#8203;",
	"wj":             "&#8288;",
	"apos":           "&#39;",
	"quot":           "&#34;",
	"lsquo":          "&#8216;",
	"rsquo":          "&#8217;",
	"ldquo":          "&#8220;",
	"rdquo":          "&#8221;",
	"deg":            "&#176;",
	"plus":           "&#43;",
	"brvbar":         "&#166;",
	"vbar":           "|",
	"amp":            "&",
	"lt":             "<",
	"gt":             ">",
	"startsb":        "[",
	"endsb":          "]",
	"caret":          "^",
	"asterisk":       "*",
	"tilde":          "~",
	"backslash":      `\`,
	"backtick":       "`",
	"two-colons":     "::",
	"two-semicolons": ";;",
	"cpp":            "C++",

	"outfilesuffix": ".html",

	"sectids":     "",
	"idprefix":    "_",
	"idseparator": "_",
}

// Attribute returns the value of the named document attribute.
func (p *Parser) Attribute(name string) (value string, ok bool) {
	name = foldName(name)
	if p == nil {
		value, ok = intrinsicAttributes[name]
		return value, ok
	}
	value, ok = p.attributes[name]
	return value, ok
}

// HasAttribute reports whether the named document attribute is set.
func (p *Parser) HasAttribute(name string) bool {
	_, ok := p.Attribute(name)
	return ok
}

// withOptions returns a copy of p with the options applied.
func (p *Parser) withOptions(opts ...Option) *Parser {
	if p == nil {
		return NewParser(opts...)
	}
	p2 := &Parser{attributes: make(map[string]string, len(p.attributes)+len(opts))}
	for k, v := range p.attributes {
		p2.attributes[k] = v
	}
	for _, opt := range opts {
		opt(p2)
	}
	return p2
}

// withAttributeEntry returns the parser to use for blocks
// following a document attribute entry.
func (p *Parser) withAttributeEntry(b *Block) *Parser {
	if b.Kind() != DocumentAttributeKind {
		return p
	}
	if v := b.AttributeValue(); v != nil {
		tracer().Debugf("%v: set attribute %s", b.Source().Line(), b.AttributeName())
		return p.withOptions(WithAttribute(b.AttributeName(), v.Rendered()))
	}
	tracer().Debugf("%v: unset attribute %s", b.Source().Line(), b.AttributeName())
	return p.withOptions(WithoutAttribute(b.AttributeName()))
}

// Parse parses an entire AsciiDoc document with the default [Parser].
func Parse(source string) *Document {
	return NewParser().Parse(source)
}

// Parse parses an entire AsciiDoc document.
// Parsing never fails: malformed input is reported in [Document.Warnings].
func (p *Parser) Parse(source string) *Document {
	source = sanitize(source)
	blocks, warnings := p.parseBlocks(NewSpan(source))
	doc := &Document{
		Source:     source,
		Blocks:     blocks,
		Warnings:   warnings,
		References: make(ReferenceMap),
		parser:     p,
	}
	for _, b := range blocks {
		doc.Warnings = append(doc.Warnings, doc.References.Extract(b)...)
		doc.parser = doc.parser.withAttributeEntry(b)
	}
	sort.SliceStable(doc.Warnings, func(i, j int) bool {
		return doc.Warnings[i].Source.ByteOffset() < doc.Warnings[j].Source.ByteOffset()
	})
	tracer().Infof("parsed %d top-level blocks with %d warnings", len(doc.Blocks), len(doc.Warnings))
	return doc
}

// A Document is the result of parsing AsciiDoc source.
type Document struct {
	// Source is the text that was parsed,
	// after replacing NUL and reserved placeholder characters.
	// All spans in the document refer to it.
	Source string
	// Blocks is the sequence of top-level blocks.
	Blocks []*Block
	// Warnings is the list of diagnostics in source order.
	Warnings []Warning
	// References maps the IDs defined in the document to their blocks.
	References ReferenceMap

	parser *Parser
}

// Attribute returns the value of a document attribute
// as of the end of the document.
func (doc *Document) Attribute(name string) (value string, ok bool) {
	return doc.parser.Attribute(name)
}

// Root returns a synthetic block containing the top-level blocks,
// suitable for passing to [Walk].
// It has no kind and spans the entire source.
func (doc *Document) Root() *Block {
	return &Block{
		source:   NewSpan(doc.Source),
		children: doc.Blocks,
	}
}

// sanitize replaces characters that would otherwise
// be confused with passthrough placeholders or terminate C strings.
func sanitize(source string) string {
	if !strings.ContainsAny(source, "\x00"+placeholderStart+placeholderEnd) {
		return source
	}
	return insecureReplacer.Replace(source)
}

var insecureReplacer = strings.NewReplacer(
	"\x00", "\ufffd",
	placeholderStart, "\ufffd",
	placeholderEnd, "\ufffd",
)

// foldName returns the canonical form of an attribute name.
func foldName(name string) string {
	for i := 0; i < len(name); i++ {
		if c := name[i]; 'A' <= c && c <= 'Z' || c >= 0x80 {
			return cases.Lower(language.Und).String(name)
		}
	}
	return name
}
