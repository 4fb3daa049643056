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

// Package normhtml provides a function for normalizing rendered HTML
// so that tests can compare documents
// without regard to attribute order or layout whitespace.
// The approach follows the [CommonMark spec test normalization].
//
// [CommonMark spec test normalization]: https://github.com/commonmark/commonmark-spec/blob/0.30.0/test/normalize.py
package normhtml

import (
	"bytes"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

type htmlAttribute struct {
	key   string
	value string
}

// NormalizeHTML strips insignificant output differences from HTML.
// Attributes are sorted by name,
// the tokens of a class attribute are sorted,
// whitespace outside of pre elements is collapsed,
// and whitespace around block-level elements
// and at the end of the input is removed.
func NormalizeHTML(b []byte) []byte {
	tok := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	var output []byte
	last := html.StartTagToken
	var lastTag string
	preDepth := 0
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return bytes.TrimRightFunc(output, unicode.IsSpace)
		case html.TextToken:
			data := tok.Text()
			afterTag := last == html.EndTagToken || last == html.StartTagToken
			if afterTag && lastTag == "br" {
				data = bytes.TrimLeft(data, "\n")
			}
			if preDepth == 0 {
				data = whitespaceRE.ReplaceAll(data, []byte(" "))
				if afterTag && isBlockTag(lastTag) {
					if last == html.StartTagToken {
						data = bytes.TrimLeftFunc(data, unicode.IsSpace)
					} else {
						data = bytes.TrimSpace(data)
					}
				}
			}
			output = append(output, htmlEscaper.Replace(bytes.Clone(data))...)
		case html.EndTagToken:
			tagBytes, _ := tok.TagName()
			tag := string(tagBytes)
			if tag == "pre" {
				preDepth--
			} else if isBlockTag(tag) && preDepth == 0 {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			output = append(output, "</"...)
			output = append(output, tag...)
			output = append(output, ">"...)
			lastTag = tag
		case html.StartTagToken, html.SelfClosingTagToken:
			tagBytes, hasAttr := tok.TagName()
			tag := string(tagBytes)
			if isBlockTag(tag) && preDepth == 0 {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			if tag == "pre" {
				preDepth++
			}
			output = append(output, "<"...)
			output = append(output, tag...)
			if hasAttr {
				output = appendAttributes(output, tok)
			}
			output = append(output, ">"...)
			lastTag = tag
		case html.CommentToken:
			output = append(output, tok.Raw()...)
		}

		last = tt
		if tt == html.SelfClosingTagToken {
			last = html.EndTagToken
		}
	}
}

func appendAttributes(dst []byte, tok *html.Tokenizer) []byte {
	var attrs []htmlAttribute
	for {
		k, v, more := tok.TagAttr()
		attr := htmlAttribute{string(k), string(v)}
		if attr.key == "class" {
			classes := strings.Fields(attr.value)
			sort.Strings(classes)
			attr.value = strings.Join(classes, " ")
		}
		attrs = append(attrs, attr)
		if !more {
			break
		}
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].key < attrs[j].key
	})
	for _, attr := range attrs {
		dst = append(dst, " "...)
		dst = append(dst, attr.key...)
		if attr.value != "" {
			dst = append(dst, `="`...)
			dst = append(dst, html.EscapeString(attr.value)...)
			dst = append(dst, `"`...)
		}
	}
	return dst
}

var blockTags = make(map[string]struct{})

func init() {
	for _, a := range []atom.Atom{
		atom.Article,
		atom.Aside,
		atom.Audio,
		atom.Blockquote,
		atom.Body,
		atom.Caption,
		atom.Col,
		atom.Colgroup,
		atom.Dd,
		atom.Div,
		atom.Dl,
		atom.Dt,
		atom.Embed,
		atom.Figcaption,
		atom.Figure,
		atom.Footer,
		atom.H1,
		atom.H2,
		atom.H3,
		atom.H4,
		atom.H5,
		atom.H6,
		atom.Header,
		atom.Hr,
		atom.Iframe,
		atom.Li,
		atom.Ol,
		atom.P,
		atom.Pre,
		atom.Script,
		atom.Section,
		atom.Style,
		atom.Table,
		atom.Tbody,
		atom.Td,
		atom.Tfoot,
		atom.Th,
		atom.Thead,
		atom.Tr,
		atom.Ul,
		atom.Video,
	} {
		blockTags[a.String()] = struct{}{}
	}
}

func isBlockTag(tag string) bool {
	_, ok := blockTags[tag]
	return ok
}
