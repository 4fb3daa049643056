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

// Content is a span of source text paired with its rendered form.
// The rendered text starts out as a copy of the source text
// and is replaced by each substitution step that runs over it.
type Content struct {
	original Span
	rendered string
}

// NewContent returns a new Content whose rendered text
// is the same as its source text.
func NewContent(source Span) *Content {
	return &Content{
		original: source,
		rendered: source.Data(),
	}
}

// Original returns the source text the content was created from.
func (c *Content) Original() Span {
	if c == nil {
		return Span{}
	}
	return c.original
}

// Rendered returns the text after any substitutions have been applied.
func (c *Content) Rendered() string {
	if c == nil {
		return ""
	}
	return c.rendered
}

// IsEmpty reports whether the rendered text is empty.
func (c *Content) IsEmpty() bool {
	return c.Rendered() == ""
}

func (c *Content) String() string {
	return c.Rendered()
}
