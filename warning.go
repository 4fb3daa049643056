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
)

// A Warning is a non-fatal diagnostic about malformed but recoverable input.
type Warning struct {
	// Source is the region of the input the warning is about.
	Source Span
	Type   WarningType
}

// String formats the warning as "line:col: message".
func (w Warning) String() string {
	return fmt.Sprintf("%d:%d: %s", w.Source.Line(), w.Source.Col(), w.Type.message())
}

// Show formats the warning along with the source line it points at,
// underlining the offending text.
// source must be the full text the warning's span was derived from,
// and name is used as a prefix (usually a file name).
func (w Warning) Show(name, source string) string {
	sb := new(strings.Builder)
	if name != "" {
		sb.WriteString(name)
		sb.WriteString(":")
	}
	sb.WriteString(w.String())
	from := w.Source.ByteOffset()
	if from < 0 || from > len(source) {
		return sb.String()
	}
	lineStart := strings.LastIndexByte(source[:from], '\n') + 1
	lineEnd := len(source)
	if i := strings.IndexByte(source[from:], '\n'); i >= 0 {
		lineEnd = from + i
	}
	culpritLen := len(firstLine(w.Source.Data()))
	if culpritLen == 0 {
		culpritLen = 1
	}
	sb.WriteString("\n    ")
	sb.WriteString(strings.TrimSuffix(source[lineStart:lineEnd], "\r"))
	sb.WriteString("\n    ")
	sb.WriteString(strings.Repeat(" ", w.Source.Col()-1))
	sb.WriteString("^")
	sb.WriteString(strings.Repeat("~", culpritLen-1))
	return sb.String()
}

// WarningType is an enumeration of diagnostic kinds.
type WarningType uint16

const (
	// MacroMissingDoubleColon indicates a block macro whose name
	// is followed by something other than "::".
	MacroMissingDoubleColon WarningType = 1 + iota
	// MacroMissingAttributeList indicates a block macro
	// without a bracketed attribute list after its target.
	MacroMissingAttributeList
	// MediaMacroMissingTarget indicates an image, video, or audio macro
	// with an empty target.
	MediaMacroMissingTarget
	// MissingCommaAfterQuotedAttributeValue indicates a quoted attribute value
	// followed by more text instead of a comma.
	MissingCommaAfterQuotedAttributeValue
	// AttributeValueMissingTerminatingQuote indicates a quoted attribute value
	// without its closing quote.
	AttributeValueMissingTerminatingQuote
	// EmptyAttributeValue indicates two commas in a row in an attribute list.
	EmptyAttributeValue
	// EmptyShorthandItem indicates a shorthand prefix (#, ., or %)
	// followed immediately by another prefix or the end of the value.
	EmptyShorthandItem
	// UnterminatedDelimitedBlock indicates an opening fence
	// without a matching closing fence.
	UnterminatedDelimitedBlock
	// MissingBlockAfterTitleOrAttributeList indicates block metadata lines
	// that are not followed by a block.
	MissingBlockAfterTitleOrAttributeList
	// DuplicateID indicates an ID that was already used earlier in the document.
	DuplicateID
)

// String returns the Go identifier of the warning type.
func (t WarningType) String() string {
	switch t {
	case MacroMissingDoubleColon:
		return "MacroMissingDoubleColon"
	case MacroMissingAttributeList:
		return "MacroMissingAttributeList"
	case MediaMacroMissingTarget:
		return "MediaMacroMissingTarget"
	case MissingCommaAfterQuotedAttributeValue:
		return "MissingCommaAfterQuotedAttributeValue"
	case AttributeValueMissingTerminatingQuote:
		return "AttributeValueMissingTerminatingQuote"
	case EmptyAttributeValue:
		return "EmptyAttributeValue"
	case EmptyShorthandItem:
		return "EmptyShorthandItem"
	case UnterminatedDelimitedBlock:
		return "UnterminatedDelimitedBlock"
	case MissingBlockAfterTitleOrAttributeList:
		return "MissingBlockAfterTitleOrAttributeList"
	case DuplicateID:
		return "DuplicateID"
	default:
		return fmt.Sprintf("WarningType(%d)", uint16(t))
	}
}

func (t WarningType) message() string {
	switch t {
	case MacroMissingDoubleColon:
		return "block macro name must be followed by '::'"
	case MacroMissingAttributeList:
		return "block macro is missing its attribute list"
	case MediaMacroMissingTarget:
		return "media macro is missing a target"
	case MissingCommaAfterQuotedAttributeValue:
		return "missing comma after quoted attribute value"
	case AttributeValueMissingTerminatingQuote:
		return "quoted attribute value is missing its closing quote"
	case EmptyAttributeValue:
		return "empty attribute value"
	case EmptyShorthandItem:
		return "empty shorthand item"
	case UnterminatedDelimitedBlock:
		return "unterminated delimited block"
	case MissingBlockAfterTitleOrAttributeList:
		return "block title or attribute list is not followed by a block"
	case DuplicateID:
		return "duplicate ID"
	default:
		return t.String()
	}
}

// MatchAndWarnings is the result of a recognizer
// that can fail and still report why the input almost matched.
type MatchAndWarnings[T any] struct {
	// Item is only meaningful if Matched is true.
	Item     T
	Matched  bool
	Warnings []Warning
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
