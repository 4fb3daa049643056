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
	"unicode"
	"unicode/utf8"
)

// replacementRules is the ordered list of character replacements.
// Each one runs over the output of the previous one.
// A backslash before a match escapes it.
var replacementRules = []func(string) string{
	literalReplacement("(C)", "&#169;"),
	literalReplacement("(R)", "&#174;"),
	literalReplacement("(TM)", "&#8482;"),
	replaceSpacedDashes,
	replaceWordDashes,
	literalReplacement("...", "&#8230;&#8203;"),
	literalReplacement("`'", "&#8217;"),
	replaceApostrophes,
	literalReplacement("-&gt;", "&#8594;"),
	literalReplacement("=&gt;", "&#8658;"),
	literalReplacement("&lt;-", "&#8592;"),
	literalReplacement("&lt;=", "&#8656;"),
	restoreEntities,
}

func applyReplacements(s string) string {
	for _, replace := range replacementRules {
		s = replace(s)
	}
	return s
}

// literalReplacement returns a replacement rule
// that replaces every occurrence of from with to.
func literalReplacement(from, to string) func(string) string {
	return func(s string) string {
		if !strings.Contains(s, from) {
			return s
		}
		sb := new(strings.Builder)
		for {
			i := strings.Index(s, from)
			if i < 0 {
				break
			}
			if i > 0 && s[i-1] == '\\' {
				sb.WriteString(s[:i-1])
				sb.WriteString(from)
			} else {
				sb.WriteString(s[:i])
				sb.WriteString(to)
			}
			s = s[i+len(from):]
		}
		sb.WriteString(s)
		return sb.String()
	}
}

// replaceSpacedDashes replaces a double hyphen surrounded by spaces
// (or line boundaries) with a thin-space-padded em dash.
// The surrounding spaces are consumed.
func replaceSpacedDashes(s string) string {
	const dash = "&#8201;&#8212;&#8201;"
	if !strings.Contains(s, "--") {
		return s
	}
	sb := new(strings.Builder)
	written, pos := 0, 0
	for {
		k := strings.Index(s[pos:], "--")
		if k < 0 {
			break
		}
		i := pos + k
		before := byte(0)
		if i > 0 {
			before = s[i-1]
		}
		beforeOK := i == 0 || i-1 >= written && (before == ' ' || before == '\n' || before == '\\')
		afterOK := i+2 == len(s) || s[i+2] == ' ' || s[i+2] == '\n'
		if !beforeOK || !afterOK {
			// Skip the whole run of hyphens.
			pos = i + 2
			for pos < len(s) && s[pos] == '-' {
				pos++
			}
			continue
		}
		end := i + 2
		if end < len(s) {
			end++
		}
		switch {
		case i == 0:
			sb.WriteString(dash)
		case before == '\\':
			sb.WriteString(s[written : i-1])
			sb.WriteString(s[i:end])
		default:
			sb.WriteString(s[written : i-1])
			sb.WriteString(dash)
		}
		written, pos = end, end
	}
	sb.WriteString(s[written:])
	return sb.String()
}

// replaceWordDashes replaces a double hyphen between two word characters
// with an em dash followed by a zero-width space.
func replaceWordDashes(s string) string {
	if !strings.Contains(s, "--") {
		return s
	}
	sb := new(strings.Builder)
	for {
		i := strings.Index(s, "--")
		if i < 0 {
			break
		}
		escaped := i > 0 && s[i-1] == '\\'
		lead := s[:i]
		if escaped {
			lead = s[:i-1]
		}
		before, _ := utf8.DecodeLastRuneInString(lead)
		after, _ := utf8.DecodeRuneInString(s[i+2:])
		if lead == "" || !isWordChar(before) || i+2 == len(s) || !isWordChar(after) {
			sb.WriteString(s[:i+2])
			s = s[i+2:]
			continue
		}
		sb.WriteString(lead)
		if escaped {
			sb.WriteString("--")
		} else {
			sb.WriteString("&#8212;&#8203;")
		}
		s = s[i+2:]
	}
	sb.WriteString(s)
	return sb.String()
}

// replaceApostrophes replaces a single quote
// between an alphanumeric character and a letter
// with a typographic apostrophe.
func replaceApostrophes(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}
	sb := new(strings.Builder)
	for {
		i := strings.IndexByte(s, '\'')
		if i < 0 {
			break
		}
		escaped := i > 0 && s[i-1] == '\\'
		lead := s[:i]
		if escaped {
			lead = s[:i-1]
		}
		before, _ := utf8.DecodeLastRuneInString(lead)
		after, _ := utf8.DecodeRuneInString(s[i+1:])
		isAlnum := unicode.IsLetter(before) || unicode.IsDigit(before)
		if lead == "" || !isAlnum || i+1 == len(s) || !unicode.IsLetter(after) {
			sb.WriteString(s[:i+1])
			s = s[i+1:]
			continue
		}
		sb.WriteString(lead)
		if escaped {
			sb.WriteString("'")
		} else {
			sb.WriteString("&#8217;")
		}
		s = s[i+1:]
	}
	sb.WriteString(s)
	return sb.String()
}

// restoreEntities undoes the escaping of character references
// by the special characters step, so that "&#169;" in the source
// renders as a character reference.
func restoreEntities(s string) string {
	const escapedAmp = "&amp;"
	if !strings.Contains(s, escapedAmp) {
		return s
	}
	sb := new(strings.Builder)
	for {
		i := strings.Index(s, escapedAmp)
		if i < 0 {
			break
		}
		n := charRefBodyEnd(s[i+len(escapedAmp):])
		switch {
		case n == 0:
			sb.WriteString(s[:i+len(escapedAmp)])
		case i > 0 && s[i-1] == '\\':
			sb.WriteString(s[:i-1])
			sb.WriteString(s[i : i+len(escapedAmp)+n])
		default:
			sb.WriteString(s[:i])
			sb.WriteString("&")
			sb.WriteString(s[i+len(escapedAmp) : i+len(escapedAmp)+n])
		}
		s = s[i+len(escapedAmp)+n:]
	}
	sb.WriteString(s)
	return sb.String()
}
