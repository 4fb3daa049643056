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

import "strconv"

// ReferenceMap is a mapping of element IDs to the blocks that define them.
type ReferenceMap map[string]*Block

// MatchReference reports whether the ID appears in the map.
func (m ReferenceMap) MatchReference(id string) bool {
	_, ok := m[id]
	return ok
}

// Extract adds the IDs of b and its descendants to the map.
// The first block to use an ID keeps it.
// A generated section ID that is already taken
// gets a numeric suffix ("_2", "_3", and so on) to make it unique.
// An explicit ID that is already taken produces a [DuplicateID] warning.
func (m ReferenceMap) Extract(b *Block) []Warning {
	var warnings []Warning
	stack := []*Block{b}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if curr == nil {
			continue
		}
		if id := curr.id; id != "" {
			if _, exists := m[id]; exists {
				if curr.generatedID {
					curr.id = m.uniqueID(id)
				} else {
					tracer().Debugf("%v: duplicate ID %q", curr.Source().Line(), id)
					warnings = append(warnings, Warning{
						Source: idSource(curr),
						Type:   DuplicateID,
					})
				}
			}
			if _, exists := m[curr.id]; !exists {
				m[curr.id] = curr
			}
		}
		for i := curr.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, curr.Child(i))
		}
	}
	return warnings
}

func (m ReferenceMap) uniqueID(id string) string {
	for n := 2; ; n++ {
		candidate := id + "_" + strconv.Itoa(n)
		if _, exists := m[candidate]; !exists {
			return candidate
		}
	}
}

// idSource returns the span that declares b's ID.
func idSource(b *Block) Span {
	if anchor, ok := b.Anchor(); ok {
		return anchor
	}
	if al := b.Attrlist(); al.Len() > 0 {
		return al.Source()
	}
	return b.Source()
}
