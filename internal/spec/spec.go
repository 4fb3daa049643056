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

// Package spec provides a suite of AsciiDoc examples
// paired with the block structure they parse to.
package spec

import (
	_ "embed"
	"encoding/json"
)

// Example is a single example from the suite.
type Example struct {
	// Name is a short identifier for the example,
	// suitable for use as a subtest name.
	Name string
	// Source is the AsciiDoc text.
	Source string
	// Outline describes the parsed block tree.
	// Each block is written as its context,
	// followed by its children in parentheses if it has any.
	// Sibling blocks are separated by spaces.
	// For example: "section(paragraph example(paragraph))".
	Outline string
	// Warnings is the list of warning types
	// that parsing Source reports, in source order.
	Warnings []string
}

//go:embed examples.json
var examplesData []byte

// Load returns the examples in the suite.
func Load() ([]Example, error) {
	var testsuite []Example
	if err := json.Unmarshal(examplesData, &testsuite); err != nil {
		return nil, err
	}
	return testsuite, nil
}
