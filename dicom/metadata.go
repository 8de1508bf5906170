// Copyright 2025 CubeFlix
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dicom

import "golang.org/x/text/encoding"

// DefaultMaxNestingDepth bounds sequence recursion for decodes that do not
// override it with WithMaxNestingDepth. Crafted files with unbounded nesting
// fail with ErrNestingTooDeep instead of exhausting the stack.
const DefaultMaxNestingDepth = 64

// dicomMetaData is the decode context threaded through the parser: how
// objects within the DICOM stream are encoded, the active character
// repertoire, the current sequence nesting depth, and the decode policy
// flags. Nested items receive a copy, so context changes inside an item
// never leak outward.
type dicomMetaData struct {
	syntax   transferSyntax
	encoding encoding.Encoding

	depth  int
	config parseConfig
}

// parseConfig holds the decode policy configured through ParseOptions.
type parseConfig struct {
	maxNestingDepth    int
	allowDuplicateTags bool
	lenient            bool
}

var defaultParseConfig = parseConfig{maxNestingDepth: DefaultMaxNestingDepth}

var defaultMetaData = dicomMetaData{
	syntax:   explicitVRLittleEndian,
	encoding: defaultCharacterRepertoire,
	config:   defaultParseConfig,
}

// nested returns the context for decoding one level deeper, or an error if
// the configured maximum nesting depth would be exceeded.
func (md dicomMetaData) nested(offset int64) (dicomMetaData, error) {
	md.depth++
	if md.depth > md.config.maxNestingDepth {
		return md, parseErrorf(offset, ErrNestingTooDeep, "depth %d exceeds maximum %d", md.depth, md.config.maxNestingDepth)
	}
	return md, nil
}
