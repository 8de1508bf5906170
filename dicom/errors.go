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

import (
	"errors"
	"fmt"
)

// Error kinds returned while decoding. Every structural failure surfaced by
// Parse wraps exactly one of these, so callers can classify failures with
// errors.Is. The offset at which the failure occurred is available through
// errors.As with *ParseError.
var (
	// ErrNotADicomFile indicates the stream does not begin with a 128-byte
	// preamble followed by the "DICM" magic identifier.
	ErrNotADicomFile = errors.New("dicom: not a DICOM file")

	// ErrTruncatedStream indicates a read past the end of the input.
	ErrTruncatedStream = errors.New("dicom: truncated stream")

	// ErrInvalidVR indicates an unrecognized value representation code in an
	// explicit VR transfer syntax.
	ErrInvalidVR = errors.New("dicom: invalid value representation")

	// ErrInvalidLength indicates a declared value length inconsistent with
	// the VR or with the remaining bytes.
	ErrInvalidLength = errors.New("dicom: invalid value length")

	// ErrMissingTransferSyntax indicates the File Meta Information group has
	// no Transfer Syntax UID element.
	ErrMissingTransferSyntax = errors.New("dicom: missing transfer syntax")

	// ErrUnsupportedTransferSyntax indicates a Transfer Syntax UID that does
	// not map to a known VR mode and byte order.
	ErrUnsupportedTransferSyntax = errors.New("dicom: unsupported transfer syntax")

	// ErrDuplicateTag indicates a tag repeated at the same nesting level.
	ErrDuplicateTag = errors.New("dicom: duplicate tag")

	// ErrNestingTooDeep indicates sequence nesting beyond the configured
	// maximum depth.
	ErrNestingTooDeep = errors.New("dicom: sequence nesting too deep")

	// ErrMalformedValue indicates value content that cannot be decoded under
	// its VR, such as non-numeric digits in a date.
	ErrMalformedValue = errors.New("dicom: malformed value")
)

// ParseError is the error type returned for structural failures. It carries
// the absolute stream offset at which decoding failed and wraps one of the
// error kinds above.
type ParseError struct {
	// Offset is the number of bytes preceding the position at which the
	// failure was detected.
	Offset int64

	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// parseErrorf builds a *ParseError at the given offset wrapping the error
// kind so that errors.Is(err, kind) holds.
func parseErrorf(offset int64, kind error, format string, a ...interface{}) *ParseError {
	args := append([]interface{}{kind}, a...)
	return &ParseError{Offset: offset, Err: fmt.Errorf("%w: "+format, args...)}
}
