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
	"encoding/binary"
	"io"
)

// dcmReader is a wrapper around io.Reader, providing convenience methods for
// parsing tags, numbers and strings. Multi-byte scalars are assembled using
// the byte order passed to each read, so the caller may legally switch byte
// order between reads (as happens crossing from the File Meta Information
// group into a big-endian data set).
type dcmReader struct {
	cr *countReader
}

func newDcmReader(r io.Reader) *dcmReader {
	return &dcmReader{&countReader{r, 0}}
}

// newDcmReaderAt returns a dcmReader whose reported offsets start at base.
// Used when re-reading buffered regions (like the File Meta Information
// group) so that error offsets stay absolute.
func newDcmReaderAt(r io.Reader, base int64) *dcmReader {
	return &dcmReader{&countReader{r, base}}
}

// Pos returns the absolute offset of the next byte to be read. It is used to
// attach offsets to parse errors.
func (dr *dcmReader) Pos() int64 {
	return dr.cr.bytesRead
}

func (dr *dcmReader) Tag(order binary.ByteOrder) (DataElementTag, error) {
	group, err := dr.UInt16(order)
	if err != nil {
		return 0, err
	}
	element, err := dr.UInt16(order)
	if err == io.EOF {
		return 0, parseErrorf(dr.Pos(), ErrTruncatedStream, "unexpected end of input inside tag")
	}
	if err != nil {
		return 0, err
	}

	return DataElementTag(uint32(group)<<16 | uint32(element)), nil
}

// Limit returns a dcmReader that shares the same underlying io.Reader that
// returns EOF after reading n bytes.
func (dr *dcmReader) Limit(n int64) *dcmReader {
	return &dcmReader{limitCountReader(dr.cr, n)}
}

// Skip advances the input stream by n bytes.
func (dr *dcmReader) Skip(n int64) error {
	start := dr.Pos()
	if _, err := io.CopyN(io.Discard, dr.cr, n); err != nil {
		return truncatedError(start, err)
	}
	return nil
}

// String returns a string of length n from the input stream.
func (dr *dcmReader) String(n int64) (string, error) {
	b, err := dr.Bytes(n)
	return string(b), err
}

// Bytes returns exactly n bytes from the input stream. If fewer than n bytes
// remain, an ErrTruncatedStream parse error is returned carrying the offset
// at which the read began.
func (dr *dcmReader) Bytes(n int64) ([]byte, error) {
	start := dr.Pos()
	b := make([]byte, n)
	if _, err := io.ReadFull(dr.cr, b); err != nil {
		return nil, truncatedError(start, err)
	}
	return b, nil
}

// UInt32 returns a uint32 from the input stream.
func (dr *dcmReader) UInt32(order binary.ByteOrder) (uint32, error) {
	start := dr.Pos()
	var b [4]byte
	if _, err := io.ReadFull(dr.cr, b[:]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, truncatedError(start, err)
	}
	return order.Uint32(b[:]), nil
}

// UInt16 returns a uint16 from the input stream. A clean end of input (no
// bytes read) is reported as io.EOF so that callers iterating elements can
// detect the end of the data set; a partial read is a truncation error.
func (dr *dcmReader) UInt16(order binary.ByteOrder) (uint16, error) {
	start := dr.Pos()
	var b [2]byte
	if _, err := io.ReadFull(dr.cr, b[:]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, truncatedError(start, err)
	}
	return order.Uint16(b[:]), nil
}

// truncatedError maps short-read failures onto the error taxonomy, leaving
// other I/O errors untouched.
func truncatedError(offset int64, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return parseErrorf(offset, ErrTruncatedStream, "unexpected end of input")
	}
	return err
}

// countReader is an io.Reader that counts how many bytes were read.
type countReader struct {
	r         io.Reader
	bytesRead int64
}

func (cr *countReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.bytesRead += int64(n)
	return n, err
}

// limitCountReader returns a *countReader that reads from cr and stops with
// EOF after reading n bytes (or cr reaches EOF). The returned *countReader
// has a starting bytesRead equal to the current bytesRead of cr, so offsets
// remain absolute. Since the returned *countReader reads from cr, cr's
// bytesRead will be updated as the returned *countReader reads bytes.
func limitCountReader(cr *countReader, n int64) *countReader {
	return &countReader{io.LimitReader(cr, n), cr.bytesRead}
}
