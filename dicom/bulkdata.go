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
	"fmt"
	"io"
)

// BulkDataReference describes the location of a contiguous sequence of bytes in a file
type BulkDataReference struct {
	Reference ByteRegion
}

// ByteRegion is a contiguous sequence of bytes in a file described by an Offset and a length
type ByteRegion struct {
	Offset int64
	Length int64
}

// BulkDataBuffer holds fully buffered bulk data: either one native
// (uncompressed) blob or the ordered fragments of pixel data stored in the
// encapsulated format.
type BulkDataBuffer struct {
	fragments    [][]byte
	encapsulated bool
}

// NewBulkDataBuffer returns a buffer holding a single native blob.
func NewBulkDataBuffer(b []byte) *BulkDataBuffer {
	return &BulkDataBuffer{[][]byte{b}, false}
}

// NewEncapsulatedBuffer returns a buffer holding ordered encapsulated fragments.
func NewEncapsulatedBuffer(fragments ...[]byte) *BulkDataBuffer {
	return &BulkDataBuffer{fragments, true}
}

// Data returns the ordered byte fragments of the buffer. Native payloads
// have exactly one fragment.
func (b *BulkDataBuffer) Data() [][]byte {
	return b.fragments
}

// IsEncapsulated is true when the buffer holds encapsulated pixel data fragments.
func (b *BulkDataBuffer) IsEncapsulated() bool {
	return b.encapsulated
}

func (b *BulkDataBuffer) String() string {
	total := 0
	for _, f := range b.fragments {
		total += len(f)
	}
	if b.encapsulated {
		return fmt.Sprintf("encapsulated[%d fragments, %d bytes]", len(b.fragments), total)
	}
	return fmt.Sprintf("bulk[%d bytes]", total)
}

// BulkDataReader represents a streamable contiguous sequence of bytes within a file
type BulkDataReader struct {
	io.Reader

	// Offset is the number of bytes in the file preceding the bulk data
	// described by the BulkDataReader
	Offset int64
}

// Close discards all bytes in the reader
func (r *BulkDataReader) Close() error {
	_, err := io.Copy(io.Discard, r)
	return err
}

// BulkDataIterator represents a sequence of BulkDataReaders.
type BulkDataIterator interface {
	// Next returns the next BulkDataReader in the iterator and discards all
	// bytes from all previous BulkDataReaders returned from Next. If there are
	// no remaining BulkDataReaders in the iterator, the error io.EOF is returned.
	Next() (*BulkDataReader, error)

	// Close discards all remaining BulkDataReaders in the iterator. Any
	// previously returned BulkDataReaders from calls to Next are also emptied.
	Close() error

	// ToBuffer reads all remaining fragments into a BulkDataBuffer.
	ToBuffer() (*BulkDataBuffer, error)
}

// lengthCheckedReader turns the clean EOF of a limited reader into
// ErrTruncatedStream when fewer bytes than declared were available in the
// underlying stream.
type lengthCheckedReader struct {
	cr     *countReader
	start  int64
	length int64
}

func (r *lengthCheckedReader) Read(p []byte) (int, error) {
	n, err := r.cr.Read(p)
	if err == io.EOF {
		if consumed := r.cr.bytesRead - r.start; consumed != r.length {
			return n, parseErrorf(r.cr.bytesRead, ErrTruncatedStream,
				"bulk data declares %d bytes but only %d remain", r.length, consumed)
		}
	}
	return n, err
}

// oneShotIterator is a BulkDataIterator that contains exactly one BulkDataReader
type oneShotIterator struct {
	r     *BulkDataReader
	empty bool
}

func newOneShotIterator(cr *countReader, length int64) BulkDataIterator {
	checked := &lengthCheckedReader{cr, cr.bytesRead, length}
	return &oneShotIterator{&BulkDataReader{checked, cr.bytesRead}, false}
}

func (it *oneShotIterator) Next() (*BulkDataReader, error) {
	if it.empty {
		return nil, io.EOF
	}

	it.empty = true

	return it.r, nil
}

func (it *oneShotIterator) Close() error {
	if err := it.r.Close(); err != nil {
		return fmt.Errorf("closing bulk data: %w", err)
	}

	it.empty = true

	return nil
}

func (it *oneShotIterator) ToBuffer() (*BulkDataBuffer, error) {
	r, err := it.Next()
	if err == io.EOF {
		return NewBulkDataBuffer(nil), nil
	}
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBulkDataBuffer(data), nil
}

// encapsulatedFormatIterator represents image pixel data (7FE0,0010) in
// encapsulated format as described in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4.
type encapsulatedFormatIterator struct {
	dr            *dcmReader
	currentReader *BulkDataReader
	empty         bool
}

func newEncapsulatedFormatIterator(dr *dcmReader) BulkDataIterator {
	return &encapsulatedFormatIterator{dr, nil, false}
}

// Next returns the next fragment of the pixel data. The first return from
// Next will be the Basic Offset Table if present or an empty BulkDataReader
// otherwise. When Next is called, any previously returned BulkDataReaders
// from previous calls to Next will be emptied. When there are no remaining
// fragments in the iterator, the error io.EOF is returned.
//
// Fragment item headers are always little endian regardless of the data
// set's transfer syntax.
func (it *encapsulatedFormatIterator) Next() (*BulkDataReader, error) {
	if it.empty {
		return nil, io.EOF
	}

	if it.currentReader != nil {
		if err := it.currentReader.Close(); err != nil {
			return nil, err
		}
	}

	tag, err := processItemTag(it.dr, binary.LittleEndian)
	if err == io.EOF {
		return nil, parseErrorf(it.dr.Pos(), ErrTruncatedStream, "unexpected end of input in encapsulated pixel data")
	}
	if err != nil {
		return nil, err
	}
	if tag == SequenceDelimitationItemTag {
		return nil, it.terminate()
	}

	length, err := it.dr.UInt32(binary.LittleEndian)
	if err != nil {
		return nil, truncatedError(it.dr.Pos(), err)
	}
	if length >= UndefinedLength {
		return nil, parseErrorf(it.dr.Pos(), ErrInvalidLength, "fragment must declare an explicit length")
	}

	currentReaderBytes := limitCountReader(it.dr.cr, int64(length))
	checked := &lengthCheckedReader{currentReaderBytes, currentReaderBytes.bytesRead, int64(length)}
	it.currentReader = &BulkDataReader{checked, currentReaderBytes.bytesRead}

	return it.currentReader, nil
}

// Close discards all fragments in the iterator
func (it *encapsulatedFormatIterator) Close() error {
	for r, err := it.Next(); err != io.EOF; r, err = it.Next() {
		if err != nil {
			return fmt.Errorf("reading next fragment: %w", err)
		}
		if err := r.Close(); err != nil {
			return fmt.Errorf("discarding fragment on Close: %w", err)
		}
	}

	return nil
}

func (it *encapsulatedFormatIterator) ToBuffer() (*BulkDataBuffer, error) {
	fragments := make([][]byte, 0)
	for r, err := it.Next(); err != io.EOF; r, err = it.Next() {
		if err != nil {
			return nil, err
		}
		fragment, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}
	return NewEncapsulatedBuffer(fragments...), nil
}

func (it *encapsulatedFormatIterator) terminate() error {
	length, err := it.dr.UInt32(binary.LittleEndian)
	if err != nil {
		return truncatedError(it.dr.Pos(), err)
	}
	if length != 0 {
		return parseErrorf(it.dr.Pos(), ErrInvalidLength, "sequence delimitation length %d, want 0", length)
	}
	it.empty = true
	return io.EOF
}
