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
	"strings"
)

// Sequence models a DICOM sequence of items. Each item is a nested DataSet
// owned exclusively by the sequence; items are identified only by position.
type Sequence struct {
	Items []*DataSet
}

func (seq *Sequence) String() string {
	return seq.string(0)
}

func (seq *Sequence) string(indentLvl int) string {
	lines := make([]string, 0)
	for _, obj := range seq.Items {
		lines = append(lines, obj.string(indentLvl+1))
	}
	return "\n" + strings.Join(lines, "\n")
}

func (seq *Sequence) append(dataSet *DataSet) {
	seq.Items = append(seq.Items, dataSet)
}

// SequenceIterator is an iterator over a DICOM Sequence of Items in the order
// in which they appear in the DICOM stream.
type SequenceIterator interface {
	// Next returns the next item in the DICOM Sequence of Items. If there is
	// no next item, the error io.EOF is returned. In addition, any previously
	// returned iterators from Next are emptied.
	Next() (DataElementIterator, error)

	// Close discards all remaining items in the iterator. In addition, any
	// previously returned iterators from calls to Next are emptied.
	Close() error
}

// newSequenceIterator builds the iterator for a sequence value. An explicit
// length bounds the items with a limited reader; an undefined length reads
// items until the sequence delimitation item.
func newSequenceIterator(dr *dcmReader, length uint32, ctx dicomMetaData) (SequenceIterator, error) {
	if length < UndefinedLength {
		limited := dr.Limit(int64(length))
		return &explicitLengthSequenceIterator{limited, limited.Pos(), int64(length), ctx, nil}, nil
	}
	return &undefinedLengthSequenceIterator{dr, ctx, nil, false}, nil
}

type explicitLengthSequenceIterator struct {
	dr             *dcmReader
	start          int64
	length         int64
	ctx            dicomMetaData
	currentSeqItem DataElementIterator
}

func (it *explicitLengthSequenceIterator) Next() (DataElementIterator, error) {
	if it.currentSeqItem != nil {
		if err := it.currentSeqItem.Close(); err != nil {
			return nil, err
		}
	}

	tag, err := processItemTag(it.dr, it.ctx.syntax.byteOrder())
	if err == io.EOF {
		// The limit reader reports a clean EOF when the underlying stream
		// ends early, so the declared extent has to be checked against the
		// bytes consumed.
		if consumed := it.dr.Pos() - it.start; consumed != it.length {
			return nil, parseErrorf(it.dr.Pos(), ErrTruncatedStream,
				"sequence declares %d bytes but ends after %d", it.length, consumed)
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if tag == SequenceDelimitationItemTag {
		return nil, parseErrorf(it.dr.Pos(), ErrMalformedValue,
			"unexpected sequence delimitation item in explicit length sequence")
	}

	it.currentSeqItem, err = newSeqItem(it.dr, it.ctx)

	return it.currentSeqItem, err
}

func (it *explicitLengthSequenceIterator) Close() error {
	return closeSeq(it)
}

type undefinedLengthSequenceIterator struct {
	dr             *dcmReader
	ctx            dicomMetaData
	currentSeqItem DataElementIterator
	empty          bool
}

func (it *undefinedLengthSequenceIterator) Next() (DataElementIterator, error) {
	if it.empty {
		return nil, io.EOF
	}
	if it.currentSeqItem != nil {
		if err := it.currentSeqItem.Close(); err != nil {
			return nil, err
		}
	}

	tag, err := processItemTag(it.dr, it.ctx.syntax.byteOrder())
	if err == io.EOF {
		return nil, parseErrorf(it.dr.Pos(), ErrTruncatedStream, "unexpected end of input in undefined length sequence")
	}
	if err != nil {
		return nil, err
	}
	if tag == SequenceDelimitationItemTag {
		return nil, it.terminate()
	}

	it.currentSeqItem, err = newSeqItem(it.dr, it.ctx)

	return it.currentSeqItem, err
}

func (it *undefinedLengthSequenceIterator) terminate() error {
	itemLength, err := it.dr.UInt32(it.ctx.syntax.byteOrder())
	if err != nil {
		return truncatedError(it.dr.Pos(), err)
	}
	if itemLength != 0 {
		return parseErrorf(it.dr.Pos(), ErrInvalidLength, "sequence delimitation length %d, want 0", itemLength)
	}
	// this empty flag is needed for sequences of undefined length to prevent
	// the iterator from advancing the input stream past the bytes of the
	// sequence when Next() is called. This is not used for sequences of
	// explicit length because the input stream is wrapped in an io.LimitedReader.
	it.empty = true
	return io.EOF
}

func (it *undefinedLengthSequenceIterator) Close() error {
	return closeSeq(it)
}

func processItemTag(dr *dcmReader, order binary.ByteOrder) (DataElementTag, error) {
	tag, err := dr.Tag(order)
	if err == io.EOF {
		return tag, io.EOF
	}
	if err != nil {
		return tag, fmt.Errorf("reading item tag: %w", err)
	}
	if tag != ItemTag && tag != SequenceDelimitationItemTag {
		return tag, parseErrorf(dr.Pos(), ErrMalformedValue,
			"invalid item tag %v, want %v or %v", tag, ItemTag, SequenceDelimitationItemTag)
	}

	return tag, nil
}

func newSeqItem(dr *dcmReader, ctx dicomMetaData) (DataElementIterator, error) {
	itemLength, err := dr.UInt32(ctx.syntax.byteOrder())
	if err != nil {
		return nil, truncatedError(dr.Pos(), err)
	}

	if itemLength >= UndefinedLength {
		return newDataElementIterator(dr, ctx), nil
	}

	limited := dr.Limit(int64(itemLength))
	return &explicitLengthItemIterator{
		DataElementIterator: newDataElementIterator(limited, ctx),
		dr:                  limited,
		start:               limited.Pos(),
		length:              int64(itemLength),
	}, nil
}

// explicitLengthItemIterator verifies that an explicit length item covers its
// declared extent. The limit reader reports a clean EOF when the underlying
// stream ends early, which is otherwise indistinguishable from reaching the
// declared end of the item.
type explicitLengthItemIterator struct {
	DataElementIterator
	dr     *dcmReader
	start  int64
	length int64
}

func (it *explicitLengthItemIterator) Next() (*DataElement, error) {
	elem, err := it.DataElementIterator.Next()
	if err == io.EOF {
		if consumed := it.dr.Pos() - it.start; consumed != it.length {
			return nil, parseErrorf(it.dr.Pos(), ErrTruncatedStream,
				"item declares %d bytes but ends after %d", it.length, consumed)
		}
	}
	return elem, err
}

func (it *explicitLengthItemIterator) Close() error {
	for _, err := it.Next(); err != io.EOF; _, err = it.Next() {
		if err != nil {
			return err
		}
	}
	return nil
}

func closeSeq(iter SequenceIterator) error {
	for _, err := iter.Next(); err != io.EOF; _, err = iter.Next() {
		if err != nil {
			return err
		}
	}
	return nil
}
