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
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/sirupsen/logrus"
)

const (
	preambleSize = 128
	magicWord    = "DICM"
)

// DataElementIterator represents an iterator over a DataSet's DataElements
type DataElementIterator interface {
	// Next returns the next DataElement in the DataSet. If there is no next
	// DataElement, the error io.EOF is returned. In addition, if any
	// previously returned DataElements contained iterable objects like
	// SequenceIterator or BulkDataIterator, these iterators are emptied.
	Next() (*DataElement, error)

	// Close discards all remaining DataElements in the iterator
	Close() error

	context() dicomMetaData

	// pos is the absolute offset of the next byte the iterator would read,
	// used for error reporting.
	pos() int64
}

// NewDataElementIterator creates a DataElementIterator from a DICOM file
// stream. The implementation returned consumes input from the io.Reader as
// needed and never reads past the data it returns; lifecycle of the
// underlying resource stays with the caller.
func NewDataElementIterator(r io.Reader, opts ...ParseOption) (DataElementIterator, error) {
	config := defaultParseConfig
	for _, opt := range opts {
		if opt.configure != nil {
			opt.configure(&config)
		}
	}

	dr := newDcmReader(r)
	preamble, err := readDicomSignature(dr)
	if err != nil {
		return nil, err
	}

	metaBase := dr.Pos()
	metaHeaderBytes, err := bufferMetadataHeader(dr)
	if err != nil {
		return nil, err
	}

	syntax, err := findSyntax(metaHeaderBytes, metaBase)
	if err != nil {
		return nil, err
	}

	metaCtx := defaultMetaData
	metaCtx.config = config
	metaIter := newDataElementIterator(
		newDcmReaderAt(bytes.NewBuffer(metaHeaderBytes), metaBase), metaCtx)

	if syntax.isDeflated() {
		// The data set following the meta group is a deflate stream.
		// Offsets reported past this point count inflated bytes.
		dr = newDcmReaderAt(flate.NewReader(dr.cr), dr.Pos())
	}

	ctx := dicomMetaData{syntax: syntax, encoding: defaultCharacterRepertoire, config: config}
	return &dataElementIterator{dr, ctx, preamble, nil, false, metaIter}, nil
}

// newDataElementIterator creates a DataElementIterator from a byte stream
// that excludes header info (preamble and meta group elements). Used for
// nested item data sets, which inherit a copy of the parent decode context.
func newDataElementIterator(dr *dcmReader, ctx dicomMetaData) DataElementIterator {
	return &dataElementIterator{dr, ctx, nil, nil, false, emptyElementIterator{ctx}}
}

type dataElementIterator struct {
	dr             *dcmReader
	ctx            dicomMetaData
	filePreamble   []byte
	currentElement *DataElement
	empty          bool
	metaHeader     DataElementIterator
}

func (it *dataElementIterator) Next() (*DataElement, error) {
	metaElem, err := it.metaHeader.Next()
	if err == io.EOF {
		return it.nextDataSetElement()
	}
	if err != nil {
		return nil, err
	}
	return metaElem, nil
}

func (it *dataElementIterator) context() dicomMetaData {
	return it.ctx
}

func (it *dataElementIterator) preamble() []byte {
	return it.filePreamble
}

func (it *dataElementIterator) pos() int64 {
	return it.dr.Pos()
}

func (it *dataElementIterator) nextDataSetElement() (*DataElement, error) {
	for {
		if it.empty {
			return nil, io.EOF
		}
		if err := it.closeCurrent(); err != nil {
			return nil, fmt.Errorf("closing previous element: %w", err)
		}

		element, err := readDataElement(it.dr, it.ctx)
		if err == io.EOF {
			it.empty = true
			return nil, io.EOF
		}
		if err == errSkippedElement {
			continue
		}
		if err != nil {
			return nil, err
		}

		if element.Tag == SpecificCharacterSetTag {
			it.applyCharacterSet(element)
		}

		it.currentElement = element

		return it.currentElement, nil
	}
}

// applyCharacterSet switches the active character repertoire when a Specific
// Character Set element is encountered, so that text elements following it
// decode under the declared repertoire. Since tags appear in ascending order,
// (0008,0005) precedes the text elements it governs.
func (it *dataElementIterator) applyCharacterSet(element *DataElement) {
	terms, ok := element.ValueField.([]string)
	if !ok {
		return
	}
	for _, term := range terms {
		if term == "" {
			continue
		}
		coding, err := lookupEncoding(term)
		if err != nil {
			logrus.Warnf("dicom: keeping default character repertoire: %v", err)
			return
		}
		it.ctx.encoding = coding
		return
	}
}

func (it *dataElementIterator) Close() error {
	// empty the iterator
	for _, err := it.Next(); err != io.EOF; _, err = it.Next() {
		if err != nil {
			return fmt.Errorf("unexpected error closing iterator: %w", err)
		}
	}
	return nil
}

// closeCurrent ensures the iterator is ready to read the next DataElement.
// If this iterator previously returned a stream of bytes such as a
// BulkDataIterator, we need to make sure this previously returned stream is
// emptied in order to advance the input to the bytes of the next DataElement.
// This pattern is similar to the implementation of multipart.Reader in the
// go standard library. https://golang.org/src/mime/multipart/multipart.go
func (it *dataElementIterator) closeCurrent() error {
	if it.currentElement == nil {
		return nil
	}

	if closer, ok := it.currentElement.ValueField.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// readDicomSignature consumes and returns the 128-byte preamble and
// validates the 4-byte magic identifier that follows it.
func readDicomSignature(dr *dcmReader) ([]byte, error) {
	preamble, err := dr.Bytes(preambleSize)
	if err != nil {
		return nil, err
	}

	magic, err := dr.String(4)
	if err != nil {
		return nil, err
	}

	if magic != magicWord {
		return nil, parseErrorf(preambleSize, ErrNotADicomFile, "wrong magic word %q", magic)
	}

	return preamble, nil
}

// bufferMetadataHeader buffers the bytes of the File Meta Information group,
// which is always encoded in explicit VR little endian regardless of the
// data set's transfer syntax. The group's extent is declared by its first
// element, FileMetaInformationGroupLength.
func bufferMetadataHeader(dr *dcmReader) ([]byte, error) {
	start := dr.Pos()
	firstElemBytes, err := dr.Bytes(4 /*tag*/ + 2 /*vr*/ + 2 /*len*/ + 4 /*UL=4bytes*/)
	if err != nil {
		return nil, err
	}
	firstElem, err := readDataElement(newDcmReaderAt(bytes.NewBuffer(firstElemBytes), start), defaultMetaData)
	if err != nil {
		return nil, fmt.Errorf("parsing FileMetaInformationGroupLength element: %w", err)
	}
	if firstElem.Tag != FileMetaInformationGroupLengthTag {
		return nil, parseErrorf(start, ErrMalformedValue,
			"first element is %v, want FileMetaInformationGroupLength", firstElem.Tag)
	}
	metaGroupLength, ok := firstElem.ValueField.([]uint32)
	if !ok || len(metaGroupLength) != 1 {
		return nil, parseErrorf(start, ErrMalformedValue, "expected 1 UL value for meta group length")
	}

	remainderBytes, err := dr.Bytes(int64(metaGroupLength[0]))
	if err != nil {
		return nil, err
	}

	return append(firstElemBytes, remainderBytes...), nil
}

// findSyntax extracts the transfer syntax of the data set from the buffered
// File Meta Information group.
func findSyntax(metaHeaderBytes []byte, base int64) (transferSyntax, error) {
	metaIter := newDataElementIterator(
		newDcmReaderAt(bytes.NewBuffer(metaHeaderBytes), base), defaultMetaData)

	for elem, err := metaIter.Next(); err != io.EOF; elem, err = metaIter.Next() {
		if err != nil {
			return nil, fmt.Errorf("reading meta element: %w", err)
		}
		if elem.Tag == TransferSyntaxUIDTag {
			return findSyntaxFromElement(elem, base)
		}
	}

	return nil, parseErrorf(base, ErrMissingTransferSyntax, "no transfer syntax uid element in meta group")
}

func findSyntaxFromElement(element *DataElement, base int64) (transferSyntax, error) {
	uids, ok := element.ValueField.([]string)
	if !ok || len(uids) != 1 {
		return nil, parseErrorf(base, ErrMissingTransferSyntax, "expected 1 string value for transfer syntax uid")
	}

	syntax, err := lookupTransferSyntax(uids[0])
	if err != nil {
		return nil, &ParseError{Offset: base, Err: err}
	}
	return syntax, nil
}

type emptyElementIterator struct {
	ctx dicomMetaData
}

func (it emptyElementIterator) Next() (*DataElement, error) {
	return nil, io.EOF
}

func (it emptyElementIterator) context() dicomMetaData {
	return it.ctx
}

func (it emptyElementIterator) Close() error {
	return nil
}

func (it emptyElementIterator) pos() int64 {
	return 0
}
