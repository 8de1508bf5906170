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
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
)

// errSkippedElement signals that the current element was consumed but
// excluded from the output (lenient mode only).
var errSkippedElement = errors.New("dicom: element skipped")

func readDataElement(dr *dcmReader, ctx dicomMetaData) (*DataElement, error) {
	tag, err := dr.Tag(ctx.syntax.byteOrder())
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	if tag == ItemDelimitationItemTag {
		// handles the case when we are parsing a nested data set within a
		// sequence item with undefined length. This code should never run for
		// the top level data set
		length, err := dr.UInt32(ctx.syntax.byteOrder())
		if err != nil {
			return nil, truncatedError(dr.Pos(), err)
		}
		if length != 0 {
			return nil, parseErrorf(dr.Pos(), ErrInvalidLength, "item delimitation length %d, want 0", length)
		}
		return nil, io.EOF
	}

	vr, err := ctx.syntax.readVR(dr, tag)
	if err != nil {
		return nil, err
	}

	length, err := ctx.syntax.readValueLength(dr, vr)
	if err != nil {
		return nil, err
	}

	value, err := readValue(tag, dr, vr, length, ctx)
	if err != nil {
		// In lenient mode, elements whose value bytes were fully consumed but
		// failed to materialize are skipped instead of aborting the decode.
		// Header corruption and truncation stay fatal: the stream position is
		// no longer trustworthy after them.
		if ctx.config.lenient && vr.kind != sequenceVR && errors.Is(err, ErrMalformedValue) {
			logrus.Warnf("dicom: skipping element %v: %v", tag, err)
			return nil, errSkippedElement
		}
		return nil, err
	}

	return &DataElement{tag, vr, value, length}, nil
}

func readValue(tag DataElementTag, dr *dcmReader, vr *VR, length uint32, ctx dicomMetaData) (interface{}, error) {
	if length == UndefinedLength && vr.kind != sequenceVR && vr.kind != bulkDataVR {
		return nil, parseErrorf(dr.Pos(), ErrInvalidLength, "undefined length for vr %v", vr)
	}

	switch vr.kind {
	case textVR:
		return readText(dr, length, vr, ctx, unicode.IsSpace)
	case dateTimeVR:
		return readDateTime(dr, length, vr)
	case numberBinaryVR:
		return readNumberBinary(dr, length, vr, ctx.syntax.byteOrder())
	case bulkDataVR:
		return readBulkData(dr, tag, length)
	case uniqueIdentifierVR:
		return readText(dr, length, vr, ctx, func(r rune) bool {
			return r == 0x00 || r == ' '
		})
	case sequenceVR:
		return readSequence(dr, length, ctx)
	case tagVR:
		return readTagValue(dr, ctx.syntax, length)
	default:
		return nil, parseErrorf(dr.Pos(), ErrInvalidVR, "unknown vr kind %v", vr.kind)
	}
}

func readTagValue(dr *dcmReader, syntax transferSyntax, length uint32) ([]DataElementTag, error) {
	if length%4 != 0 {
		return nil, parseErrorf(dr.Pos(), ErrInvalidLength, "length %d is not a multiple of 4 for vr AT", length)
	}

	ret := make([]DataElementTag, length/4) // 4 bytes per tag
	for i := range ret {
		t, err := dr.Tag(syntax.byteOrder())
		if err != nil {
			return nil, truncatedError(dr.Pos(), err)
		}
		ret[i] = t
	}
	return ret, nil
}

func readText(dr *dcmReader, length uint32, vr *VR, ctx dicomMetaData, isPadding func(rune) bool) ([]string, error) {
	if length <= 0 {
		return []string{}, nil
	}

	start := dr.Pos()
	raw, err := dr.Bytes(int64(length))
	if err != nil {
		return nil, err
	}

	decoded, err := ctx.encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, parseErrorf(start, ErrMalformedValue, "decoding text under active character set: %v", err)
	}

	// deal with value multiplicity
	strs := strings.Split(string(decoded), "\\")
	for i, s := range strs {
		if vr == STVR || vr == LTVR {
			strs[i] = strings.TrimRightFunc(s, isPadding)
		} else {
			strs[i] = strings.TrimFunc(s, isPadding)
		}
	}
	return strs, nil
}

func readDateTime(dr *dcmReader, length uint32, vr *VR) ([]time.Time, error) {
	if length <= 0 {
		return []time.Time{}, nil
	}

	start := dr.Pos()
	raw, err := dr.String(int64(length))
	if err != nil {
		return nil, err
	}

	values := []time.Time{}
	for _, s := range strings.Split(raw, "\\") {
		s = strings.TrimFunc(s, func(r rune) bool { return r == 0x00 || r == ' ' })
		if s == "" {
			continue
		}
		t, err := decodeDateTimeValue(vr, s)
		if err != nil {
			return nil, &ParseError{Offset: start, Err: err}
		}
		values = append(values, t)
	}
	return values, nil
}

func readNumberBinary(dr *dcmReader, length uint32, vr *VR, order binary.ByteOrder) (interface{}, error) {
	if length%vr.width != 0 {
		return nil, parseErrorf(dr.Pos(), ErrInvalidLength,
			"length %d is not a multiple of %d for vr %v", length, vr.width, vr)
	}

	raw, err := dr.Bytes(int64(length))
	if err != nil {
		return nil, err
	}

	var data interface{}
	switch vr {
	case SSVR:
		data = make([]int16, length/2)
	case USVR:
		data = make([]uint16, length/2)
	case SLVR:
		data = make([]int32, length/4)
	case ULVR:
		data = make([]uint32, length/4)
	case FLVR:
		data = make([]float32, length/4)
	case FDVR:
		data = make([]float64, length/8)
	default:
		return nil, parseErrorf(dr.Pos(), ErrInvalidVR, "unknown numeric vr %v", vr)
	}

	if err := binary.Read(bytes.NewReader(raw), order, data); err != nil {
		return nil, parseErrorf(dr.Pos(), ErrInvalidLength, "reassembling %v values: %v", vr, err)
	}

	return data, nil
}

func readBulkData(dr *dcmReader, tag DataElementTag, length uint32) (BulkDataIterator, error) {
	if length == UndefinedLength {
		if tag == PixelDataTag {
			// Specified in http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
			// (7FE0,0010) and undefined length means pixel data in encapsulated (compressed) format
			return newEncapsulatedFormatIterator(dr), nil
		}

		return nil, parseErrorf(dr.Pos(), ErrInvalidLength, "undefined length outside pixel data, tag %v", tag)
	}

	// for native (uncompressed) formats, return regular bulk data stream
	limitedReader := limitCountReader(dr.cr, int64(length))
	return newOneShotIterator(limitedReader, int64(length)), nil
}

func readSequence(dr *dcmReader, length uint32, ctx dicomMetaData) (SequenceIterator, error) {
	nested, err := ctx.nested(dr.Pos())
	if err != nil {
		return nil, err
	}
	return newSequenceIterator(dr, length, nested)
}
