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
	"reflect"
	"testing"
	"time"
)

func readOneElement(t *testing.T, in []byte, ctx dicomMetaData) *DataElement {
	t.Helper()
	elem, err := readDataElement(newDcmReader(bytes.NewReader(in)), ctx)
	if err != nil {
		t.Fatalf("readDataElement: %v", err)
	}
	return elem
}

func explicitLECtx() dicomMetaData {
	return dicomMetaData{
		syntax:   explicitVRLittleEndian,
		encoding: defaultCharacterRepertoire,
		config:   defaultParseConfig,
	}
}

func TestReadDataElement(t *testing.T) {
	le := binary.LittleEndian
	be := binary.BigEndian

	tests := []struct {
		name string
		in   []byte
		ctx  dicomMetaData
		want *DataElement
	}{
		{
			"explicit little endian PN",
			shortElement(le, PatientNameTag, "PN", []byte("DOE^JOHN")),
			explicitLECtx(),
			&DataElement{PatientNameTag, PNVR, []string{"DOE^JOHN"}, 8},
		},
		{
			"space padding is stripped",
			shortElement(le, PatientIDTag, "LO", []byte("ABC123 ")),
			explicitLECtx(),
			&DataElement{PatientIDTag, LOVR, []string{"ABC123"}, 7},
		},
		{
			"multi-valued text",
			shortElement(le, ImageTypeTag, "CS", []byte("ORIGINAL\\PRIMARY")),
			explicitLECtx(),
			&DataElement{ImageTypeTag, CSVR, []string{"ORIGINAL", "PRIMARY"}, 16},
		},
		{
			"ST keeps leading spaces",
			shortElement(le, NewDataElementTag(0x0008, 0x2111), "ST", []byte(" note ")),
			explicitLECtx(),
			&DataElement{NewDataElementTag(0x0008, 0x2111), STVR, []string{" note"}, 6},
		},
		{
			"UI strips null padding",
			shortElement(le, SOPClassUIDTag, "UI", []byte("1.2.4\x00")),
			explicitLECtx(),
			&DataElement{SOPClassUIDTag, UIVR, []string{"1.2.4"}, 6},
		},
		{
			"multi-valued US",
			shortElement(le, RowsTag, "US", cat(u16b(le, 4), u16b(le, 8), u16b(le, 16))),
			explicitLECtx(),
			&DataElement{RowsTag, USVR, []uint16{4, 8, 16}, 6},
		},
		{
			"big endian US",
			shortElement(be, RowsTag, "US", u16b(be, 512)),
			dicomMetaData{syntax: explicitVRBigEndian, encoding: defaultCharacterRepertoire, config: defaultParseConfig},
			&DataElement{RowsTag, USVR, []uint16{512}, 2},
		},
		{
			"FD value",
			shortElement(le, NewDataElementTag(0x0018, 0x9459), "FD", u64le(0x3FF0000000000000)),
			explicitLECtx(),
			&DataElement{NewDataElementTag(0x0018, 0x9459), FDVR, []float64{1.0}, 8},
		},
		{
			"AT multiplicity",
			shortElement(le, FrameIncrementPointerTag, "AT",
				cat(tagBytes(le, RowsTag), tagBytes(le, ColumnsTag))),
			explicitLECtx(),
			&DataElement{FrameIncrementPointerTag, ATVR, []DataElementTag{RowsTag, ColumnsTag}, 8},
		},
		{
			"DA value",
			shortElement(le, StudyDateTag, "DA", []byte("20250131")),
			explicitLECtx(),
			&DataElement{StudyDateTag, DAVR,
				[]time.Time{time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)}, 8},
		},
		{
			"implicit vr resolves from dictionary",
			implicitElement(RowsTag, u16b(le, 64)),
			dicomMetaData{syntax: implicitVRLittleEndian, encoding: defaultCharacterRepertoire, config: defaultParseConfig},
			&DataElement{RowsTag, USVR, []uint16{64}, 2},
		},
		{
			"implicit vr unknown tag decodes as UN",
			implicitElement(NewDataElementTag(0x0009, 0x0011), []byte{0xDE, 0xAD}),
			dicomMetaData{syntax: implicitVRLittleEndian, encoding: defaultCharacterRepertoire, config: defaultParseConfig},
			&DataElement{NewDataElementTag(0x0009, 0x0011), UNVR, NewBulkDataBuffer([]byte{0xDE, 0xAD}), 2},
		},
		{
			"zero length text",
			shortElement(le, PatientNameTag, "PN", nil),
			explicitLECtx(),
			&DataElement{PatientNameTag, PNVR, []string{}, 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := readOneElement(t, tc.in, tc.ctx)
			if iter, ok := got.ValueField.(BulkDataIterator); ok {
				buff, err := iter.ToBuffer()
				if err != nil {
					t.Fatalf("buffering bulk data: %v", err)
				}
				got = &DataElement{got.Tag, got.VR, buff, got.ValueLength}
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func TestReadDataElement_errors(t *testing.T) {
	le := binary.LittleEndian

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{
			"unknown vr code",
			cat(tagBytes(le, PatientNameTag), []byte("ZZ"), u16b(le, 0)),
			ErrInvalidVR,
		},
		{
			"numeric length not a multiple of width",
			shortElement(le, RowsTag, "US", []byte{0x01, 0x02, 0x03}),
			ErrInvalidLength,
		},
		{
			"AT length not a multiple of 4",
			shortElement(le, FrameIncrementPointerTag, "AT", []byte{0x01, 0x02}),
			ErrInvalidLength,
		},
		{
			"undefined length outside pixel data",
			undefLenElement(le, NewDataElementTag(0x0009, 0x0001), "UN"),
			ErrInvalidLength,
		},
		{
			"declared length exceeds remaining bytes",
			cat(tagBytes(le, PatientNameTag), []byte("PN"), u16b(le, 10), []byte("DOE")),
			ErrTruncatedStream,
		},
		{
			"malformed date",
			shortElement(le, StudyDateTag, "DA", []byte("2025XX31")),
			ErrMalformedValue,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readDataElement(newDcmReader(bytes.NewReader(tc.in)), explicitLECtx())
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("got %T, want *ParseError", err)
			}
		})
	}
}

func TestReadDataElement_truncationOffsetIsValueStart(t *testing.T) {
	le := binary.LittleEndian
	in := cat(tagBytes(le, PatientNameTag), []byte("PN"), u16b(le, 10), []byte("DOE^"))

	_, err := readDataElement(newDcmReader(bytes.NewReader(in)), explicitLECtx())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want *ParseError", err)
	}
	if pe.Offset != 8 {
		t.Fatalf("got offset %d, want 8 (value start)", pe.Offset)
	}
}

func TestReadDataElement_lenientSkipsMalformedValues(t *testing.T) {
	le := binary.LittleEndian
	ctx := explicitLECtx()
	ctx.config.lenient = true

	in := cat(
		shortElement(le, StudyDateTag, "DA", []byte("2025XX31")),
		shortElement(le, PatientNameTag, "PN", []byte("DOE^JOHN")),
	)
	dr := newDcmReader(bytes.NewReader(in))

	if _, err := readDataElement(dr, ctx); err != errSkippedElement {
		t.Fatalf("got %v, want errSkippedElement", err)
	}

	// the value bytes were consumed, leaving the cursor at the next element
	elem, err := readDataElement(dr, ctx)
	if err != nil {
		t.Fatalf("readDataElement after skip: %v", err)
	}
	if !reflect.DeepEqual(elem.ValueField, []string{"DOE^JOHN"}) {
		t.Fatalf("got %v, want [DOE^JOHN]", elem.ValueField)
	}
}

func TestReadDataElement_lenientKeepsStructuralErrorsFatal(t *testing.T) {
	le := binary.LittleEndian
	ctx := explicitLECtx()
	ctx.config.lenient = true

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{
			"truncation stays fatal",
			cat(tagBytes(le, PatientNameTag), []byte("PN"), u16b(le, 10), []byte("DOE")),
			ErrTruncatedStream,
		},
		{
			"invalid vr stays fatal",
			cat(tagBytes(le, PatientNameTag), []byte("ZZ"), u16b(le, 0)),
			ErrInvalidVR,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readDataElement(newDcmReader(bytes.NewReader(tc.in)), ctx)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}
