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
	"testing"
)

func TestLookupTransferSyntax(t *testing.T) {
	tests := []struct {
		name         string
		uid          string
		want         transferSyntax
		wantOrder    binary.ByteOrder
		wantDeflated bool
	}{
		{"implicit vr little endian", ImplicitVRLittleEndianUID, implicitVRLittleEndian, binary.LittleEndian, false},
		{"explicit vr little endian", ExplicitVRLittleEndianUID, explicitVRLittleEndian, binary.LittleEndian, false},
		{"explicit vr big endian", ExplicitVRBigEndianUID, explicitVRBigEndian, binary.BigEndian, false},
		{"deflated explicit vr little endian", DeflatedExplicitVRLittleEndianUID, deflatedExplicitVRLittleEndian, binary.LittleEndian, true},
		{"jpeg baseline parses as explicit little endian", JPEGBaselineUID, explicitVRLittleEndian, binary.LittleEndian, false},
		{"jpeg 2000 parses as explicit little endian", JPEG2000LosslessUID, explicitVRLittleEndian, binary.LittleEndian, false},
		{"rle lossless parses as explicit little endian", RLELosslessUID, explicitVRLittleEndian, binary.LittleEndian, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := lookupTransferSyntax(tc.uid)
			if err != nil {
				t.Fatalf("lookupTransferSyntax(%q): %v", tc.uid, err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if got.byteOrder() != tc.wantOrder {
				t.Errorf("got order %v, want %v", got.byteOrder(), tc.wantOrder)
			}
			if got.isDeflated() != tc.wantDeflated {
				t.Errorf("got deflated=%v, want %v", got.isDeflated(), tc.wantDeflated)
			}
		})
	}
}

func TestLookupTransferSyntax_unsupported(t *testing.T) {
	for _, uid := range []string{"", "1.2.3.4", "1.2.840.10008.1.3"} {
		if _, err := lookupTransferSyntax(uid); !errors.Is(err, ErrUnsupportedTransferSyntax) {
			t.Errorf("lookupTransferSyntax(%q): got %v, want ErrUnsupportedTransferSyntax", uid, err)
		}
	}
}

func TestElementSize(t *testing.T) {
	tests := []struct {
		name   string
		syntax transferSyntax
		vr     *VR
		length uint32
		want   uint32
	}{
		{"implicit", implicitVRLittleEndian, USVR, 2, 4 + 4 + 2},
		{"implicit undefined length", implicitVRLittleEndian, SQVR, UndefinedLength, UndefinedLength},
		{"explicit 16-bit length", explicitVRLittleEndian, PNVR, 8, 4 + 2 + 2 + 8},
		{"explicit 32-bit length", explicitVRLittleEndian, OBVR, 6, 4 + 2 + 2 + 4 + 6},
		{"explicit undefined length", explicitVRLittleEndian, SQVR, UndefinedLength, UndefinedLength},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.syntax.elementSize(tc.vr, tc.length); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

// The header-plus-value accounting of elementSize must agree with the bytes
// the element parser actually consumes.
func TestElementSize_matchesBytesConsumed(t *testing.T) {
	le := binary.LittleEndian
	in := cat(
		shortElement(le, PatientNameTag, "PN", []byte("DOE^JOHN")),
		shortElement(le, RowsTag, "US", u16b(le, 512)),
	)
	ctx := dicomMetaData{
		syntax:   explicitVRLittleEndian,
		encoding: defaultCharacterRepertoire,
		config:   defaultParseConfig,
	}

	dr := newDcmReader(bytes.NewReader(in))
	var consumed int64
	for {
		start := dr.Pos()
		elem, err := readDataElement(dr, ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("readDataElement: %v", err)
		}
		want := ctx.syntax.elementSize(elem.VR, elem.ValueLength)
		if got := dr.Pos() - start; got != int64(want) {
			t.Fatalf("element %v: consumed %d bytes, elementSize reports %d", elem.Tag, got, want)
		}
		consumed += int64(want)
	}
	if consumed != int64(len(in)) {
		t.Fatalf("consumed %d bytes, want %d", consumed, len(in))
	}
}

func TestHas32BitLength(t *testing.T) {
	s := explicitVRLittleEndian
	for _, vr := range []*VR{OBVR, OWVR, SQVR, UNVR, UTVR, UCVR, URVR, OFVR, ODVR, OLVR} {
		if !s.has32BitLength(vr) {
			t.Errorf("%v should use a 32-bit length", vr)
		}
	}
	for _, vr := range []*VR{PNVR, USVR, ULVR, DAVR, UIVR, ATVR, FDVR} {
		if s.has32BitLength(vr) {
			t.Errorf("%v should use a 16-bit length", vr)
		}
	}
}
