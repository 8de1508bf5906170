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
)

// Helpers for constructing DICOM byte streams in tests.

func cat(parts ...[]byte) []byte {
	ret := []byte{}
	for _, p := range parts {
		ret = append(ret, p...)
	}
	return ret
}

func u16b(order binary.ByteOrder, v uint16) []byte {
	b := make([]byte, 2)
	order.PutUint16(b, v)
	return b
}

func u32b(order binary.ByteOrder, v uint32) []byte {
	b := make([]byte, 4)
	order.PutUint32(b, v)
	return b
}

func tagBytes(order binary.ByteOrder, tag DataElementTag) []byte {
	return cat(u16b(order, tag.GroupNumber()), u16b(order, tag.ElementNumber()))
}

// shortElement encodes an explicit VR element whose VR uses a 16-bit length.
func shortElement(order binary.ByteOrder, tag DataElementTag, vrName string, value []byte) []byte {
	return cat(
		tagBytes(order, tag),
		[]byte(vrName),
		u16b(order, uint16(len(value))),
		value,
	)
}

// longElement encodes an explicit VR element whose VR uses a 32-bit length
// preceded by 2 reserved bytes.
func longElement(order binary.ByteOrder, tag DataElementTag, vrName string, value []byte) []byte {
	return cat(
		tagBytes(order, tag),
		[]byte(vrName),
		[]byte{0x00, 0x00},
		u32b(order, uint32(len(value))),
		value,
	)
}

// undefLenElement encodes the header of an explicit VR element with undefined
// length. The caller appends items and the matching delimitation.
func undefLenElement(order binary.ByteOrder, tag DataElementTag, vrName string) []byte {
	return cat(
		tagBytes(order, tag),
		[]byte(vrName),
		[]byte{0x00, 0x00},
		u32b(order, UndefinedLength),
	)
}

func implicitElement(tag DataElementTag, value []byte) []byte {
	return cat(
		tagBytes(binary.LittleEndian, tag),
		u32b(binary.LittleEndian, uint32(len(value))),
		value,
	)
}

// seqItem encodes an item header with an explicit length followed by its body.
func seqItem(order binary.ByteOrder, body []byte) []byte {
	return cat(
		tagBytes(order, ItemTag),
		u32b(order, uint32(len(body))),
		body,
	)
}

// undefLenItem encodes an undefined length item header, its body, and the
// item delimitation item.
func undefLenItem(order binary.ByteOrder, body []byte) []byte {
	return cat(
		tagBytes(order, ItemTag),
		u32b(order, UndefinedLength),
		body,
		tagBytes(order, ItemDelimitationItemTag),
		u32b(order, 0),
	)
}

func seqDelimiter(order binary.ByteOrder) []byte {
	return cat(tagBytes(order, SequenceDelimitationItemTag), u32b(order, 0))
}

// metaGroup encodes a File Meta Information group declaring the given
// transfer syntax, preceded by its group length element.
func metaGroup(uid string) []byte {
	uidBytes := []byte(uid)
	if len(uidBytes)%2 == 1 {
		uidBytes = append(uidBytes, 0x00)
	}
	order := binary.LittleEndian
	uidElement := shortElement(order, TransferSyntaxUIDTag, "UI", uidBytes)
	return cat(
		shortElement(order, FileMetaInformationGroupLengthTag, "UL", u32b(order, uint32(len(uidElement)))),
		uidElement,
	)
}

// dicomFile builds a complete DICOM file stream: zero preamble, magic word,
// meta group declaring the transfer syntax, then the given data set bytes.
func dicomFile(uid string, body ...[]byte) []byte {
	return cat(
		make([]byte, preambleSize),
		[]byte(magicWord),
		metaGroup(uid),
		cat(body...),
	)
}

// dataSetStart returns the absolute offset of the first data set byte in a
// stream built by dicomFile with the given transfer syntax.
func dataSetStart(uid string) int64 {
	return int64(preambleSize + len(magicWord) + len(metaGroup(uid)))
}
