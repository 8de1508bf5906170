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
	"fmt"
	"sort"
	"strings"
)

// DataElementTag is a unique identifier for a Data Element composed of an
// ordered pair of numbers called the group number and the element number as
// specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10.
//
// The least significant 16 bits is the element number. The most significant
// 16 bits is the group number.
type DataElementTag uint32

// NewDataElementTag builds a DataElementTag from a group and element number.
func NewDataElementTag(group, element uint16) DataElementTag {
	return DataElementTag(uint32(group)<<16 | uint32(element))
}

// GroupNumber returns the group number component of the DataElementTag
func (t DataElementTag) GroupNumber() uint16 {
	return uint16(t >> 16)
}

// ElementNumber returns the element number component of the DataElementTag
func (t DataElementTag) ElementNumber() uint16 {
	return uint16(t & 0xFFFF)
}

// IsMetadataElement is true if and only if the Data Element is a meta data element
func (t DataElementTag) IsMetadataElement() bool {
	return t.GroupNumber() == uint16(0x0002)
}

// IsPrivate is true if and only if the Data Element is a private (vendor
// specific) element, identified by an odd group number.
func (t DataElementTag) IsPrivate() bool {
	return t.GroupNumber()%2 == 1
}

func (t DataElementTag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.GroupNumber(), t.ElementNumber())
}

// DataElement models a DICOM Data Element as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
type DataElement struct {
	Tag DataElementTag

	// Value Representation
	VR *VR

	// ValueField represents the field within a Data Element that contains its
	// value(s). Can be any of the following types:
	// []string,
	// []int16,
	// []uint16,
	// []int32,
	// []uint32,
	// []float32,
	// []float64,
	// []time.Time,
	// []DataElementTag,
	// []BulkDataReference,
	// BulkDataIterator,
	// *BulkDataBuffer,
	// *Sequence
	ValueField interface{}

	// ValueLength is equal to the length of the ValueField in bytes.
	// Can be equal to 0xFFFFFFFF to represent an undefined length:
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
	ValueLength uint32
}

func (e *DataElement) String() string {
	return e.string(0)
}

func (e *DataElement) string(indentLvl int) string {
	indent := strings.Repeat(" ", indentLvl*2)
	if seq, ok := e.ValueField.(*Sequence); ok {
		return fmt.Sprintf("%s%v %v SQ:%v", indent, e.Tag, e.Tag.Name(), seq.string(indentLvl))
	}
	return fmt.Sprintf("%s%v %v %v %v", indent, e.Tag, e.Tag.Name(), e.VR, e.ValueField)
}

// DataSet models a DICOM Data Set as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
type DataSet struct {
	// Elements is a map of DataElement tags to *DataElement
	Elements map[DataElementTag]*DataElement

	// Preamble holds the 128-byte preamble of the file the DataSet was
	// decoded from, or nil for nested data sets.
	Preamble []byte
}

// NewDataSet builds a DataSet from a map of tags to ValueFields, deriving
// each element's VR from the dictionary.
func NewDataSet(elements map[DataElementTag]interface{}) *DataSet {
	ds := &DataSet{Elements: map[DataElementTag]*DataElement{}}
	for tag, value := range elements {
		ds.Elements[tag] = &DataElement{Tag: tag, VR: tag.DictionaryVR(), ValueField: value}
	}
	return ds
}

// Get returns the element with the given tag, if present.
func (ds *DataSet) Get(tag DataElementTag) (*DataElement, bool) {
	elem, ok := ds.Elements[tag]
	return elem, ok
}

// GetByName returns the element whose tag has the given dictionary keyword
// (e.g. "PatientName"), if present.
func (ds *DataSet) GetByName(name string) (*DataElement, bool) {
	tag, ok := lookupTagByName(name)
	if !ok {
		return nil, false
	}
	return ds.Get(tag)
}

// PixelData returns the pixel data payload of the DataSet, if present. The
// returned buffer holds either a single native blob or the ordered fragments
// of an encapsulated transfer syntax.
func (ds *DataSet) PixelData() (*BulkDataBuffer, bool) {
	elem, ok := ds.Elements[PixelDataTag]
	if !ok {
		return nil, false
	}
	buff, ok := elem.ValueField.(*BulkDataBuffer)
	return buff, ok
}

// SortedTags returns the tags of the DataSet in ascending DICOM tag order
// (ascending group, then element).
func (ds *DataSet) SortedTags() []DataElementTag {
	tags := make([]DataElementTag, 0, len(ds.Elements))
	for tag := range ds.Elements {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

func (ds *DataSet) String() string {
	return ds.string(0)
}

func (ds *DataSet) string(indentLvl int) string {
	lines := make([]string, 0, len(ds.Elements))
	for _, tag := range ds.SortedTags() {
		lines = append(lines, ds.Elements[tag].string(indentLvl))
	}
	return strings.Join(lines, "\n")
}
