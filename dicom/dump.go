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
	"encoding/xml"
	"fmt"
	"io"
)

// DumpXML writes the DataSet to w as an XML element tree, one node per
// DataElement with tag, name, vr and vl attributes, nesting sequence items
// recursively. Intended for inspection and debugging of decoded files.
func DumpXML(w io.Writer, ds *DataSet) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "DICOM"}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	if err := dumpDataSet(enc, ds); err != nil {
		return err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Flush()
}

func dumpDataSet(enc *xml.Encoder, ds *DataSet) error {
	for _, tag := range ds.SortedTags() {
		if err := dumpElement(enc, ds.Elements[tag]); err != nil {
			return err
		}
	}
	return nil
}

func dumpElement(enc *xml.Encoder, elem *DataElement) error {
	vl := fmt.Sprintf("%d", elem.ValueLength)
	if elem.ValueLength == UndefinedLength {
		vl = "UNDEFINED"
	}
	start := xml.StartElement{
		Name: xml.Name{Local: "DataElement"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "tag"}, Value: elem.Tag.String()},
			{Name: xml.Name{Local: "name"}, Value: elem.Tag.Name()},
			{Name: xml.Name{Local: "vr"}, Value: elem.VR.Name},
			{Name: xml.Name{Local: "vl"}, Value: vl},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	if seq, ok := elem.ValueField.(*Sequence); ok {
		for _, item := range seq.Items {
			itemStart := xml.StartElement{Name: xml.Name{Local: "Item"}}
			if err := enc.EncodeToken(itemStart); err != nil {
				return err
			}
			if err := dumpDataSet(enc, item); err != nil {
				return err
			}
			if err := enc.EncodeToken(itemStart.End()); err != nil {
				return err
			}
		}
	} else if err := enc.EncodeToken(xml.CharData(fmt.Sprint(elem.ValueField))); err != nil {
		return err
	}

	return enc.EncodeToken(start.End())
}
