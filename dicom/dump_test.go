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
	"strings"
	"testing"
)

func TestDumpXML(t *testing.T) {
	nested := &DataSet{Elements: map[DataElementTag]*DataElement{
		ReferencedSOPClassUIDTag: {ReferencedSOPClassUIDTag, UIVR, []string{"1.2.4"}, 6},
	}}
	ds := &DataSet{Elements: map[DataElementTag]*DataElement{
		PatientNameTag: {PatientNameTag, PNVR, []string{"DOE^JOHN"}, 8},
		ReferencedStudySequenceTag: {
			ReferencedStudySequenceTag, SQVR, &Sequence{[]*DataSet{nested}}, UndefinedLength,
		},
	}}

	var buf bytes.Buffer
	if err := DumpXML(&buf, ds); err != nil {
		t.Fatalf("DumpXML: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`tag="(0010,0010)"`,
		`name="PatientName"`,
		`vr="PN"`,
		`vl="8"`,
		"DOE^JOHN",
		`tag="(0008,1110)"`,
		`vl="UNDEFINED"`,
		"<Item>",
		`tag="(0008,1150)"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
