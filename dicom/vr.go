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
)

// vrType groups common encodings together
type vrType int

const (
	// textVR is for value fields that will be interpreted as simple text with space padding
	textVR vrType = iota

	// numberBinaryVR is for value fields that are parsed as binary numbers
	numberBinaryVR

	// bulkDataVR groups sequences of binary numbers
	bulkDataVR

	// uniqueIdentifierVR is for VR: UI. It has null padding
	uniqueIdentifierVR

	// dateTimeVR is for VRs DA, TM, DT. Values are fixed-format digit strings
	// decoded to time.Time
	dateTimeVR

	// sequenceVR is for VR: SQ
	sequenceVR

	// tagVR is for tags. Distinct from numberBinaryVR due to little endian byte ordering
	tagVR
)

// UndefinedLength as specified
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
const UndefinedLength = 0xffffffff

// VR models the DICOM Value representations (VR)
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
type VR struct {
	// Name represents the 2-character VR Code
	Name string

	kind vrType

	// width is the byte width of one value for fixed-width numeric VRs, and
	// zero otherwise. Multi-valued numeric attributes pack values of this
	// width back to back with no separator.
	width uint32
}

func (vr *VR) String() string {
	return vr.Name
}

var vrLookupMap = map[string]*VR{}

func newVR(text string, vrType vrType, width uint32) *VR {
	vr := &VR{text, vrType, width}
	vrLookupMap[vr.Name] = vr

	return vr
}

func lookupVRByName(name string) (*VR, error) {
	r, ok := vrLookupMap[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown vr name %q", ErrInvalidVR, name)
	}
	return r, nil
}

// VR list obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
var (
	// textual VRs
	CSVR = newVR("CS", textVR, 0)
	SHVR = newVR("SH", textVR, 0)
	LOVR = newVR("LO", textVR, 0)
	STVR = newVR("ST", textVR, 0)
	LTVR = newVR("LT", textVR, 0)
	ASVR = newVR("AS", textVR, 0)

	// person name
	PNVR = newVR("PN", textVR, 0)

	// application entity
	AEVR = newVR("AE", textVR, 0)

	// dates/time VRs
	DAVR = newVR("DA", dateTimeVR, 0)
	TMVR = newVR("TM", dateTimeVR, 0)
	DTVR = newVR("DT", dateTimeVR, 0)

	// textual numbers
	ISVR = newVR("IS", textVR, 0)
	DSVR = newVR("DS", textVR, 0)

	// binary numbers
	SSVR = newVR("SS", numberBinaryVR, 2)
	USVR = newVR("US", numberBinaryVR, 2)
	SLVR = newVR("SL", numberBinaryVR, 4)
	ULVR = newVR("UL", numberBinaryVR, 4)
	FLVR = newVR("FL", numberBinaryVR, 4)
	FDVR = newVR("FD", numberBinaryVR, 8)

	// large binary sequences
	OBVR = newVR("OB", bulkDataVR, 0)
	ODVR = newVR("OD", bulkDataVR, 0)
	OLVR = newVR("OL", bulkDataVR, 0)
	OWVR = newVR("OW", bulkDataVR, 0)
	OFVR = newVR("OF", bulkDataVR, 0)

	// unlimited char
	UCVR = newVR("UC", bulkDataVR, 0)

	// unknown
	UNVR = newVR("UN", bulkDataVR, 0)

	// URL
	URVR = newVR("UR", bulkDataVR, 0)

	// unlimited text
	UTVR = newVR("UT", bulkDataVR, 0)

	// attribute tag
	ATVR = newVR("AT", tagVR, 4)

	// unique identifier
	UIVR = newVR("UI", uniqueIdentifierVR, 0)

	// sequence
	SQVR = newVR("SQ", sequenceVR, 0)
)
