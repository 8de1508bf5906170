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
	"testing"
)

func TestLookupTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      DataElementTag
		wantName string
		wantVR   *VR
		wantOK   bool
	}{
		{"public registry entry", PatientNameTag, "PatientName", PNVR, true},
		{"meta group entry", TransferSyntaxUIDTag, "TransferSyntaxUID", UIVR, true},
		{"repeating group wildcard (60xx,3000)", NewDataElementTag(0x6002, 0x3000), "OverlayData", OWVR, true},
		{"repeating group wildcard (50xx,200C)", NewDataElementTag(0x5004, 0x200C), "AudioSampleData", OBVR, true},
		{"unknown tag", NewDataElementTag(0x0009, 0x0001), "", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entry, ok := LookupTag(tc.tag)
			if ok != tc.wantOK {
				t.Fatalf("got ok=%v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if entry.Name != tc.wantName {
				t.Errorf("got name %q, want %q", entry.Name, tc.wantName)
			}
			if entry.VR != tc.wantVR {
				t.Errorf("got vr %v, want %v", entry.VR, tc.wantVR)
			}
		})
	}
}

func TestDictionaryVR(t *testing.T) {
	tests := []struct {
		name string
		tag  DataElementTag
		want *VR
	}{
		{"dictionary entry", StudyDateTag, DAVR},
		{"group length is always UL", NewDataElementTag(0x0009, 0x0000), ULVR},
		{"unknown tag decodes as UN", NewDataElementTag(0x0009, 0x0011), UNVR},
		{"pixel data", PixelDataTag, OWVR},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tag.DictionaryVR(); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRegisterPrivateDictionary(t *testing.T) {
	privateTag := NewDataElementTag(0x0029, 0x1010)
	RegisterPrivateDictionary(DictionaryEntry{privateTag, "AcmeScannerSettings", LOVR})

	entry, ok := LookupTag(privateTag)
	if !ok {
		t.Fatal("expected registered private tag to resolve")
	}
	if entry.Name != "AcmeScannerSettings" || entry.VR != LOVR {
		t.Fatalf("got %+v, want AcmeScannerSettings/LO", entry)
	}
	if got := privateTag.DictionaryVR(); got != LOVR {
		t.Fatalf("got %v, want LO", got)
	}

	tag, ok := lookupTagByName("AcmeScannerSettings")
	if !ok || tag != privateTag {
		t.Fatalf("got (%v, %v), want (%v, true)", tag, ok, privateTag)
	}
}

func TestTagProperties(t *testing.T) {
	tag := NewDataElementTag(0x0010, 0x0010)
	if tag != PatientNameTag {
		t.Fatalf("got %v, want %v", tag, PatientNameTag)
	}
	if got := tag.String(); got != "(0010,0010)" {
		t.Errorf("got %q, want (0010,0010)", got)
	}
	if tag.IsPrivate() {
		t.Error("(0010,0010) is not private")
	}
	if !NewDataElementTag(0x0029, 0x0001).IsPrivate() {
		t.Error("odd group tags are private")
	}
	if !TransferSyntaxUIDTag.IsMetadataElement() {
		t.Error("(0002,0010) is a metadata element")
	}
	if got := NewDataElementTag(0x0009, 0x0001).Name(); got != "" {
		t.Errorf("got %q, want empty name for unknown tag", got)
	}
}
