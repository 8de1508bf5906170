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
	"sync"
)

// Tags with special structural meaning during decoding.
const (
	// FileMetaInformationGroupLengthTag is always the first element in a file
	FileMetaInformationGroupLengthTag DataElementTag = 0x00020000
	FileMetaInformationVersionTag     DataElementTag = 0x00020001
	MediaStorageSOPClassUIDTag        DataElementTag = 0x00020002
	MediaStorageSOPInstanceUIDTag     DataElementTag = 0x00020003
	TransferSyntaxUIDTag              DataElementTag = 0x00020010
	ImplementationClassUIDTag         DataElementTag = 0x00020012
	ImplementationVersionNameTag      DataElementTag = 0x00020013

	SpecificCharacterSetTag DataElementTag = 0x00080005

	PixelDataTag DataElementTag = 0x7FE00010

	// Item and delimitation tags structure sequences and encapsulated pixel
	// data. They never appear as elements of a decoded DataSet.
	ItemTag                     DataElementTag = 0xFFFEE000
	ItemDelimitationItemTag     DataElementTag = 0xFFFEE00D
	SequenceDelimitationItemTag DataElementTag = 0xFFFEE0DD
)

// Bulk data tags. Tags containing wildcards in the DICOM data dictionary
// (e.g. (50xx,3000)) are stored with the wildcard positions zeroed; see
// DefaultBulkDataDefinition for the mask logic that matches them.
const (
	AudioSampleDataTag      DataElementTag = 0x5000200C
	CurveDataTag            DataElementTag = 0x50003000
	SpectroscopyDataTag     DataElementTag = 0x56000020
	OverlayDataTag          DataElementTag = 0x60003000
	EncapsulatedDocumentTag DataElementTag = 0x00420011
	FloatPixelDataTag       DataElementTag = 0x7FE00008
	DoubleFloatPixelDataTag DataElementTag = 0x7FE00009
	WaveformDataTag         DataElementTag = 0x54001010
	PixelDataProviderURLTag DataElementTag = 0x00287FE0
)

// Commonly referenced tags.
const (
	ImageTypeTag                 DataElementTag = 0x00080008
	SOPClassUIDTag               DataElementTag = 0x00080016
	SOPInstanceUIDTag            DataElementTag = 0x00080018
	StudyDateTag                 DataElementTag = 0x00080020
	SeriesDateTag                DataElementTag = 0x00080021
	AcquisitionDateTag           DataElementTag = 0x00080022
	ContentDateTag               DataElementTag = 0x00080023
	StudyTimeTag                 DataElementTag = 0x00080030
	SeriesTimeTag                DataElementTag = 0x00080031
	AccessionNumberTag           DataElementTag = 0x00080050
	ModalityTag                  DataElementTag = 0x00080060
	ManufacturerTag              DataElementTag = 0x00080070
	InstitutionNameTag           DataElementTag = 0x00080080
	ReferringPhysicianNameTag    DataElementTag = 0x00080090
	StudyDescriptionTag          DataElementTag = 0x00081030
	SeriesDescriptionTag         DataElementTag = 0x0008103E
	ReferencedStudySequenceTag   DataElementTag = 0x00081110
	ReferencedImageSequenceTag   DataElementTag = 0x00081140
	ReferencedSOPClassUIDTag     DataElementTag = 0x00081150
	ReferencedSOPInstanceUIDTag  DataElementTag = 0x00081155
	PatientNameTag               DataElementTag = 0x00100010
	PatientIDTag                 DataElementTag = 0x00100020
	PatientBirthDateTag          DataElementTag = 0x00100030
	PatientSexTag                DataElementTag = 0x00100040
	PatientAgeTag                DataElementTag = 0x00101010
	ScanningSequenceTag          DataElementTag = 0x00180020
	SliceThicknessTag            DataElementTag = 0x00180050
	KVPTag                       DataElementTag = 0x00180060
	AcquisitionDateTimeTag       DataElementTag = 0x0008002A
	StudyInstanceUIDTag          DataElementTag = 0x0020000D
	SeriesInstanceUIDTag         DataElementTag = 0x0020000E
	StudyIDTag                   DataElementTag = 0x00200010
	SeriesNumberTag              DataElementTag = 0x00200011
	InstanceNumberTag            DataElementTag = 0x00200013
	ImagePositionPatientTag      DataElementTag = 0x00200032
	ImageOrientationPatientTag   DataElementTag = 0x00200037
	FrameOfReferenceUIDTag       DataElementTag = 0x00200052
	SamplesPerPixelTag           DataElementTag = 0x00280002
	PhotometricInterpretationTag DataElementTag = 0x00280004
	NumberOfFramesTag            DataElementTag = 0x00280008
	RowsTag                      DataElementTag = 0x00280010
	ColumnsTag                   DataElementTag = 0x00280011
	PixelSpacingTag              DataElementTag = 0x00280030
	BitsAllocatedTag             DataElementTag = 0x00280100
	BitsStoredTag                DataElementTag = 0x00280101
	HighBitTag                   DataElementTag = 0x00280102
	PixelRepresentationTag       DataElementTag = 0x00280103
	WindowCenterTag              DataElementTag = 0x00281050
	WindowWidthTag               DataElementTag = 0x00281051
	RescaleInterceptTag          DataElementTag = 0x00281052
	RescaleSlopeTag              DataElementTag = 0x00281053
	RequestAttributesSequenceTag DataElementTag = 0x00400275
	FrameIncrementPointerTag     DataElementTag = 0x00280009
	TargetUIDTag                 DataElementTag = 0x00189373
)

// DictionaryEntry describes one attribute of the DICOM data dictionary: its
// tag, its keyword, and its default value representation.
type DictionaryEntry struct {
	Tag  DataElementTag
	Name string
	VR   *VR
}

// publicDictionary covers the public registry attributes this library
// recognizes. Unrecognized tags are not an error: they decode with a
// best-effort VR of UN and are retained in the output.
var publicDictionary = map[DataElementTag]DictionaryEntry{
	FileMetaInformationGroupLengthTag: {FileMetaInformationGroupLengthTag, "FileMetaInformationGroupLength", ULVR},
	FileMetaInformationVersionTag:     {FileMetaInformationVersionTag, "FileMetaInformationVersion", OBVR},
	MediaStorageSOPClassUIDTag:        {MediaStorageSOPClassUIDTag, "MediaStorageSOPClassUID", UIVR},
	MediaStorageSOPInstanceUIDTag:     {MediaStorageSOPInstanceUIDTag, "MediaStorageSOPInstanceUID", UIVR},
	TransferSyntaxUIDTag:              {TransferSyntaxUIDTag, "TransferSyntaxUID", UIVR},
	ImplementationClassUIDTag:         {ImplementationClassUIDTag, "ImplementationClassUID", UIVR},
	ImplementationVersionNameTag:      {ImplementationVersionNameTag, "ImplementationVersionName", SHVR},

	SpecificCharacterSetTag:      {SpecificCharacterSetTag, "SpecificCharacterSet", CSVR},
	ImageTypeTag:                 {ImageTypeTag, "ImageType", CSVR},
	SOPClassUIDTag:               {SOPClassUIDTag, "SOPClassUID", UIVR},
	SOPInstanceUIDTag:            {SOPInstanceUIDTag, "SOPInstanceUID", UIVR},
	StudyDateTag:                 {StudyDateTag, "StudyDate", DAVR},
	SeriesDateTag:                {SeriesDateTag, "SeriesDate", DAVR},
	AcquisitionDateTag:           {AcquisitionDateTag, "AcquisitionDate", DAVR},
	ContentDateTag:               {ContentDateTag, "ContentDate", DAVR},
	AcquisitionDateTimeTag:       {AcquisitionDateTimeTag, "AcquisitionDateTime", DTVR},
	StudyTimeTag:                 {StudyTimeTag, "StudyTime", TMVR},
	SeriesTimeTag:                {SeriesTimeTag, "SeriesTime", TMVR},
	AccessionNumberTag:           {AccessionNumberTag, "AccessionNumber", SHVR},
	ModalityTag:                  {ModalityTag, "Modality", CSVR},
	ManufacturerTag:              {ManufacturerTag, "Manufacturer", LOVR},
	InstitutionNameTag:           {InstitutionNameTag, "InstitutionName", LOVR},
	ReferringPhysicianNameTag:    {ReferringPhysicianNameTag, "ReferringPhysicianName", PNVR},
	StudyDescriptionTag:          {StudyDescriptionTag, "StudyDescription", LOVR},
	SeriesDescriptionTag:         {SeriesDescriptionTag, "SeriesDescription", LOVR},
	ReferencedStudySequenceTag:   {ReferencedStudySequenceTag, "ReferencedStudySequence", SQVR},
	ReferencedImageSequenceTag:   {ReferencedImageSequenceTag, "ReferencedImageSequence", SQVR},
	ReferencedSOPClassUIDTag:     {ReferencedSOPClassUIDTag, "ReferencedSOPClassUID", UIVR},
	ReferencedSOPInstanceUIDTag:  {ReferencedSOPInstanceUIDTag, "ReferencedSOPInstanceUID", UIVR},
	PatientNameTag:               {PatientNameTag, "PatientName", PNVR},
	PatientIDTag:                 {PatientIDTag, "PatientID", LOVR},
	PatientBirthDateTag:          {PatientBirthDateTag, "PatientBirthDate", DAVR},
	PatientSexTag:                {PatientSexTag, "PatientSex", CSVR},
	PatientAgeTag:                {PatientAgeTag, "PatientAge", ASVR},
	ScanningSequenceTag:          {ScanningSequenceTag, "ScanningSequence", CSVR},
	SliceThicknessTag:            {SliceThicknessTag, "SliceThickness", DSVR},
	KVPTag:                       {KVPTag, "KVP", DSVR},
	TargetUIDTag:                 {TargetUIDTag, "TargetUID", UIVR},
	StudyInstanceUIDTag:          {StudyInstanceUIDTag, "StudyInstanceUID", UIVR},
	SeriesInstanceUIDTag:         {SeriesInstanceUIDTag, "SeriesInstanceUID", UIVR},
	StudyIDTag:                   {StudyIDTag, "StudyID", SHVR},
	SeriesNumberTag:              {SeriesNumberTag, "SeriesNumber", ISVR},
	InstanceNumberTag:            {InstanceNumberTag, "InstanceNumber", ISVR},
	ImagePositionPatientTag:      {ImagePositionPatientTag, "ImagePositionPatient", DSVR},
	ImageOrientationPatientTag:   {ImageOrientationPatientTag, "ImageOrientationPatient", DSVR},
	FrameOfReferenceUIDTag:       {FrameOfReferenceUIDTag, "FrameOfReferenceUID", UIVR},
	SamplesPerPixelTag:           {SamplesPerPixelTag, "SamplesPerPixel", USVR},
	PhotometricInterpretationTag: {PhotometricInterpretationTag, "PhotometricInterpretation", CSVR},
	NumberOfFramesTag:            {NumberOfFramesTag, "NumberOfFrames", ISVR},
	FrameIncrementPointerTag:     {FrameIncrementPointerTag, "FrameIncrementPointer", ATVR},
	RowsTag:                      {RowsTag, "Rows", USVR},
	ColumnsTag:                   {ColumnsTag, "Columns", USVR},
	PixelSpacingTag:              {PixelSpacingTag, "PixelSpacing", DSVR},
	BitsAllocatedTag:             {BitsAllocatedTag, "BitsAllocated", USVR},
	BitsStoredTag:                {BitsStoredTag, "BitsStored", USVR},
	HighBitTag:                   {HighBitTag, "HighBit", USVR},
	PixelRepresentationTag:       {PixelRepresentationTag, "PixelRepresentation", USVR},
	WindowCenterTag:              {WindowCenterTag, "WindowCenter", DSVR},
	WindowWidthTag:               {WindowWidthTag, "WindowWidth", DSVR},
	RescaleInterceptTag:          {RescaleInterceptTag, "RescaleIntercept", DSVR},
	RescaleSlopeTag:              {RescaleSlopeTag, "RescaleSlope", DSVR},
	RequestAttributesSequenceTag: {RequestAttributesSequenceTag, "RequestAttributesSequence", SQVR},
	WaveformDataTag:              {WaveformDataTag, "WaveformData", OWVR},
	AudioSampleDataTag:           {AudioSampleDataTag, "AudioSampleData", OBVR},
	CurveDataTag:                 {CurveDataTag, "CurveData", OBVR},
	SpectroscopyDataTag:          {SpectroscopyDataTag, "SpectroscopyData", OFVR},
	OverlayDataTag:               {OverlayDataTag, "OverlayData", OWVR},
	EncapsulatedDocumentTag:      {EncapsulatedDocumentTag, "EncapsulatedDocument", OBVR},
	FloatPixelDataTag:            {FloatPixelDataTag, "FloatPixelData", OFVR},
	DoubleFloatPixelDataTag:      {DoubleFloatPixelDataTag, "DoubleFloatPixelData", ODVR},
	PixelDataProviderURLTag:      {PixelDataProviderURLTag, "PixelDataProviderURL", URVR},
	PixelDataTag:                 {PixelDataTag, "PixelData", OWVR},
}

var tagsByName = map[string]DataElementTag{}

func init() {
	for tag, entry := range publicDictionary {
		tagsByName[entry.Name] = tag
	}
}

// privateDictionary holds registered vendor-specific entries. Lookups of
// the public registry are lock-free; the mutex only guards this map.
var (
	privateDictionaryMu sync.RWMutex
	privateDictionary   = map[DataElementTag]DictionaryEntry{}
)

// RegisterPrivateDictionary adds vendor-specific dictionary entries that take
// part in implicit VR resolution and name lookup alongside the public
// registry. Registration is expected during program initialization; lookups
// from concurrent decodes are safe at any time.
func RegisterPrivateDictionary(entries ...DictionaryEntry) {
	privateDictionaryMu.Lock()
	defer privateDictionaryMu.Unlock()
	for _, entry := range entries {
		privateDictionary[entry.Tag] = entry
		tagsByName[entry.Name] = entry.Tag
	}
}

// LookupTag returns the dictionary entry for the given tag. The second return
// is false for tags absent from both the public registry and any registered
// private dictionary.
func LookupTag(tag DataElementTag) (DictionaryEntry, bool) {
	if entry, ok := publicDictionary[tag]; ok {
		return entry, true
	}
	privateDictionaryMu.RLock()
	entry, ok := privateDictionary[tag]
	privateDictionaryMu.RUnlock()
	if ok {
		return entry, true
	}

	// Repeating groups store the wildcard positions of their tags zeroed
	// (e.g. OverlayData (60xx,3000) is stored as 0x60003000).
	for _, m := range []uint32{0xFF00FFFF, 0xFFFF000F} {
		if entry, ok := publicDictionary[DataElementTag(uint32(tag)&m)]; ok {
			return entry, true
		}
	}
	return DictionaryEntry{}, false
}

// DictionaryVR returns the default VR of the tag per the data dictionary.
// Group length elements are always UL; tags absent from the dictionary
// resolve to UN and decode as unknown binary.
func (t DataElementTag) DictionaryVR() *VR {
	if t.ElementNumber() == 0 {
		return ULVR
	}
	if entry, ok := LookupTag(t); ok {
		return entry.VR
	}
	return UNVR
}

// Name returns the dictionary keyword of the tag, or the empty string if the
// tag is not in the dictionary.
func (t DataElementTag) Name() string {
	if entry, ok := LookupTag(t); ok {
		return entry.Name
	}
	return ""
}

func lookupTagByName(name string) (DataElementTag, bool) {
	privateDictionaryMu.RLock()
	tag, ok := tagsByName[name]
	privateDictionaryMu.RUnlock()
	return tag, ok
}
