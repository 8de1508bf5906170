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

// Package dicom provides functions and data structures for decoding the
// DICOM file format as specified in
// http://dicom.nema.org/medical/dicom/current/output/pdf/part05.pdf.
//
// The package is divided into two levels of abstraction. The high level API
// consists of the Parse function, which decodes a whole file into a DataSet
// of buffered DataElements addressable by tag or by dictionary name. The low
// level API consists of streaming interfaces like DataElementIterator,
// SequenceIterator, and BulkDataIterator, which operate on DataElements one
// at a time without buffering and are particularly useful when handling
// large pixel data.
//
// The library is decode-only. It locates and exposes the raw fragment bytes
// of compressed (encapsulated) pixel data but performs no payload
// decompression, and it validates structure, not clinical semantics.
//
// Decoding one file is a single-threaded, synchronous computation; multiple
// independent decodes are safe to run concurrently since the data dictionary
// is read-only and no other state is shared across decode calls.
package dicom
