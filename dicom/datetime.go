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
	"strings"
	"time"
)

// Value formats for the DA, TM and DT value representations are specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
//
// DA is YYYYMMDD. TM is HH[MM[SS[.FFFFFF]]]. DT is
// YYYY[MM[DD[HH[MM[SS[.FFFFFF]]]]]] with an optional &ZZXX offset suffix.
// Malformed content is a decoding error, never a silent default.

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad DA value %q", ErrMalformedValue, s)
	}
	return t, nil
}

// timeLayouts maps the number of digits before the fractional part of a TM
// value to its layout. time.Parse accepts a fractional second after the
// seconds field without it appearing in the layout.
var timeLayouts = map[int]string{
	2: "15",
	4: "1504",
	6: "150405",
}

func parseTime(s string) (time.Time, error) {
	digits := s
	if i := strings.IndexByte(s, '.'); i >= 0 {
		digits = s[:i]
		if len(digits) != 6 {
			return time.Time{}, fmt.Errorf("%w: fractional seconds without full HHMMSS in TM value %q", ErrMalformedValue, s)
		}
	}
	layout, ok := timeLayouts[len(digits)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: bad TM value %q", ErrMalformedValue, s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad TM value %q", ErrMalformedValue, s)
	}
	return t, nil
}

var dateTimeLayouts = map[int]string{
	4:  "2006",
	6:  "200601",
	8:  "20060102",
	10: "2006010215",
	12: "200601021504",
	14: "20060102150405",
}

func parseDateTime(s string) (time.Time, error) {
	body, zone := s, ""
	if i := strings.IndexAny(s, "+-"); i >= 0 {
		body, zone = s[:i], s[i:]
		if len(zone) != 5 {
			return time.Time{}, fmt.Errorf("%w: bad offset in DT value %q", ErrMalformedValue, s)
		}
	}

	digits := body
	if i := strings.IndexByte(body, '.'); i >= 0 {
		digits = body[:i]
		if len(digits) != 14 {
			return time.Time{}, fmt.Errorf("%w: fractional seconds without full timestamp in DT value %q", ErrMalformedValue, s)
		}
	}
	layout, ok := dateTimeLayouts[len(digits)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: bad DT value %q", ErrMalformedValue, s)
	}
	if zone != "" {
		layout += "-0700"
	}
	t, err := time.Parse(layout, body+zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad DT value %q", ErrMalformedValue, s)
	}
	return t, nil
}

// decodeDateTimeValue decodes one value of a date/time VR.
func decodeDateTimeValue(vr *VR, s string) (time.Time, error) {
	switch vr {
	case DAVR:
		return parseDate(s)
	case TMVR:
		return parseTime(s)
	case DTVR:
		return parseDateTime(s)
	}
	return time.Time{}, fmt.Errorf("%w: vr %v is not a date/time vr", ErrMalformedValue, vr)
}
