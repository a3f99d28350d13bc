package tle

import (
	"strconv"
	"strings"
	"time"
)

// epochTokenLen is the fixed width of the epoch field on element line 1
// (columns 19-32, YYDDD.DDDDDDDD).
const epochTokenLen = 14

// centuryPivot splits the two-digit year: values below it are 2000s, values
// from it through 99 are 1900s. The pivot is a fixed constant shared by
// every producer of the format, not derived from wall-clock time, so epochs
// from 2057 onward will mis-date.
const centuryPivot = 57

// ParseEpoch converts a 14-character YYDDD.DDDDDDDD epoch token to an
// absolute UTC instant. The day-of-year is 1-indexed with a fractional
// component scaled linearly from the start of the year, so day 1.0 is
// Jan 1, 00:00 UTC. Malformed tokens return *MalformedRecordError.
func ParseEpoch(token string) (time.Time, error) {
	if len(token) != epochTokenLen {
		return time.Time{}, &MalformedRecordError{
			Reason: "epoch token must be 14 characters",
			Input:  token,
		}
	}

	year, err := strconv.Atoi(token[:2])
	if err != nil {
		return time.Time{}, &MalformedRecordError{
			Reason: "non-numeric epoch year",
			Input:  token,
		}
	}
	if year >= centuryPivot {
		year += 1900
	} else {
		year += 2000
	}

	dayField := token[2:]
	if strings.ContainsAny(dayField, "eE+- ") {
		return time.Time{}, &MalformedRecordError{
			Reason: "invalid epoch day field",
			Input:  token,
		}
	}
	dayOfYear, err := strconv.ParseFloat(dayField, 64)
	if err != nil || dayOfYear < 1 {
		return time.Time{}, &MalformedRecordError{
			Reason: "invalid epoch day field",
			Input:  token,
		}
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
