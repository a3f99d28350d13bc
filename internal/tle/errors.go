package tle

import "fmt"

// MalformedRecordError reports element-set text that fails strict format
// validation: a bad epoch token, a misaligned triplet sequence, or an
// element line too short to carry its fixed-column fields.
type MalformedRecordError struct {
	Reason string
	Input  string
}

func (e *MalformedRecordError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("malformed record: %s", e.Reason)
	}
	return fmt.Sprintf("malformed record: %s: %q", e.Reason, e.Input)
}
