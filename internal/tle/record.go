// Package tle models three-line element-set records: triplet grouping,
// fixed-column field extraction, strict epoch parsing, and consolidation of
// duplicate reports per catalog id.
package tle

import (
	"fmt"
	"strings"
	"time"
)

// LinesPerRecord is the fixed size of one record: a header/name line
// followed by the two element lines.
const LinesPerRecord = 3

// Element line 1 fixed columns (0-indexed byte offsets).
const (
	catalogIDStart = 2
	catalogIDEnd   = 7
	epochStart     = 18
	epochEnd       = 32
)

// Record is one object's state at one epoch: the header line and the two
// element lines, kept verbatim so they can be handed to a propagator.
type Record struct {
	Name  string
	Line1 string
	Line2 string
}

// Lines returns the record's three physical lines in order.
func (r Record) Lines() []string {
	return []string{r.Name, r.Line1, r.Line2}
}

// CatalogID returns the 5-digit catalog id from element line 1.
func (r Record) CatalogID() (string, error) {
	return catalogIDFrom(r.Line1)
}

// CatalogIDLine2 returns the catalog id from element line 2. For a
// well-formed record it agrees with CatalogID.
func (r Record) CatalogIDLine2() (string, error) {
	return catalogIDFrom(r.Line2)
}

func catalogIDFrom(line string) (string, error) {
	if len(line) < catalogIDEnd {
		return "", &MalformedRecordError{Reason: "element line too short for catalog id", Input: line}
	}
	id := strings.TrimSpace(line[catalogIDStart:catalogIDEnd])
	if id == "" {
		return "", &MalformedRecordError{Reason: "empty catalog id field", Input: line}
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return "", &MalformedRecordError{Reason: "non-numeric catalog id", Input: line}
		}
	}
	return id, nil
}

// Epoch parses the epoch field from element line 1.
func (r Record) Epoch() (time.Time, error) {
	if len(r.Line1) < epochEnd {
		return time.Time{}, &MalformedRecordError{Reason: "element line 1 too short for epoch", Input: r.Line1}
	}
	return ParseEpoch(r.Line1[epochStart:epochEnd])
}

// GroupTriplets groups a flat line sequence into records. The sequence must
// be triplet-aligned and every record's element lines must carry the "1 "
// and "2 " markers; anything else is a hard error, never silently skipped.
func GroupTriplets(lines []string) ([]Record, error) {
	if len(lines)%LinesPerRecord != 0 {
		return nil, &MalformedRecordError{
			Reason: fmt.Sprintf("line count %d is not a multiple of %d", len(lines), LinesPerRecord),
		}
	}

	records := make([]Record, 0, len(lines)/LinesPerRecord)
	for i := 0; i < len(lines); i += LinesPerRecord {
		rec := Record{
			Name:  lines[i],
			Line1: lines[i+1],
			Line2: lines[i+2],
		}
		if !strings.HasPrefix(rec.Line1, "1 ") {
			return nil, &MalformedRecordError{Reason: "element line 1 missing \"1 \" marker", Input: rec.Line1}
		}
		if !strings.HasPrefix(rec.Line2, "2 ") {
			return nil, &MalformedRecordError{Reason: "element line 2 missing \"2 \" marker", Input: rec.Line2}
		}
		records = append(records, rec)
	}

	return records, nil
}

// Flatten converts records back to one string per physical line.
func Flatten(records []Record) []string {
	lines := make([]string, 0, len(records)*LinesPerRecord)
	for _, r := range records {
		lines = append(lines, r.Name, r.Line1, r.Line2)
	}
	return lines
}
