package tle

import (
	"fmt"
	"time"
)

// Consolidate removes duplicate reports from a triplet-aligned line
// sequence, keeping for each run of same-id neighbors the record whose
// epoch is closest to ref. On an exact tie the earlier record survives.
//
// The scan walks a cursor over triplet boundaries: when the next record
// carries a different id the cursor advances past a confirmed unique
// record; when the ids match, the record with the strictly larger
// |epoch - ref| is dropped and the cursor stays put so the following
// candidate is compared against the survivor. Each step either advances the
// cursor or permanently removes one record, so the work is linear in the
// input length. The compaction builds a new sequence from keep decisions
// rather than deleting from the slice being scanned.
//
// Any malformed epoch or misaligned triplet aborts the whole call with
// *MalformedRecordError; no partial result is produced, because every
// comparison assumes the surviving record has a valid epoch.
func Consolidate(lines []string, ref time.Time) ([]string, error) {
	records, err := GroupTriplets(lines)
	if err != nil {
		return nil, err
	}
	kept, err := consolidate(records, ref)
	if err != nil {
		return nil, err
	}
	return Flatten(kept), nil
}

func consolidate(records []Record, ref time.Time) ([]Record, error) {
	if len(records) < 2 {
		return records, nil
	}

	kept := make([]Record, 0, len(records))
	kept = append(kept, records[0])

	for _, next := range records[1:] {
		cur := kept[len(kept)-1]

		curID, err := cur.CatalogID()
		if err != nil {
			return nil, err
		}
		nextID, err := next.CatalogID()
		if err != nil {
			return nil, err
		}

		if curID != nextID {
			kept = append(kept, next)
			continue
		}

		curEpoch, err := cur.Epoch()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", curID, err)
		}
		nextEpoch, err := next.Epoch()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", nextID, err)
		}

		// Strictly closer wins; a tie keeps the earlier record.
		if absDiff(nextEpoch, ref) < absDiff(curEpoch, ref) {
			kept[len(kept)-1] = next
		}
	}

	return kept, nil
}

func absDiff(t, ref time.Time) time.Duration {
	d := t.Sub(ref)
	if d < 0 {
		return -d
	}
	return d
}
