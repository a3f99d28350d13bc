// Command scintdiag inspects a cached element-set file: it reports the
// record count, the epoch range, per-satellite duplicate counts, what a
// consolidation pass against a reference time would keep, and how many of
// the survivors propagate cleanly at that time.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ita-gnss-lab/scintgo/internal/fetch"
	"github.com/ita-gnss-lab/scintgo/internal/propagation"
	"github.com/ita-gnss-lab/scintgo/internal/tle"
)

func main() {
	refFlag := flag.String("ref", "", "reference time (RFC 3339); defaults to now")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: scintdiag [-ref TIME] CACHE_FILE\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ref := time.Now().UTC()
	if *refFlag != "" {
		t, err := time.Parse(time.RFC3339, *refFlag)
		if err != nil {
			logger.Error("invalid -ref value", "value", *refFlag, "error", err)
			os.Exit(1)
		}
		ref = t.UTC()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("reading cache file", "path", path, "error", err)
		os.Exit(1)
	}

	lines := fetch.SplitLines(fetch.CleanText(string(raw)))
	records, err := tle.GroupTriplets(lines)
	if err != nil {
		logger.Error("grouping records", "path", path, "error", err)
		os.Exit(1)
	}

	fmt.Printf("file: %s\n", path)
	fmt.Printf("records: %d\n", len(records))
	if len(records) == 0 {
		return
	}

	var earliest, latest time.Time
	counts := make(map[string]int)
	order := make([]string, 0, len(records))
	for _, rec := range records {
		id, err := rec.CatalogID()
		if err != nil {
			logger.Error("malformed record", "error", err)
			os.Exit(1)
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++

		epoch, err := rec.Epoch()
		if err != nil {
			logger.Error("malformed epoch", "catalog_id", id, "error", err)
			os.Exit(1)
		}
		if earliest.IsZero() || epoch.Before(earliest) {
			earliest = epoch
		}
		if latest.IsZero() || epoch.After(latest) {
			latest = epoch
		}
	}

	fmt.Printf("epoch range: %s .. %s\n", earliest.Format(time.RFC3339), latest.Format(time.RFC3339))
	fmt.Printf("satellites: %d\n", len(counts))
	for _, id := range order {
		if counts[id] > 1 {
			fmt.Printf("  %s: %d reports\n", id, counts[id])
		}
	}

	kept, err := tle.Consolidate(lines, ref)
	if err != nil {
		logger.Error("consolidating records", "error", err)
		os.Exit(1)
	}
	keptRecords, err := tle.GroupTriplets(kept)
	if err != nil {
		logger.Error("grouping consolidated records", "error", err)
		os.Exit(1)
	}
	fmt.Printf("after consolidation at %s: %d records (%d dropped)\n",
		ref.Format(time.RFC3339), len(keptRecords), len(records)-len(keptRecords))

	states := propagation.Snapshot(context.Background(), keptRecords, ref, logger)
	fmt.Printf("propagatable at reference time: %d of %d\n", len(states), len(keptRecords))
}
