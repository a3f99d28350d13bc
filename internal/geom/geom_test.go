package geom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ita-gnss-lab/scintgo/internal/archive"
	"github.com/ita-gnss-lab/scintgo/internal/cache"
	"github.com/ita-gnss-lab/scintgo/internal/catalog"
	"github.com/ita-gnss-lab/scintgo/internal/config"
	"github.com/ita-gnss-lab/scintgo/internal/passes"
	"github.com/ita-gnss-lab/scintgo/internal/transform"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failFetcher counts calls; offline pipeline runs must never reach it.
type failFetcher struct {
	calls int
}

func (f *failFetcher) Fetch(ctx context.Context, method, rawURL string, form url.Values) (string, error) {
	f.calls++
	return "", errors.New("unexpected network call")
}

var refTime = time.Date(2024, 10, 28, 9, 34, 46, 0, time.UTC)

var sjcObserver = transform.NewObserverPosition(-23.2071, -45.8617, 605)

func elementLine1(id, epoch string) string {
	return fmt.Sprintf("1 %sU 98067A   %s  .00016717  00000-0  10270-3 0  9005", id, epoch)
}

func elementLine2(id string) string {
	return fmt.Sprintf("2 %s  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09", id)
}

func tripletText(name, id, epoch string) string {
	return name + "\n" + elementLine1(id, epoch) + "\n" + elementLine2(id) + "\n"
}

// seedStore writes offline cache entries: a catalog listing for four
// objects and an archive response where two of them carry duplicate reports.
func seedStore(t *testing.T, store *cache.Store, kind config.SystemKind) {
	t.Helper()

	catalogText := tripletText("NAVSTAR 43 (USA 132)", "24876", "24302.39915371") +
		tripletText("NAVSTAR 47 (USA 150)", "26360", "24302.41666666") +
		tripletText("NAVSTAR 48 (USA 151)", "26407", "24302.55555555") +
		tripletText("NAVSTAR 52 (USA 168)", "27663", "24302.62500000")
	if err := store.Write(cache.SourceCatalog, string(kind), catalogText); err != nil {
		t.Fatalf("seeding catalog cache: %v", err)
	}

	archiveText := tripletText("NAVSTAR 43 (USA 132)", "24876", "24302.39915371") +
		tripletText("NAVSTAR 43 (USA 132)", "24876", "24302.39915371") +
		tripletText("NAVSTAR 43 (USA 132)", "24876", "24302.89773807") +
		tripletText("NAVSTAR 47 (USA 150)", "26360", "24302.41666666") +
		tripletText("NAVSTAR 48 (USA 151)", "26407", "24302.55555555") +
		tripletText("NAVSTAR 48 (USA 151)", "26407", "24302.55555555") +
		tripletText("NAVSTAR 52 (USA 168)", "27663", "24302.62500000")
	if err := store.Write(cache.SourceArchive, string(kind), archiveText); err != nil {
		t.Fatalf("seeding archive cache: %v", err)
	}
}

func newOfflinePipeline(store *cache.Store, fetcher *failFetcher) *Pipeline {
	logger := testLogger()
	resolver := catalog.NewResolver(fetcher, store, "", logger)
	query := archive.NewQuery(fetcher, store, "", logger)
	return NewPipeline(resolver, query, logger)
}

func TestPipeline_Run_Offline(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	seedStore(t, store, config.SystemGPS)
	fetcher := &failFetcher{}
	pipeline := newOfflinePipeline(store, fetcher)

	result, err := pipeline.Run(context.Background(), Request{
		ReferenceTime: refTime,
		Observer:      sjcObserver,
		Options:       config.Options{Source: config.SourceCached, SystemKind: config.SystemGPS},
		Passes:        passes.Config{Logger: testLogger(), SearchRadius: 30 * time.Minute},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// Seven reports consolidate down to one record per object.
	if len(result.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(result.Records))
	}
	wantIDs := []string{"24876", "26360", "26407", "27663"}
	for i, rec := range result.Records {
		id, err := rec.CatalogID()
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if id != wantIDs[i] {
			t.Errorf("record %d id = %q, want %q", i, id, wantIDs[i])
		}
	}

	// Every visible window must reference one of the consolidated records.
	for _, v := range result.Visible {
		id, _ := v.Record.CatalogID()
		if !strings.Contains(strings.Join(wantIDs, ","), id) {
			t.Errorf("visible window for unknown id %q", id)
		}
		if v.Set.Before(v.Rise) {
			t.Errorf("window for %s ends before it starts", id)
		}
	}

	if fetcher.calls != 0 {
		t.Errorf("offline run issued %d network calls", fetcher.calls)
	}
}

// An empty catalog group short-circuits the pipeline before the archive
// query: empty result, no error, no archive read.
func TestPipeline_Run_EmptyGroup(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	if err := store.Write(cache.SourceCatalog, string(config.SystemGPS), ""); err != nil {
		t.Fatalf("seeding empty catalog cache: %v", err)
	}
	// Deliberately no archive entry: reaching the archive would fail.

	fetcher := &failFetcher{}
	pipeline := newOfflinePipeline(store, fetcher)

	result, err := pipeline.Run(context.Background(), Request{
		ReferenceTime: refTime,
		Observer:      sjcObserver,
		Options:       config.Options{Source: config.SourceCached, SystemKind: config.SystemGPS},
		Passes:        passes.Config{Logger: testLogger()},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.Records) != 0 || len(result.Visible) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestPipeline_Run_MissingCatalogCache(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	pipeline := newOfflinePipeline(store, &failFetcher{})

	_, err := pipeline.Run(context.Background(), Request{
		ReferenceTime: refTime,
		Observer:      sjcObserver,
		Options:       config.Options{Source: config.SourceCached, SystemKind: config.SystemGPS},
		Passes:        passes.Config{Logger: testLogger()},
	})
	if !errors.Is(err, cache.ErrMissing) {
		t.Errorf("error = %v, want cache.ErrMissing", err)
	}
}

func TestPipeline_Run_MissingArchiveCache(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	catalogText := tripletText("NAVSTAR 43 (USA 132)", "24876", "24302.39915371")
	if err := store.Write(cache.SourceCatalog, string(config.SystemGPS), catalogText); err != nil {
		t.Fatalf("seeding catalog cache: %v", err)
	}

	pipeline := newOfflinePipeline(store, &failFetcher{})

	_, err := pipeline.Run(context.Background(), Request{
		ReferenceTime: refTime,
		Observer:      sjcObserver,
		Options:       config.Options{Source: config.SourceCached, SystemKind: config.SystemGPS},
		Passes:        passes.Config{Logger: testLogger()},
	})
	if !errors.Is(err, cache.ErrMissing) {
		t.Errorf("error = %v, want cache.ErrMissing", err)
	}
}

// A corrupt archive entry aborts the whole run; there is no partial result.
func TestPipeline_Run_MalformedArchive(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	catalogText := tripletText("NAVSTAR 43 (USA 132)", "24876", "24302.39915371")
	if err := store.Write(cache.SourceCatalog, string(config.SystemGPS), catalogText); err != nil {
		t.Fatalf("seeding catalog cache: %v", err)
	}
	// Archive entry with a dangling header line.
	if err := store.Write(cache.SourceArchive, string(config.SystemGPS), catalogText+"ORPHAN\n"); err != nil {
		t.Fatalf("seeding archive cache: %v", err)
	}

	pipeline := newOfflinePipeline(store, &failFetcher{})

	_, err := pipeline.Run(context.Background(), Request{
		ReferenceTime: refTime,
		Observer:      sjcObserver,
		Options:       config.Options{Source: config.SourceCached, SystemKind: config.SystemGPS},
		Passes:        passes.Config{Logger: testLogger()},
	})
	if err == nil {
		t.Fatal("Run with corrupt archive cache succeeded")
	}
}
