package propagation

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ita-gnss-lab/scintgo/internal/tle"
	"github.com/ita-gnss-lab/scintgo/internal/transform"
)

// State is one satellite's ECEF state at the snapshot instant.
type State struct {
	CatalogID string
	Name      string
	ECEF      transform.PositionECEF
}

// Snapshot propagates every record to the same instant and returns the ECEF
// states, preserving input order. GMST is computed once and shared. Records
// that fail SGP4 initialization or propagation are logged and skipped, so
// one decayed object cannot sink a whole-catalog snapshot.
func Snapshot(ctx context.Context, records []tle.Record, t time.Time, logger *slog.Logger) []State {
	if len(records) == 0 {
		return nil
	}

	gmst := transform.GMST(t)
	results := make([]*State, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, rec := range records {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			prop, err := New(rec)
			if err != nil {
				logger.Warn("skipping record in snapshot", "component", "propagation", "error", err)
				return nil
			}
			teme, err := prop.StateAt(t)
			if err != nil {
				logger.Warn("skipping record in snapshot", "component", "propagation", "catalog_id", prop.CatalogID(), "error", err)
				return nil
			}

			results[i] = &State{
				CatalogID: prop.CatalogID(),
				Name:      rec.Name,
				ECEF:      transform.TEMEToECEFWithGMST(teme, gmst),
			}
			return nil
		})
	}
	g.Wait()

	states := make([]State, 0, len(records))
	for _, r := range results {
		if r != nil {
			states = append(states, *r)
		}
	}
	return states
}
