// Package passes finds line-of-sight windows: intervals during which a
// satellite's elevation above a receiver's horizon exceeds a threshold, and
// samples observer-relative geometry across a window.
package passes

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ita-gnss-lab/scintgo/internal/propagation"
	"github.com/ita-gnss-lab/scintgo/internal/tle"
	"github.com/ita-gnss-lab/scintgo/internal/transform"
)

const (
	coarseStep = 30 * time.Second // coarse scan cadence
	fineStep   = time.Second      // fine scan cadence around a coarse hit
)

// Config controls the window search.
type Config struct {
	MinElevationDeg float64       // threshold elevation (default 5)
	SearchRadius    time.Duration // half-width of the scan around the reference time (default 12h)
	Logger          *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.MinElevationDeg == 0 {
		c.MinElevationDeg = 5
	}
	if c.SearchRadius == 0 {
		c.SearchRadius = 12 * time.Hour
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Visible is one satellite whose line-of-sight window brackets the
// reference time.
type Visible struct {
	Record          tle.Record
	Rise            time.Time
	Culminate       time.Time
	Set             time.Time
	MaxElevationDeg float64
}

// FindVisible scans [ref-SearchRadius, ref+SearchRadius] for each record
// and returns, in input order, the satellites that are above the elevation
// threshold at ref itself, with their rise/culminate/set times. Records
// whose element sets cannot be propagated are logged and skipped.
//
// Satellites are processed in parallel with a bounded group; the scan per
// satellite is a coarse pass at 30 s refined to 1 s around each crossing.
func FindVisible(ctx context.Context, records []tle.Record, obs transform.ObserverPosition, ref time.Time, cfg Config) ([]Visible, error) {
	cfg = cfg.withDefaults()
	results := make([]*Visible, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, rec := range records {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			prop, err := propagation.New(rec)
			if err != nil {
				cfg.Logger.Warn("skipping unpropagatable record", "component", "passes", "error", err)
				return nil
			}

			w := windowAround(gctx, prop, obs, ref, cfg)
			if w != nil {
				results[i] = &Visible{
					Record:          rec,
					Rise:            w.rise,
					Culminate:       w.culminate,
					Set:             w.set,
					MaxElevationDeg: w.maxEl,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	visible := make([]Visible, 0, len(records))
	for _, r := range results {
		if r != nil {
			visible = append(visible, *r)
		}
	}
	return visible, nil
}

type window struct {
	rise, culminate, set time.Time
	maxEl                float64
}

// windowAround looks for the line-of-sight window containing ref.
// Returns nil when the satellite is below the threshold at ref or the
// window cannot be bounded inside the search interval.
func windowAround(ctx context.Context, prop *propagation.Propagator, obs transform.ObserverPosition, ref time.Time, cfg Config) *window {
	el, ok := elevationAt(prop, obs, ref)
	if !ok || el < cfg.MinElevationDeg {
		return nil
	}

	start := ref.Add(-cfg.SearchRadius)
	end := ref.Add(cfg.SearchRadius)

	rise, ok := findCrossing(ctx, prop, obs, ref, start, cfg.MinElevationDeg, -1)
	if !ok {
		return nil
	}
	set, ok := findCrossing(ctx, prop, obs, ref, end, cfg.MinElevationDeg, +1)
	if !ok {
		return nil
	}

	// Walk the window for the culmination.
	maxEl := el
	culminate := ref
	for t := rise; !t.After(set); t = t.Add(coarseStep) {
		if ctx.Err() != nil {
			break
		}
		if e, ok := elevationAt(prop, obs, t); ok && e > maxEl {
			maxEl = e
			culminate = t
		}
	}

	return &window{rise: rise, culminate: culminate, set: set, maxEl: maxEl}
}

// findCrossing walks from ref toward limit (dir -1 backward for rise, +1
// forward for set) until elevation drops below minEl, then refines the
// crossing at fine cadence. The returned instant is the last one at or
// above the threshold in the walk direction.
func findCrossing(ctx context.Context, prop *propagation.Propagator, obs transform.ObserverPosition, ref, limit time.Time, minEl float64, dir int) (time.Time, bool) {
	step := time.Duration(dir) * coarseStep
	prev := ref

	for t := ref.Add(step); ; t = t.Add(step) {
		if ctx.Err() != nil {
			return time.Time{}, false
		}
		if (dir < 0 && t.Before(limit)) || (dir > 0 && t.After(limit)) {
			// Still above threshold at the edge of the search interval.
			return limit, true
		}
		el, ok := elevationAt(prop, obs, t)
		if !ok || el < minEl {
			// Crossed between prev and t; refine.
			fine := time.Duration(dir) * fineStep
			for ft := prev.Add(fine); ; ft = ft.Add(fine) {
				if (dir < 0 && ft.Before(t)) || (dir > 0 && ft.After(t)) {
					return prev, true
				}
				fel, fok := elevationAt(prop, obs, ft)
				if !fok || fel < minEl {
					return ft.Add(-fine), true
				}
			}
		}
		prev = t
	}
}

func elevationAt(prop *propagation.Propagator, obs transform.ObserverPosition, t time.Time) (float64, bool) {
	teme, err := prop.StateAt(t)
	if err != nil {
		return 0, false
	}
	la := transform.ECEFToLookAngles(obs, transform.TEMEToECEF(teme, t))
	return la.ElevationDeg, true
}

// Track is a sampled time series of observer-relative geometry across one
// line-of-sight window.
type Track struct {
	CatalogID    string
	Name         string
	Times        []time.Time
	ElevationDeg []float64
	AzimuthRad   []float64
	RangeKm      []float64
	RangeRateMS  []float64
}

// SampleTrack samples the window [rise, set] at the given cadence. The set
// instant is always included as the final sample.
func SampleTrack(v Visible, obs transform.ObserverPosition, step time.Duration) (Track, error) {
	prop, err := propagation.New(v.Record)
	if err != nil {
		return Track{}, err
	}

	track := Track{
		CatalogID: prop.CatalogID(),
		Name:      v.Record.Name,
	}

	for t := v.Rise; ; t = t.Add(step) {
		last := !t.Before(v.Set)
		if last {
			t = v.Set
		}

		teme, err := prop.StateAt(t)
		if err != nil {
			return Track{}, err
		}
		la := transform.ECEFToLookAngles(obs, transform.TEMEToECEF(teme, t))

		track.Times = append(track.Times, t)
		track.ElevationDeg = append(track.ElevationDeg, la.ElevationDeg)
		track.AzimuthRad = append(track.AzimuthRad, la.AzimuthDeg*math.Pi/180.0)
		track.RangeKm = append(track.RangeKm, la.RangeKm)
		track.RangeRateMS = append(track.RangeRateMS, la.RangeRateMS)

		if last {
			return track, nil
		}
	}
}
