// Package geom orchestrates the acquisition pipeline: resolve catalog ids,
// retrieve historical element sets for the reference date, consolidate
// duplicate reports, and compute line-of-sight windows for a receiver.
// The steps are strictly sequential; each one's output seeds the next.
package geom

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ita-gnss-lab/scintgo/internal/archive"
	"github.com/ita-gnss-lab/scintgo/internal/catalog"
	"github.com/ita-gnss-lab/scintgo/internal/config"
	"github.com/ita-gnss-lab/scintgo/internal/metrics"
	"github.com/ita-gnss-lab/scintgo/internal/passes"
	"github.com/ita-gnss-lab/scintgo/internal/tle"
	"github.com/ita-gnss-lab/scintgo/internal/transform"
)

// Pipeline wires the resolver and archive query together.
type Pipeline struct {
	resolver *catalog.Resolver
	query    *archive.Query
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(resolver *catalog.Resolver, query *archive.Query, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		query:    query,
		logger:   logger,
	}
}

// Request holds one invocation's inputs.
type Request struct {
	ReferenceTime time.Time
	Observer      transform.ObserverPosition
	Options       config.Options
	Credentials   config.Credentials
	Passes        passes.Config
}

// Result holds the consolidated records and the satellites visible from the
// observer at the reference time.
type Result struct {
	Records []tle.Record
	Visible []passes.Visible
}

// Run executes the pipeline. Every error aborts immediately; there is no
// fallback between online and offline modes and no partial result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	ids, err := p.resolver.Identifiers(ctx, req.Options)
	if err != nil {
		return nil, fmt.Errorf("resolving identifiers: %w", err)
	}
	if ids == "" {
		p.logger.Info("no identifiers for system kind", "component", "geom", "system_kind", string(req.Options.SystemKind))
		return &Result{}, nil
	}

	lines, err := p.query.Records(ctx, ids, req.ReferenceTime, req.Credentials, req.Options)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}

	before := len(lines) / tle.LinesPerRecord
	lines, err = tle.Consolidate(lines, req.ReferenceTime)
	if err != nil {
		return nil, fmt.Errorf("consolidating records: %w", err)
	}
	records, err := tle.GroupTriplets(lines)
	if err != nil {
		return nil, fmt.Errorf("grouping records: %w", err)
	}
	metrics.AddRecordsDropped(before - len(records))

	p.logger.Info("consolidated element sets",
		"component", "geom",
		"received", before,
		"kept", len(records),
	)

	visible, err := passes.FindVisible(ctx, records, req.Observer, req.ReferenceTime, req.Passes)
	if err != nil {
		return nil, fmt.Errorf("finding visible satellites: %w", err)
	}

	metrics.ObservePipelineDuration(time.Since(start))

	return &Result{Records: records, Visible: visible}, nil
}
