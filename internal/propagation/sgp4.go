// Package propagation wraps the SGP4 orbit model for consolidated
// element-set records. The pipeline never re-derives orbital state itself;
// everything downstream of a Record goes through this package.
package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/ita-gnss-lab/scintgo/internal/tle"
	"github.com/ita-gnss-lab/scintgo/internal/transform"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite.
// Pure Go, no CGO, explicit TEME output. Propagate() takes Satellite by
// value so SGP4 error codes are not visible to the caller; propagation
// failures are detected by checking the output for NaN/Inf and unreasonable
// position magnitudes.

// Propagator computes TEME states for a single record.
type Propagator struct {
	sat       satellite.Satellite
	catalogID string
}

// New creates a Propagator from a consolidated record. The element lines
// are pre-validated because go-satellite calls log.Fatal on malformed input.
func New(rec tle.Record) (*Propagator, error) {
	id, err := rec.CatalogID()
	if err != nil {
		return nil, err
	}
	if err := validateElementLines(rec.Line1, rec.Line2); err != nil {
		return nil, fmt.Errorf("invalid element set for %s: %w", id, err)
	}

	sat := satellite.TLEToSat(rec.Line1, rec.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for %s: code=%d %s", id, sat.Error, sat.ErrorStr)
	}
	return &Propagator{sat: sat, catalogID: id}, nil
}

// CatalogID returns the record's catalog id.
func (p *Propagator) CatalogID() string {
	return p.catalogID
}

// StateAt computes the satellite state at t in the TEME frame (km, km/s).
func (p *Propagator) StateAt(t time.Time) (transform.PositionTEME, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, vel := satellite.Propagate(p.sat, year, int(month), day, hour, min, sec)

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return transform.PositionTEME{}, fmt.Errorf("sgp4 propagation failed for %s: output is NaN/Inf", p.catalogID)
	}

	// Position magnitude should land between ~6200 km and ~50000 km.
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return transform.PositionTEME{}, fmt.Errorf("sgp4 propagation failed for %s: unreasonable position magnitude %.1f km", p.catalogID, mag)
	}

	return transform.PositionTEME{
		X:  pos.X,
		Y:  pos.Y,
		Z:  pos.Z,
		VX: vel.X,
		VY: vel.Y,
		VZ: vel.Z,
	}, nil
}

// validateElementLines performs basic format validation on the element lines.
func validateElementLines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line 1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line 2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line 1 must start with '1', got %q", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line 2 must start with '2', got %q", line2[0])
	}
	return nil
}
