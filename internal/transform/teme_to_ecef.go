// Package transform provides the coordinate-frame plumbing between the SGP4
// propagator and observer-relative geometry: TEME (True Equator Mean
// Equinox) to ECEF (Earth-Centered Earth-Fixed) for position and velocity,
// and ECEF to topocentric look angles with range rate.
//
// The TEME→ECEF rotation uses GMST only (TEME → PEF ≈ ECEF), ignoring polar
// motion and the equation of the equinoxes; the error is tens of meters,
// well inside what line-of-sight geometry needs.
//
// Reference: Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3-4.
package transform

import (
	"math"
	"time"
)

// PositionTEME is a satellite state in the TEME frame (km, km/s).
type PositionTEME struct {
	X, Y, Z    float64
	VX, VY, VZ float64
}

// PositionECEF is a satellite state in the ECEF frame (meters, m/s).
type PositionECEF struct {
	X, Y, Z    float64
	VX, VY, VZ float64
}

// TEMEToECEF transforms a TEME state to ECEF at the given UTC time.
func TEMEToECEF(teme PositionTEME, t time.Time) PositionECEF {
	return TEMEToECEFWithGMST(teme, GMST(t))
}

// TEMEToECEFWithGMST transforms TEME to ECEF using a precomputed GMST angle
// in radians. Compute GMST once when transforming many satellites to the
// same instant.
//
// Position: r_ECEF = R3(θ) r_TEME.
// Velocity: v_ECEF = R3(θ) v_TEME - ω × r_ECEF, with ω = [0, 0, ω_earth].
func TEMEToECEFWithGMST(teme PositionTEME, gmst float64) PositionECEF {
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)

	x := teme.X*cosG + teme.Y*sinG
	y := -teme.X*sinG + teme.Y*cosG
	z := teme.Z

	vx := teme.VX*cosG + teme.VY*sinG + OmegaEarth*y
	vy := -teme.VX*sinG + teme.VY*cosG - OmegaEarth*x
	vz := teme.VZ

	// km → m, km/s → m/s.
	return PositionECEF{
		X:  x * 1000.0,
		Y:  y * 1000.0,
		Z:  z * 1000.0,
		VX: vx * 1000.0,
		VY: vy * 1000.0,
		VZ: vz * 1000.0,
	}
}
