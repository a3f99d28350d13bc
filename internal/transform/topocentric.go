package transform

import "math"

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0             // semi-major axis (meters)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// ObserverPosition holds a ground receiver's location in both geodetic and
// ECEF frames. ECEF coordinates are precomputed once so they can be reused
// across every satellite and every sample instant.
type ObserverPosition struct {
	LatRad, LonRad, AltM float64 // geodetic (radians, meters above ellipsoid)
	ECEFx, ECEFy, ECEFz  float64 // precomputed ECEF (meters)
}

// NewObserverPosition creates an ObserverPosition from geodetic coordinates.
// Latitude and longitude are in degrees, altitude in meters above the
// WGS-84 ellipsoid.
func NewObserverPosition(latDeg, lonDeg, altM float64) ObserverPosition {
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	sinLon := math.Sin(lon)
	cosLon := math.Cos(lon)

	// Radius of curvature in the prime vertical.
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return ObserverPosition{
		LatRad: lat,
		LonRad: lon,
		AltM:   altM,
		ECEFx:  (n + altM) * cosLat * cosLon,
		ECEFy:  (n + altM) * cosLat * sinLon,
		ECEFz:  (n*(1-wgs84E2) + altM) * sinLat,
	}
}

// LookAngles holds observer-relative geometry for one satellite at one
// instant: pointing, slant range, and range rate.
type LookAngles struct {
	AzimuthDeg   float64 // 0 = North, clockwise
	ElevationDeg float64 // 0 = horizon, 90 = zenith
	RangeKm      float64
	RangeRateMS  float64 // m/s, positive when receding
}

// ECEFToLookAngles computes azimuth, elevation, slant range, and range rate
// from an observer to a satellite state in ECEF.
//
// The range vector is rotated into the SEZ (South-East-Zenith) topocentric
// frame per Vallado Section 4.4. The range rate is the relative velocity
// projected onto the range unit vector; the observer is fixed in ECEF, so
// the satellite's ECEF velocity is already the relative velocity.
func ECEFToLookAngles(obs ObserverPosition, sat PositionECEF) LookAngles {
	rx := sat.X - obs.ECEFx
	ry := sat.Y - obs.ECEFy
	rz := sat.Z - obs.ECEFz

	sinLat := math.Sin(obs.LatRad)
	cosLat := math.Cos(obs.LatRad)
	sinLon := math.Sin(obs.LonRad)
	cosLon := math.Cos(obs.LonRad)

	south := sinLat*cosLon*rx + sinLat*sinLon*ry - cosLat*rz
	east := -sinLon*rx + cosLon*ry
	zenith := cosLat*cosLon*rx + cosLat*sinLon*ry + sinLat*rz

	rangeMag := math.Sqrt(south*south + east*east + zenith*zenith)

	el := math.Asin(zenith / rangeMag)

	// In SEZ, North = -South, so az = atan2(east, -south), clockwise from North.
	az := math.Atan2(east, -south)
	if az < 0 {
		az += 2 * math.Pi
	}

	rangeRate := (rx*sat.VX + ry*sat.VY + rz*sat.VZ) / rangeMag

	return LookAngles{
		AzimuthDeg:   az * 180.0 / math.Pi,
		ElevationDeg: el * 180.0 / math.Pi,
		RangeKm:      rangeMag / 1000.0,
		RangeRateMS:  rangeRate,
	}
}
