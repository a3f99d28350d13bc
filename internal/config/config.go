// Package config holds the validated pipeline configuration: where element
// sets come from, whether responses are persisted, and which satellite
// system is selected.
package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// Source selects between a live fetch and the local cache file.
type Source int

const (
	// SourceOnline fetches from the remote endpoint.
	SourceOnline Source = iota
	// SourceCached reads the previously persisted response; no network call
	// is attempted.
	SourceCached
)

func (s Source) String() string {
	switch s {
	case SourceOnline:
		return "online"
	case SourceCached:
		return "cached"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// SystemKind selects a satellite system group on the catalog endpoint.
type SystemKind string

const (
	SystemGNSS    SystemKind = "gnss"
	SystemCubesat SystemKind = "cubesat"
	SystemGPS     SystemKind = "gps-ops"
)

// ErrInvalidSystemKind reports an unrecognized satellite-system selector.
var ErrInvalidSystemKind = errors.New("invalid system kind")

// ParseSystemKind maps a selector string to a SystemKind.
func ParseSystemKind(s string) (SystemKind, error) {
	switch s {
	case "gnss":
		return SystemGNSS, nil
	case "cubesat":
		return SystemCubesat, nil
	case "gps", "gps-ops":
		return SystemGPS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSystemKind, s)
	}
}

// Options is the single configuration value threaded through the pipeline.
// It replaces the historical spread of 0/1 flags and bare booleans and is
// validated once at the boundary.
type Options struct {
	Source       Source
	PersistCache bool
	SystemKind   SystemKind
}

// Validate checks that every field holds a known value.
func (o Options) Validate() error {
	if o.Source != SourceOnline && o.Source != SourceCached {
		return fmt.Errorf("invalid source %q", o.Source)
	}
	switch o.SystemKind {
	case SystemGNSS, SystemCubesat, SystemGPS:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSystemKind, o.SystemKind)
	}
}

// Credentials is the ephemeral identity/password pair for one authenticated
// archive query. It is caller-supplied and never cached.
type Credentials struct {
	Identity string
	Password string
}

// LogValue keeps credentials out of log output even when a Credentials value
// is passed to slog by mistake.
func (Credentials) LogValue() slog.Value {
	return slog.StringValue("[redacted]")
}
