package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ita-gnss-lab/scintgo/internal/archive"
	"github.com/ita-gnss-lab/scintgo/internal/cache"
	"github.com/ita-gnss-lab/scintgo/internal/catalog"
	"github.com/ita-gnss-lab/scintgo/internal/config"
	"github.com/ita-gnss-lab/scintgo/internal/fetch"
	"github.com/ita-gnss-lab/scintgo/internal/geom"
	"github.com/ita-gnss-lab/scintgo/internal/metrics"
	"github.com/ita-gnss-lab/scintgo/internal/passes"
	"github.com/ita-gnss-lab/scintgo/internal/transform"
)

// visibleOut is the JSON shape written for each visible satellite.
type visibleOut struct {
	CatalogID       string    `json:"catalog_id"`
	Name            string    `json:"name"`
	Site            string    `json:"site"`
	Rise            time.Time `json:"rise"`
	Culminate       time.Time `json:"culminate"`
	Set             time.Time `json:"set"`
	MaxElevationDeg float64   `json:"max_elevation_deg"`
	Track           *trackOut `json:"track,omitempty"`
}

type trackOut struct {
	Times        []time.Time `json:"times"`
	ElevationDeg []float64   `json:"elevation_deg"`
	AzimuthRad   []float64   `json:"azimuth_rad"`
	RangeKm      []float64   `json:"range_km"`
	RangeRateMS  []float64   `json:"range_rate_m_s"`
}

func main() {
	// Optional .env bootstrap; absence is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	opts, err := loadOptions(logger)
	if err != nil {
		logger.Error("invalid pipeline configuration", "error", err)
		os.Exit(1)
	}

	creds, err := loadCredentials(opts)
	if err != nil {
		logger.Error("invalid credentials configuration", "error", err)
		os.Exit(1)
	}

	ref := loadReferenceTime(logger)
	sites := loadSites(logger)
	passCfg := loadPassesConfig(logger)
	passCfg.Logger = logger

	cacheDir := os.Getenv("SCINTGO_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = "/tmp/scintgo/cache"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional metrics/health listener for long batch runs.
	if addr := os.Getenv("SCINTGO_METRICS_ADDR"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", metrics.Handler())
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok\n"))
		})
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics listener started", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener error", "error", err)
			}
		}()
		defer srv.Close()
	}

	store := cache.NewStore(cacheDir)
	client := fetch.NewClient(logger)
	resolver := catalog.NewResolver(client, store, os.Getenv("SCINTGO_CATALOG_URL"), logger)
	query := archive.NewQuery(client, store, os.Getenv("SCINTGO_ARCHIVE_URL"), logger)
	pipeline := geom.NewPipeline(resolver, query, logger)

	sampleStep := loadSampleStep(logger)

	enc := json.NewEncoder(os.Stdout)
	for _, site := range sites {
		obs := transform.NewObserverPosition(site.LatDeg, site.LonDeg, site.AltM)

		result, err := pipeline.Run(ctx, geom.Request{
			ReferenceTime: ref,
			Observer:      obs,
			Options:       opts,
			Credentials:   creds,
			Passes:        passCfg,
		})
		if err != nil {
			logger.Error("pipeline failed", "site", site.Name, "error", err)
			os.Exit(1)
		}

		logger.Info("pipeline complete",
			"site", site.Name,
			"records", len(result.Records),
			"visible", len(result.Visible),
		)

		for _, v := range result.Visible {
			id, _ := v.Record.CatalogID()
			out := visibleOut{
				CatalogID:       id,
				Name:            v.Record.Name,
				Site:            site.Name,
				Rise:            v.Rise,
				Culminate:       v.Culminate,
				Set:             v.Set,
				MaxElevationDeg: v.MaxElevationDeg,
			}

			if sampleStep > 0 {
				track, err := passes.SampleTrack(v, obs, sampleStep)
				if err != nil {
					logger.Error("track sampling failed", "site", site.Name, "catalog_id", id, "error", err)
					os.Exit(1)
				}
				out.Track = &trackOut{
					Times:        track.Times,
					ElevationDeg: track.ElevationDeg,
					AzimuthRad:   track.AzimuthRad,
					RangeKm:      track.RangeKm,
					RangeRateMS:  track.RangeRateMS,
				}
			}

			if err := enc.Encode(out); err != nil {
				logger.Error("writing output", "error", err)
				os.Exit(1)
			}
		}
	}
}

func loadOptions(logger *slog.Logger) (config.Options, error) {
	opts := config.Options{
		Source:     config.SourceOnline,
		SystemKind: config.SystemGNSS,
	}

	if v := os.Getenv("SCINTGO_SOURCE"); v != "" {
		switch v {
		case "online":
			opts.Source = config.SourceOnline
		case "cached":
			opts.Source = config.SourceCached
		default:
			return opts, errors.New("SCINTGO_SOURCE must be \"online\" or \"cached\"")
		}
	}

	if v := os.Getenv("SCINTGO_SYSTEM_KIND"); v != "" {
		kind, err := config.ParseSystemKind(v)
		if err != nil {
			return opts, err
		}
		opts.SystemKind = kind
	}

	if v := os.Getenv("SCINTGO_PERSIST_CACHE"); v != "" {
		persist, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid SCINTGO_PERSIST_CACHE value, defaulting to false", "value", v)
		} else {
			opts.PersistCache = persist
		}
	}

	return opts, opts.Validate()
}

// loadCredentials reads the archive credentials. They are required for the
// online path only; cached runs never authenticate.
func loadCredentials(opts config.Options) (config.Credentials, error) {
	creds := config.Credentials{
		Identity: os.Getenv("SCINTGO_SPACETRACK_IDENTITY"),
		Password: os.Getenv("SCINTGO_SPACETRACK_PASSWORD"),
	}
	if opts.Source == config.SourceOnline && (creds.Identity == "" || creds.Password == "") {
		return creds, errors.New("SCINTGO_SPACETRACK_IDENTITY and SCINTGO_SPACETRACK_PASSWORD are required for online runs")
	}
	return creds, nil
}

func loadReferenceTime(logger *slog.Logger) time.Time {
	ref := time.Now().UTC()
	if v := os.Getenv("SCINTGO_REFERENCE_TIME"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			logger.Warn("invalid SCINTGO_REFERENCE_TIME value, using current time", "value", v)
		} else {
			ref = t.UTC()
		}
	}
	return ref
}

// loadSites reads receiver sites from SCINTGO_SITES_FILE, or falls back to a
// single site described by SCINTGO_SITE_* variables.
func loadSites(logger *slog.Logger) []config.Site {
	if path := os.Getenv("SCINTGO_SITES_FILE"); path != "" {
		sites, err := config.LoadSites(path)
		if err != nil {
			logger.Error("loading sites file", "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("loaded receiver sites", "path", path, "count", len(sites))
		return sites
	}

	site := config.Site{
		Name:   "default",
		LatDeg: -23.20713241666, // São José dos Campos
		LonDeg: -45.861737777,
		AltM:   605.088,
	}
	if v := os.Getenv("SCINTGO_SITE_NAME"); v != "" {
		site.Name = v
	}
	site.LatDeg = envFloat(logger, "SCINTGO_SITE_LAT", site.LatDeg)
	site.LonDeg = envFloat(logger, "SCINTGO_SITE_LON", site.LonDeg)
	site.AltM = envFloat(logger, "SCINTGO_SITE_ALT_M", site.AltM)

	return []config.Site{site}
}

func loadPassesConfig(logger *slog.Logger) passes.Config {
	cfg := passes.Config{
		MinElevationDeg: 5,
		SearchRadius:    12 * time.Hour,
	}

	cfg.MinElevationDeg = envFloat(logger, "SCINTGO_MIN_ELEVATION_DEG", cfg.MinElevationDeg)

	if v := os.Getenv("SCINTGO_SEARCH_RADIUS_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid SCINTGO_SEARCH_RADIUS_HOURS value, using default", "value", v, "default", 12)
		} else {
			cfg.SearchRadius = time.Duration(n) * time.Hour
		}
	}

	return cfg
}

// loadSampleStep returns the track sampling cadence, or zero when track
// sampling is disabled.
func loadSampleStep(logger *slog.Logger) time.Duration {
	v := os.Getenv("SCINTGO_SAMPLE_STEP_SECONDS")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logger.Warn("invalid SCINTGO_SAMPLE_STEP_SECONDS value, disabling track sampling", "value", v)
		return 0
	}
	return time.Duration(n) * time.Second
}

func envFloat(logger *slog.Logger, name string, def float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("invalid float value, using default", "name", name, "value", v, "default", def)
		return def
	}
	return f
}
