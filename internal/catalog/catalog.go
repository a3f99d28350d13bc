// Package catalog resolves a satellite-system selector into the list of
// catalog ids currently tracked for that group, from the real-time listing
// endpoint or from the local cache file.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/ita-gnss-lab/scintgo/internal/cache"
	"github.com/ita-gnss-lab/scintgo/internal/config"
	"github.com/ita-gnss-lab/scintgo/internal/fetch"
)

const defaultBaseURL = "https://celestrak.org/NORAD/elements/gp.php"

// idPattern matches element line 1 of each three-line group: the leading
// "1 " marker followed by the catalog id. One match per tracked object,
// in response order.
var idPattern = regexp.MustCompile(`(?m)^1 (\d{5,})`)

// Fetcher is the HTTP substrate the resolver fetches through.
type Fetcher interface {
	Fetch(ctx context.Context, method, rawURL string, form url.Values) (string, error)
}

// Resolver turns a system-kind selector into a comma-joined id string.
type Resolver struct {
	fetcher Fetcher
	store   *cache.Store
	baseURL string
	logger  *slog.Logger
}

// NewResolver creates a Resolver. An empty baseURL selects the Celestrak
// GP endpoint.
func NewResolver(fetcher Fetcher, store *cache.Store, baseURL string, logger *slog.Logger) *Resolver {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Resolver{
		fetcher: fetcher,
		store:   store,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Identifiers returns every catalog id in the selected group, joined by
// commas, in the order the source lists them. Zero matches yields an empty
// string, which is valid. Offline mode reads the cache file and performs no
// network call; a missing file is cache.ErrMissing.
func (r *Resolver) Identifiers(ctx context.Context, opts config.Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	var text string
	switch opts.Source {
	case config.SourceOnline:
		u := fmt.Sprintf("%s?GROUP=%s&FORMAT=3le", r.baseURL, url.QueryEscape(string(opts.SystemKind)))
		body, err := r.fetcher.Fetch(ctx, http.MethodGet, u, nil)
		if err != nil {
			return "", err
		}
		text = fetch.CleanText(body)
		if opts.PersistCache {
			if err := r.store.Write(cache.SourceCatalog, string(opts.SystemKind), text); err != nil {
				return "", err
			}
		}
	case config.SourceCached:
		var err error
		text, err = r.store.Read(cache.SourceCatalog, string(opts.SystemKind))
		if err != nil {
			return "", err
		}
	}

	matches := idPattern.FindAllStringSubmatch(text, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}

	r.logger.Debug("resolved catalog identifiers",
		"component", "catalog",
		"system_kind", string(opts.SystemKind),
		"source", opts.Source.String(),
		"count", len(ids),
	)

	return strings.Join(ids, ","), nil
}
