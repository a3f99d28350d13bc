// Package archive queries the authenticated historical element-set source
// for a given identifier set and reference date.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ita-gnss-lab/scintgo/internal/cache"
	"github.com/ita-gnss-lab/scintgo/internal/config"
	"github.com/ita-gnss-lab/scintgo/internal/fetch"
)

const (
	defaultBaseURL = "https://www.space-track.org"
	loginPath      = "/ajaxauth/login"

	// queryPathFormat templates the historical query: comma-joined catalog
	// ids, ascending sort on element line 1, an inclusive-exclusive one-day
	// epoch range, and three-line output.
	queryPathFormat = "/basicspacedata/query/class/gp_history/NORAD_CAT_ID/%s/orderby/TLE_LINE1%%20ASC/EPOCH/%s--%s/format/3le"

	dateLayout = "2006-01-02"
)

// Fetcher is the HTTP substrate the query executes through.
type Fetcher interface {
	Fetch(ctx context.Context, method, rawURL string, form url.Values) (string, error)
}

// Query retrieves historical element-set records.
type Query struct {
	fetcher Fetcher
	store   *cache.Store
	baseURL string
	logger  *slog.Logger
}

// NewQuery creates a Query. An empty baseURL selects space-track.org.
func NewQuery(fetcher Fetcher, store *cache.Store, baseURL string, logger *slog.Logger) *Query {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Query{
		fetcher: fetcher,
		store:   store,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Records returns the element-set records for ids on the day of date, one
// string per physical line; callers group the lines into triplets.
//
// The online path is a two-step protocol: a form login followed by the
// templated query. No session state outlives the call, and a non-2xx from
// either step surfaces as the same *fetch.RemoteError; the caller cannot
// and need not distinguish a login failure from a data failure. The
// offline path reads the cache file or returns cache.ErrMissing without
// touching the network.
func (q *Query) Records(ctx context.Context, ids string, date time.Time, creds config.Credentials, opts config.Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var text string
	switch opts.Source {
	case config.SourceOnline:
		form := url.Values{
			"identity": {creds.Identity},
			"password": {creds.Password},
		}
		if _, err := q.fetcher.Fetch(ctx, http.MethodPost, q.baseURL+loginPath, form); err != nil {
			return nil, err
		}

		start := date.UTC().Format(dateLayout)
		end := date.UTC().AddDate(0, 0, 1).Format(dateLayout)
		u := q.baseURL + fmt.Sprintf(queryPathFormat, ids, start, end)

		body, err := q.fetcher.Fetch(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		text = fetch.CleanText(body)
		if opts.PersistCache {
			if err := q.store.Write(cache.SourceArchive, string(opts.SystemKind), text); err != nil {
				return nil, err
			}
		}
	case config.SourceCached:
		var err error
		text, err = q.store.Read(cache.SourceArchive, string(opts.SystemKind))
		if err != nil {
			return nil, err
		}
	}

	lines := fetch.SplitLines(text)

	q.logger.Debug("retrieved archive records",
		"component", "archive",
		"system_kind", string(opts.SystemKind),
		"source", opts.Source.String(),
		"lines", len(lines),
	)

	return lines, nil
}
