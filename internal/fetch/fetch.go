// Package fetch provides the single-attempt HTTP substrate shared by the
// catalog and archive clients. Every non-2xx response maps to a *RemoteError
// carrying a human-readable reason from one shared status table.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ita-gnss-lab/scintgo/internal/metrics"
)

// maxBodyBytes caps response reads so a misbehaving endpoint cannot consume
// unbounded memory. Full GNSS catalogs are well under 1 MB.
const maxBodyBytes = 50 * 1024 * 1024

const defaultTimeout = 30 * time.Second

// RemoteError reports a non-2xx response from a remote endpoint.
type RemoteError struct {
	StatusCode int
	Reason     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Reason)
}

// statusReasons maps common status codes to operator-facing explanations.
var statusReasons = map[int]string{
	http.StatusOK:                  "OK - The request was successful.",
	http.StatusCreated:             "Created - A resource was created.",
	http.StatusNoContent:           "No Content - The request was successful, but there is no content. Please, verify if the Date and Satellite ID selected are correct.",
	http.StatusBadRequest:          "Bad Request - The request was invalid.",
	http.StatusUnauthorized:        "Unauthorized - Authentication failed.",
	http.StatusForbidden:           "Forbidden - You do not have permission.",
	http.StatusNotFound:            "Not Found - The resource could not be found.",
	http.StatusInternalServerError: "Internal Server Error - The server encountered an error.",
	http.StatusBadGateway:          "Bad Gateway - Invalid response from the upstream server.",
	http.StatusServiceUnavailable:  "Service Unavailable - The server is overloaded or down.",
	http.StatusGatewayTimeout:      "Gateway Timeout - The server timed out waiting for the upstream server.",
}

// ReasonFor returns the reason text for an HTTP status code, falling back to
// a generic message for unmapped codes.
func ReasonFor(code int) string {
	if reason, ok := statusReasons[code]; ok {
		return reason
	}
	return "Unknown error occurred"
}

// Client performs single-attempt HTTP requests. No retries: retry policy
// belongs to the caller, wrapped around the whole pipeline invocation.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client with the default per-request timeout.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Fetch issues one request and returns the response body as text.
// A non-nil form is sent URL-encoded as the request body.
// Any response outside 200-299 returns a *RemoteError.
func (c *Client) Fetch(ctx context.Context, method, rawURL string, form url.Values) (string, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	metrics.ObserveFetch(method, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("remote request failed",
			"component", "fetch",
			"method", method,
			"host", req.URL.Host,
			"status", resp.StatusCode,
		)
		return "", &RemoteError{StatusCode: resp.StatusCode, Reason: ReasonFor(resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if len(data) > maxBodyBytes {
		return "", fmt.Errorf("response from %s exceeded %d byte limit", req.URL.Host, maxBodyBytes)
	}

	return string(data), nil
}

// CleanText normalizes a raw response body: CRLF line endings become LF,
// surrounding whitespace is stripped from each line, and blank lines are
// dropped. The result ends with a single trailing newline, or is empty.
// Cache files are written in exactly this form, so a cache round-trip is
// byte-identical to the cleaned text.
func CleanText(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// SplitLines splits cleaned text into one string per physical line.
// Empty text yields a nil slice.
func SplitLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
