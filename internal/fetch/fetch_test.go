package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		io.WriteString(w, "hello\n")
	}))
	defer srv.Close()

	c := NewClient(testLogger())
	body, err := c.Fetch(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if body != "hello\n" {
		t.Errorf("body = %q, want %q", body, "hello\n")
	}
}

func TestFetch_FormEncodedBody(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer srv.Close()

	form := url.Values{"identity": {"user@example.com"}, "password": {"s3cret"}}
	c := NewClient(testLogger())
	if _, err := c.Fetch(context.Background(), http.MethodPost, srv.URL, form); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	parsed, err := url.ParseQuery(gotBody)
	if err != nil {
		t.Fatalf("parsing form body: %v", err)
	}
	if parsed.Get("identity") != "user@example.com" || parsed.Get("password") != "s3cret" {
		t.Errorf("form body = %q", gotBody)
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		code       int
		wantReason string
	}{
		{http.StatusNoContent, "No Content"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusNotFound, "Not Found"},
		{http.StatusInternalServerError, "Internal Server Error"},
		{http.StatusTeapot, "Unknown error occurred"},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.code)
		}))

		c := NewClient(testLogger())
		_, err := c.Fetch(context.Background(), http.MethodGet, srv.URL, nil)
		srv.Close()

		if err == nil {
			t.Errorf("status %d: Fetch succeeded, want error", tt.code)
			continue
		}
		var remote *RemoteError
		if !errors.As(err, &remote) {
			t.Errorf("status %d: error = %T, want *RemoteError", tt.code, err)
			continue
		}
		if remote.StatusCode != tt.code {
			t.Errorf("StatusCode = %d, want %d", remote.StatusCode, tt.code)
		}
		if !strings.Contains(remote.Reason, tt.wantReason) {
			t.Errorf("status %d reason = %q, want it to contain %q", tt.code, remote.Reason, tt.wantReason)
		}
	}
}

func TestFetch_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(testLogger())
	if _, err := c.Fetch(ctx, http.MethodGet, srv.URL, nil); err == nil {
		t.Error("Fetch with cancelled context succeeded, want error")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf and padding", "ISS (ZARYA)   \r\n1 25544U ...\r\n2 25544 ...\r\n", "ISS (ZARYA)\n1 25544U ...\n2 25544 ...\n"},
		{"blank lines dropped", "a\n\n\nb\n", "a\nb\n"},
		{"no trailing newline added twice", "a\n", "a\n"},
		{"whitespace only", "   \r\n  \n", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Cleaning is idempotent: cached text re-read from disk cleans to itself.
func TestCleanText_Idempotent(t *testing.T) {
	in := "ISS (ZARYA)  \r\n\r\n1 25544U ...\r\n2 25544 ...\r\n"
	once := CleanText(in)
	if twice := CleanText(once); twice != once {
		t.Errorf("CleanText not idempotent: %q -> %q", once, twice)
	}
}

func TestSplitLines(t *testing.T) {
	if got := SplitLines(""); got != nil {
		t.Errorf("SplitLines(\"\") = %v, want nil", got)
	}
	got := SplitLines("a\nb\nc\n")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SplitLines = %v, want %v", got, want)
	}
}

func TestReasonFor(t *testing.T) {
	if r := ReasonFor(http.StatusNoContent); !strings.Contains(r, "verify if the Date and Satellite ID") {
		t.Errorf("204 reason = %q, want the operator hint", r)
	}
	if r := ReasonFor(599); r != "Unknown error occurred" {
		t.Errorf("unmapped reason = %q", r)
	}
}
