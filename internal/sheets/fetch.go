// Package sheets fetches a published Google Sheets spreadsheet as CSV and
// parses member rows out of it.
//
// Spreadsheet links are pasted by non-technical users in either "share link"
// or "export link" form. The fetcher rewrites share links to the CSV export
// endpoint, follows redirects up to a bound, and detects the sign-in page
// Google returns with a 200 status when a sheet is not shared publicly.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors for the fetch pipeline. The web layer maps each of these
// to a user-facing message via club.MapError.
var (
	// ErrInvalidSheetURL means the URL has a /d/ segment but no sheet id after it.
	ErrInvalidSheetURL = errors.New("spreadsheet URL has no sheet id after /d/")

	// ErrMalformedURL means the URL could not be turned into a request.
	ErrMalformedURL = errors.New("malformed spreadsheet URL")

	// ErrTooManyRedirects means the export endpoint bounced us more than maxRedirects times.
	ErrTooManyRedirects = errors.New("too many redirects fetching spreadsheet")

	// ErrNotShared means Google served its sign-in page instead of CSV.
	// The export endpoint does this with a 200 status when the sheet is not
	// shared with "anyone with the link".
	ErrNotShared = errors.New("spreadsheet is not shared publicly")
)

// StatusError is a non-success, non-redirect HTTP status from the export endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spreadsheet export returned HTTP %d: check that the sheet is shared with anyone who has the link", e.Code)
}

// maxRedirects bounds the redirect chain. Export links bounce through one or
// two hops normally; anything past five is a loop between endpoints we don't
// control.
const maxRedirects = 5

// authWallPrefix is how Google's sign-in page starts. A 200 response with
// this prefix is an access failure, not CSV.
const authWallPrefix = "<!DOCTYPE html>"

var sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// Client fetches spreadsheet exports over HTTP.
type Client struct {
	http *http.Client
}

// NewClient creates a Client with the given overall request deadline.
// The original site had no deadline at all; a bound keeps a wedged upstream
// from hanging the members endpoint indefinitely.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			// Redirects are followed manually so the hop bound applies.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// FetchCSV resolves rawURL to a CSV export endpoint, performs the fetch
// following up to maxRedirects redirect hops, and returns the raw body text.
//
// Share-link rewriting happens exactly once, on the initial URL. Redirect
// targets are used verbatim. Cancelling ctx aborts the in-flight request and
// no further hops are attempted.
func (c *Client) FetchCSV(ctx context.Context, rawURL string) (string, error) {
	target, err := normalize(rawURL)
	if err != nil {
		return "", err
	}

	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			return "", ErrTooManyRedirects
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrMalformedURL, target, err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetch spreadsheet: %w", err)
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			loc := resp.Header.Get("Location")
			resp.Body.Close()
			if loc == "" {
				return "", &StatusError{Code: resp.StatusCode}
			}
			target = loc
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return "", &StatusError{Code: resp.StatusCode}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("read spreadsheet body: %w", err)
		}

		if strings.HasPrefix(string(body), authWallPrefix) {
			return "", ErrNotShared
		}

		return string(body), nil
	}
}

// normalize rewrites a share link (".../spreadsheets/d/<id>/edit#gid=0") to
// the canonical CSV export endpoint. URLs without a /d/ segment pass through
// unchanged; they are assumed to already be export-ready.
func normalize(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "/d/") {
		return rawURL, nil
	}
	m := sheetIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", ErrInvalidSheetURL
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=0", m[1]), nil
}
