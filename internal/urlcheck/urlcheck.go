// Package urlcheck checks whether URLs proposed by the model answer.
package urlcheck

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rohankatakam/autogippity/internal/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds one check when the caller passes no client
const DefaultTimeout = 10 * time.Second

// CheckStatusCode issues one GET to url and returns the response status code.
// A nil client uses a client with DefaultTimeout.
func CheckStatusCode(ctx context.Context, client *http.Client, url string) (int, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.ValidationErrorf("invalid url %q: %v", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, errors.TransportErrorf(err, "GET %s failed", url)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, nil
}

// Result is the outcome of probing one URL
type Result struct {
	URL        string
	StatusCode int
	Err        error
}

// OK reports whether the URL answered 200
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

// CheckAll checks urls concurrently, at most limit at a time, and returns
// results in input order. Individual failures are reported per result.
func CheckAll(ctx context.Context, client *http.Client, urls []string, limit int) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, u := range urls {
		g.Go(func() error {
			code, err := CheckStatusCode(ctx, client, u)
			results[i] = Result{URL: u, StatusCode: code, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
