// Package connector implements the per-platform fetchers. Each
// connector satisfies domain.Connector: it retrieves raw listings for a
// query, applies its own source-specific filtering (sponsored entries,
// zero-price or nameless items), and reports any fetch or parse problem
// as an error so the coordinator can mark the platform failed.
package connector

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when the config does not override it.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/131.0.0.0 Safari/537.36"

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 20 * time.Second,
	}
}

// newPolitenessLimiter bounds how hard a connector hits its platform.
// Roughly one request per second with a small burst is enough for
// interactive search traffic.
func newPolitenessLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(1), 3)
}

// drainBody reads and closes a response body, returning at most max bytes.
func drainBody(resp *http.Response, max int64) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, max))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
