package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beautycompare/backend/internal/domain"
)

const defaultConnectorTimeout = 15 * time.Second

// FanOutResult holds the per-platform outcome of one fan-out: listings
// for every platform that answered, plus which platforms succeeded and
// which failed. A platform that answers with zero listings still counts
// as searched. Searched preserves connector registration order.
type FanOutResult struct {
	Listings map[domain.Platform][]domain.Listing
	Searched []string
	Failed   []string
}

// Flatten returns every listing in deterministic order: platform
// registration order first, then each platform's own listing order.
// This keeps clustering reproducible for identical inputs.
func (r *FanOutResult) Flatten() []domain.Listing {
	var flat []domain.Listing
	for _, platform := range r.Searched {
		flat = append(flat, r.Listings[domain.Platform(platform)]...)
	}
	return flat
}

// Coordinator fans a query out to every registered connector
// concurrently and waits for all of them to settle. A connector failing
// or timing out never aborts the others; it is reported in Failed.
type Coordinator struct {
	connectors []domain.Connector
	timeout    time.Duration
}

// NewCoordinator creates a coordinator over the given connectors. The
// timeout applies per connector, not to the fan-out as a whole.
func NewCoordinator(connectors []domain.Connector, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = defaultConnectorTimeout
	}
	return &Coordinator{
		connectors: connectors,
		timeout:    timeout,
	}
}

// Search invokes every connector concurrently and assembles the
// per-platform outcomes in registration order.
func (c *Coordinator) Search(ctx context.Context, query string, limit int) *FanOutResult {
	type outcome struct {
		listings []domain.Listing
		err      error
	}
	outcomes := make([]outcome, len(c.connectors))

	var g errgroup.Group
	for i, conn := range c.connectors {
		g.Go(func() error {
			listings, err := c.searchOne(ctx, conn, query, limit)
			outcomes[i] = outcome{listings: listings, err: err}
			// Failures are per-source outcomes, never group errors.
			return nil
		})
	}
	_ = g.Wait()

	result := &FanOutResult{
		Listings: make(map[domain.Platform][]domain.Listing, len(c.connectors)),
		Searched: []string{},
		Failed:   []string{},
	}
	for i, conn := range c.connectors {
		if outcomes[i].err != nil {
			log.Printf("[FANOUT] %s: failed - %v", conn.Name(), outcomes[i].err)
			result.Failed = append(result.Failed, string(conn.Platform()))
			continue
		}
		log.Printf("[FANOUT] %s: found %d results for %q", conn.Name(), len(outcomes[i].listings), query)
		result.Listings[conn.Platform()] = outcomes[i].listings
		result.Searched = append(result.Searched, string(conn.Platform()))
	}

	return result
}

// searchOne runs a single connector under the per-connector timeout. A
// connector that overruns the deadline is abandoned: the coordinator
// stops waiting and its eventual result, if any, is discarded.
func (c *Coordinator) searchOne(ctx context.Context, conn domain.Connector, query string, limit int) ([]domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type reply struct {
		listings []domain.Listing
		err      error
	}
	ch := make(chan reply, 1)

	go func() {
		listings, err := conn.Search(ctx, query, limit)
		ch <- reply{listings: listings, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConnectorFailure, r.err)
		}
		return r.listings, nil
	case <-ctx.Done():
		return nil, domain.ErrConnectorTimeout
	}
}
