package usecase

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/beautycompare/backend/internal/domain"
	"github.com/beautycompare/backend/internal/infrastructure/metrics"
)

const defaultResultLimit = 10

// SearchService is the sole entry point the HTTP layer calls. It wires
// the pipeline together: cache lookup, concurrent fan-out, cross-platform
// matching, response assembly, cache store.
type SearchService struct {
	cache       domain.ResultCache
	coordinator *Coordinator
	matcher     *MatchingService
	metrics     *metrics.Metrics
	group       singleflight.Group
}

// NewSearchService creates a search service. metrics may be nil (tests).
func NewSearchService(
	cache domain.ResultCache,
	coordinator *Coordinator,
	matcher *MatchingService,
	m *metrics.Metrics,
) *SearchService {
	return &SearchService{
		cache:       cache,
		coordinator: coordinator,
		matcher:     matcher,
		metrics:     m,
	}
}

// SearchProducts answers one query with a merged, price-ranked view per
// distinct product. The caller always gets a well-formed response for a
// valid request; degraded source coverage shows up in PlatformsFailed,
// never as an error.
func (s *SearchService) SearchProducts(ctx context.Context, query string, limit int) (*domain.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}
	if limit <= 0 {
		limit = defaultResultLimit
	}

	if cached, ok := s.cache.Get(query); ok {
		s.observeSearch("hit", 0)
		// Shallow copy so the stored entry keeps its original flags.
		resp := *cached
		resp.Cached = true
		resp.SearchTimeMs = 0
		return &resp, nil
	}

	// Collapse concurrent identical queries into one fan-out.
	key := strings.ToLower(query)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.runSearch(ctx, query, limit), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SearchResponse), nil
}

// runSearch executes the full pipeline for a cache miss.
func (s *SearchService) runSearch(ctx context.Context, query string, limit int) *domain.SearchResponse {
	start := time.Now()

	fanout := s.coordinator.Search(ctx, query, limit)
	clusters := s.matcher.Cluster(fanout.Flatten())

	elapsed := time.Since(start)

	response := &domain.SearchResponse{
		Query:             query,
		Results:           clusters,
		TotalResults:      len(clusters),
		PlatformsSearched: fanout.Searched,
		PlatformsFailed:   fanout.Failed,
		Cached:            false,
		SearchTimeMs:      elapsed.Milliseconds(),
		Timestamp:         time.Now().UTC(),
	}

	// A response built entirely from failures is never cached, so a
	// transient outage heals on the next query.
	if len(fanout.Searched) > 0 {
		s.cache.Set(query, response)
	}

	s.observeSearch("miss", elapsed)
	if s.metrics != nil {
		for _, platform := range fanout.Failed {
			s.metrics.ConnectorFailuresTotal.WithLabelValues(platform).Inc()
		}
		s.metrics.ClustersPerSearch.Observe(float64(len(clusters)))
	}

	return response
}

// CacheStats exposes the result cache counters for monitoring.
func (s *SearchService) CacheStats() domain.CacheStats {
	return s.cache.Stats()
}

// ClearCache drops every cached response. Administrative use only.
func (s *SearchService) ClearCache() {
	s.cache.Clear()
}

func (s *SearchService) observeSearch(cacheStatus string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.SearchesTotal.WithLabelValues(cacheStatus).Inc()
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	if cacheStatus == "hit" {
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
	}
}
