package domain

import "time"

// Platform identifies one of the supported e-commerce sources.
type Platform string

const (
	PlatformNykaa  Platform = "nykaa"
	PlatformAmazon Platform = "amazon"
	PlatformTira   Platform = "tira"
)

// Listing is a single product as reported by one platform, pre-matching.
// Connectors only emit listings with a non-empty name and a strictly
// positive price; the matching engine relies on that.
type Listing struct {
	Name            string   `json:"name"`
	Brand           string   `json:"brand,omitempty"`
	Price           float64  `json:"price"`
	MRP             float64  `json:"mrp"`
	DiscountPercent float64  `json:"discount_percent"`
	ImageURL        string   `json:"image_url,omitempty"`
	ProductURL      string   `json:"product_url,omitempty"`
	Platform        Platform `json:"platform"`
	InStock         bool     `json:"in_stock"`
	Rating          float64  `json:"rating"`
	RatingCount     int      `json:"rating_count"`
	Variant         string   `json:"variant,omitempty"` // shade, size, etc.
}

// ProductCluster groups listings from distinct platforms believed to be
// the same physical product. Prices is sorted ascending by price, so
// the first entry is the best deal.
type ProductCluster struct {
	ProductName  string    `json:"product_name"`
	Brand        string    `json:"brand,omitempty"`
	Variant      string    `json:"variant,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Prices       []Listing `json:"prices"`
	BestPrice    float64   `json:"best_price"`
	BestPlatform string    `json:"best_platform"`
	Savings      float64   `json:"savings"` // max price - min price across platforms
}

// SearchResponse is the full payload for one search query.
type SearchResponse struct {
	Query             string           `json:"query"`
	Results           []ProductCluster `json:"results"`
	TotalResults      int              `json:"total_results"`
	PlatformsSearched []string         `json:"platforms_searched"`
	PlatformsFailed   []string         `json:"platforms_failed"`
	Cached            bool             `json:"cached"`
	SearchTimeMs      int64            `json:"search_time_ms"`
	Timestamp         time.Time        `json:"timestamp"`
}

// CacheStats exposes read-only cache counters for monitoring.
type CacheStats struct {
	Size           int     `json:"size"`
	MaxSize        int     `json:"max_size"`
	TTLSeconds     int     `json:"ttl_seconds"`
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}
