package usecase

import (
	"log"
	"math"
	"sort"
	"strings"

	"github.com/beautycompare/backend/internal/domain"
	"github.com/beautycompare/backend/internal/textutil"
)

// Scoring constants (0-100 scale)
const (
	defaultMatchThreshold = 60.0 // minimum similarity score to consider a match
	brandMatchBonus       = 15.0 // both brands resolvable and equal
	sizeMatchBonus        = 10.0 // both names carry the same size token
	sizeMismatchPenalty   = 20.0 // size tokens differ (different SKUs)
	priceCloseBonus       = 5.0  // price ratio above priceCloseRatio
	priceFarPenalty       = 15.0 // price ratio below priceFarRatio
	priceCloseRatio       = 0.7
	priceFarRatio         = 0.3
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Threshold          float64
	EnableDebugLogging bool
}

// MatchingService groups listings from different platforms that refer to
// the same physical product. Clustering is greedy and single-pass: once a
// listing joins a cluster it is never reconsidered. The result depends on
// input order, which the caller keeps deterministic (platform registration
// order, then each platform's own listing order).
type MatchingService struct {
	threshold          float64
	enableDebugLogging bool

	// scoreFn is swappable in tests; defaults to similarityScore.
	scoreFn func(a, b domain.Listing) float64
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(cfg MatchConfig) *MatchingService {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = defaultMatchThreshold
	}

	s := &MatchingService{
		threshold:          threshold,
		enableDebugLogging: cfg.EnableDebugLogging,
	}
	s.scoreFn = s.similarityScore
	return s
}

// Cluster partitions the flattened listings into product clusters. Every
// listing lands in exactly one cluster; unmatched listings form singleton
// clusters. Clusters are ordered by member count (descending) with best
// price (ascending) as tie-break.
func (s *MatchingService) Cluster(listings []domain.Listing) []domain.ProductCluster {
	if len(listings) == 0 {
		return []domain.ProductCluster{}
	}

	// Size tokens are reused across comparisons; extract them once.
	sizes := make([]string, len(listings))
	for i, l := range listings {
		sizes[i] = textutil.ExtractSize(l.Name)
	}

	assigned := make([]bool, len(listings))
	var groups [][]domain.Listing

	for i := range listings {
		if assigned[i] {
			continue
		}
		group := []domain.Listing{listings[i]}
		platforms := map[domain.Platform]bool{listings[i].Platform: true}
		assigned[i] = true

		for j := i + 1; j < len(listings); j++ {
			if assigned[j] {
				continue
			}
			// A cluster never holds two listings from the same platform.
			if platforms[listings[j].Platform] {
				continue
			}
			// Different pack sizes are different SKUs even when the names
			// are otherwise identical, so a size conflict is a hard veto
			// on top of the score penalty.
			if sizes[i] != "" && sizes[j] != "" && sizes[i] != sizes[j] {
				continue
			}

			score := s.scoreFn(listings[i], listings[j])
			if s.enableDebugLogging {
				log.Printf("[MATCH] %q vs %q -> %.1f", listings[i].Name, listings[j].Name, score)
			}
			if score >= s.threshold {
				group = append(group, listings[j])
				platforms[listings[j].Platform] = true
				assigned[j] = true
			}
		}

		groups = append(groups, group)
	}

	clusters := make([]domain.ProductCluster, 0, len(groups))
	for _, group := range groups {
		clusters = append(clusters, buildCluster(group))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i].Prices) != len(clusters[j].Prices) {
			return len(clusters[i].Prices) > len(clusters[j].Prices)
		}
		return clusters[i].BestPrice < clusters[j].BestPrice
	})

	return clusters
}

// buildCluster assembles a ProductCluster from a matched group. The first
// member (the cluster seed) supplies the canonical name/brand/variant.
func buildCluster(group []domain.Listing) domain.ProductCluster {
	primary := group[0]

	imageURL := primary.ImageURL
	if imageURL == "" {
		for _, l := range group {
			if l.ImageURL != "" {
				imageURL = l.ImageURL
				break
			}
		}
	}

	prices := make([]domain.Listing, len(group))
	copy(prices, group)
	sort.SliceStable(prices, func(i, j int) bool { return prices[i].Price < prices[j].Price })

	best := prices[0]
	worst := prices[len(prices)-1]

	savings := 0.0
	if len(prices) > 1 {
		savings = math.Round((worst.Price-best.Price)*100) / 100
	}

	return domain.ProductCluster{
		ProductName:  primary.Name,
		Brand:        primary.Brand,
		Variant:      primary.Variant,
		ImageURL:     imageURL,
		Prices:       prices,
		BestPrice:    best.Price,
		BestPlatform: string(best.Platform),
		Savings:      savings,
	}
}

// similarityScore computes a combined similarity between two listings on a
// 0-100 scale. The fuzzy name score dominates; brand, size, and price
// proximity modifiers nudge it. The result is symmetric and clamped.
func (s *MatchingService) similarityScore(a, b domain.Listing) float64 {
	nameA := textutil.Normalize(a.Name)
	nameB := textutil.Normalize(b.Name)

	score := tokenSortRatio(nameA, nameB)

	// Brand match bonus
	brandA := resolveBrand(a)
	brandB := resolveBrand(b)
	if brandA != "" && brandA == brandB {
		score += brandMatchBonus
	}

	// Size match bonus / mismatch penalty
	sizeA := textutil.ExtractSize(a.Name)
	sizeB := textutil.ExtractSize(b.Name)
	if sizeA != "" && sizeB != "" {
		if sizeA == sizeB {
			score += sizeMatchBonus
		} else {
			score -= sizeMismatchPenalty
		}
	}

	// Price proximity: wildly different prices suggest different products
	// despite similar names; close prices corroborate a match.
	if a.Price > 0 && b.Price > 0 {
		ratio := math.Min(a.Price, b.Price) / math.Max(a.Price, b.Price)
		if ratio > priceCloseRatio {
			score += priceCloseBonus
		} else if ratio < priceFarRatio {
			score -= priceFarPenalty
		}
	}

	return math.Min(math.Max(score, 0), 100)
}

// resolveBrand returns a normalized brand for comparison, preferring the
// explicit field and falling back to extraction from the name.
func resolveBrand(l domain.Listing) string {
	if l.Brand != "" {
		return textutil.Normalize(l.Brand)
	}
	return textutil.Normalize(textutil.ExtractBrand(l.Name))
}

// tokenSortRatio is a token-order-insensitive fuzzy similarity: both
// strings are split, their tokens sorted and rejoined, and the rejoined
// strings compared by indel distance (insertions/deletions only).
func tokenSortRatio(a, b string) float64 {
	sortedA := sortTokens(a)
	sortedB := sortTokens(b)

	total := len([]rune(sortedA)) + len([]rune(sortedB))
	if total == 0 {
		return 0
	}

	dist := indelDistance(sortedA, sortedB)
	return 100 * (1 - float64(dist)/float64(total))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// indelDistance is the edit distance counting only insertions and
// deletions (a substitution costs 2). Uses two rows instead of a full
// matrix for space efficiency.
func indelDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for j := 0; j <= len(r2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min(prev[j]+1, curr[j-1]+1)
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
