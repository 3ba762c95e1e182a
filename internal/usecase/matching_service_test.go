package usecase

import (
	"testing"

	"github.com/beautycompare/backend/internal/domain"
)

func TestCluster_EmptyInput(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	clusters := service.Cluster(nil)
	if len(clusters) != 0 {
		t.Errorf("Cluster(nil) = %d clusters, want 0", len(clusters))
	}
}

func TestCluster_MergesAcrossPlatforms(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	listings := []domain.Listing{
		{Name: "Minimalist Vitamin C Serum 30ml", Brand: "Minimalist", Price: 500, Platform: domain.PlatformNykaa},
		{Name: "Minimalist Vitamin C Face Serum 30ml", Brand: "Minimalist", Price: 450, Platform: domain.PlatformAmazon},
		{Name: "Dot & Key Watermelon Sleeping Mask", Brand: "Dot & Key", Price: 700, Platform: domain.PlatformTira},
	}

	clusters := service.Cluster(listings)

	if len(clusters) != 2 {
		t.Fatalf("Cluster() = %d clusters, want 2", len(clusters))
	}

	merged := clusters[0]
	if len(merged.Prices) != 2 {
		t.Fatalf("merged cluster has %d prices, want 2", len(merged.Prices))
	}
	if merged.ProductName != "Minimalist Vitamin C Serum 30ml" {
		t.Errorf("ProductName = %q, want the seed listing's name", merged.ProductName)
	}
	if merged.BestPrice != 450 {
		t.Errorf("BestPrice = %v, want 450", merged.BestPrice)
	}
	if merged.BestPlatform != "amazon" {
		t.Errorf("BestPlatform = %q, want amazon", merged.BestPlatform)
	}
	if merged.Savings != 50 {
		t.Errorf("Savings = %v, want 50", merged.Savings)
	}
	if merged.Prices[0].Price > merged.Prices[1].Price {
		t.Error("Prices not sorted ascending")
	}

	singleton := clusters[1]
	if len(singleton.Prices) != 1 {
		t.Errorf("singleton cluster has %d prices, want 1", len(singleton.Prices))
	}
	if singleton.Savings != 0 {
		t.Errorf("singleton Savings = %v, want 0", singleton.Savings)
	}
}

func TestCluster_SameSourceNeverMerges(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	listings := []domain.Listing{
		{Name: "Cetaphil Gentle Skin Cleanser 125ml", Brand: "Cetaphil", Price: 300, Platform: domain.PlatformNykaa},
		{Name: "Cetaphil Gentle Skin Cleanser 125ml", Brand: "Cetaphil", Price: 310, Platform: domain.PlatformNykaa},
	}

	clusters := service.Cluster(listings)

	if len(clusters) != 2 {
		t.Fatalf("Cluster() = %d clusters, want 2 for same-platform duplicates", len(clusters))
	}
	for _, c := range clusters {
		if len(c.Prices) != 1 {
			t.Errorf("cluster has %d prices, want 1", len(c.Prices))
		}
	}
}

func TestCluster_DifferentSizesNeverMerge(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	listings := []domain.Listing{
		{Name: "Plum Vitamin C Serum 30ml", Brand: "Plum", Price: 500, Platform: domain.PlatformNykaa},
		{Name: "Plum Vitamin C Serum 50ml", Brand: "Plum", Price: 520, Platform: domain.PlatformAmazon},
	}

	clusters := service.Cluster(listings)

	if len(clusters) != 2 {
		t.Fatalf("Cluster() = %d clusters, want 2 for different pack sizes", len(clusters))
	}
}

func TestCluster_VitaminCSerumScenario(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	listings := []domain.Listing{
		{Name: "Garnier Vitamin C Serum 30ml", Brand: "Garnier", Price: 500, Platform: domain.PlatformNykaa},
		{Name: "Garnier Vitamin C Serum 30ml", Brand: "Garnier", Price: 450, Platform: domain.PlatformAmazon},
		{Name: "Garnier Vitamin C Serum 50ml", Brand: "Garnier", Price: 700, Platform: domain.PlatformTira},
	}

	clusters := service.Cluster(listings)

	if len(clusters) != 2 {
		t.Fatalf("Cluster() = %d clusters, want 2", len(clusters))
	}

	merged := clusters[0]
	if len(merged.Prices) != 2 {
		t.Fatalf("merged cluster has %d prices, want the two 30ml listings", len(merged.Prices))
	}
	if merged.BestPrice != 450 || merged.Savings != 50 {
		t.Errorf("BestPrice = %v, Savings = %v, want 450 and 50", merged.BestPrice, merged.Savings)
	}

	other := clusters[1]
	if len(other.Prices) != 1 || other.Prices[0].Price != 700 {
		t.Errorf("50ml listing must stay a singleton, got %+v", other.Prices)
	}
	if other.Savings != 0 {
		t.Errorf("singleton Savings = %v, want 0", other.Savings)
	}
}

func TestCluster_DiacriticsDoNotBlockMerge(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	// The same product listed with and without accents must still match.
	listings := []domain.Listing{
		{Name: "Lancôme Génifique Sérum 30ml", Brand: "Lancôme", Price: 6200, Platform: domain.PlatformNykaa},
		{Name: "Lancome Genifique Serum 30ml", Brand: "Lancome", Price: 5900, Platform: domain.PlatformAmazon},
	}

	clusters := service.Cluster(listings)

	if len(clusters) != 1 {
		t.Fatalf("Cluster() = %d clusters, want 1 for accent-only name differences", len(clusters))
	}
	if len(clusters[0].Prices) != 2 {
		t.Errorf("cluster has %d prices, want 2", len(clusters[0].Prices))
	}
}

func TestCluster_EveryListingAppearsExactlyOnce(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	listings := []domain.Listing{
		{Name: "Lakme Kajal", Brand: "Lakme", Price: 150, Platform: domain.PlatformNykaa},
		{Name: "Lakme Kajal", Brand: "Lakme", Price: 140, Platform: domain.PlatformAmazon},
		{Name: "Sugar Matte Lipstick", Brand: "Sugar", Price: 600, Platform: domain.PlatformNykaa},
		{Name: "Cerave Moisturising Lotion", Brand: "Cerave", Price: 900, Platform: domain.PlatformTira},
	}

	clusters := service.Cluster(listings)

	total := 0
	seen := make(map[string]int)
	for _, c := range clusters {
		total += len(c.Prices)
		for _, l := range c.Prices {
			seen[string(l.Platform)+"|"+l.Name]++
		}
	}
	if total != len(listings) {
		t.Errorf("clusters hold %d listings, want %d", total, len(listings))
	}
	for key, count := range seen {
		if count != 1 {
			t.Errorf("listing %q appears %d times, want 1", key, count)
		}
	}
}

func TestCluster_ThresholdBoundary(t *testing.T) {
	listings := []domain.Listing{
		{Name: "Product A", Price: 100, Platform: domain.PlatformNykaa},
		{Name: "Product B", Price: 110, Platform: domain.PlatformAmazon},
	}

	tests := []struct {
		name         string
		score        float64
		wantClusters int
	}{
		{"score at threshold merges", 60, 1},
		{"score below threshold does not merge", 59.9, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewMatchingService(MatchConfig{Threshold: 60})
			service.scoreFn = func(a, b domain.Listing) float64 { return tt.score }

			clusters := service.Cluster(listings)
			if len(clusters) != tt.wantClusters {
				t.Errorf("Cluster() = %d clusters, want %d", len(clusters), tt.wantClusters)
			}
		})
	}
}

func TestCluster_OrderedBySizeThenBestPrice(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	listings := []domain.Listing{
		{Name: "Colorbar Velvet Lipstick", Brand: "Colorbar", Price: 850, Platform: domain.PlatformNykaa},
		{Name: "Mamaearth Ubtan Face Wash 100ml", Brand: "Mamaearth", Price: 249, Platform: domain.PlatformNykaa},
		{Name: "Mamaearth Ubtan Face Wash 100ml", Brand: "Mamaearth", Price: 259, Platform: domain.PlatformAmazon},
	}

	clusters := service.Cluster(listings)

	if len(clusters) != 2 {
		t.Fatalf("Cluster() = %d clusters, want 2", len(clusters))
	}
	if len(clusters[0].Prices) != 2 {
		t.Errorf("first cluster has %d prices, want the larger cluster first", len(clusters[0].Prices))
	}
	if clusters[0].BestPrice != 249 {
		t.Errorf("first cluster BestPrice = %v, want 249", clusters[0].BestPrice)
	}
}

func TestCluster_ImageFallsBackToAnyMember(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	listings := []domain.Listing{
		{Name: "Plum Green Tea Toner 200ml", Brand: "Plum", Price: 400, Platform: domain.PlatformNykaa},
		{Name: "Plum Green Tea Toner 200ml", Brand: "Plum", Price: 380, Platform: domain.PlatformAmazon, ImageURL: "https://example.com/toner.jpg"},
	}

	clusters := service.Cluster(listings)

	if len(clusters) != 1 {
		t.Fatalf("Cluster() = %d clusters, want 1", len(clusters))
	}
	if clusters[0].ImageURL != "https://example.com/toner.jpg" {
		t.Errorf("ImageURL = %q, want the non-empty member image", clusters[0].ImageURL)
	}
}

func TestSimilarityScore_Symmetric(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	pairs := [][2]domain.Listing{
		{
			{Name: "Minimalist Niacinamide 10% Serum 30ml", Brand: "Minimalist", Price: 349},
			{Name: "Minimalist 10% Niacinamide Face Serum 30ml", Brand: "Minimalist", Price: 360},
		},
		{
			{Name: "Lakme Kajal", Price: 150},
			{Name: "Cerave Cleanser 236ml", Price: 900},
		},
	}

	for _, pair := range pairs {
		ab := service.similarityScore(pair[0], pair[1])
		ba := service.similarityScore(pair[1], pair[0])
		if ab != ba {
			t.Errorf("score(%q, %q) = %v but reversed = %v", pair[0].Name, pair[1].Name, ab, ba)
		}
	}
}

func TestSimilarityScore_Clamped(t *testing.T) {
	service := NewMatchingService(MatchConfig{})

	// Identical listings stack every bonus; the score must cap at 100.
	a := domain.Listing{Name: "Cetaphil Gentle Skin Cleanser 125ml", Brand: "Cetaphil", Price: 300}
	if got := service.similarityScore(a, a); got != 100 {
		t.Errorf("score of identical listings = %v, want 100", got)
	}

	// Unrelated names plus size mismatch plus far prices must not go negative.
	b := domain.Listing{Name: "Xqz Wvp 30ml", Price: 100}
	c := domain.Listing{Name: "Kjf Ymt 500ml", Price: 5000}
	if got := service.similarityScore(b, c); got < 0 || got > 100 {
		t.Errorf("score = %v, want within [0, 100]", got)
	}
}

func TestTokenSortRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "vitamin c serum", "vitamin c serum", 100},
		{"reordered tokens", "serum vitamin c", "vitamin c serum", 100},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenSortRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("tokenSortRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIndelDistance(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 2}, // substitution counts as delete + insert
		{"abc", "abcd", 1},
	}

	for _, tt := range tests {
		if got := indelDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("indelDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
