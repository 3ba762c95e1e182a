package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/beautycompare/backend/internal/domain"
	"github.com/beautycompare/backend/internal/textutil"
)

const nykaaDefaultBaseURL = "https://www.nykaa.com"

// preloadedStateRegex pulls the embedded JSON blob out of the search
// results page; Nykaa renders its listing data into
// window.__PRELOADED_STATE__ rather than the markup itself.
var preloadedStateRegex = regexp.MustCompile(`(?s)window\.__PRELOADED_STATE__\s*=\s*(\{.*\})`)

// Nykaa fetches listings by scraping the Nykaa search results page.
type Nykaa struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// NewNykaa creates the Nykaa connector. Empty arguments fall back to
// production defaults; tests point baseURL at a local server.
func NewNykaa(baseURL, userAgent string) *Nykaa {
	if baseURL == "" {
		baseURL = nykaaDefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Nykaa{
		httpClient: newHTTPClient(),
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    newPolitenessLimiter(),
	}
}

// Platform returns the platform identifier.
func (n *Nykaa) Platform() domain.Platform { return domain.PlatformNykaa }

// Name returns the human-readable platform name.
func (n *Nykaa) Name() string { return "Nykaa" }

// Search scrapes the search results page and extracts listings from the
// __PRELOADED_STATE__ JSON.
func (n *Nykaa) Search(ctx context.Context, query string, limit int) ([]domain.Listing, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("root", "search")
	params.Set("searchType", "Manual")
	reqURL := fmt.Sprintf("%s/search/result/?%s", n.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := drainBody(resp, 8<<20)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nykaa returned status %d", resp.StatusCode)
	}

	return n.parseSearchPage(body, limit)
}

type nykaaState struct {
	SearchListingPage nykaaListingPage `json:"searchListingPage"`
	CategoryListing   nykaaListingPage `json:"categoryListing"`
}

type nykaaListingPage struct {
	ListingData struct {
		Products []nykaaProduct `json:"products"`
	} `json:"listingData"`
}

// nykaaProduct keeps loosely typed fields where Nykaa has been observed
// serving either numbers or strings.
type nykaaProduct struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Price       any    `json:"price"`
	OfferPrice  any    `json:"offer_price"`
	FinalPrice  any    `json:"final_price"`
	MRP         any    `json:"mrp"`
	ImageURL    string `json:"imageUrl"`
	ImageURLAlt string `json:"image_url"`
	Slug        string `json:"slug"`
	URLKey      string `json:"url_key"`
	Rating      any    `json:"rating"`
	Ratings     any    `json:"ratings"`
	ReviewCount any    `json:"review_count"`
	RatingCount any    `json:"rating_count"`
	BrandName   any    `json:"brandName"`
	Brand       any    `json:"brand"`
	VariantName string `json:"variant_name"`
	Shade       string `json:"shade"`
	InStock     any    `json:"inStock"`
}

func (n *Nykaa) parseSearchPage(body []byte, limit int) ([]domain.Listing, error) {
	m := preloadedStateRegex.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("no __PRELOADED_STATE__ in response")
	}

	raw := strings.TrimSuffix(strings.TrimSpace(string(m[1])), ";")
	var state nykaaState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("parsing __PRELOADED_STATE__: %w", err)
	}

	// Search results use searchListingPage, category pages use categoryListing.
	products := state.SearchListingPage.ListingData.Products
	if len(products) == 0 {
		products = state.CategoryListing.ListingData.Products
	}

	listings := make([]domain.Listing, 0, limit)
	for _, item := range products {
		if len(listings) >= limit {
			break
		}
		if listing, ok := n.parseProduct(item); ok {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

func (n *Nykaa) parseProduct(item nykaaProduct) (domain.Listing, bool) {
	name := item.Name
	if name == "" {
		name = item.Title
	}
	if name == "" {
		return domain.Listing{}, false
	}

	price := firstPositive(asPrice(item.Price), asPrice(item.OfferPrice), asPrice(item.FinalPrice))
	if price <= 0 {
		return domain.Listing{}, false
	}
	mrp := asPrice(item.MRP)
	if mrp <= 0 {
		mrp = price
	}

	imageURL := item.ImageURL
	if imageURL == "" {
		imageURL = item.ImageURLAlt
	}
	if imageURL != "" && !strings.HasPrefix(imageURL, "http") {
		imageURL = "https://images-static.nykaa.com/media/catalog/product/" + imageURL
	}

	slug := item.Slug
	if slug == "" {
		slug = item.URLKey
	}
	productURL := ""
	if slug != "" {
		productURL = n.baseURL + "/" + strings.TrimPrefix(slug, "/")
	}

	brand := asBrand(item.BrandName)
	if brand == "" {
		brand = asBrand(item.Brand)
	}
	if brand == "" {
		brand = textutil.ExtractBrand(name)
	}

	variant := item.VariantName
	if variant == "" {
		variant = item.Shade
	}

	return domain.Listing{
		Name:            name,
		Brand:           brand,
		Price:           price,
		MRP:             mrp,
		DiscountPercent: textutil.ComputeDiscount(price, mrp),
		ImageURL:        imageURL,
		ProductURL:      productURL,
		Platform:        domain.PlatformNykaa,
		InStock:         asBool(item.InStock, true),
		Rating:          firstPositive(asPrice(item.Rating), asPrice(item.Ratings)),
		RatingCount:     int(firstPositive(asPrice(item.ReviewCount), asPrice(item.RatingCount))),
		Variant:         variant,
	}, true
}

// asPrice coerces a loosely typed JSON value into a float. Strings run
// through the price cleaner to drop currency symbols and separators.
func asPrice(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		return textutil.CleanPrice(val)
	case json.Number:
		f, _ := val.Float64()
		return f
	default:
		return 0
	}
}

// asBrand coerces a brand field that may be a string or a list of strings.
func asBrand(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// asBool coerces loosely typed stock flags; "0", "false" and "no" count
// as out of stock.
func asBool(v any, fallback bool) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(val)
		return lower != "0" && lower != "false" && lower != "no"
	default:
		return fallback
	}
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
