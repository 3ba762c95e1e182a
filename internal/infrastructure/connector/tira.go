package connector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/beautycompare/backend/internal/domain"
	"github.com/beautycompare/backend/internal/textutil"
)

const (
	tiraDefaultAPIURL = "https://api.tirabeauty.com/service/application/catalog/v1.0/products/"
	tiraStoreBaseURL  = "https://www.tirabeauty.com"

	// Public application credentials for the Fynd Platform catalog API
	// backing the Tira storefront.
	tiraAppID    = "62d53777f5ad942d3e505f77"
	tiraAppToken = "ikdiQv6tj"
)

var percentOffRegex = regexp.MustCompile(`(\d+)%`)

// Tira fetches listings from the Fynd Platform catalog API that serves
// the Tira Beauty storefront.
type Tira struct {
	httpClient *http.Client
	apiURL     string
	userAgent  string
	limiter    *rate.Limiter
}

// NewTira creates the Tira connector. Empty arguments fall back to
// production defaults; tests point apiURL at a local server.
func NewTira(apiURL, userAgent string) *Tira {
	if apiURL == "" {
		apiURL = tiraDefaultAPIURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Tira{
		httpClient: newHTTPClient(),
		apiURL:     apiURL,
		userAgent:  userAgent,
		limiter:    newPolitenessLimiter(),
	}
}

// Platform returns the platform identifier.
func (t *Tira) Platform() domain.Platform { return domain.PlatformTira }

// Name returns the human-readable platform name.
func (t *Tira) Name() string { return "Tira Beauty" }

func (t *Tira) authHeader() string {
	token := base64.StdEncoding.EncodeToString([]byte(tiraAppID + ":" + tiraAppToken))
	return "Bearer " + token
}

// Search queries the catalog API and maps its items to listings.
func (t *Tira) Search(ctx context.Context, query string, limit int) ([]domain.Listing, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page_size", strconv.Itoa(limit))
	reqURL := fmt.Sprintf("%s?%s", t.apiURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", t.authHeader())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := drainBody(resp, 4<<20)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tira returned status %d", resp.StatusCode)
	}

	var payload tiraResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing catalog response: %w", err)
	}

	listings := make([]domain.Listing, 0, limit)
	for _, item := range payload.Items {
		if len(listings) >= limit {
			break
		}
		if listing, ok := t.parseItem(item); ok {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

type tiraResponse struct {
	Items []tiraItem `json:"items"`
}

type tiraItem struct {
	Name  string `json:"name"`
	Price struct {
		Effective tiraPriceRange `json:"effective"`
		Marked    tiraPriceRange `json:"marked"`
	} `json:"price"`
	Brand struct {
		Name string `json:"name"`
	} `json:"brand"`
	Medias []struct {
		URL string `json:"url"`
	} `json:"medias"`
	Slug     string `json:"slug"`
	Sellable *bool  `json:"sellable"`
	Discount string `json:"discount"`
}

type tiraPriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r tiraPriceRange) value() float64 {
	if r.Min > 0 {
		return r.Min
	}
	return r.Max
}

func (t *Tira) parseItem(item tiraItem) (domain.Listing, bool) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return domain.Listing{}, false
	}

	price := item.Price.Effective.value()
	if price <= 0 {
		return domain.Listing{}, false
	}
	mrp := item.Price.Marked.value()
	if mrp <= 0 {
		mrp = price
	}

	discount := textutil.ComputeDiscount(price, mrp)
	// Some items carry the discount only as a display string like "10% OFF".
	if discount == 0 && item.Discount != "" {
		if m := percentOffRegex.FindStringSubmatch(item.Discount); m != nil {
			discount, _ = strconv.ParseFloat(m[1], 64)
		}
	}

	brand := item.Brand.Name
	if brand == "" {
		brand = textutil.ExtractBrand(name)
	}

	imageURL := ""
	if len(item.Medias) > 0 {
		imageURL = item.Medias[0].URL
	}

	productURL := ""
	if item.Slug != "" {
		productURL = tiraStoreBaseURL + "/product/" + item.Slug
	}

	inStock := true
	if item.Sellable != nil {
		inStock = *item.Sellable
	}

	return domain.Listing{
		Name:            name,
		Brand:           brand,
		Price:           price,
		MRP:             mrp,
		DiscountPercent: discount,
		ImageURL:        imageURL,
		ProductURL:      productURL,
		Platform:        domain.PlatformTira,
		InStock:         inStock,
	}, true
}
