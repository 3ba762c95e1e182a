package connector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/beautycompare/backend/internal/domain"
	"github.com/beautycompare/backend/internal/textutil"
)

const amazonDefaultBaseURL = "https://www.amazon.in"

var (
	ratingValueRegex = regexp.MustCompile(`[\d.]+`)
	ratingCountRegex = regexp.MustCompile(`\d+`)
)

// Amazon fetches listings by scraping Amazon India search result pages.
type Amazon struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// NewAmazon creates the Amazon connector. Empty arguments fall back to
// production defaults; tests point baseURL at a local server.
func NewAmazon(baseURL, userAgent string) *Amazon {
	if baseURL == "" {
		baseURL = amazonDefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Amazon{
		httpClient: newHTTPClient(),
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    newPolitenessLimiter(),
	}
}

// Platform returns the platform identifier.
func (a *Amazon) Platform() domain.Platform { return domain.PlatformAmazon }

// Name returns the human-readable platform name.
func (a *Amazon) Name() string { return "Amazon India" }

// Search scrapes the beauty-category search results page.
func (a *Amazon) Search(ctx context.Context, query string, limit int) ([]domain.Listing, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("k", query)
	params.Set("i", "beauty")
	params.Set("ref", "nb_sb_noss")
	reqURL := fmt.Sprintf("%s/s?%s", a.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9,hi;q=0.8")
	req.Header.Set("Referer", a.baseURL+"/")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := drainBody(resp, 8<<20)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("amazon returned status %d", resp.StatusCode)
	}

	return a.parseSearchPage(body, limit)
}

func (a *Amazon) parseSearchPage(body []byte, limit int) ([]domain.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing search page: %w", err)
	}

	listings := make([]domain.Listing, 0, limit)
	doc.Find(`[data-component-type="s-search-result"]`).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if listing, ok := a.parseCard(card); ok {
			listings = append(listings, listing)
		}
		return len(listings) < limit
	})

	return listings, nil
}

// parseCard extracts one listing from a search result card. Sponsored
// cards and cards without a usable name or positive price are dropped.
func (a *Amazon) parseCard(card *goquery.Selection) (domain.Listing, bool) {
	if card.Find(`[data-component-type="sp-sponsored-result"]`).Length() > 0 {
		return domain.Listing{}, false
	}
	sponsoredLabel := card.Find(`[class*="sponsored"], .puis-label-popover-default`).First()
	if sponsoredLabel.Length() > 0 && strings.Contains(sponsoredLabel.Text(), "ponsored") {
		return domain.Listing{}, false
	}

	// The image alt text carries the full title; the h2 is often truncated.
	name := strings.TrimSpace(card.Find("img.s-image").First().AttrOr("alt", ""))
	if len(name) < 10 {
		if h2 := strings.TrimSpace(card.Find("h2").First().Text()); len(h2) >= len(name) {
			name = h2
		}
	}
	if len(name) < 10 {
		if label := strings.TrimSpace(card.Find("h2 a").First().AttrOr("aria-label", "")); label != "" {
			name = label
		}
	}
	if len(name) < 5 {
		return domain.Listing{}, false
	}

	href := card.Find("h2 a").First().AttrOr("href", "")
	productURL := href
	if href != "" && !strings.HasPrefix(href, "http") {
		productURL = a.baseURL + href
	}

	price := textutil.CleanPrice(card.Find("span.a-price span.a-offscreen").First().Text())
	if price <= 0 {
		price = textutil.CleanPrice(card.Find(".a-price .a-price-whole").First().Text())
	}
	if price <= 0 {
		return domain.Listing{}, false
	}

	mrp := textutil.CleanPrice(card.Find("span.a-price.a-text-price span.a-offscreen").First().Text())
	if mrp <= 0 {
		mrp = price
	}

	rating := 0.0
	if text := card.Find("span.a-icon-alt").First().Text(); text != "" {
		if m := ratingValueRegex.FindString(text); m != "" {
			rating, _ = strconv.ParseFloat(m, 64)
		}
	}

	ratingCount := 0
	countText := card.Find(`span[aria-label*="ratings"]`).First().Text()
	if countText == "" {
		countText = card.Find(".a-size-base.s-underline-text").First().Text()
	}
	if countText != "" {
		if m := ratingCountRegex.FindString(strings.ReplaceAll(countText, ",", "")); m != "" {
			ratingCount, _ = strconv.Atoi(m)
		}
	}

	return domain.Listing{
		Name:            name,
		Brand:           textutil.ExtractBrand(name),
		Price:           price,
		MRP:             mrp,
		DiscountPercent: textutil.ComputeDiscount(price, mrp),
		ImageURL:        card.Find("img.s-image").First().AttrOr("src", ""),
		ProductURL:      productURL,
		Platform:        domain.PlatformAmazon,
		InStock:         true,
		Rating:          rating,
		RatingCount:     ratingCount,
	}, true
}
