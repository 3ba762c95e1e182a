// Package textutil holds the pure string heuristics shared by the
// connectors and the matching engine: normalization, price cleaning,
// brand/size/shade extraction, and discount computation. Functions here
// have no hidden state so they can be tested in isolation.
package textutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	specialCharsRegex = regexp.MustCompile(`[^\w\s\-.]`)
	multiSpaceRegex   = regexp.MustCompile(`\s+`)
	nonPriceRegex     = regexp.MustCompile(`[^\d.]`)

	// Matches size tokens like "30ml", "50 g", "1.5 ltr", "16 fl oz".
	// Longer unit alternatives come first so "gm" is not cut short at "g".
	sizeRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(gm|ml|kg|ltr|fl\.?\s*oz|oz|g|l)\b`)

	// Matches shade labels like "#128 Warm Nude" or "Shade: Ruby".
	shadeRegex = regexp.MustCompile(`(?i)(?:#?\s*(\d{2,4}))\s*[-–]?\s*([a-zA-Z\s]+)?|shade\s*[:.]?\s*(\w+)`)
)

// knownBrands is static configuration data: brands common across the
// supported platforms, used to resolve a brand from a product name when
// the platform does not report one explicitly.
var knownBrands = []string{
	"maybelline", "lakme", "mac", "nykaa", "sugar", "colorbar",
	"neutrogena", "loreal", "garnier", "biotique", "mamaearth",
	"plum", "minimalist", "cetaphil", "cerave", "the ordinary",
	"innisfree", "forest essentials", "kama ayurveda", "dot & key",
	"mars", "faces canada", "revlon", "elle 18", "blue heaven",
	"himalaya", "nivea", "dove", "ponds", "olay", "simple",
	"st. botanica", "wow", "mcaffeine", "re'equil", "derma co",
}

// Normalize lowercases, folds Unicode to its base letters, strips
// punctuation except hyphen and period, and collapses whitespace.
// Folding must run before the punctuation strip: the strip only keeps
// ASCII word characters, so an unfolded "Crème" would lose its accented
// letter instead of becoming "creme".
func Normalize(text string) string {
	text = foldDiacritics(text)
	text = strings.ToLower(strings.TrimSpace(text))
	text = specialCharsRegex.ReplaceAllString(text, "")
	text = multiSpaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// foldDiacritics decomposes the text (NFKD) and drops combining marks,
// reducing accented letters to their base form. The transformer chain is
// built per call; chained transformers carry state and are not safe to
// share across goroutines.
func foldDiacritics(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// CleanPrice extracts a numeric price from strings like "Rs. 1,299",
// "₹1299" or "MRP: 599.00". Returns 0 when no usable number remains.
func CleanPrice(text string) float64 {
	if text == "" {
		return 0
	}
	cleaned := nonPriceRegex.ReplaceAllString(text, "")
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// ExtractBrand resolves a brand name from free text. It prefers the
// longest known brand contained in the text and falls back to the
// text's first word.
func ExtractBrand(text string) string {
	lower := strings.ToLower(text)
	best := ""
	for _, brand := range knownBrands {
		if len(brand) > len(best) && strings.Contains(lower, brand) {
			best = brand
		}
	}
	if best != "" {
		return titleCase(best)
	}
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// ExtractSize extracts a quantity+unit token like "30ml" or "50g" from
// a product name. Unit aliases are normalized ("gm" -> "g",
// "ltr" -> "l"). Returns "" when the name carries no size token.
func ExtractSize(text string) string {
	m := sizeRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	unit := strings.ReplaceAll(strings.ToLower(m[2]), " ", "")
	switch unit {
	case "gm":
		unit = "g"
	case "ltr":
		unit = "l"
	}
	return m[1] + unit
}

// ExtractShade extracts a shade number/name like "128 Warm Nude".
func ExtractShade(text string) string {
	if m := shadeRegex.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// ComputeDiscount returns the discount percent implied by a selling
// price against the MRP, rounded to one decimal. A price at or above
// the MRP, or a missing MRP, is not a discount.
func ComputeDiscount(price, mrp float64) float64 {
	if mrp <= 0 || price <= 0 || price >= mrp {
		return 0
	}
	return math.Round(((mrp-price)/mrp)*1000) / 10
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
