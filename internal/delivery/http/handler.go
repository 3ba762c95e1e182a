package http

import (
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/beautycompare/backend/internal/domain"
	"github.com/beautycompare/backend/internal/usecase"
)

// Query validation bounds for /api/search.
const (
	minQueryLength = 2
	maxQueryLength = 200
	minLimit       = 1
	maxLimit       = 30
	defaultLimit   = 10
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search *usecase.SearchService
}

// NewHandler creates a new HTTP handler
func NewHandler(search *usecase.SearchService) *Handler {
	return &Handler{search: search}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "beautycompare-backend",
		"version": "1.0.0",
	})
}

// Search handles product search requests across all platforms
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	// Bounds are in characters, not bytes; multi-byte scripts must not
	// hit the ceiling early.
	if queryLen := utf8.RuneCountInString(query); queryLen < minQueryLength || queryLen > maxQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'q' must be between 2 and 200 characters",
		})
		return
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < minLimit || parsed > maxLimit {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "query parameter 'limit' must be an integer between 1 and 30",
			})
			return
		}
		limit = parsed
	}

	response, err := h.search.SearchProducts(c.Request.Context(), query, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search query"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Platforms lists the supported platforms with display metadata
func (h *Handler) Platforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"platforms": []gin.H{
			{"id": "nykaa", "name": "Nykaa", "color": "#FC2779", "url": "https://www.nykaa.com"},
			{"id": "amazon", "name": "Amazon India", "color": "#FF9900", "url": "https://www.amazon.in"},
			{"id": "tira", "name": "Tira Beauty", "color": "#000000", "url": "https://www.tirabeauty.com"},
		},
	})
}

// CacheStats returns result cache statistics
func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.search.CacheStats())
}

// ClearCache drops all cached search responses
func (h *Handler) ClearCache(c *gin.Context) {
	h.search.ClearCache()
	c.JSON(http.StatusOK, gin.H{"message": "cache cleared"})
}
