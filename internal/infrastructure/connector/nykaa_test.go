package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beautycompare/backend/internal/domain"
)

const nykaaSearchPage = `<!DOCTYPE html>
<html><head><script>
window.__PRELOADED_STATE__ = {"searchListingPage":{"listingData":{"products":[
{"name":"Lakme Absolute Matte Lipstick","price":499,"mrp":599,"imageUrl":"https://images-static.nykaa.com/a.jpg","slug":"/lakme-absolute-matte-lipstick/p/1","brandName":"Lakme","variant_name":"Red Rush","rating":4.2,"review_count":120,"inStock":true},
{"name":"Maybelline Fit Me Foundation","price":"Rs. 399","mrp":"549","image_url":"b.jpg","url_key":"maybelline-fit-me/p/2","brand":["Maybelline"],"inStock":"1"},
{"title":"No Price Product","mrp":100},
{"price":250}
]}}};
</script></head><body></body></html>`

func TestNykaaSearch_ParsesPreloadedState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/result/", r.URL.Path)
		assert.Equal(t, "lipstick", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(nykaaSearchPage))
	}))
	defer server.Close()

	conn := NewNykaa(server.URL, "")
	listings, err := conn.Search(context.Background(), "lipstick", 10)

	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Lakme Absolute Matte Lipstick", first.Name)
	assert.Equal(t, "Lakme", first.Brand)
	assert.Equal(t, 499.0, first.Price)
	assert.Equal(t, 599.0, first.MRP)
	assert.Equal(t, "https://images-static.nykaa.com/a.jpg", first.ImageURL)
	assert.Equal(t, server.URL+"/lakme-absolute-matte-lipstick/p/1", first.ProductURL)
	assert.Equal(t, domain.PlatformNykaa, first.Platform)
	assert.Equal(t, "Red Rush", first.Variant)
	assert.Equal(t, 4.2, first.Rating)
	assert.Equal(t, 120, first.RatingCount)
	assert.True(t, first.InStock)

	second := listings[1]
	assert.Equal(t, "Maybelline", second.Brand)
	assert.Equal(t, 399.0, second.Price)
	assert.Equal(t, 549.0, second.MRP)
	assert.Contains(t, second.ImageURL, "images-static.nykaa.com")
	assert.True(t, second.InStock)
}

func TestNykaaSearch_LimitApplies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nykaaSearchPage))
	}))
	defer server.Close()

	conn := NewNykaa(server.URL, "")
	listings, err := conn.Search(context.Background(), "lipstick", 1)

	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestNykaaSearch_MissingState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>no state here</body></html>"))
	}))
	defer server.Close()

	conn := NewNykaa(server.URL, "")
	listings, err := conn.Search(context.Background(), "lipstick", 10)

	assert.Nil(t, listings)
	assert.Error(t, err)
}

func TestNykaaSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	conn := NewNykaa(server.URL, "")
	listings, err := conn.Search(context.Background(), "lipstick", 10)

	assert.Nil(t, listings)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNykaaSearch_ContextCancelled(t *testing.T) {
	conn := NewNykaa("http://127.0.0.1:1", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Search(ctx, "lipstick", 10)
	assert.Error(t, err)
}
