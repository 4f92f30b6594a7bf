package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumi/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://world.openfoodfacts.org", "yumi-test/1.0", 5*time.Second)

	assert.NotNil(t, client)
	assert.Equal(t, "https://world.openfoodfacts.org", client.baseURL)
	assert.Equal(t, "yumi-test/1.0", client.userAgent)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 250 * time.Millisecond},
		{2, 500 * time.Millisecond},
		{3, 1000 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
	}
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/3017620422003.json", r.URL.Path)
		assert.Equal(t, "yumi-test/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": 1,
			"product": {
				"code": "3017620422003",
				"product_name": "Nutella",
				"brands": "Ferrero",
				"nutriscore_grade": "E",
				"categories_tags": ["en:spreads", "fr:pates-a-tartiner"],
				"labels_tags": ["en:gluten-free"],
				"nutriments": {
					"energy_100g": 2255,
					"energy-kcal_100g": 539,
					"sugars_100g": 56.3,
					"salt_100g": "0,107"
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "yumi-test/1.0", 5*time.Second)
	product, err := client.Fetch(context.Background(), "3017620422003")

	require.NoError(t, err)
	assert.Equal(t, "3017620422003", product.Barcode)
	assert.Equal(t, "Nutella", product.Name)
	assert.Equal(t, "Ferrero", product.Brands)
	assert.Equal(t, "e", product.NutriscoreGrade)
	assert.Equal(t, []string{"spreads", "pates-a-tartiner"}, product.Categories)
	assert.Equal(t, []string{"gluten-free"}, product.Labels)
	assert.Equal(t, 539.0, product.Nutrients["energy_100g"])
	assert.Equal(t, 2255.0, product.Nutrients["energy_kj_100g"])
	assert.Equal(t, 56.3, product.Nutrients["sugars_100g"])
}

func TestFetch_UnknownBarcodeStatusZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "yumi-test/1.0", 5*time.Second)
	product, err := client.Fetch(context.Background(), "0000000000000")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestFetch_NotFoundStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "yumi-test/1.0", 5*time.Second)
	_, err := client.Fetch(context.Background(), "0000000000000")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": 1, "product": {"code": "123", "product_name": "Eau de Source"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "yumi-test/1.0", 5*time.Second)
	product, err := client.Fetch(context.Background(), "123")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "Eau de Source", product.Name)
}

func TestSearchByCategory_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "process", q.Get("action"))
		assert.Equal(t, "categories", q.Get("tagtype_0"))
		assert.Equal(t, "dairy", q.Get("tag_0"))
		assert.Equal(t, "nutrition_grades", q.Get("tagtype_1"))
		assert.Equal(t, "a", q.Get("tag_1"))
		assert.Equal(t, "25", q.Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"count": 2,
			"products": [
				{"code": "111", "product_name": "Skyr Nature", "brands": "Lactel", "nutriscore_grade": "a"},
				{"code": "222", "product_name": "Fromage Blanc", "brands": "Danone", "nutriscore_grade": "a"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "yumi-test/1.0", 5*time.Second)
	products, err := client.SearchByCategory(context.Background(), "dairy", "a", 1, 25)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "111", products[0].Barcode)
	assert.Equal(t, "Skyr Nature", products[0].Name)
	assert.Equal(t, "222", products[1].Barcode)
}

func TestSearchByCategory_NoRetryOnError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "yumi-test/1.0", 5*time.Second)
	products, err := client.SearchByCategory(context.Background(), "snacks", "b", 1, 25)

	assert.Nil(t, products)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
	assert.Equal(t, 1, attempts)
}
