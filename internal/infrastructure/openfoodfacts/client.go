package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yumi/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the Open Food Facts API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
}

// NewClient creates a new Open Food Facts API client. Open Food Facts asks
// for roughly 100 product requests per minute and a descriptive User-Agent.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	// 100 requests/minute ≈ 1.66 requests/sec
	limiter := rate.NewLimiter(rate.Limit(1.66), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: limiter,
	}
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return resp, nil
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250<<(attempt-1)) * time.Millisecond
}

// Fetch retrieves one product by barcode from the v2 product endpoint.
// Transient failures are retried up to 3 times; an unknown barcode maps to
// domain.ErrProductNotFound.
func (c *Client) Fetch(ctx context.Context, barcode string) (*domain.Product, error) {
	log.Printf("[OFF] Fetch called with barcode: %q", barcode)

	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(barcode))

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[OFF] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("[OFF] API error (attempt %d) - Status: %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var envelope productEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			log.Printf("[OFF] JSON decode error: %v", err)
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		// The API answers 200 with status 0 for unknown barcodes.
		if envelope.Status != 1 || envelope.Product == nil {
			log.Printf("[OFF] Product not found: %q", barcode)
			return nil, domain.ErrProductNotFound
		}

		product := mapProduct(barcode, envelope.Product)
		log.Printf("[OFF] Found product %q for barcode %q", product.Name, barcode)
		return product, nil
	}

	log.Printf("[OFF] All retries failed for barcode: %q", barcode)
	return nil, lastErr
}

// SearchByCategory queries the legacy search endpoint for products in a
// category filtered by nutrition grade. Search is best-effort supporting data
// for recommendations, so there is no retry here.
func (c *Client) SearchByCategory(ctx context.Context, category, grade string, page, pageSize int) ([]domain.Product, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 25
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/cgi/search.pl", c.baseURL)
	params := url.Values{}
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("tagtype_0", "categories")
	params.Add("tag_contains_0", "contains")
	params.Add("tag_0", category)
	params.Add("tagtype_1", "nutrition_grades")
	params.Add("tag_contains_1", "contains")
	params.Add("tag_1", grade)
	params.Add("sort_by", "unique_scans_n")
	params.Add("page", strconv.Itoa(page))
	params.Add("page_size", strconv.Itoa(pageSize))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrCatalogUnavailable, resp.StatusCode, string(body))
	}

	var searchResp searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	products := make([]domain.Product, 0, len(searchResp.Products))
	for i := range searchResp.Products {
		raw := &searchResp.Products[i]
		products = append(products, *mapProduct(raw.Code, raw))
	}

	log.Printf("[OFF] Search %s/%s page %d returned %d products", category, grade, page, len(products))
	return products, nil
}
