package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/solarchat/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Embedder produces the query vector for semantic search
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Scan and input bounds. Identifier lookups filter the collection
// client-side, so one scroll page has to cover it.
const (
	scanPageLimit   = 10000
	minNameLength   = 3
	embedInputLimit = 8000 // characters, embedding model token limit
)

// Client reads the product index over the vector database's HTTP API.
// Identifier searches scan the collection and match client-side; semantic
// search embeds the query and lets the index rank by similarity.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	collection  string
	embedder    Embedder
	rateLimiter *rate.Limiter
}

// NewClient creates a new product index client
func NewClient(baseURL, collection string, embedder Embedder) *Client {
	// The index runs next to this service; 20 requests/sec with a burst of
	// 40 keeps chat latency low without flooding it during scans.
	limiter := rate.NewLimiter(rate.Limit(20), 40)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		collection:  collection,
		embedder:    embedder,
		rateLimiter: limiter,
	}
}

// Wire types of the index API

type searchFilter struct {
	Must []fieldCondition `json:"must"`
}

type fieldCondition struct {
	Key   string     `json:"key"`
	Match matchValue `json:"match"`
}

type matchValue struct {
	Value string `json:"value"`
}

type scrollRequest struct {
	Filter      *searchFilter `json:"filter,omitempty"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
}

type queryRequest struct {
	Query          []float64     `json:"query"`
	Filter         *searchFilter `json:"filter,omitempty"`
	Limit          int           `json:"limit"`
	ScoreThreshold float64       `json:"score_threshold,omitempty"`
	WithPayload    bool          `json:"with_payload"`
}

type pointsEnvelope struct {
	Result struct {
		Points []indexPoint `json:"points"`
	} `json:"result"`
}

type indexPoint struct {
	Score   float64        `json:"score,omitempty"`
	Payload map[string]any `json:"payload"`
}

// GetProduct fetches one product by its exact artikelnummer
func (c *Client) GetProduct(ctx context.Context, artikelnummer string) (*domain.Product, error) {
	points, err := c.scroll(ctx, scrollRequest{
		Filter:      fieldEquals("artikelnummer", artikelnummer),
		Limit:       1,
		WithPayload: true,
	})
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, domain.ErrProductNotFound
	}

	product := productFromPayload(points[0].Payload)
	return &product, nil
}

// SearchByPartialNumber matches artikelnummern by prefix, so a base number
// finds its set variants (1703574 finds 1703574-001 and so on). The exact
// number is listed first.
func (c *Client) SearchByPartialNumber(ctx context.Context, fragment string, limit int) ([]domain.Product, error) {
	points, err := c.scroll(ctx, scrollRequest{Limit: scanPageLimit, WithPayload: true})
	if err != nil {
		return nil, err
	}

	var exact, partial []domain.Product
	for _, point := range points {
		nummer, _ := point.Payload["artikelnummer"].(string)
		if nummer == "" || !strings.HasPrefix(nummer, fragment) {
			continue
		}
		if nummer == fragment {
			exact = append(exact, productFromPayload(point.Payload))
		} else {
			partial = append(partial, productFromPayload(point.Payload))
		}
	}

	return capProducts(append(exact, partial...), limit), nil
}

// SearchByHersteller matches the manufacturer field case-insensitively in
// both directions, skipping products without one.
func (c *Client) SearchByHersteller(ctx context.Context, hersteller string, limit int) ([]domain.Product, error) {
	points, err := c.scroll(ctx, scrollRequest{Limit: scanPageLimit, WithPayload: true})
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(strings.TrimSpace(hersteller))
	var matches []domain.Product
	for _, point := range points {
		have, _ := point.Payload["hersteller"].(string)
		have = strings.ToLower(strings.TrimSpace(have))
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			matches = append(matches, productFromPayload(point.Payload))
		}
	}

	return capProducts(matches, limit), nil
}

// SearchByName matches product names case-insensitively in both directions.
// Very short queries and names are skipped so that near-empty strings do
// not match everything; exact name hits are listed first.
func (c *Client) SearchByName(ctx context.Context, name string, limit int) ([]domain.Product, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if len(want) < minNameLength {
		return nil, nil
	}

	points, err := c.scroll(ctx, scrollRequest{Limit: scanPageLimit, WithPayload: true})
	if err != nil {
		return nil, err
	}

	var exact, partial []domain.Product
	for _, point := range points {
		have, _ := point.Payload["artikelname"].(string)
		have = strings.ToLower(strings.TrimSpace(have))
		if len(have) < minNameLength {
			continue
		}
		switch {
		case have == want:
			exact = append(exact, productFromPayload(point.Payload))
		case strings.Contains(have, want) || strings.Contains(want, have):
			partial = append(partial, productFromPayload(point.Payload))
		}
	}

	return capProducts(append(exact, partial...), limit), nil
}

// SearchSemantic embeds the query and ranks the collection by vector
// similarity. Results carry the index score.
func (c *Client) SearchSemantic(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Product, error) {
	input := query
	if len(input) > embedInputLimit {
		input = input[:embedInputLimit]
	}
	vector, err := c.embedder.Embed(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	req := queryRequest{
		Query:          vector,
		Limit:          opts.Limit,
		ScoreThreshold: opts.MinScore,
		WithPayload:    true,
	}
	if opts.Produkttyp != "" {
		req.Filter = fieldEquals("produkttyp", opts.Produkttyp)
	}

	points, err := c.query(ctx, req)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(points))
	for _, point := range points {
		product := productFromPayload(point.Payload)
		product.Score = point.Score
		products = append(products, product)
	}
	return products, nil
}

// ListProducts pages through the collection in scan order
func (c *Client) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	fetch := offset + limit
	if fetch > scanPageLimit {
		fetch = scanPageLimit
	}
	points, err := c.scroll(ctx, scrollRequest{Limit: fetch, WithPayload: true})
	if err != nil {
		return nil, err
	}
	if offset >= len(points) {
		return nil, nil
	}

	points = points[offset:]
	products := make([]domain.Product, 0, len(points))
	for _, point := range points {
		products = append(products, productFromPayload(point.Payload))
	}
	return products, nil
}

func (c *Client) scroll(ctx context.Context, req scrollRequest) ([]indexPoint, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/points/scroll", c.baseURL, c.collection)
	return c.fetchPoints(ctx, endpoint, req)
}

func (c *Client) query(ctx context.Context, req queryRequest) ([]indexPoint, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/points/query", c.baseURL, c.collection)
	return c.fetchPoints(ctx, endpoint, req)
}

// fetchPoints posts one index request and decodes the point list.
// Transient failures are retried up to 3 times with a short backoff.
func (c *Client) fetchPoints(ctx context.Context, endpoint string, payload any) ([]indexPoint, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[CATALOG] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[CATALOG] index error (attempt %d) - status: %d, body: %s", attempt, resp.StatusCode, string(respBody))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, lastErr // the request will not get better
			}
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		var envelope pointsEnvelope
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return envelope.Result.Points, nil
	}

	log.Printf("[CATALOG] all retries failed for %s", endpoint)
	return nil, lastErr
}

// productFromPayload maps an indexed document onto the typed product.
// The full payload stays attached for spec extraction.
func productFromPayload(payload map[string]any) domain.Product {
	str := func(key string) string {
		s, _ := payload[key].(string)
		return s
	}
	return domain.Product{
		Artikelnummer:    str("artikelnummer"),
		Artikelname:      str("artikelname"),
		Hersteller:       str("hersteller"),
		Produkttyp:       str("produkttyp"),
		Kategoriepfad:    str("kategoriepfad"),
		Kurzbeschreibung: str("kurzbeschreibung"),
		Beschreibung:     str("beschreibung"),
		Payload:          payload,
	}
}

func fieldEquals(key, value string) *searchFilter {
	return &searchFilter{
		Must: []fieldCondition{{Key: key, Match: matchValue{Value: value}}},
	}
}

func capProducts(products []domain.Product, limit int) []domain.Product {
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products
}
