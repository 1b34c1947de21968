package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/solarchat/backend/internal/domain"
)

const (
	defaultCacheTTL = 15 * time.Minute
	mwstSatz        = 19
)

// Client fetches price data from the merchandise platform. The platform is
// the price authority only; all other product data comes from the catalog
// index. One pricing lookup fans out into three endpoints (article, offer,
// bill of materials), so assembled results are cached.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	cache       domain.CacheRepository
	cacheTTL    time.Duration
	rateLimiter *rate.Limiter
}

// NewClient creates a new platform API client. The cache is optional; pass
// nil to fetch fresh prices on every call.
func NewClient(baseURL, apiKey string, cache domain.CacheRepository, cacheTTL time.Duration) *Client {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	// One pricing lookup fans out into several platform calls
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/") + "/api",
		apiKey:      apiKey,
		cache:       cache,
		cacheTTL:    cacheTTL,
		rateLimiter: limiter,
	}
}

// Wire types of the platform API

type articleInfo struct {
	Pricing articlePricing `json:"pricing"`
}

// articlePricing carries the platform's raw price fields: purchase prices
// from the supplier record, raw = net sales price, shop = gross sales price.
type articlePricing struct {
	PurchaseNet   *float64 `json:"purchase_net"`
	PurchaseGross *float64 `json:"purchase_gross"`
	Raw           *float64 `json:"raw"`
	Shop          *float64 `json:"shop"`
}

type offerInfo struct {
	IstAngebot     bool     `json:"ist_angebot"`
	UrsprungsPreis *float64 `json:"ursprungs_preis"`
	Angebotspreis  *float64 `json:"angebotspreis"`
	RabattProzent  float64  `json:"rabatt_prozent"`
}

type bomInfo struct {
	Components []bomComponent `json:"components"`
}

type bomComponent struct {
	ArticleID     int     `json:"article_id"`
	ArticleNumber string  `json:"article_number"`
	Amount        float64 `json:"amount"`
}

// GetPricing assembles the full price record for one article.
// Flow: cache -> article prices -> active offer -> BOM component prices.
// Offer and BOM lookups are optional; their failure never fails the call.
func (c *Client) GetPricing(ctx context.Context, artikelnummer string) (*domain.Pricing, error) {
	cacheKey := "pricing:" + artikelnummer
	if cached := c.cachedPricing(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	var article articleInfo
	if err := c.getJSON(ctx, "/articles/"+artikelnummer, &article); err != nil {
		return nil, err
	}

	pricing := assemblePricing(article.Pricing)

	var offer offerInfo
	if err := c.getJSON(ctx, "/articles/"+artikelnummer+"/angebot", &offer); err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			log.Printf("[PLATFORM] offer lookup for %s failed: %v", artikelnummer, err)
		}
	} else if offer.IstAngebot {
		pricing.IstAngebot = true
		pricing.UrsprungsPreis = roundedPrice(offer.UrsprungsPreis)
		pricing.ReduzierterPreis = roundedPrice(offer.Angebotspreis)
		pricing.AktuellerRabatt = offer.RabattProzent
	}

	pricing.Stuecklistenpreise = c.bomPricing(ctx, artikelnummer)

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, pricing, c.cacheTTL); err != nil {
			log.Printf("[PLATFORM] failed to cache pricing for %s: %v", artikelnummer, err)
		}
	}

	return pricing, nil
}

// assemblePricing derives net and gross prices from the platform's raw
// fields. The platform reports 0 for unpriced articles, so zero values are
// treated as missing. VAT is fixed at 19%; the platform does not expose the
// per-article rate yet.
func assemblePricing(raw articlePricing) *domain.Pricing {
	pricing := &domain.Pricing{
		EinkaufspreisNetto: raw.PurchaseNet,
		Einkaufspreis0Mwst: roundedPrice(raw.PurchaseNet),
		VerkaufspreisNetto: roundedPrice(raw.Raw),
		MwstSatz:           mwstSatz,
		Stuecklistenpreise: []domain.KomponentenPreis{},
	}

	if gross := roundedPrice(raw.PurchaseGross); gross != nil {
		pricing.Einkaufspreis19Mwst = gross
	} else {
		pricing.Einkaufspreis19Mwst = roundedPrice(withVAT(raw.PurchaseNet))
	}

	if shop := roundedPrice(raw.Shop); shop != nil {
		pricing.Verkaufspreis19Mwst = shop
	} else {
		pricing.Verkaufspreis19Mwst = roundedPrice(withVAT(raw.Raw))
	}

	return pricing
}

// bomPricing fetches the component prices of an article's bill of
// materials. Components the platform cannot price are skipped.
func (c *Client) bomPricing(ctx context.Context, artikelnummer string) []domain.KomponentenPreis {
	var bom bomInfo
	if err := c.getJSON(ctx, "/bom/"+artikelnummer+"?include_details=true", &bom); err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			log.Printf("[PLATFORM] BOM lookup for %s failed: %v", artikelnummer, err)
		}
		return []domain.KomponentenPreis{}
	}

	prices := make([]domain.KomponentenPreis, 0, len(bom.Components))
	for _, component := range bom.Components {
		if component.ArticleID == 0 {
			continue
		}

		var article articleInfo
		if err := c.getJSON(ctx, fmt.Sprintf("/articles/%d", component.ArticleID), &article); err != nil {
			log.Printf("[PLATFORM] component %s not priced: %v", component.ArticleNumber, err)
			continue
		}

		menge := component.Amount
		if menge == 0 {
			menge = 1
		}

		prices = append(prices, domain.KomponentenPreis{
			Artikelnummer:      component.ArticleNumber,
			ArtikelID:          component.ArticleID,
			Menge:              menge,
			EinkaufspreisNetto: article.Pricing.PurchaseNet,
			VerkaufspreisNetto: roundedPrice(article.Pricing.Raw),
		})
	}

	return prices
}

func (c *Client) cachedPricing(ctx context.Context, key string) *domain.Pricing {
	if c.cache == nil {
		return nil
	}
	value, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil
	}

	// the memory backend returns JSON bytes, the redis backend a string
	switch v := value.(type) {
	case []byte:
		var pricing domain.Pricing
		if json.Unmarshal(v, &pricing) == nil {
			return &pricing
		}
	case string:
		var pricing domain.Pricing
		if json.Unmarshal([]byte(v), &pricing) == nil {
			return &pricing
		}
	}
	return nil
}

// getJSON fetches one platform endpoint and decodes the response into
// target, unwrapping the platform's {"data": ...} envelope when present.
// Transient failures are retried up to 3 times with a short backoff.
func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	url := c.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[PLATFORM] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrPlatformUnavailable, err)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("[PLATFORM] API error (attempt %d) - status: %d, body: %s", attempt, resp.StatusCode, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrPlatformUnavailable, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return lastErr
			}
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		payload := body
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
			payload = envelope.Data
		}

		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	log.Printf("[PLATFORM] all retries failed for %s", url)
	return lastErr
}

// roundedPrice rounds to cents, treating nil and zero as missing
func roundedPrice(value *float64) *float64 {
	if value == nil || *value == 0 {
		return nil
	}
	rounded := math.Round(*value*100) / 100
	return &rounded
}

func withVAT(net *float64) *float64 {
	if net == nil {
		return nil
	}
	gross := *net * 1.19
	return &gross
}
