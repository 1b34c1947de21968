package usecase

import (
	"context"
	"errors"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/solarchat/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	// artikelnummern are seven digits, set articles carry a -NNN suffix
	artikelnummerExactPattern   = regexp.MustCompile(`\b\d{7}(?:-\d{3})?\b`)
	artikelnummerPartialPattern = regexp.MustCompile(`\b\d{4,10}\b`)
)

// Stage scores of the search cascade. Exact identifier hits rank above
// everything the vector index returns.
const (
	scoreExactNumber        = 1.0
	scorePartialNumberExact = 0.95
	scorePartialNumber      = 0.9
	scoreHersteller         = 0.85
	scoreExactName          = 1.0
	scorePartialName        = 0.8
	defaultSemanticMinScore = 0.3
	// Plain semantic search is stricter than the cascade tail: without the
	// identifier stages in front, low-score vector hits are just noise.
	defaultSimilarityThreshold = 0.7
)

// herstellerKeywords are the manufacturers the catalog carries. A query
// naming one of them triggers the hersteller stage.
var herstellerKeywords = []string{
	"deye", "victron", "pylontech", "inlium", "votronic", "husatech", "sofar",
}

// produkttypFilters maps query words onto the produkttyp they ask for.
// Specific device types stay ahead of plain "wechselrichter", which is
// contained in their names and would otherwise win every time.
var produkttypFilters = []struct {
	produkttyp string
	keywords   []string
}{
	{"stringwechselrichter", []string{"stringwechselrichter", "string-wechselrichter"}},
	{"hybridwechselrichter", []string{"hybridwechselrichter", "hybrid"}},
	{"speichersystem", []string{"speichersystem", "speicher", "storage"}},
	{"batterie", []string{"batterie", "battery", "akku"}},
	{"solarmodul", []string{"solarmodul", "panel", "modul"}},
	{"wechselrichter", []string{"wechselrichter", "inverter"}},
}

// SearchServiceConfig holds configuration for the search service.
// MinScore is the floor of the smart-search cascade; SimilarityThreshold
// is the floor of plain semantic search when the caller passes none.
type SearchServiceConfig struct {
	MaxResults          int
	MinScore            float64
	SimilarityThreshold float64
	EnableDebugLogging  bool
}

// SearchService resolves free-text queries against the product catalog.
// Smart search runs a staged cascade from hard identifiers down to the
// vector index; plain search goes straight to the vector index.
type SearchService struct {
	catalog             domain.CatalogClient
	maxResults          int
	minScore            float64
	similarityThreshold float64
	enableDebugLogging  bool
}

// NewSearchService creates a new search service with the given catalog client
func NewSearchService(catalog domain.CatalogClient, config SearchServiceConfig) *SearchService {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	minScore := config.MinScore
	if minScore <= 0 {
		minScore = defaultSemanticMinScore
	}

	similarityThreshold := config.SimilarityThreshold
	if similarityThreshold <= 0 {
		similarityThreshold = defaultSimilarityThreshold
	}

	return &SearchService{
		catalog:             catalog,
		maxResults:          maxResults,
		minScore:            minScore,
		similarityThreshold: similarityThreshold,
		enableDebugLogging:  config.EnableDebugLogging,
	}
}

// SmartSearch runs the staged lookup cascade.
// Flow: exact artikelnummer -> partial artikelnummer -> hersteller -> artikelname -> vector index.
// Every stage only fills the capacity the previous stages left; duplicates
// are dropped by artikelnummer.
func (s *SearchService) SmartSearch(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = s.minScore
	}
	produkttyp := s.resolveProdukttyp(query, opts.Produkttyp)

	collector := newResultCollector(limit)
	var stageErr error
	keep := func(stage string, err error) {
		if err == nil || errors.Is(err, domain.ErrProductNotFound) {
			return
		}
		log.Printf("[SEARCH] %s stage failed: %v", stage, err)
		if stageErr == nil {
			stageErr = err
		}
	}

	// Stage 1: exact artikelnummer in the query
	if nummer := artikelnummerExactPattern.FindString(query); nummer != "" && !collector.full() {
		product, err := s.catalog.GetProduct(ctx, nummer)
		keep("artikelnummer", err)
		if err == nil && product != nil {
			product.Score = scoreExactNumber
			product.MatchType = domain.MatchArtikelnummer
			collector.add(*product)
		}
	}

	// Stage 2: digit fragments matched against artikelnummern
	if fragment := artikelnummerPartialPattern.FindString(query); fragment != "" && !collector.full() {
		products, err := s.catalog.SearchByPartialNumber(ctx, fragment, collector.remaining())
		keep("partial artikelnummer", err)
		for _, p := range products {
			if p.Artikelnummer == fragment {
				p.Score = scorePartialNumberExact
			} else {
				p.Score = scorePartialNumber
			}
			p.MatchType = domain.MatchArtikelnummerPartial
			collector.add(p)
		}
	}

	// Stage 3: hersteller keyword, filtered down to the requested produkttyp
	if hersteller := detectHersteller(query); hersteller != "" && !collector.full() {
		products, err := s.catalog.SearchByHersteller(ctx, hersteller, collector.remaining())
		keep("hersteller", err)
		for _, p := range products {
			if !matchesProdukttyp(p.Produkttyp, produkttyp) {
				continue
			}
			p.Score = scoreHersteller
			p.MatchType = domain.MatchHersteller
			collector.add(p)
		}
	}

	// Stage 4: artikelname lookup
	if !collector.full() {
		products, err := s.catalog.SearchByName(ctx, query, collector.remaining())
		keep("artikelname", err)
		for _, p := range products {
			if strings.EqualFold(strings.TrimSpace(p.Artikelname), query) {
				p.Score = scoreExactName
			} else {
				p.Score = scorePartialName
			}
			p.MatchType = domain.MatchArtikelname
			collector.add(p)
		}
	}

	// Stage 5: vector index fills whatever is still open
	if !collector.full() {
		products, err := s.catalog.SearchSemantic(ctx, query, domain.SearchOptions{
			Limit:      collector.remaining(),
			Produkttyp: produkttyp,
			MinScore:   minScore,
		})
		keep("semantic", err)
		for _, p := range products {
			if p.Score < minScore {
				continue
			}
			p.MatchType = domain.MatchSemantic
			collector.add(p)
		}
	}

	results := collector.results()
	if len(results) == 0 && stageErr != nil {
		return nil, stageErr
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	if s.enableDebugLogging {
		log.Printf("[SEARCH] %q -> %d results (produkttyp=%q, limit=%d)", query, len(results), produkttyp, limit)
	}
	return results, nil
}

// Search queries the vector index directly, without the identifier stages.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = s.similarityThreshold
	}

	products, err := s.catalog.SearchSemantic(ctx, query, domain.SearchOptions{
		Limit:      limit,
		Produkttyp: strings.ToLower(strings.TrimSpace(opts.Produkttyp)),
		MinScore:   minScore,
	})
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].MatchType = domain.MatchSemantic
	}
	return products, nil
}

// GetProduct fetches one product by its artikelnummer.
func (s *SearchService) GetProduct(ctx context.Context, artikelnummer string) (*domain.Product, error) {
	artikelnummer = strings.TrimSpace(artikelnummer)
	if artikelnummer == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.catalog.GetProduct(ctx, artikelnummer)
}

// ListProducts pages through the catalog.
func (s *SearchService) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.catalog.ListProducts(ctx, limit, offset)
}

// resolveProdukttyp picks the produkttyp filter: an explicit request wins,
// otherwise the query words decide.
func (s *SearchService) resolveProdukttyp(query, explicit string) string {
	if explicit = strings.ToLower(strings.TrimSpace(explicit)); explicit != "" {
		return explicit
	}
	lower := strings.ToLower(query)
	for _, f := range produkttypFilters {
		for _, kw := range f.keywords {
			if strings.Contains(lower, kw) {
				return f.produkttyp
			}
		}
	}
	return ""
}

// detectHersteller returns the first manufacturer the query names.
func detectHersteller(query string) string {
	lower := strings.ToLower(query)
	for _, h := range herstellerKeywords {
		if strings.Contains(lower, h) {
			return h
		}
	}
	return ""
}

// matchesProdukttyp reports whether a product passes the produkttyp
// filter. The plain "wechselrichter" filter matches by containment so
// hybrid, string and mikro variants stay in.
func matchesProdukttyp(produkttyp, filter string) bool {
	if filter == "" {
		return true
	}
	produkttyp = strings.ToLower(strings.TrimSpace(produkttyp))
	if filter == "wechselrichter" {
		return strings.Contains(produkttyp, "wechselrichter")
	}
	return produkttyp == filter
}

// resultCollector deduplicates cascade hits by artikelnummer and stops
// accepting once the limit is reached.
type resultCollector struct {
	limit    int
	seen     map[string]bool
	products []domain.Product
}

func newResultCollector(limit int) *resultCollector {
	return &resultCollector{
		limit: limit,
		seen:  make(map[string]bool),
	}
}

func (c *resultCollector) add(p domain.Product) {
	if c.full() || c.seen[p.Artikelnummer] {
		return
	}
	c.seen[p.Artikelnummer] = true
	c.products = append(c.products, p)
}

func (c *resultCollector) full() bool {
	return len(c.products) >= c.limit
}

func (c *resultCollector) remaining() int {
	return c.limit - len(c.products)
}

func (c *resultCollector) results() []domain.Product {
	return c.products
}
