package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/solarchat/backend/internal/domain"
)

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	products          map[string]*domain.Product
	partialResults    []domain.Product
	herstellerResults []domain.Product
	nameResults       []domain.Product
	semanticResults   []domain.Product
	semanticByTyp     map[string][]domain.Product
	listResults       []domain.Product

	getError      error
	semanticError error

	getCalled        bool
	partialCalled    bool
	herstellerCalled bool
	nameCalled       bool
	semanticCalled   bool

	semanticOpts domain.SearchOptions
	listLimit    int
	listOffset   int
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{
		products: make(map[string]*domain.Product),
	}
}

func (m *MockCatalogClient) GetProduct(ctx context.Context, artikelnummer string) (*domain.Product, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if p, ok := m.products[artikelnummer]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockCatalogClient) SearchByPartialNumber(ctx context.Context, fragment string, limit int) ([]domain.Product, error) {
	m.partialCalled = true
	return m.partialResults, nil
}

func (m *MockCatalogClient) SearchByHersteller(ctx context.Context, hersteller string, limit int) ([]domain.Product, error) {
	m.herstellerCalled = true
	return m.herstellerResults, nil
}

func (m *MockCatalogClient) SearchByName(ctx context.Context, name string, limit int) ([]domain.Product, error) {
	m.nameCalled = true
	return m.nameResults, nil
}

func (m *MockCatalogClient) SearchSemantic(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Product, error) {
	m.semanticCalled = true
	m.semanticOpts = opts
	if m.semanticError != nil {
		return nil, m.semanticError
	}
	if m.semanticByTyp != nil {
		return m.semanticByTyp[opts.Produkttyp], nil
	}
	return m.semanticResults, nil
}

func (m *MockCatalogClient) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	m.listLimit = limit
	m.listOffset = offset
	return m.listResults, nil
}

func TestNewSearchService(t *testing.T) {
	t.Run("creates service with default values", func(t *testing.T) {
		svc := NewSearchService(NewMockCatalogClient(), SearchServiceConfig{})
		if svc.maxResults != 5 {
			t.Errorf("maxResults = %d, want 5", svc.maxResults)
		}
		if svc.minScore != defaultSemanticMinScore {
			t.Errorf("minScore = %v, want %v", svc.minScore, defaultSemanticMinScore)
		}
		if svc.similarityThreshold != defaultSimilarityThreshold {
			t.Errorf("similarityThreshold = %v, want %v", svc.similarityThreshold, defaultSimilarityThreshold)
		}
	})

	t.Run("creates service with custom values", func(t *testing.T) {
		svc := NewSearchService(NewMockCatalogClient(), SearchServiceConfig{MaxResults: 20, MinScore: 0.5, SimilarityThreshold: 0.6})
		if svc.maxResults != 20 {
			t.Errorf("maxResults = %d, want 20", svc.maxResults)
		}
		if svc.minScore != 0.5 {
			t.Errorf("minScore = %v, want 0.5", svc.minScore)
		}
		if svc.similarityThreshold != 0.6 {
			t.Errorf("similarityThreshold = %v, want 0.6", svc.similarityThreshold)
		}
	})
}

func TestSmartSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns error for empty query", func(t *testing.T) {
		svc := NewSearchService(NewMockCatalogClient(), SearchServiceConfig{})
		_, err := svc.SmartSearch(ctx, "   ", domain.SearchOptions{})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("exact artikelnummer ranks first", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.products["1502101"] = &domain.Product{Artikelnummer: "1502101", Artikelname: "Deye SUN-5K"}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.SmartSearch(ctx, "Was kostet 1502101?", domain.SearchOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !catalog.getCalled {
			t.Error("expected the exact lookup stage to run")
		}
		if len(got) != 1 {
			t.Fatalf("len(got) = %d, want 1", len(got))
		}
		if got[0].Score != scoreExactNumber {
			t.Errorf("Score = %v, want %v", got[0].Score, scoreExactNumber)
		}
		if got[0].MatchType != domain.MatchArtikelnummer {
			t.Errorf("MatchType = %q, want %q", got[0].MatchType, domain.MatchArtikelnummer)
		}
	})

	t.Run("partial fragment scores exact hits higher", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.partialResults = []domain.Product{
			{Artikelnummer: "1502101"},
			{Artikelnummer: "15021"}, // equals the fragment
		}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.SmartSearch(ctx, "Nummer 15021", domain.SearchOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(got) = %d, want 2", len(got))
		}
		if got[0].Artikelnummer != "15021" || got[0].Score != scorePartialNumberExact {
			t.Errorf("got[0] = %q (%v), want the exact fragment first", got[0].Artikelnummer, got[0].Score)
		}
		if got[1].Score != scorePartialNumber {
			t.Errorf("got[1].Score = %v, want %v", got[1].Score, scorePartialNumber)
		}
		if got[0].MatchType != domain.MatchArtikelnummerPartial {
			t.Errorf("MatchType = %q, want %q", got[0].MatchType, domain.MatchArtikelnummerPartial)
		}
	})

	t.Run("hersteller stage filters by produkttyp", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.herstellerResults = []domain.Product{
			{Artikelnummer: "1", Produkttyp: "hybridwechselrichter"},
			{Artikelnummer: "2", Produkttyp: "batterie"},
			{Artikelnummer: "3", Produkttyp: "wechselrichter"},
		}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.SmartSearch(ctx, "deye wechselrichter", domain.SearchOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !catalog.herstellerCalled {
			t.Error("expected the hersteller stage to run")
		}
		if len(got) != 2 {
			t.Fatalf("len(got) = %d, want 2: %+v", len(got), got)
		}
		// the batterie hit is gone, both wechselrichter variants pass
		for _, p := range got {
			if p.Produkttyp == "batterie" {
				t.Errorf("batterie product survived the produkttyp filter")
			}
			if p.Score != scoreHersteller {
				t.Errorf("Score = %v, want %v", p.Score, scoreHersteller)
			}
			if p.MatchType != domain.MatchHersteller {
				t.Errorf("MatchType = %q, want %q", p.MatchType, domain.MatchHersteller)
			}
		}
	})

	t.Run("duplicate artikelnummern collapse across stages", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.products["1502101"] = &domain.Product{Artikelnummer: "1502101"}
		catalog.partialResults = []domain.Product{
			{Artikelnummer: "1502101"}, // already found by the exact stage
			{Artikelnummer: "1502105"},
		}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.SmartSearch(ctx, "1502101", domain.SearchOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(got) = %d, want 2: %+v", len(got), got)
		}
		if got[0].Artikelnummer != "1502101" || got[0].Score != scoreExactNumber {
			t.Errorf("got[0] = %q (%v), want the exact hit to keep its score", got[0].Artikelnummer, got[0].Score)
		}
	})

	t.Run("limit caps the result list", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.nameResults = []domain.Product{
			{Artikelnummer: "1", Artikelname: "MultiPlus klein"},
			{Artikelnummer: "2", Artikelname: "MultiPlus mittel"},
			{Artikelnummer: "3", Artikelname: "MultiPlus groß"},
		}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.SmartSearch(ctx, "MultiPlus", domain.SearchOptions{Limit: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("len(got) = %d, want 2", len(got))
		}
	})

	t.Run("semantic stage drops hits below min score", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.semanticResults = []domain.Product{
			{Artikelnummer: "1", Score: 0.8},
			{Artikelnummer: "2", Score: 0.2},
		}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.SmartSearch(ctx, "unabhängige stromversorgung", domain.SearchOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len(got) = %d, want 1: %+v", len(got), got)
		}
		if got[0].Score != 0.8 {
			t.Errorf("Score = %v, want the index score kept", got[0].Score)
		}
		if got[0].MatchType != domain.MatchSemantic {
			t.Errorf("MatchType = %q, want %q", got[0].MatchType, domain.MatchSemantic)
		}
	})

	t.Run("failed stage falls through to later stages", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.getError = errors.New("index down")
		catalog.semanticResults = []domain.Product{{Artikelnummer: "9", Score: 0.9}}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.SmartSearch(ctx, "1502101", domain.SearchOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err) // semantic stage delivered, so no error
		}
		if len(got) != 1 {
			t.Errorf("len(got) = %d, want 1", len(got))
		}
	})

	t.Run("returns the stage error when nothing was found", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		boom := errors.New("index down")
		catalog.getError = boom
		svc := NewSearchService(catalog, SearchServiceConfig{})

		_, err := svc.SmartSearch(ctx, "1502101", domain.SearchOptions{})
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want the stage error", err)
		}
	})

	t.Run("not found is not a stage failure", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.SmartSearch(ctx, "1502101", domain.SearchOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len(got) = %d, want 0", len(got))
		}
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns error for empty query", func(t *testing.T) {
		svc := NewSearchService(NewMockCatalogClient(), SearchServiceConfig{})
		_, err := svc.Search(ctx, "", domain.SearchOptions{})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("queries the index with filled defaults", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.semanticResults = []domain.Product{{Artikelnummer: "1", Score: 0.7}}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.Search(ctx, "stromspeicher für gartenhaus", domain.SearchOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.semanticOpts.Limit != 5 {
			t.Errorf("Limit = %d, want 5", catalog.semanticOpts.Limit)
		}
		if catalog.semanticOpts.MinScore != defaultSimilarityThreshold {
			t.Errorf("MinScore = %v, want %v", catalog.semanticOpts.MinScore, defaultSimilarityThreshold)
		}
		if len(got) != 1 || got[0].MatchType != domain.MatchSemantic {
			t.Errorf("got = %+v, want one semantic match", got)
		}
	})

	t.Run("explicit min score wins over the threshold", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		svc := NewSearchService(catalog, SearchServiceConfig{})

		if _, err := svc.Search(ctx, "speicher", domain.SearchOptions{MinScore: 0.3}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.semanticOpts.MinScore != 0.3 {
			t.Errorf("MinScore = %v, want 0.3", catalog.semanticOpts.MinScore)
		}
	})
}

func TestSearchService_GetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("returns error for empty artikelnummer", func(t *testing.T) {
		svc := NewSearchService(NewMockCatalogClient(), SearchServiceConfig{})
		_, err := svc.GetProduct(ctx, "  ")
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("passes not found through", func(t *testing.T) {
		svc := NewSearchService(NewMockCatalogClient(), SearchServiceConfig{})
		_, err := svc.GetProduct(ctx, "9999999")
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("error = %v, want ErrProductNotFound", err)
		}
	})

	t.Run("returns the catalog product", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.products["1502101"] = &domain.Product{Artikelnummer: "1502101", Artikelname: "Deye SUN-5K"}
		svc := NewSearchService(catalog, SearchServiceConfig{})

		got, err := svc.GetProduct(ctx, "1502101")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Artikelname != "Deye SUN-5K" {
			t.Errorf("Artikelname = %q, want %q", got.Artikelname, "Deye SUN-5K")
		}
	})
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	catalog := NewMockCatalogClient()
	svc := NewSearchService(catalog, SearchServiceConfig{})

	if _, err := svc.ListProducts(ctx, 0, -3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.listLimit != 10 {
		t.Errorf("limit = %d, want the default 10", catalog.listLimit)
	}
	if catalog.listOffset != 0 {
		t.Errorf("offset = %d, want 0", catalog.listOffset)
	}
}

func TestResolveProdukttyp(t *testing.T) {
	svc := NewSearchService(NewMockCatalogClient(), SearchServiceConfig{})

	testCases := []struct {
		name     string
		query    string
		explicit string
		want     string
	}{
		{"explicit filter wins", "deye batterie", "solarmodul", "solarmodul"},
		{"hybrid beats plain wechselrichter", "hybrid wechselrichter gesucht", "", "hybridwechselrichter"},
		{"speicher maps to speichersystem", "stromspeicher kaufen", "", "speichersystem"},
		{"akku maps to batterie", "akku für wohnmobil", "", "batterie"},
		{"plain wechselrichter", "wechselrichter dreiphasig", "", "wechselrichter"},
		{"no keyword means no filter", "pv anlage komplett", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.resolveProdukttyp(tc.query, tc.explicit); got != tc.want {
				t.Errorf("resolveProdukttyp(%q, %q) = %q, want %q", tc.query, tc.explicit, got, tc.want)
			}
		})
	}
}

func TestMatchesProdukttyp(t *testing.T) {
	testCases := []struct {
		produkttyp string
		filter     string
		want       bool
	}{
		{"batterie", "", true},
		{"batterie", "batterie", true},
		{"batterie", "wechselrichter", false},
		{"hybridwechselrichter", "wechselrichter", true}, // containment for the generic filter
		{"stringwechselrichter", "wechselrichter", true},
		{"hybridwechselrichter", "hybridwechselrichter", true},
		{"hybridwechselrichter", "stringwechselrichter", false},
	}

	for _, tc := range testCases {
		t.Run(tc.produkttyp+"/"+tc.filter, func(t *testing.T) {
			if got := matchesProdukttyp(tc.produkttyp, tc.filter); got != tc.want {
				t.Errorf("matchesProdukttyp(%q, %q) = %v, want %v", tc.produkttyp, tc.filter, got, tc.want)
			}
		})
	}
}
