package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/solarchat/backend/internal/domain"
)

// Completion parameters and fixed texts of the comparison flow
const (
	compareMaxTokens       = 1500
	compareUserMessage     = "Vergleiche diese Produkte detailliert."
	compareMinimumFallback = "Für einen Vergleich benötige ich mindestens 2 Produkte."
	compareEmptyNarrative  = "Entschuldigung, es konnte kein Vergleichstext generiert werden."
)

// CompareServiceConfig holds configuration for the compare service
type CompareServiceConfig struct {
	CompareModel       string
	EnableDebugLogging bool
}

// CompareService produces product comparisons. It loads the requested
// articles, enriches them with platform prices, asks the completion backend
// for a comparison narrative and decomposes that narrative into the
// structured comparison layout.
type CompareService struct {
	catalog            domain.CatalogClient
	platform           domain.PlatformClient
	chat               domain.ChatClient
	prompts            domain.PromptStore
	contexts           *ProductContextFormatter
	structurer         *ComparisonStructurer
	renderer           *MarkupRenderer
	compareModel       string
	enableDebugLogging bool
}

// NewCompareService creates a new compare service
func NewCompareService(
	catalog domain.CatalogClient,
	platform domain.PlatformClient,
	chat domain.ChatClient,
	prompts domain.PromptStore,
	contexts *ProductContextFormatter,
	structurer *ComparisonStructurer,
	renderer *MarkupRenderer,
	config CompareServiceConfig,
) *CompareService {
	model := config.CompareModel
	if model == "" {
		model = "gpt-5.1"
	}
	if contexts == nil {
		contexts = NewProductContextFormatter(nil)
	}
	if structurer == nil {
		structurer = NewComparisonStructurer(ComparisonStructurerConfig{})
	}
	if renderer == nil {
		renderer = NewMarkupRenderer(false)
	}

	return &CompareService{
		catalog:            catalog,
		platform:           platform,
		chat:               chat,
		prompts:            prompts,
		contexts:           contexts,
		structurer:         structurer,
		renderer:           renderer,
		compareModel:       model,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Compare builds the comparison for the requested artikelnummern.
// Flow: resolve articles -> attach prices -> narrative completion -> structure.
// Fewer than two resolvable articles is answered with a fixed message, not
// an error, so the client can show it as a normal chat reply.
func (s *CompareService) Compare(ctx context.Context, req domain.CompareRequest) (*domain.CompareResponse, error) {
	products := s.resolveProducts(ctx, req.Artikelnummern)
	if len(products) < 2 {
		return &domain.CompareResponse{
			Response: promptOr(s.prompts, domain.PromptCompareMinimum, compareMinimumFallback),
			Products: products,
		}, nil
	}

	s.attachPricing(ctx, products)

	systemPrompt := fmt.Sprintf("%s\n\nPRODUKTE ZUM VERGLEICH:\n%s\n\n%s",
		promptOr(s.prompts, domain.PromptChatSystem, ""),
		s.contexts.WithPricing(products),
		promptOr(s.prompts, domain.PromptCompareSystem, ""))

	narrative, err := s.chat.Complete(ctx, domain.CompletionRequest{
		Model:       s.compareModel,
		System:      systemPrompt,
		Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: compareUserMessage}},
		MaxTokens:   compareMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionFailure, err)
	}
	if strings.TrimSpace(narrative) == "" {
		narrative = compareEmptyNarrative
	}

	response := &domain.CompareResponse{
		Response: narrative,
		Products: products,
		Model:    s.compareModel,
	}
	if structured := s.structurer.Structure(narrative, products); !structured.Empty() {
		response.Structured = &structured
	} else {
		response.Rendered = s.renderer.Render(narrative)
	}

	if s.enableDebugLogging {
		log.Printf("[COMPARE] %d products compared, structured=%v", len(products), response.Structured != nil)
	}
	return response, nil
}

// resolveProducts loads each requested article, dropping blanks, duplicates
// and articles the catalog does not know.
func (s *CompareService) resolveProducts(ctx context.Context, artikelnummern []string) []domain.Product {
	seen := make(map[string]bool)
	products := make([]domain.Product, 0, len(artikelnummern))
	for _, nummer := range artikelnummern {
		nummer = strings.TrimSpace(nummer)
		if nummer == "" || seen[nummer] {
			continue
		}
		seen[nummer] = true

		product, err := s.catalog.GetProduct(ctx, nummer)
		if err != nil {
			log.Printf("[COMPARE] product %s not resolved: %v", nummer, err)
			continue
		}
		products = append(products, *product)
	}
	return products
}

// attachPricing fills in platform prices where available. Prices are an
// enrichment; the comparison works without them.
func (s *CompareService) attachPricing(ctx context.Context, products []domain.Product) {
	for i := range products {
		pricing, err := s.platform.GetPricing(ctx, products[i].Artikelnummer)
		if err != nil {
			log.Printf("[COMPARE] pricing for %s unavailable: %v", products[i].Artikelnummer, err)
			continue
		}
		products[i].Pricing = pricing
	}
}
