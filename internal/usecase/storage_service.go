package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/solarchat/backend/internal/domain"
)

// Sizing rules and completion parameters of the storage recommendation flow
const (
	storageSearchLimit = 10
	batterySearchLimit = 5
	storageResultLimit = 10
	storageMaxTokens   = 1500
	storageUserMessage = "Welche Speichersysteme passen zu meiner PV-Anlage?"

	// A storage should cover one and a half days of consumption.
	autarkieDays = 1.5
	// Rule of thumb: 1 kWp yields about 1000 kWh per year.
	ertragKwhProKwp = 1000
)

// StorageServiceConfig holds configuration for the storage service
type StorageServiceConfig struct {
	Model              string
	EnableDebugLogging bool
}

// StorageService recommends storage systems for a PV installation. It
// searches the catalog for matching storage and battery products, derives
// sizing recommendations from the requested parameters and lets the
// completion backend phrase the advice.
type StorageService struct {
	search             *SearchService
	chat               domain.ChatClient
	prompts            domain.PromptStore
	contexts           *ProductContextFormatter
	model              string
	enableDebugLogging bool
}

// NewStorageService creates a new storage service
func NewStorageService(search *SearchService, chat domain.ChatClient, prompts domain.PromptStore, contexts *ProductContextFormatter, config StorageServiceConfig) *StorageService {
	model := config.Model
	if model == "" {
		model = "gpt-5.1"
	}
	if contexts == nil {
		contexts = NewProductContextFormatter(nil)
	}

	return &StorageService{
		search:             search,
		chat:               chat,
		prompts:            prompts,
		contexts:           contexts,
		model:              model,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Recommend builds a storage recommendation for the given PV parameters.
// Flow: catalog search -> sizing recommendations -> completion.
func (s *StorageService) Recommend(ctx context.Context, req domain.StorageRequest) (*domain.StorageResponse, error) {
	if req.PVLeistungKwp <= 0 {
		return nil, fmt.Errorf("%w: pv_leistung_kwp must be positive", domain.ErrInvalidRequest)
	}

	products := s.findMatchingStorage(ctx, req)
	recommendations := buildRecommendations(req)

	content, err := s.chat.Complete(ctx, domain.CompletionRequest{
		Model:       s.model,
		System:      s.buildSystemPrompt(req, products, recommendations),
		Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: storageUserMessage}},
		MaxTokens:   storageMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionFailure, err)
	}

	if s.enableDebugLogging {
		log.Printf("[STORAGE] %.1f kWp -> %d products, %d recommendations", req.PVLeistungKwp, len(products), len(recommendations))
	}

	return &domain.StorageResponse{
		Response:        content,
		Products:        products,
		Recommendations: recommendations,
	}, nil
}

// findMatchingStorage searches storage systems and batteries with a query
// assembled from the PV parameters, then keeps the best hits of both.
func (s *StorageService) findMatchingStorage(ctx context.Context, req domain.StorageRequest) []domain.Product {
	queryParts := []string{"Speichersystem", "Batteriespeicher"}
	if req.PVLeistungKwp > 0 {
		queryParts = append(queryParts, fmt.Sprintf("%s kWp PV-Anlage", formatNumber(req.PVLeistungKwp)))
	}
	if req.StromverbrauchKwh > 0 {
		kapazitaet := req.StromverbrauchKwh * autarkieDays / 365
		queryParts = append(queryParts, fmt.Sprintf("%.1f kWh Speicherkapazität", kapazitaet))
	}
	query := strings.Join(queryParts, " ")

	products, err := s.search.Search(ctx, query, domain.SearchOptions{
		Limit:      storageSearchLimit,
		Produkttyp: "speichersystem",
	})
	if err != nil {
		log.Printf("[STORAGE] speichersystem search failed: %v", err)
	}
	batteries, err := s.search.Search(ctx, query, domain.SearchOptions{
		Limit:      batterySearchLimit,
		Produkttyp: "batterie",
	})
	if err != nil {
		log.Printf("[STORAGE] batterie search failed: %v", err)
	}

	combined := make([]domain.Product, 0, len(products)+len(batteries))
	combined = append(combined, products...)
	combined = append(combined, batteries...)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score > combined[j].Score
	})
	if len(combined) > storageResultLimit {
		combined = combined[:storageResultLimit]
	}
	return combined
}

// buildRecommendations derives the sizing lines shown alongside the advice
func buildRecommendations(req domain.StorageRequest) []string {
	var recommendations []string
	if req.StromverbrauchKwh > 0 {
		kapazitaet := req.StromverbrauchKwh / 365 * autarkieDays
		recommendations = append(recommendations, fmt.Sprintf(
			"Empfohlene Speicherkapazität: %.1f kWh (basierend auf %s kWh/Jahr)",
			kapazitaet, formatNumber(req.StromverbrauchKwh)))
	}
	if req.PVLeistungKwp > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Erwarteter PV-Ertrag: %.0f kWh/Jahr", req.PVLeistungKwp*ertragKwhProKwp))
	}
	return recommendations
}

func (s *StorageService) buildSystemPrompt(req domain.StorageRequest, products []domain.Product, recommendations []string) string {
	verbrauch := "Nicht angegeben"
	if req.StromverbrauchKwh > 0 {
		verbrauch = formatNumber(req.StromverbrauchKwh)
	}
	autarkie := "Nicht angegeben"
	if req.AutarkieWunsch > 0 {
		autarkie = formatNumber(req.AutarkieWunsch)
	}

	var b strings.Builder
	b.WriteString(promptOr(s.prompts, domain.PromptChatSystem, ""))
	b.WriteString("\n\nPV-ANLAGE PARAMETER:\n")
	fmt.Fprintf(&b, "- PV-Leistung: %s kWp\n", formatNumber(req.PVLeistungKwp))
	fmt.Fprintf(&b, "- Stromverbrauch: %s kWh/Jahr\n", verbrauch)
	fmt.Fprintf(&b, "- Autarkie-Wunsch: %s%%\n", autarkie)
	b.WriteString("\nPASSENDE SPEICHERSYSTEME:\n")
	b.WriteString(s.contexts.Standard(products))
	b.WriteString("\n\nEMPFEHLUNGEN:\n")
	b.WriteString(strings.Join(recommendations, "\n"))
	if storagePrompt := promptOr(s.prompts, domain.PromptStorageRecommendation, ""); storagePrompt != "" {
		b.WriteString("\n\n" + storagePrompt)
	}
	return b.String()
}
