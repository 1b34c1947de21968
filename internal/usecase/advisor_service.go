package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/solarchat/backend/internal/domain"
)

// Context modes of a chat turn. The mode decides which payload fields feed
// the completion prompt.
const (
	contextModeStandard   = "standard"
	contextModePDFDetails = "pdf_details"
	contextModeVektorText = "vektor_text"
)

// Conversation windows and completion parameters for the chat flow
const (
	historyScanWindow   = 6  // newest messages scanned for a follow-up artikelnummer
	historyPromptWindow = 10 // newest messages forwarded to the completion backend
	chatMaxTokens       = 1000
	chatTemperature     = 0.7
)

// AdvisorServiceConfig holds configuration for the advisor service
type AdvisorServiceConfig struct {
	ChatModel          string
	MaxResults         int
	EnableDebugLogging bool
}

// AdvisorService answers advisory chat turns. Each turn resolves candidate
// products through the search cascade, assembles a German product context
// and asks the completion backend with the recent conversation attached.
type AdvisorService struct {
	search             *SearchService
	chat               domain.ChatClient
	prompts            domain.PromptStore
	contexts           *ProductContextFormatter
	chatModel          string
	maxResults         int
	enableDebugLogging bool
}

// NewAdvisorService creates a new advisor service
func NewAdvisorService(search *SearchService, chat domain.ChatClient, prompts domain.PromptStore, contexts *ProductContextFormatter, config AdvisorServiceConfig) *AdvisorService {
	model := config.ChatModel
	if model == "" {
		model = "gpt-4o"
	}
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	if contexts == nil {
		contexts = NewProductContextFormatter(nil)
	}

	return &AdvisorService{
		search:             search,
		chat:               chat,
		prompts:            prompts,
		contexts:           contexts,
		chatModel:          model,
		maxResults:         maxResults,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Chat answers one advisory turn.
// Flow: follow-up detection -> smart search -> context assembly -> completion.
func (s *AdvisorService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}

	lower := strings.ToLower(message)
	hasArtikelnummer := artikelnummerExactPattern.MatchString(message)

	// A question without its own artikelnummer usually refers to the product
	// discussed before; pull its number out of the recent history.
	searchQuery := message
	isFollowup := false
	if !hasArtikelnummer && len(req.History) > 0 && containsAnyKeyword(lower, s.keywords(domain.PromptFollowupKeywords)) {
		if previous := lastArtikelnummer(req.History, historyScanWindow); previous != "" {
			isFollowup = true
			hasArtikelnummer = true
			searchQuery = previous
		}
	}

	wantsPDFDetails := containsAnyKeyword(lower, s.keywords(domain.PromptPDFDetailKeywords))
	wantsOverview := containsAnyKeyword(lower, s.keywords(domain.PromptVektorTextKeywords))
	if isFollowup {
		wantsPDFDetails = true // follow-ups ask for detail on a known product
	}

	products, err := s.search.SmartSearch(ctx, searchQuery, domain.SearchOptions{
		Limit:    s.maxResults,
		MinScore: defaultSemanticMinScore,
	})
	if err != nil {
		// A chat turn can still be answered without catalog context.
		log.Printf("[CHAT] product search failed: %v", err)
		products = nil
	}

	contextMode, productContext, contextHint := s.selectContext(products, hasArtikelnummer, wantsPDFDetails, wantsOverview)
	systemPrompt := s.buildSystemPrompt(productContext, contextHint, askForArtikelnummer(products))

	tail := historyTail(req.History, historyPromptWindow)
	messages := make([]domain.ChatMessage, 0, len(tail)+1)
	messages = append(messages, tail...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})

	content, err := s.chat.Complete(ctx, domain.CompletionRequest{
		Model:       s.chatModel,
		System:      systemPrompt,
		Messages:    messages,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletionFailure, err)
	}

	response := content
	if !hasArtikelnummer {
		if reminder := s.prompt(domain.PromptArtikelnummerReminder); reminder != "" {
			response = reminder + "\n\n" + response
		}
	}

	if s.enableDebugLogging {
		log.Printf("[CHAT] mode=%s followup=%v products=%d", contextMode, isFollowup, len(products))
	}

	return &domain.ChatResponse{
		Response: response,
		Products: products,
		Model:    s.chatModel,
	}, nil
}

// selectContext picks the context mode for the turn. The structured overview
// needs exactly one resolved product; detail questions need an artikelnummer
// so the datasheet texts belong to the product the customer means.
func (s *AdvisorService) selectContext(products []domain.Product, hasArtikelnummer, wantsPDFDetails, wantsOverview bool) (mode, productContext, hint string) {
	switch {
	case wantsOverview && hasArtikelnummer && len(products) == 1:
		return contextModeVektorText, s.contexts.Detailed(products, true), s.prompt(domain.PromptContextOverview)
	case wantsPDFDetails && hasArtikelnummer:
		return contextModePDFDetails, s.contexts.Detailed(products, false), s.prompt(domain.PromptContextPDFDetails)
	default:
		return contextModeStandard, s.contexts.Standard(products), s.prompt(domain.PromptContextStandard)
	}
}

func (s *AdvisorService) buildSystemPrompt(productContext, contextHint string, askForNummer bool) string {
	var b strings.Builder
	b.WriteString(s.prompt(domain.PromptChatSystem))
	b.WriteString("\n\nAKTUELLE PRODUKTDATEN:\n")
	b.WriteString(productContext)
	if askForNummer {
		if hint := s.prompt(domain.PromptArtikelnummerHint); hint != "" {
			b.WriteString("\n\n" + hint)
		}
	}
	if contextHint != "" {
		b.WriteString("\n\n" + contextHint)
	}
	b.WriteString("\n\nVerwende diese Produktinformationen, um die Frage des Kunden zu beantworten.")
	return b.String()
}

// prompt reads one prompt text, tolerating a missing entry
func (s *AdvisorService) prompt(id string) string {
	return promptOr(s.prompts, id, "")
}

// promptOr reads one prompt text from the store and falls back when the
// entry is missing or blank
func promptOr(store domain.PromptStore, id, fallback string) string {
	text, err := store.Prompt(id)
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}

// keywords reads one keyword list, tolerating a missing entry
func (s *AdvisorService) keywords(id string) []string {
	keywords, err := s.prompts.Keywords(id)
	if err != nil {
		return nil
	}
	return keywords
}

// askForArtikelnummer reports whether the hits are ambiguous enough that the
// customer should be asked for the exact artikelnummer: several partial name
// matches and nothing exact.
func askForArtikelnummer(products []domain.Product) bool {
	exact := false
	partialNames := 0
	for _, p := range products {
		switch {
		case p.MatchType == domain.MatchArtikelnummer,
			p.MatchType == domain.MatchArtikelname && p.Score >= 1.0:
			exact = true
		case p.MatchType == domain.MatchArtikelname:
			partialNames++
		}
	}
	return partialNames > 1 && !exact
}

func containsAnyKeyword(lower string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// lastArtikelnummer returns the artikelnummer mentioned most recently within
// the newest window messages, or ""
func lastArtikelnummer(history []domain.ChatMessage, window int) string {
	tail := historyTail(history, window)
	for i := len(tail) - 1; i >= 0; i-- {
		msg := tail[i]
		if msg.Role != domain.RoleUser && msg.Role != domain.RoleAssistant {
			continue
		}
		if found := artikelnummerExactPattern.FindAllString(msg.Content, -1); len(found) > 0 {
			return found[len(found)-1]
		}
	}
	return ""
}

func historyTail(history []domain.ChatMessage, n int) []domain.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
