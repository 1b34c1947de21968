package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/solarchat/backend/internal/domain"
	"github.com/solarchat/backend/internal/usecase"
)

// Fallback error texts used when the prompt file lacks the error messages.
const (
	errorGeneralFallback = "Ein Fehler ist aufgetreten: {error}"
	errorCompareFallback = "Beim Vergleich ist ein Fehler aufgetreten: {error}"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search   *usecase.SearchService
	advisor  *usecase.AdvisorService
	compare  *usecase.CompareService
	storage  *usecase.StorageService
	specs    *usecase.SpecNormalizer
	platform domain.PlatformClient
	prompts  domain.PromptStore
}

// NewHandler creates a new HTTP handler
func NewHandler(
	search *usecase.SearchService,
	advisor *usecase.AdvisorService,
	compare *usecase.CompareService,
	storage *usecase.StorageService,
	specs *usecase.SpecNormalizer,
	platform domain.PlatformClient,
	prompts domain.PromptStore,
) *Handler {
	return &Handler{
		search:   search,
		advisor:  advisor,
		compare:  compare,
		storage:  storage,
		specs:    specs,
		platform: platform,
		prompts:  prompts,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "solarchat-backend",
		"version": "1.0.0",
	})
}

// Chat handles one advisory chat turn. Completion failures are answered as
// a normal chat reply carrying the friendly error text, so the frontend can
// render them like any other assistant message.
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.advisor.Chat(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, domain.ChatResponse{
			Response: h.errorText(domain.PromptErrorGeneral, errorGeneralFallback, err),
			Products: []domain.Product{},
			Error:    err.Error(),
		})
		return
	}

	resp.Products = nonNilProducts(resp.Products)
	c.JSON(http.StatusOK, resp)
}

// searchQuery mirrors the query-string form of the search endpoint.
type searchQuery struct {
	Query      string  `form:"query"`
	Limit      int     `form:"limit,default=5"`
	Produkttyp string  `form:"produkttyp"`
	MinScore   float64 `form:"min_score,default=0.3"`
	Smart      *bool   `form:"smart"`
}

// SearchProducts runs the product search. GET takes query parameters, POST a
// JSON body; both default to the smart cascade unless smart=false.
func (h *Handler) SearchProducts(c *gin.Context) {
	// Fields absent from a JSON body keep the pre-filled defaults.
	req := domain.SearchRequest{Limit: 5, MinScore: 0.3}
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		var q searchQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req = domain.SearchRequest{
			Query:      q.Query,
			Limit:      q.Limit,
			Produkttyp: q.Produkttyp,
			MinScore:   q.MinScore,
			Smart:      q.Smart,
		}
	}

	smart := req.Smart == nil || *req.Smart
	opts := domain.SearchOptions{
		Limit:      req.Limit,
		Produkttyp: req.Produkttyp,
		MinScore:   req.MinScore,
	}

	var (
		products []domain.Product
		err      error
	)
	if smart {
		products, err = h.search.SmartSearch(c.Request.Context(), req.Query, opts)
	} else {
		products, err = h.search.Search(c.Request.Context(), req.Query, opts)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":        req.Query,
		"count":        len(products),
		"smart_search": smart,
		"products":     nonNilProducts(products),
	})
}

// listQuery mirrors the paging parameters of the product listing.
type listQuery struct {
	Limit  int `form:"limit,default=10"`
	Offset int `form:"offset,default=0"`
}

// ListProducts pages through the catalog, mainly for debugging and editors
func (h *Handler) ListProducts(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := h.search.ListProducts(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"offset":   q.Offset,
		"products": nonNilProducts(products),
	})
}

// GetProduct returns one product by artikelnummer, including its normalized
// specification rows for the detail view.
func (h *Handler) GetProduct(c *gin.Context) {
	artikelnummer := c.Param("artikelnummer")

	product, err := h.search.GetProduct(c.Request.Context(), artikelnummer)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": fmt.Sprintf("Produkt mit Artikelnummer %s nicht gefunden", artikelnummer),
			})
			return
		}
		respondError(c, err)
		return
	}

	specs := h.specs.Extract(*product, product.Payload)
	if specs == nil {
		specs = []domain.SpecEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
		"specs":   specs,
	})
}

// GetProductPricing returns the price data for one product. Prices are not
// critical for the product views, so failures are reported in the payload
// instead of an error status.
func (h *Handler) GetProductPricing(c *gin.Context) {
	artikelnummer := c.Param("artikelnummer")

	pricing, err := h.platform.GetPricing(c.Request.Context(), artikelnummer)
	if err != nil {
		c.JSON(http.StatusOK, domain.PricingResponse{
			Artikelnummer: artikelnummer,
			Error:         err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, domain.PricingResponse{
		Success:       true,
		Artikelnummer: artikelnummer,
		Pricing:       pricing,
	})
}

// CompareProducts builds the comparison for the requested artikelnummern.
// Like Chat, completion failures come back as a renderable reply.
func (h *Handler) CompareProducts(c *gin.Context) {
	var req domain.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.compare.Compare(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, domain.CompareResponse{
			Response: h.errorText(domain.PromptErrorCompare, errorCompareFallback, err),
			Products: []domain.Product{},
			Error:    err.Error(),
		})
		return
	}

	resp.Products = nonNilProducts(resp.Products)
	c.JSON(http.StatusOK, resp)
}

// StorageRecommendation recommends storage systems for a PV installation
func (h *Handler) StorageRecommendation(c *gin.Context) {
	var req domain.StorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.storage.Recommend(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, domain.StorageResponse{
			Response: h.errorText(domain.PromptErrorGeneral, errorGeneralFallback, err),
			Products: []domain.Product{},
			Error:    err.Error(),
		})
		return
	}

	resp.Products = nonNilProducts(resp.Products)
	c.JSON(http.StatusOK, resp)
}

// ListPrompts returns the full prompt file, hierarchically by category.
// Used by the prompt editor in the frontend.
func (h *Handler) ListPrompts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.prompts.File(),
	})
}

// GetPrompt returns a single prompt by id
func (h *Handler) GetPrompt(c *gin.Context) {
	id := c.Param("id")

	prompt, ok := findPrompt(h.prompts.File(), id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("Prompt '%s' nicht gefunden", id),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"prompt":  prompt,
	})
}

// promptUpdateRequest is the body of a prompt update
type promptUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdatePrompt changes the content of an editable prompt. The store writes
// a backup before saving, and the services read through the store, so the
// new text is live for the next request without a reload.
func (h *Handler) UpdatePrompt(c *gin.Context) {
	id := c.Param("id")

	var req promptUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.prompts.Update(id, req.Content); err != nil {
		switch {
		case errors.Is(err, domain.ErrPromptNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": fmt.Sprintf("Prompt '%s' nicht gefunden", id),
			})
		case errors.Is(err, domain.ErrPromptReadOnly):
			c.JSON(http.StatusForbidden, gin.H{
				"error": fmt.Sprintf("Prompt '%s' ist nicht bearbeitbar (Keyword-Liste)", id),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Fehler beim Speichern des Prompts: " + err.Error(),
			})
		}
		return
	}

	prompt, _ := findPrompt(h.prompts.File(), id)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Prompt '%s' erfolgreich aktualisiert", id),
		"prompt":  prompt,
	})
}

// ReloadPrompts re-reads the prompt file, for manual edits on disk
func (h *Handler) ReloadPrompts(c *gin.Context) {
	if err := h.prompts.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Fehler beim Laden der Prompts: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Prompts erfolgreich neu geladen",
	})
}

// errorText loads a friendly error message from the prompt store and fills
// in the failure detail.
func (h *Handler) errorText(id, fallback string, err error) string {
	text, perr := h.prompts.Prompt(id)
	if perr != nil || strings.TrimSpace(text) == "" {
		text = fallback
	}
	return strings.ReplaceAll(text, "{error}", err.Error())
}

// respondError maps domain sentinels to HTTP statuses
func respondError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), gin.H{"error": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrPromptNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPromptReadOnly):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrCatalogUnavailable),
		errors.Is(err, domain.ErrPlatformUnavailable),
		errors.Is(err, domain.ErrCompletionFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// findPrompt looks a prompt up in the hierarchical file
func findPrompt(file domain.PromptFile, id string) (domain.Prompt, bool) {
	for _, category := range file.Categories {
		for _, prompt := range category.Prompts {
			if prompt.ID == id {
				return prompt, true
			}
		}
	}
	return domain.Prompt{}, false
}

// nonNilProducts keeps empty results as [] on the wire, not null
func nonNilProducts(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
