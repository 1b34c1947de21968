package domain

// ChatMessage represents one turn of an advisory conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation roles accepted in history payloads.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest represents an advisory chat request
type ChatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []ChatMessage `json:"history,omitempty"`
}

// ChatResponse represents the answer to one chat turn, including the
// products that were matched while building the context. Error is set when
// the turn failed and Response carries the friendly error text instead of
// an advisory answer.
type ChatResponse struct {
	Response string    `json:"response"`
	Products []Product `json:"products"`
	Model    string    `json:"model,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// CompletionRequest represents one call to the completion backend
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// CompareRequest represents a product comparison request
type CompareRequest struct {
	Artikelnummern []string `json:"artikelnummern" binding:"required"`
}

// CompareResponse represents the outcome of a product comparison. Structured
// is nil when the narrative could not be decomposed; Rendered then carries
// the narrative as display markup instead.
type CompareResponse struct {
	Response   string            `json:"response"`
	Structured *ComparisonResult `json:"structured,omitempty"`
	Rendered   string            `json:"rendered,omitempty"`
	Products   []Product         `json:"products"`
	Model      string            `json:"model,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// StorageRequest represents a storage sizing request for a PV system
type StorageRequest struct {
	PVLeistungKwp     float64 `json:"pv_leistung_kwp" binding:"required"`
	StromverbrauchKwh float64 `json:"stromverbrauch_kwh,omitempty"` // per year
	AutarkieWunsch    float64 `json:"autarkie_wunsch,omitempty"`    // percent
}

// StorageResponse represents a storage recommendation
type StorageResponse struct {
	Response        string    `json:"response"`
	Products        []Product `json:"products"`
	Recommendations []string  `json:"recommendations"`
	Error           string    `json:"error,omitempty"`
}
