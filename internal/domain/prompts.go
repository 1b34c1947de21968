package domain

import "encoding/json"

// PromptFile is the on-disk layout of the prompt collection
type PromptFile struct {
	Version     string           `json:"version,omitempty"`
	LastUpdated string           `json:"last_updated,omitempty"`
	Categories  []PromptCategory `json:"categories"`
}

// PromptCategory groups related prompts for the editor
type PromptCategory struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Prompts []Prompt `json:"prompts"`
}

// Prompt is one editable template or keyword list
type Prompt struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Content     PromptContent `json:"content"`
	Editable    *bool         `json:"editable,omitempty"` // nil counts as editable
}

// IsEditable reports whether the prompt may be changed through the API
func (p Prompt) IsEditable() bool {
	return p.Editable == nil || *p.Editable
}

// PromptContent holds either a template string or a keyword list. The file
// format allows both shapes under the same "content" key.
type PromptContent struct {
	Text string
	List []string
}

// UnmarshalJSON accepts a JSON string or a JSON array of strings.
func (c *PromptContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.List = nil
		return nil
	}
	var l []string
	if err := json.Unmarshal(data, &l); err != nil {
		return err
	}
	c.List = l
	c.Text = ""
	return nil
}

// MarshalJSON writes back the same shape that was read.
func (c PromptContent) MarshalJSON() ([]byte, error) {
	if c.List != nil {
		return json.Marshal(c.List)
	}
	return json.Marshal(c.Text)
}

// IsList reports whether the content is a keyword list
func (c PromptContent) IsList() bool {
	return c.List != nil
}

// Well-known prompt ids. The store falls back to built-in texts when the
// file lacks one of these.
const (
	PromptChatSystem            = "chat_system_prompt"
	PromptCompareSystem         = "compare_system_prompt"
	PromptStorageRecommendation = "storage_recommendation_prompt"
	PromptContextStandard       = "context_standard"
	PromptContextPDFDetails     = "context_pdf_details"
	PromptContextOverview       = "context_overview"
	PromptWelcomeMessage        = "welcome_message"
	PromptArtikelnummerReminder = "artikelnummer_reminder"
	PromptArtikelnummerHint     = "artikelnummer_hint"
	PromptErrorGeneral          = "error_general"
	PromptErrorCompare          = "error_compare"
	PromptCompareMinimum        = "compare_minimum_products"
	PromptPDFDetailKeywords     = "pdf_detail_keywords"
	PromptVektorTextKeywords    = "vektor_text_keywords"
	PromptFollowupKeywords      = "followup_keywords"
)
