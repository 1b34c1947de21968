package domain

// Product represents one catalog article as returned by the product index.
// The typed fields mirror the most common payload keys; Payload carries the
// full indexed document for spec extraction.
type Product struct {
	Artikelnummer    string         `json:"artikelnummer"`
	Artikelname      string         `json:"artikelname"`
	Hersteller       string         `json:"hersteller,omitempty"`
	Produkttyp       string         `json:"produkttyp,omitempty"`
	Kategoriepfad    string         `json:"kategoriepfad,omitempty"`
	Kurzbeschreibung string         `json:"kurzbeschreibung,omitempty"`
	Beschreibung     string         `json:"beschreibung,omitempty"`
	Score            float64        `json:"score,omitempty"`
	MatchType        string         `json:"matchType,omitempty"`
	Payload          map[string]any `json:"payload,omitempty"`
	Pricing          *Pricing       `json:"pricing,omitempty"`
}

// Match types reported by the search cascade, ordered by confidence.
const (
	MatchArtikelnummer        = "artikelnummer"
	MatchArtikelnummerPartial = "artikelnummer_teilweise"
	MatchHersteller           = "hersteller"
	MatchArtikelname          = "artikelname"
	MatchSemantic             = "semantisch"
)

// SpecEntry is one display-ready specification row for a product. Labels are
// unique (case-insensitive) within one extraction; rows sort by priority
// descending, then label ascending under German collation.
type SpecEntry struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Priority int    `json:"priority"`
}

// SearchRequest represents a product search request
type SearchRequest struct {
	Query      string  `json:"query" binding:"required"`
	Limit      int     `json:"limit,omitempty"`
	Produkttyp string  `json:"produkttyp,omitempty"`
	MinScore   float64 `json:"min_score,omitempty"`
	Smart      *bool   `json:"smart,omitempty"` // nil means smart search (the default)
}

// SearchOptions narrows a semantic catalog query
type SearchOptions struct {
	Limit      int
	Produkttyp string
	MinScore   float64
}
