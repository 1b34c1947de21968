package domain

// Pricing represents the purchase and sales prices for one article as
// assembled from the platform API. Nil pointer fields mean the platform did
// not report the value; the JSON keys follow the platform's German naming.
type Pricing struct {
	EinkaufspreisNetto  *float64          `json:"einkaufspreis_netto,omitempty"`
	Einkaufspreis0Mwst  *float64          `json:"einkaufspreis_0_mwst,omitempty"`
	Einkaufspreis19Mwst *float64          `json:"einkaufspreis_19_mwst,omitempty"`
	VerkaufspreisNetto  *float64          `json:"verkaufspreis_netto,omitempty"`
	Verkaufspreis0Mwst  *float64          `json:"verkaufspreis_0_mwst,omitempty"`
	Verkaufspreis19Mwst *float64          `json:"verkaufspreis_19_mwst,omitempty"`
	AktuellerRabatt     float64           `json:"aktueller_rabatt"`
	UrsprungsPreis      *float64          `json:"ursprungs_preis,omitempty"`
	ReduzierterPreis    *float64          `json:"reduzierter_preis,omitempty"`
	IstAngebot          bool              `json:"ist_angebot"`
	MwstSatz            int               `json:"mwst_satz"`
	Stuecklistenpreise  []KomponentenPreis `json:"stuecklistenpreise"`
}

// KomponentenPreis represents the price of one BOM component
type KomponentenPreis struct {
	Artikelnummer      string   `json:"artikelnummer"`
	ArtikelID          int      `json:"artikel_id,omitempty"`
	Menge              float64  `json:"menge"`
	EinkaufspreisNetto *float64 `json:"einkaufspreis_netto,omitempty"`
	VerkaufspreisNetto *float64 `json:"verkaufspreis_netto,omitempty"`
}

// PricingResponse represents the pricing endpoint payload for one article
type PricingResponse struct {
	Success       bool     `json:"success"`
	Artikelnummer string   `json:"artikelnummer"`
	Pricing       *Pricing `json:"pricing,omitempty"`
	Error         string   `json:"error,omitempty"`
}
