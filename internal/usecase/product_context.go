package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/solarchat/backend/internal/domain"
)

// Limits on what a single product may contribute to a completion prompt.
// They keep the assembled context inside the model's token window.
const (
	maxContextKurzbeschreibung = 200
	maxContextBeschreibung     = 3000
	maxCompareBeschreibung     = 500
	maxContextSpecLines        = 8
	maxContextPDFDocs          = 2
	maxContextPDFRunes         = 5000
	maxContextVektorRunes      = 12000
	maxContextCompatNumbers    = 5
	maxDetailCompatNumbers     = 10
	maxContextComponents       = 5
)

const noProductsFound = "Keine passenden Produkte gefunden."

// Patterns for stripping indexer HTML out of description fields
var (
	htmlTagPattern       = regexp.MustCompile(`<[^>]+>`)
	htmlEntityPattern    = regexp.MustCompile(`&[a-z]+;`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

// ProductContextFormatter renders catalog hits into the German context
// blocks embedded in completion prompts. Standard keeps products compact,
// Detailed pulls in datasheet texts, WithPricing adds the price lines the
// comparison prompt needs.
type ProductContextFormatter struct {
	specs *SpecNormalizer
}

// NewProductContextFormatter creates a formatter on top of the given
// spec normalizer
func NewProductContextFormatter(specs *SpecNormalizer) *ProductContextFormatter {
	if specs == nil {
		specs = NewSpecNormalizer(false)
	}
	return &ProductContextFormatter{specs: specs}
}

// Standard renders the compact context block: identity lines, the short
// description and the highest-ranked spec rows.
func (f *ProductContextFormatter) Standard(products []domain.Product) string {
	if len(products) == 0 {
		return noProductsFound
	}

	parts := make([]string, 0, len(products))
	for i, p := range products {
		var b strings.Builder
		fmt.Fprintf(&b, "Produkt %d:\n", i+1)
		fmt.Fprintf(&b, "- Artikelnummer: %s\n", orNA(p.Artikelnummer))
		fmt.Fprintf(&b, "- Name: %s\n", orNA(p.Artikelname))
		fmt.Fprintf(&b, "- Produkttyp: %s\n", orNA(p.Produkttyp))
		fmt.Fprintf(&b, "- Hersteller: %s\n", orNA(p.Hersteller))
		fmt.Fprintf(&b, "- Kategorie: %s\n", orNA(p.Kategoriepfad))
		fmt.Fprintf(&b, "- Ähnlichkeits-Score: %.2f\n", p.Score)

		if kurz := strings.TrimSpace(p.Kurzbeschreibung); kurz != "" {
			fmt.Fprintf(&b, "- Kurzbeschreibung: %s\n", truncateRunes(kurz, maxContextKurzbeschreibung))
		}
		for _, entry := range topSpecEntries(f.specs.Extract(p, p.Payload), maxContextSpecLines) {
			fmt.Fprintf(&b, "- %s: %s\n", entry.Label, entry.Value)
		}
		f.writeCompatibility(&b, p.Payload)

		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// Detailed renders the extended context block for datasheet questions. With
// useVektorText the indexer's structured overview text replaces the single
// fields when the payload carries one.
func (f *ProductContextFormatter) Detailed(products []domain.Product, useVektorText bool) string {
	if len(products) == 0 {
		return noProductsFound
	}

	border := strings.Repeat("═", 67)
	parts := make([]string, 0, len(products))
	for i, p := range products {
		var b strings.Builder
		b.WriteString(border + "\n")
		fmt.Fprintf(&b, "PRODUKT %d: %s\n", i+1, orNA(p.Artikelname))
		b.WriteString(border + "\n")
		fmt.Fprintf(&b, "📦 Artikelnummer: %s\n", orNA(p.Artikelnummer))
		fmt.Fprintf(&b, "🏭 Hersteller: %s\n", orNA(p.Hersteller))
		fmt.Fprintf(&b, "🏷️ Produkttyp: %s\n", orNA(p.Produkttyp))
		fmt.Fprintf(&b, "📁 Kategorie: %s\n", orNA(p.Kategoriepfad))

		vektor := ""
		if useVektorText {
			vektor = stringField(p.Payload, "vektor_text")
		}
		if vektor != "" {
			if runeLen(vektor) > maxContextVektorRunes {
				vektor = truncateRunes(vektor, maxContextVektorRunes) + "\n\n[... weitere Details verfügbar ...]"
			}
			fmt.Fprintf(&b, "\n📊 VOLLSTÄNDIGE PRODUKTDATEN:\n%s\n", vektor)
		} else {
			f.writeFieldedDetails(&b, p)
		}

		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// WithPricing renders the comparison context: identity lines, price lines
// from the platform data and the top spec rows.
func (f *ProductContextFormatter) WithPricing(products []domain.Product) string {
	if len(products) == 0 {
		return noProductsFound
	}

	parts := make([]string, 0, len(products))
	for i, p := range products {
		var b strings.Builder
		fmt.Fprintf(&b, "PRODUKT %d:\n", i+1)
		fmt.Fprintf(&b, "- Artikelnummer: %s\n", orNA(p.Artikelnummer))
		fmt.Fprintf(&b, "- Name: %s\n", orNA(p.Artikelname))
		fmt.Fprintf(&b, "- Hersteller: %s\n", orNA(p.Hersteller))
		fmt.Fprintf(&b, "- Produkttyp: %s\n", orNA(p.Produkttyp))
		if kurz := strings.TrimSpace(p.Kurzbeschreibung); kurz != "" {
			fmt.Fprintf(&b, "- Kurzbeschreibung: %s\n", kurz)
		}
		b.WriteString(pricingLines(p.Pricing))
		if beschreibung := stripHTML(p.Beschreibung); beschreibung != "" {
			fmt.Fprintf(&b, "- Beschreibung: %s\n", truncateRunes(beschreibung, maxCompareBeschreibung))
		}
		for _, entry := range topSpecEntries(f.specs.Extract(p, p.Payload), maxContextSpecLines) {
			fmt.Fprintf(&b, "- %s: %s\n", entry.Label, entry.Value)
		}

		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// writeFieldedDetails combines description, the full spec table, datasheet
// excerpts and compatibility data into one block.
func (f *ProductContextFormatter) writeFieldedDetails(b *strings.Builder, p domain.Product) {
	if beschreibung := stripHTML(p.Beschreibung); beschreibung != "" {
		fmt.Fprintf(b, "\n📝 PRODUKTBESCHREIBUNG:\n%s\n", truncateRunes(beschreibung, maxContextBeschreibung))
	}

	if entries := f.specs.Extract(p, p.Payload); len(entries) > 0 {
		b.WriteString("\n📊 TECHNISCHE SPEZIFIKATIONEN:\n")
		for _, entry := range entries {
			fmt.Fprintf(b, "  • %s: %s\n", entry.Label, entry.Value)
		}
	}

	f.writePDFTexts(b, p.Payload)
	f.writeDetailCompatibility(b, p.Payload)
}

func (f *ProductContextFormatter) writePDFTexts(b *strings.Builder, payload map[string]any) {
	texte := sequenceField(payload, "pdf_texte")
	if len(texte) == 0 {
		return
	}

	separator := strings.Repeat("─", 50)
	fmt.Fprintf(b, "\n📄 DATENBLATT-INFORMATIONEN (%d Dokument(e)):\n%s\n", len(texte), separator)
	for i, text := range texte {
		if i == maxContextPDFDocs {
			break
		}
		preview := text
		if runeLen(preview) > maxContextPDFRunes {
			preview = truncateRunes(preview, maxContextPDFRunes) + "\n[... weitere Details im vollständigen Datenblatt ...]"
		}
		fmt.Fprintf(b, "\n📄 Dokument %d:\n%s\n%s\n", i+1, preview, separator)
	}
}

func (f *ProductContextFormatter) writeCompatibility(b *strings.Builder, payload map[string]any) {
	kompat, ok := mapField(payload, "kompatibilitaet")
	if !ok {
		return
	}

	if nummern := sequenceField(kompat, "kompatible_artikelnummern"); len(nummern) > 0 {
		shown := nummern
		if len(shown) > maxContextCompatNumbers {
			shown = shown[:maxContextCompatNumbers]
		}
		fmt.Fprintf(b, "- Kompatible Artikelnummern: %s", strings.Join(shown, ", "))
		if rest := len(nummern) - len(shown); rest > 0 {
			fmt.Fprintf(b, " (+ %d weitere)", rest)
		}
		b.WriteString("\n")
	}
	if typen := sequenceField(kompat, "kompatible_produkttypen"); len(typen) > 0 {
		fmt.Fprintf(b, "- Kompatible Produkttypen: %s\n", strings.Join(typen, ", "))
	}

	liste, ok := kompat["stueckliste"].([]any)
	if !ok || len(liste) == 0 {
		return
	}
	fmt.Fprintf(b, "- Stückliste (%d Komponenten):\n", len(liste))
	for i, raw := range liste {
		if i == maxContextComponents {
			fmt.Fprintf(b, "  ... und %d weitere Komponenten\n", len(liste)-maxContextComponents)
			break
		}
		komponente, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		menge := 1.0
		if n, ok := toNumber(komponente["menge"]); ok {
			menge = n
		}
		rolle := stringField(komponente, "rolle")
		if rolle == "" {
			rolle = "Komponente"
		}
		fmt.Fprintf(b, "  * %sx %s (%s)\n", formatNumber(menge), orNA(stringField(komponente, "artikelnummer")), rolle)
	}
}

func (f *ProductContextFormatter) writeDetailCompatibility(b *strings.Builder, payload map[string]any) {
	kompat, ok := mapField(payload, "kompatibilitaet")
	if !ok {
		return
	}

	b.WriteString("\n🔗 KOMPATIBILITÄT:\n")
	if nummern := sequenceField(kompat, "kompatible_artikelnummern"); len(nummern) > 0 {
		if len(nummern) > maxDetailCompatNumbers {
			nummern = nummern[:maxDetailCompatNumbers]
		}
		fmt.Fprintf(b, "  • Kompatible Produkte: %s\n", strings.Join(nummern, ", "))
	}
	if liste, ok := kompat["stueckliste"].([]any); ok && len(liste) > 0 {
		fmt.Fprintf(b, "  • Stückliste: %d Komponenten\n", len(liste))
	}
}

// pricingLines renders the price block for the comparison context. Offer
// prices show the strike price and the discount next to the current price.
func pricingLines(pricing *domain.Pricing) string {
	if pricing == nil {
		return "💰 PREISE: Nicht verfügbar\n"
	}

	var b strings.Builder
	b.WriteString("💰 PREISE:\n")

	verkauf := pricing.Verkaufspreis19Mwst
	einkauf := pricing.Einkaufspreis19Mwst
	if verkauf != nil {
		if pricing.UrsprungsPreis != nil && pricing.AktuellerRabatt > 0 {
			fmt.Fprintf(&b, "  - Verkaufspreis: ~~%.2f €~~ **%.2f €** (%s%% Rabatt)\n",
				*pricing.UrsprungsPreis, *verkauf, formatNumber(pricing.AktuellerRabatt))
		} else {
			fmt.Fprintf(&b, "  - Verkaufspreis: %.2f €\n", *verkauf)
		}
	}
	if einkauf != nil {
		fmt.Fprintf(&b, "  - Einkaufspreis: %.2f €\n", *einkauf)
	}
	if verkauf == nil && einkauf == nil {
		b.WriteString("  - Preise: Nicht verfügbar\n")
	}
	return b.String()
}

// stripHTML flattens an HTML description into plain text
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = htmlEntityPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(s, " "))
}

func topSpecEntries(entries []domain.SpecEntry, n int) []domain.SpecEntry {
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func orNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "N/A"
	}
	return s
}
