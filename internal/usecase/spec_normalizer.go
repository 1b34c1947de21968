package usecase

import (
	"log"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/solarchat/backend/internal/domain"
)

// SpecNormalizer turns raw catalog payloads into display-ready
// specification rows. Extraction never fails: malformed or absent values
// are skipped and an unusable payload yields an empty result.
type SpecNormalizer struct {
	enableDebugLogging bool
}

// NewSpecNormalizer creates a new spec normalizer
func NewSpecNormalizer(enableDebugLogging bool) *SpecNormalizer {
	return &SpecNormalizer{
		enableDebugLogging: enableDebugLogging,
	}
}

// Priorities of the extraction bands. Higher sorts first; the set band
// stays on top so composite products lead with their set identity.
const (
	prioSetType        = 100
	prioSetComponents  = 99
	prioSetSummary     = 98
	prioSetDetailStart = 97
	prioCategory       = 10
	prioUnknownBlock   = 8
	prioTechnical      = 5
	prioFeatures       = 3
	prioSafety         = 2
	prioDimensions     = 1
	prioMetadata       = 0
)

// Specification blocks consumed by dedicated extraction steps; the
// unknown-block fallback must not walk these again.
var reservedSpecBlocks = map[string]bool{
	"set_spezifikationen":         true,
	"komponenten_spezifikationen": true,
	"technische_spezifikationen":  true,
}

type addEntryFunc func(label, value string, priority int)

// Extract builds the specification rows for one product payload. Labels
// are unique per call (case-insensitive, first writer wins) and the result
// is ordered by priority descending, then label ascending under German
// collation.
func (n *SpecNormalizer) Extract(product domain.Product, payload map[string]any) []domain.SpecEntry {
	if len(payload) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var entries []domain.SpecEntry
	add := func(label, value string, priority int) {
		label = strings.TrimSpace(label)
		value = strings.TrimSpace(value)
		if label == "" || value == "" {
			return
		}
		key := strings.ToLower(label)
		if seen[key] {
			return
		}
		seen[key] = true
		entries = append(entries, domain.SpecEntry{Label: label, Value: value, Priority: priority})
	}

	produkttyp := stringField(payload, "produkttyp")
	if produkttyp == "" {
		produkttyp = product.Produkttyp
	}
	category := ParseCategory(produkttyp)

	n.extractSet(payload, add)
	categoryKey := n.extractCategoryBlock(category, produkttyp, payload, add)
	n.extractUnknownBlocks(categoryKey, payload, add)
	n.extractMapBlock(payload, "technische_spezifikationen", prioTechnical, add)
	n.extractFeatures(payload, add)
	n.extractSafety(payload, add)
	n.extractDimensions(payload, add)
	n.extractMetadata(payload, add)

	sortSpecEntries(entries)

	if n.enableDebugLogging {
		log.Printf("[SPECS] %s: %d entries (produkttyp=%q, category=%s)",
			product.Artikelnummer, len(entries), produkttyp, category)
	}
	return entries
}

// extractSet emits the high-priority rows for composite products. A payload
// counts as a set when it carries ist_set or any of the set fields.
func (n *SpecNormalizer) extractSet(payload map[string]any, add addEntryFunc) {
	setSpecs, hasSetSpecs := mapField(payload, "set_spezifikationen")
	setTotal, hasSetTotal := mapField(payload, "set_gesamt")
	components, hasComponents := mapField(payload, "komponenten_spezifikationen")
	detail := stringField(payload, "set_typ_detail")
	types := sequenceField(payload, "erkannte_komponenten_typen")

	if !boolField(payload, "ist_set") && !hasSetSpecs && !hasSetTotal && !hasComponents &&
		detail == "" && len(types) == 0 {
		return
	}

	if detail != "" {
		add("Set-Typ", detail, prioSetType)
	}

	if len(types) > 0 {
		add("Enthaltene Komponenten", strings.Join(types, ", "), prioSetComponents)
	}

	// set_gesamt carries the aggregated system values; older payloads only
	// have set_spezifikationen
	summary := setTotal
	if !hasSetTotal {
		summary = setSpecs
	}
	if len(summary) > 0 {
		if value, ok := flattenMapping(summary); ok {
			add("Set-Übersicht", value, prioSetSummary)
		}
	}

	if hasComponents {
		prio := prioSetDetailStart
		for _, name := range sortedKeys(components) {
			sub, ok := components[name].(map[string]any)
			if !ok || len(sub) == 0 {
				continue
			}
			value, ok := flattenMapping(sub)
			if !ok {
				continue
			}
			add(deriveLabel(name), value, prio)
			prio--
		}
	}
}

// extractCategoryBlock walks the produkttyp-specific specification block
// with the category's label table. It returns the payload key it consumed
// so the unknown-block fallback can skip it.
func (n *SpecNormalizer) extractCategoryBlock(category Category, produkttyp string, payload map[string]any, add addEntryFunc) string {
	var candidates []string
	if t := strings.ToLower(strings.TrimSpace(produkttyp)); t != "" {
		candidates = append(candidates, t+"_spezifikationen")
	}
	if key := category.String() + "_spezifikationen"; len(candidates) == 0 || candidates[0] != key {
		candidates = append(candidates, key)
	}

	for _, blockKey := range candidates {
		specs, ok := mapField(payload, blockKey)
		if !ok {
			continue
		}
		labels := category.labelTable()
		for _, key := range sortedKeys(specs) {
			value, ok := formatSpecValue(key, specs[key])
			if !ok {
				continue
			}
			label := labels[key]
			if label == "" {
				label = deriveLabel(key)
			}
			add(label, value, prioCategory)
		}
		return blockKey
	}
	return ""
}

// extractUnknownBlocks picks up specification blocks of categories the
// payload carries beyond its own produkttyp.
func (n *SpecNormalizer) extractUnknownBlocks(categoryKey string, payload map[string]any, add addEntryFunc) {
	for _, key := range sortedKeys(payload) {
		if !strings.HasSuffix(key, "_spezifikationen") {
			continue
		}
		if key == categoryKey || reservedSpecBlocks[key] {
			continue
		}
		specs, ok := mapField(payload, key)
		if !ok {
			continue
		}
		for _, k := range sortedKeys(specs) {
			value, ok := formatSpecValue(k, specs[k])
			if !ok {
				continue
			}
			add(deriveLabel(k), value, prioUnknownBlock)
		}
	}
}

// extractMapBlock walks one flat specification block with derived labels.
func (n *SpecNormalizer) extractMapBlock(payload map[string]any, blockKey string, priority int, add addEntryFunc) {
	specs, ok := mapField(payload, blockKey)
	if !ok {
		return
	}
	for _, key := range sortedKeys(specs) {
		value, ok := formatSpecValue(key, specs[key])
		if !ok {
			continue
		}
		add(deriveLabel(key), value, priority)
	}
}

// extractFeatures emits the eigenschaften block: flag mappings become one
// Ja/Nein row per flag, plain lists collapse into a single row.
func (n *SpecNormalizer) extractFeatures(payload map[string]any, add addEntryFunc) {
	switch v := payload["eigenschaften"].(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			value, ok := formatSpecValue(key, v[key])
			if !ok {
				continue
			}
			add(deriveLabel(key), value, prioFeatures)
		}
	case []any:
		if value, ok := joinSequence(v); ok {
			add("Eigenschaften", value, prioFeatures)
		}
	}
}

// extractSafety emits the sicherheit block plus the flat certification
// fields.
func (n *SpecNormalizer) extractSafety(payload map[string]any, add addEntryFunc) {
	n.extractMapBlock(payload, "sicherheit", prioSafety, add)

	safetyFields := []struct {
		key   string
		label string
	}{
		{"ip_schutzklasse", "IP-Schutzklasse"},
		{"zertifikate", "Zertifikate"},
		{"normen", "Normen"},
	}
	for _, f := range safetyFields {
		if value, ok := formatSpecValue(f.key, payload[f.key]); ok {
			add(f.label, value, prioSafety)
		}
	}
}

// extractDimensions emits the flat shipping dimension and mass fields.
func (n *SpecNormalizer) extractDimensions(payload map[string]any, add addEntryFunc) {
	dimensionFields := []struct {
		key   string
		label string
	}{
		{"Artikelgewicht_kg", "Artikelgewicht (kg)"},
		{"Versandgewicht_kg", "Versandgewicht (kg)"},
		{"Laenge_cm", "Länge (cm)"},
		{"Breite_cm", "Breite (cm)"},
		{"Hoehe_cm", "Höhe (cm)"},
	}
	for _, f := range dimensionFields {
		raw, ok := payload[f.key]
		if !ok {
			// the indexer is inconsistent about casing on these
			raw, ok = payload[strings.ToLower(f.key)]
		}
		if !ok {
			continue
		}
		if value, ok := formatSpecValue(f.key, raw); ok {
			add(f.label, value, prioDimensions)
		}
	}
}

// extractMetadata emits the catalog bookkeeping fields.
func (n *SpecNormalizer) extractMetadata(payload map[string]any, add addEntryFunc) {
	metadataFields := []struct {
		key   string
		label string
	}{
		{"qualitaet", "Datenqualität"},
		{"vollstaendig", "Datensatz vollständig"},
		{"pdf_count", "Dokumente (PDF)"},
	}
	for _, f := range metadataFields {
		if value, ok := formatSpecValue(f.key, payload[f.key]); ok {
			add(f.label, value, prioMetadata)
		}
	}
}

// sortSpecEntries orders rows by priority (high first), then label under
// German collation. The collator is built per call; collate.Collator is
// not safe for concurrent use.
func sortSpecEntries(entries []domain.SpecEntry) {
	c := collate.New(language.German)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return c.CompareString(entries[i].Label, entries[j].Label) < 0
	})
}

// Payload accessors. All of them tolerate missing keys and wrong types.

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return strings.TrimSpace(s)
}

func boolField(payload map[string]any, key string) bool {
	switch v := payload[key].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "ja" || s == "1"
	default:
		if f, ok := toNumber(v); ok {
			return f != 0
		}
		return false
	}
}

func mapField(payload map[string]any, key string) (map[string]any, bool) {
	m, ok := payload[key].(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	return m, true
}

func sequenceField(payload map[string]any, key string) []string {
	var out []string
	switch v := payload[key].(type) {
	case []any:
		for _, el := range v {
			if s, ok := scalarWord(el); ok {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
