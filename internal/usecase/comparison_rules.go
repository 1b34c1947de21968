package usecase

import "strings"

// sectionTarget names the bucket a heading routes the following narrative
// lines into.
type sectionTarget int

const (
	targetNone sectionTarget = iota
	targetUseCases
	targetShortDescription
	targetRecommendation
	targetGeneral
	targetTechnical
	targetPriceValue
	targetWhenProduct1
	targetWhenProduct2
	targetAdvantages
	targetDisadvantages
	targetNotes
)

// ComparisonRules decides which bucket a heading line selects. Both rule
// sets work on the lowercased heading text; the first matching rule wins.
// Implementations are consulted read-only and must be safe for concurrent
// use.
type ComparisonRules interface {
	ProductHeading(lowerHeading string) (sectionTarget, bool)
	ComparisonHeading(lowerHeading string) (sectionTarget, bool)
}

// headingRule routes headings containing any of its keywords to a target.
type headingRule struct {
	keywords []string
	target   sectionTarget
}

// keywordRules is the default rule table for the German narrative format
// the compare prompt requests.
type keywordRules struct {
	product    []headingRule
	comparison []headingRule
}

// DefaultComparisonRules returns the built-in German rule table.
func DefaultComparisonRules() ComparisonRules {
	return &keywordRules{
		product: []headingRule{
			{[]string{"einsatzzweck", "einsatzbereich", "anwendungsfall", "anwendung", "geeignet für", "geeignet fuer"}, targetUseCases},
			{[]string{"kurzbeschreibung", "beschreibung", "zusammenfassung", "überblick", "ueberblick"}, targetShortDescription},
			{[]string{"empfehlung", "fazit"}, targetRecommendation},
		},
		comparison: []headingRule{
			// the when-better rules stay on top so "Wann ist Produkt 1
			// besser" never falls through to the general bucket
			{[]string{"wann ist produkt 1", "produkt 1 besser"}, targetWhenProduct1},
			{[]string{"wann ist produkt 2", "produkt 2 besser"}, targetWhenProduct2},
			{[]string{"allgemeiner vergleich", "gesamtvergleich", "allgemein"}, targetGeneral},
			{[]string{"technische unterschiede", "technischer vergleich", "technisch", "unterschiede"}, targetTechnical},
			{[]string{"preis-leistung", "preis", "wirtschaftlichkeit", "kosten"}, targetPriceValue},
			{[]string{"vorteile", "stärken", "staerken"}, targetAdvantages},
			{[]string{"nachteile", "schwächen", "schwaechen"}, targetDisadvantages},
			{[]string{"sonstige", "hinweise", "anmerkungen"}, targetNotes},
		},
	}
}

func (r *keywordRules) ProductHeading(lowerHeading string) (sectionTarget, bool) {
	return matchHeadingRules(r.product, lowerHeading)
}

func (r *keywordRules) ComparisonHeading(lowerHeading string) (sectionTarget, bool) {
	return matchHeadingRules(r.comparison, lowerHeading)
}

func matchHeadingRules(rules []headingRule, lowerHeading string) (sectionTarget, bool) {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowerHeading, kw) {
				return rule.target, true
			}
		}
	}
	return targetNone, false
}
