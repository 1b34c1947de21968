package usecase

import (
	"log"
	"strings"

	"github.com/solarchat/backend/internal/domain"
)

// comparisonSectionDelimiter splits a narrative into its top-level
// sections. The compare prompt instructs the model to emit one H3 heading
// per section.
const comparisonSectionDelimiter = "###"

// StructurerLimits caps the structured output. The values are part of the
// wire contract with the frontend.
type StructurerLimits struct {
	ShortDescription int // runes
	Recommendation   int // runes
	Entry            int // runes per list entry
	ListItems        int // entries per list
	MinContent       int // floor below which a line is noise
}

// DefaultStructurerLimits returns the caps the frontend is laid out for.
func DefaultStructurerLimits() StructurerLimits {
	return StructurerLimits{
		ShortDescription: 300,
		Recommendation:   500,
		Entry:            1000,
		ListItems:        5,
		MinContent:       10,
	}
}

// ComparisonStructurerConfig holds optional configuration for the
// structurer. Zero values select the built-in rules and limits.
type ComparisonStructurerConfig struct {
	Rules              ComparisonRules
	Limits             StructurerLimits
	EnableDebugLogging bool
}

// ComparisonStructurer decomposes a comparison narrative into the
// per-product and shared buckets of a ComparisonResult. Structuring is
// heuristic: sections and headings it cannot place are dropped, and a
// result with nothing placed reports Empty so callers can fall back to
// the raw narrative.
type ComparisonStructurer struct {
	rules              ComparisonRules
	limits             StructurerLimits
	enableDebugLogging bool
}

// NewComparisonStructurer creates a new comparison structurer
func NewComparisonStructurer(cfg ComparisonStructurerConfig) *ComparisonStructurer {
	if cfg.Rules == nil {
		cfg.Rules = DefaultComparisonRules()
	}
	if cfg.Limits == (StructurerLimits{}) {
		cfg.Limits = DefaultStructurerLimits()
	}
	return &ComparisonStructurer{
		rules:              cfg.Rules,
		limits:             cfg.Limits,
		enableDebugLogging: cfg.EnableDebugLogging,
	}
}

// sectionOwner identifies who a narrative section talks about.
type sectionOwner int

const (
	ownerNone sectionOwner = iota
	ownerProduct1
	ownerProduct2
	ownerComparison
)

// Structure decomposes a narrative about the first two products. With an
// empty narrative or fewer than two products it returns the all-empty
// result.
func (s *ComparisonStructurer) Structure(narrative string, products []domain.Product) domain.ComparisonResult {
	var result domain.ComparisonResult
	if strings.TrimSpace(narrative) == "" || len(products) < 2 {
		return result
	}

	markers1 := buildProductMarkers(products[0], products[1], 1)
	markers2 := buildProductMarkers(products[1], products[0], 2)

	sections := strings.Split(narrative, comparisonSectionDelimiter)
	placed := 0
	for _, section := range sections {
		if strings.TrimSpace(section) == "" {
			continue
		}
		switch detectSectionOwner(section, markers1, markers2) {
		case ownerProduct1:
			s.scanProductSection(section, &result.Product1)
			placed++
		case ownerProduct2:
			s.scanProductSection(section, &result.Product2)
			placed++
		case ownerComparison:
			s.scanComparisonSection(section, markers1, markers2, &result.Shared)
			placed++
		default:
			// section names neither product nor the comparison: skip
		}
	}

	s.applyLimits(&result)

	if s.enableDebugLogging {
		log.Printf("[COMPARE] structured %d of %d sections (empty=%v)", placed, len(sections), result.Empty())
	}
	return result
}

// scanProductSection routes the lines of a single-product section into
// its summary. Heading lines select the target and contribute no content.
func (s *ComparisonStructurer) scanProductSection(section string, summary *domain.ProductSummary) {
	state := targetNone
	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if heading, ok := headingText(trimmed); ok {
			if target, matched := s.rules.ProductHeading(strings.ToLower(heading)); matched {
				state = target
			}
			continue
		}
		content := stripBulletPrefix(trimmed)
		if runeLen(content) <= s.limits.MinContent {
			continue
		}
		switch state {
		case targetUseCases:
			summary.UseCases = append(summary.UseCases, content)
		case targetShortDescription:
			summary.ShortDescription = concatSentence(summary.ShortDescription, content)
		case targetRecommendation:
			summary.Recommendation = concatSentence(summary.Recommendation, content)
		}
	}
}

// scanComparisonSection routes the lines of the shared comparison section.
// Product-marker headings pick the sub-owner so advantage, disadvantage
// and note lines land in the right product's bucket; the higher-level
// comparison headings reset it.
func (s *ComparisonStructurer) scanComparisonSection(section string, markers1, markers2 productMarkers, detail *domain.ComparisonDetail) {
	state := targetNone
	subOwner := ownerNone

	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if heading, ok := headingText(trimmed); ok {
			lower := strings.ToLower(heading)
			names1 := markers1.matches(lower)
			names2 := markers2.matches(lower)

			// "Wann ist X besser" carries its product in the heading even
			// when the model writes the name instead of "Produkt N"
			if strings.Contains(lower, "besser") && names1 != names2 {
				if names1 {
					state = targetWhenProduct1
				} else {
					state = targetWhenProduct2
				}
				continue
			}

			if target, matched := s.rules.ComparisonHeading(lower); matched {
				state = target
				switch target {
				case targetGeneral, targetTechnical, targetPriceValue:
					subOwner = ownerNone
				}
			}
			if names1 && !names2 {
				subOwner = ownerProduct1
			} else if names2 && !names1 {
				subOwner = ownerProduct2
			}
			continue
		}

		content := stripBulletPrefix(trimmed)
		if runeLen(content) <= s.limits.MinContent {
			continue
		}
		switch state {
		case targetGeneral:
			detail.General = append(detail.General, content)
		case targetTechnical:
			detail.Technical = append(detail.Technical, content)
		case targetPriceValue:
			detail.PriceValue = append(detail.PriceValue, content)
		case targetWhenProduct1:
			detail.WhenProduct1Better = append(detail.WhenProduct1Better, content)
		case targetWhenProduct2:
			detail.WhenProduct2Better = append(detail.WhenProduct2Better, content)
		case targetAdvantages:
			switch subOwner {
			case ownerProduct1:
				detail.Product1Advantages = append(detail.Product1Advantages, content)
			case ownerProduct2:
				detail.Product2Advantages = append(detail.Product2Advantages, content)
			}
		case targetDisadvantages:
			switch subOwner {
			case ownerProduct1:
				detail.Product1Disadvantages = append(detail.Product1Disadvantages, content)
			case ownerProduct2:
				detail.Product2Disadvantages = append(detail.Product2Disadvantages, content)
			}
		case targetNotes:
			switch subOwner {
			case ownerProduct1:
				detail.Product1Notes = append(detail.Product1Notes, content)
			case ownerProduct2:
				detail.Product2Notes = append(detail.Product2Notes, content)
			}
		}
	}
}

// applyLimits trims, truncates and caps every output field.
func (s *ComparisonStructurer) applyLimits(result *domain.ComparisonResult) {
	result.Product1.UseCases = s.capList(result.Product1.UseCases)
	result.Product2.UseCases = s.capList(result.Product2.UseCases)
	result.Product1.ShortDescription = truncateRunes(result.Product1.ShortDescription, s.limits.ShortDescription)
	result.Product2.ShortDescription = truncateRunes(result.Product2.ShortDescription, s.limits.ShortDescription)
	result.Product1.Recommendation = truncateRunes(result.Product1.Recommendation, s.limits.Recommendation)
	result.Product2.Recommendation = truncateRunes(result.Product2.Recommendation, s.limits.Recommendation)

	d := &result.Shared
	for _, list := range []*[]string{
		&d.General, &d.Technical, &d.PriceValue,
		&d.WhenProduct1Better, &d.WhenProduct2Better,
		&d.Product1Advantages, &d.Product1Disadvantages, &d.Product1Notes,
		&d.Product2Advantages, &d.Product2Disadvantages, &d.Product2Notes,
	} {
		*list = s.capList(*list)
	}
}

func (s *ComparisonStructurer) capList(list []string) []string {
	var out []string
	for _, item := range list {
		item = strings.TrimSpace(truncateRunes(item, s.limits.Entry))
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == s.limits.ListItems {
			break
		}
	}
	return out
}

// productMarkers holds the lowercased terms that identify one product in
// narrative text.
type productMarkers struct {
	terms []string
}

func (m productMarkers) matches(lowerText string) bool {
	for _, t := range m.terms {
		if t != "" && strings.Contains(lowerText, t) {
			return true
		}
	}
	return false
}

// buildProductMarkers collects the identifying terms for a product: its
// name, its artikelnummer, the positional "produkt N" marker, and the
// leading name token when the other product does not share it.
func buildProductMarkers(p, other domain.Product, position int) productMarkers {
	var terms []string
	if name := strings.ToLower(strings.TrimSpace(p.Artikelname)); name != "" {
		terms = append(terms, name)
	}
	if nr := strings.ToLower(strings.TrimSpace(p.Artikelnummer)); nr != "" {
		terms = append(terms, nr)
	}
	if position == 1 {
		terms = append(terms, "produkt 1")
	} else {
		terms = append(terms, "produkt 2")
	}
	if tok := leadingToken(p.Artikelname); tok != "" && tok != leadingToken(other.Artikelname) {
		terms = append(terms, tok)
	}
	return productMarkers{terms: terms}
}

func leadingToken(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// detectSectionOwner decides who a section talks about. The comparison
// marker wins, then exclusive product mentions; a section naming both
// products contrasts them and counts as comparison too.
func detectSectionOwner(section string, markers1, markers2 productMarkers) sectionOwner {
	text := strings.ToLower(section)
	names1 := markers1.matches(text)
	names2 := markers2.matches(text)

	switch {
	case strings.Contains(text, "vergleich"):
		return ownerComparison
	case names1 && names2:
		return ownerComparison
	case names1:
		return ownerProduct1
	case names2:
		return ownerProduct2
	default:
		return ownerNone
	}
}

// headingText returns the bare heading text when the line is shaped like
// a sub-heading: markdown marks, bold marks, or a trailing colon. Bullet
// lines are always content.
func headingText(line string) (string, bool) {
	if isBulletLine(line) {
		return "", false
	}
	switch {
	case strings.HasPrefix(line, "#"):
		return strings.TrimSpace(strings.TrimLeft(line, "# ")), true
	case strings.HasPrefix(line, "**"):
		return strings.TrimSpace(strings.Trim(line, "*: ")), true
	case strings.HasSuffix(line, ":"):
		return strings.TrimSpace(strings.TrimSuffix(line, ":")), true
	}
	return "", false
}

func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") ||
		strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ")
}

func stripBulletPrefix(line string) string {
	if isBulletLine(line) {
		return strings.TrimSpace(line[strings.IndexAny(line, " ")+1:])
	}
	return line
}

func concatSentence(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + " " + next
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func runeLen(s string) int {
	return len([]rune(s))
}
