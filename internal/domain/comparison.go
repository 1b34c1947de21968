package domain

// ComparisonResult is the structured form of a comparison narrative. The two
// product summaries hold the sections written about one product alone; Shared
// holds the buckets that contrast both.
type ComparisonResult struct {
	Product1 ProductSummary   `json:"produkt1"`
	Product2 ProductSummary   `json:"produkt2"`
	Shared   ComparisonDetail `json:"vergleich"`
}

// ProductSummary collects the per-product sections of a comparison
type ProductSummary struct {
	UseCases         []string `json:"useCases"`
	ShortDescription string   `json:"shortDescription"`
	Recommendation   string   `json:"recommendation"`
}

// ComparisonDetail collects the shared comparison buckets
type ComparisonDetail struct {
	General               []string `json:"general"`
	Technical             []string `json:"technical"`
	PriceValue            []string `json:"priceValue"`
	WhenProduct1Better    []string `json:"whenProduct1Better"`
	WhenProduct2Better    []string `json:"whenProduct2Better"`
	Product1Advantages    []string `json:"product1Advantages"`
	Product1Disadvantages []string `json:"product1Disadvantages"`
	Product1Notes         []string `json:"product1Notes"`
	Product2Advantages    []string `json:"product2Advantages"`
	Product2Disadvantages []string `json:"product2Disadvantages"`
	Product2Notes         []string `json:"product2Notes"`
}

// Empty reports whether structuring produced no content at all. Callers fall
// back to rendering the raw narrative when it does.
func (r ComparisonResult) Empty() bool {
	return r.Product1.empty() && r.Product2.empty() && r.Shared.empty()
}

func (s ProductSummary) empty() bool {
	return len(s.UseCases) == 0 && s.ShortDescription == "" && s.Recommendation == ""
}

func (d ComparisonDetail) empty() bool {
	lists := [][]string{
		d.General, d.Technical, d.PriceValue,
		d.WhenProduct1Better, d.WhenProduct2Better,
		d.Product1Advantages, d.Product1Disadvantages, d.Product1Notes,
		d.Product2Advantages, d.Product2Disadvantages, d.Product2Notes,
	}
	for _, l := range lists {
		if len(l) > 0 {
			return false
		}
	}
	return true
}
