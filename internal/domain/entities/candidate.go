package entities

// SourceClass categorizes the provider that produced a candidate. It drives
// scoring weights and tie-breaking in selection.
type SourceClass string

const (
	// SourceStructuredShopping is a structured shopping search result
	// (e.g. a Google Shopping row with an extracted price).
	SourceStructuredShopping SourceClass = "structured_shopping"

	// SourceSiteScopedWeb is a result scraped from a site-scoped web search
	// against a known price-comparison vendor.
	SourceSiteScopedWeb SourceClass = "site_scoped_web"

	// SourceEstimated is a row from a static on-disk or database price table.
	SourceEstimated SourceClass = "estimated"
)

// DefaultCurrency is the currency assumed when a provider does not report one.
const DefaultCurrency = "ILS"

// Candidate is one observed offer for one search variant from one provider.
// Price is a pointer: nil means "seen but unpriced", never a guess.
type Candidate struct {
	Query       string      `json:"query"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	Currency    string      `json:"currency"`
	Link        string      `json:"link,omitempty"`
	Domain      string      `json:"domain,omitempty"`
	Merchant    string      `json:"merchant,omitempty"`
	Source      SourceClass `json:"source"`
	Brand       string      `json:"brand,omitempty"`
	SizeText    string      `json:"size_text,omitempty"`

	// Derived by the unit normalizer.
	UnitMilliliters *float64 `json:"unit_ml,omitempty"`
	UnitGrams       *float64 `json:"unit_g,omitempty"`
	PackCount       int      `json:"pack_count,omitempty"`
	PricePerLiter   *float64 `json:"price_per_liter,omitempty"`
	PricePerKg      *float64 `json:"price_per_kg,omitempty"`

	// StructuredID is a product identifier (GTIN/EAN) scraped from embedded
	// product markup. Its presence is a strong trust signal.
	StructuredID string `json:"structured_id,omitempty"`

	// ConsensusCount is the number of other candidates from distinct domains
	// whose price agrees within the configured tolerance.
	ConsensusCount int `json:"consensus_count"`
}

// HasPrice reports whether the candidate carries an observed numeric price.
func (c *Candidate) HasPrice() bool {
	return c.Price != nil
}

// CombinedText returns the free-text fields joined for token matching.
func (c *Candidate) CombinedText() string {
	text := c.Title
	if c.Description != "" {
		text += " " + c.Description
	}
	if c.SizeText != "" {
		text += " " + c.SizeText
	}
	return text
}
