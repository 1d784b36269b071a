package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

// unitDimension is the physical dimension a pattern extracts.
type unitDimension int

const (
	dimVolume unitDimension = iota
	dimWeight
)

// unitPattern is one entry in the ordered pattern registry: a compiled
// expression whose first capture group is the numeric amount, with a factor
// converting it to the canonical unit (milliliters or grams).
type unitPattern struct {
	re        *regexp.Regexp
	dimension unitDimension
	factor    float64
}

// The registry is ordered: larger units first so "1.5 ליטר" is not consumed
// by a milliliter pattern, Hebrew and Latin script side by side.
var unitPatterns = []unitPattern{
	{regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:ליטר|ל'|liters?|litres?|lt\b|l\b)`), dimVolume, 1000},
	{regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:מ["']?ל|מיליליטר|milliliters?|ml\b)`), dimVolume, 1},
	{regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:ק["']?ג|קילו(?:גרם)?|kilos?|kilograms?|kg\b)`), dimWeight, 1000},
	{regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:גרם|ג'|grams?|gr\b|g\b)`), dimWeight, 1},
}

// packPattern matches pack multipliers such as "6x330ml" or "4 × 1.5 ליטר".
// Group 1 is the pack count, group 2 the per-unit amount, group 3 the unit.
var packPattern = regexp.MustCompile(`(\d+)\s*[x×*]\s*(\d+(?:[.,]\d+)?)\s*(מ["']?ל|ליטר|גרם|ק["']?ג|ml|l\b|gr?\b|kg)`)

// categoryUnitDefault supplies a canonical size when no unit token was found
// anywhere but the query names a known family. The fallback only affects
// unit-price computation, never the observed price.
type categoryUnitDefault struct {
	keywords  []string
	dimension unitDimension
	amount    float64
}

var categoryUnitDefaults = []categoryUnitDefault{
	{[]string{"קולה", "cola", "סודה", "soda", "sprite", "ספרייט"}, dimVolume, 1500},
	{[]string{"חלב", "milk"}, dimVolume, 1000},
	{[]string{"שמן", "oil"}, dimVolume, 750},
	{[]string{"פסטה", "ספגטי", "pasta", "spaghetti"}, dimWeight, 500},
	{[]string{"אורז", "rice"}, dimWeight, 1000},
	{[]string{"קמח", "flour"}, dimWeight, 1000},
	{[]string{"סוכר", "sugar"}, dimWeight, 1000},
}

// NormalizerService extracts canonical unit sizes from candidate free text
// and derives unit prices for priced candidates.
type NormalizerService struct{}

// NewNormalizerService creates a new unit normalizer.
func NewNormalizerService() *NormalizerService {
	return &NormalizerService{}
}

// Normalize fills the candidate's unit fields in place. The original query
// supplies a category default when no unit token appears in the offer text.
func (s *NormalizerService) Normalize(c *entities.Candidate, query string) {
	text := strings.ToLower(c.CombinedText())

	if count, amount, dim, ok := extractPack(text); ok {
		c.PackCount = count
		setCanonical(c, dim, amount)
	} else {
		for _, p := range unitPatterns {
			if p.dimension == dimVolume && c.UnitMilliliters != nil {
				continue
			}
			if p.dimension == dimWeight && c.UnitGrams != nil {
				continue
			}
			if m := p.re.FindStringSubmatch(text); m != nil {
				if v, err := parseAmount(m[1]); err == nil {
					setCanonical(c, p.dimension, v*p.factor)
				}
			}
		}
	}

	if c.PackCount == 0 {
		c.PackCount = 1
	}

	// Category fallback from the query.
	if c.UnitMilliliters == nil && c.UnitGrams == nil {
		lowerQuery := strings.ToLower(query)
		for _, d := range categoryUnitDefaults {
			if containsAny(lowerQuery, d.keywords) {
				setCanonical(c, d.dimension, d.amount)
				break
			}
		}
	}

	s.deriveUnitPrices(c)
}

// deriveUnitPrices computes per-liter / per-kilogram prices. A missing price
// or zero size yields nil unit prices, never zero or a fabricated value.
func (s *NormalizerService) deriveUnitPrices(c *entities.Candidate) {
	if c.Price == nil {
		return
	}
	pack := float64(c.PackCount)
	if pack <= 0 {
		pack = 1
	}
	if c.UnitMilliliters != nil && *c.UnitMilliliters > 0 {
		liters := *c.UnitMilliliters * pack / 1000
		perLiter := *c.Price / liters
		c.PricePerLiter = &perLiter
	}
	if c.UnitGrams != nil && *c.UnitGrams > 0 {
		kilos := *c.UnitGrams * pack / 1000
		perKg := *c.Price / kilos
		c.PricePerKg = &perKg
	}
}

func setCanonical(c *entities.Candidate, dim unitDimension, amount float64) {
	if amount <= 0 {
		return
	}
	switch dim {
	case dimVolume:
		if c.UnitMilliliters == nil {
			c.UnitMilliliters = &amount
		}
	case dimWeight:
		if c.UnitGrams == nil {
			c.UnitGrams = &amount
		}
	}
}

func extractPack(text string) (count int, amount float64, dim unitDimension, ok bool) {
	m := packPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, 0, false
	}
	count, err := strconv.Atoi(m[1])
	if err != nil || count <= 0 {
		return 0, 0, 0, false
	}
	amount, err = parseAmount(m[2])
	if err != nil {
		return 0, 0, 0, false
	}
	unit := m[3]
	switch {
	case strings.HasPrefix(unit, "ליטר") || unit == "l":
		return count, amount * 1000, dimVolume, true
	case strings.HasPrefix(unit, "מ") || unit == "ml":
		return count, amount, dimVolume, true
	case strings.HasPrefix(unit, "ק") || unit == "kg":
		return count, amount * 1000, dimWeight, true
	default:
		return count, amount, dimWeight, true
	}
}

func parseAmount(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
}

// QueryHasSizeToken reports whether the original query carries a unit token.
// The scorer rewards candidates whose text repeats the requested size.
func QueryHasSizeToken(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, p := range unitPatterns {
		if m := p.re.FindString(lower); m != "" {
			return m, true
		}
	}
	if m := packPattern.FindString(lower); m != "" {
		return m, true
	}
	return "", false
}
