package services

import (
	"strings"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/pkg/config"
)

// maxConfidence clamps scores below 100: never absolute certainty.
const maxConfidence = 99

// ScoringService computes a deterministic trust score per candidate. It is
// pure: no I/O, no randomness, identical inputs yield identical scores.
type ScoringService struct {
	weights config.ScoringConfig
	trusted float64
}

// NewScoringService creates a scorer with the configured rule increments and
// the trusted-aggregator multiplier applied to the site-scoped source class.
func NewScoringService(weights config.ScoringConfig, trustedSourceWeight float64) *ScoringService {
	if trustedSourceWeight <= 0 {
		trustedSourceWeight = 1
	}
	return &ScoringService{weights: weights, trusted: trustedSourceWeight}
}

// Score returns an integer confidence in [0, 99] for the candidate against
// the original query and, when selecting per store, the target chain.
func (s *ScoringService) Score(c *entities.Candidate, query, chainID string) int {
	score := s.baseScore(c.Source)

	if c.HasPrice() {
		score += float64(s.weights.PricePresentBonus)
	} else {
		score += float64(s.weights.PriceAbsentBonus)
	}

	if chainID != "" && (entities.MatchesChain(c.Merchant, chainID) || entities.MatchesChain(c.Domain, chainID)) {
		score += float64(s.weights.ChainMatchBonus)
	}

	if brandMatches(query, c) {
		score += float64(s.weights.BrandMatchBonus)
	}

	if token, ok := QueryHasSizeToken(query); ok {
		if strings.Contains(strings.ToLower(c.CombinedText()), token) {
			score += float64(s.weights.SizeMatchBonus)
		}
	}

	if c.StructuredID != "" {
		score += float64(s.weights.StructuredIDBonus)
	}

	if c.ConsensusCount >= 2 {
		score += float64(s.weights.ConsensusBonus)
	}

	if score < 0 {
		return 0
	}
	if score > maxConfidence {
		return maxConfidence
	}
	return int(score)
}

// NoMatchConfidence is the fixed low confidence for substitute lines.
func (s *ScoringService) NoMatchConfidence() int {
	return s.weights.NoMatchConfidence
}

// SourceWeight returns the class multiplier used by the selector's combined
// ranking key. The trusted site-scoped aggregator proved more reliable
// empirically and carries the configured multiplier.
func (s *ScoringService) SourceWeight(class entities.SourceClass) float64 {
	switch class {
	case entities.SourceSiteScopedWeb:
		return s.trusted
	case entities.SourceEstimated:
		return 0.9
	default:
		return 1.0
	}
}

func (s *ScoringService) baseScore(class entities.SourceClass) float64 {
	switch class {
	case entities.SourceStructuredShopping:
		return float64(s.weights.BaseStructuredShopping)
	case entities.SourceSiteScopedWeb:
		return float64(s.weights.BaseSiteScopedWeb) * s.trusted
	default:
		return float64(s.weights.BaseEstimated)
	}
}

// brandMatches reports whether a brand detected in the query appears in the
// candidate's detected or structured brand, or vice versa.
func brandMatches(query string, c *entities.Candidate) bool {
	if c.Brand == "" {
		return false
	}
	queryLower := strings.ToLower(query)
	brandLower := strings.ToLower(c.Brand)
	if strings.Contains(queryLower, brandLower) {
		return true
	}
	// The alias table covers translated brand forms.
	for _, alias := range brandAliases {
		if strings.Contains(queryLower, alias.match) && strings.Contains(brandLower, strings.ToLower(alias.add)) {
			return true
		}
	}
	return false
}
