package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

const (
	// iqrFence is Tukey's multiplier for the outlier fences.
	iqrFence = 1.5

	// minSurvivingPool guards against over-filtering: if IQR filtering would
	// leave fewer candidates than this, the original pool is kept.
	minSurvivingPool = 3
)

var titleNoiseRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// PoolFilterService de-duplicates the merged candidate pool, drops
// statistical price outliers, and tags cross-source price consensus.
// All three steps are pure functions of the pool.
type PoolFilterService struct {
	maxPoolSize        int
	outlierMinPoolSize int
	tolerancePct       float64
}

// NewPoolFilterService creates a filter with the configured pool cap,
// minimum priced-pool size for IQR filtering, and consensus tolerance
// in percent.
func NewPoolFilterService(maxPoolSize, outlierMinPoolSize int, tolerancePct float64) *PoolFilterService {
	if maxPoolSize <= 0 {
		maxPoolSize = 24
	}
	if outlierMinPoolSize <= 0 {
		outlierMinPoolSize = 6
	}
	if tolerancePct <= 0 {
		tolerancePct = 5
	}
	return &PoolFilterService{
		maxPoolSize:        maxPoolSize,
		outlierMinPoolSize: outlierMinPoolSize,
		tolerancePct:       tolerancePct,
	}
}

// Filter runs dedupe, outlier removal, and consensus tagging in order and
// returns the resulting pool. Input order is preserved (earliest seen wins
// dedupe ties), which keeps downstream selection stable.
func (s *PoolFilterService) Filter(pool []entities.Candidate) []entities.Candidate {
	deduped := s.Dedupe(pool)
	filtered := s.RemoveOutliers(deduped)
	s.TagConsensus(filtered)
	return filtered
}

// Dedupe collapses candidates sharing a composite key of normalized title,
// domain, and source class, then caps the pool at the configured maximum.
func (s *PoolFilterService) Dedupe(pool []entities.Candidate) []entities.Candidate {
	seen := make(map[string]bool, len(pool))
	out := make([]entities.Candidate, 0, len(pool))
	for _, c := range pool {
		key := normalizeTitle(c.Title) + "|" + strings.ToLower(c.Domain) + "|" + string(c.Source)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) >= s.maxPoolSize {
			break
		}
	}
	return out
}

// RemoveOutliers drops priced candidates outside Tukey's fences
// [Q1 − 1.5·IQR, Q3 + 1.5·IQR] when at least outlierMinPoolSize candidates
// carry a price. If the result would shrink the pool below three
// candidates, the original pool is returned unchanged.
func (s *PoolFilterService) RemoveOutliers(pool []entities.Candidate) []entities.Candidate {
	var prices []float64
	for _, c := range pool {
		if c.HasPrice() {
			prices = append(prices, *c.Price)
		}
	}
	if len(prices) < s.outlierMinPoolSize {
		return pool
	}

	q1, q3 := quartiles(prices)
	iqr := q3 - q1
	low := q1 - iqrFence*iqr
	high := q3 + iqrFence*iqr

	out := make([]entities.Candidate, 0, len(pool))
	for _, c := range pool {
		if c.HasPrice() && (*c.Price < low || *c.Price > high) {
			continue
		}
		out = append(out, c)
	}
	if len(out) < minSurvivingPool {
		return pool
	}
	return out
}

// TagConsensus sets each candidate's ConsensusCount to the number of other
// priced candidates from a different, non-empty domain whose price lies
// within the relative tolerance band.
func (s *PoolFilterService) TagConsensus(pool []entities.Candidate) {
	tol := s.tolerancePct / 100
	for i := range pool {
		pool[i].ConsensusCount = 0
		if !pool[i].HasPrice() || pool[i].Domain == "" {
			continue
		}
		for j := range pool {
			if i == j || !pool[j].HasPrice() || pool[j].Domain == "" {
				continue
			}
			if strings.EqualFold(pool[i].Domain, pool[j].Domain) {
				continue
			}
			diff := *pool[i].Price - *pool[j].Price
			if diff < 0 {
				diff = -diff
			}
			if diff <= tol*(*pool[i].Price) {
				pool[i].ConsensusCount++
			}
		}
	}
}

// quartiles computes Q1 and Q3 using the median-of-halves method.
func quartiles(values []float64) (float64, float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	half := n / 2
	q1 := median(sorted[:half])
	var q3 float64
	if n%2 == 0 {
		q3 = median(sorted[half:])
	} else {
		q3 = median(sorted[half+1:])
	}
	return q1, q3
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// normalizeTitle lowercases and strips punctuation for dedupe keying.
func normalizeTitle(title string) string {
	clean := titleNoiseRegex.ReplaceAllString(strings.ToLower(title), " ")
	return strings.Join(strings.Fields(clean), " ")
}
