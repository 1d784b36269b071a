package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
)

func pricedCandidate(title, domain string, price float64) entities.Candidate {
	return entities.Candidate{
		Title:  title,
		Domain: domain,
		Price:  floatPtr(price),
		Source: entities.SourceStructuredShopping,
	}
}

func TestDedupe_CollapsesSameTitleDomainSource(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	pool := []entities.Candidate{
		pricedCandidate("קוקה קולה 1.5 ליטר", "shop-a.co.il", 7.5),
		pricedCandidate("קוקה קולה 1.5 ליטר!!", "shop-a.co.il", 8.0),
		pricedCandidate("קוקה קולה 1.5 ליטר", "shop-b.co.il", 7.9),
	}

	out := svc.Dedupe(pool)

	assert.Len(t, out, 2)
	// Earliest seen wins the collision.
	assert.Equal(t, 7.5, *out[0].Price)
}

func TestDedupe_CapsPoolSize(t *testing.T) {
	svc := NewPoolFilterService(3, 6, 5)

	pool := make([]entities.Candidate, 10)
	for i := range pool {
		pool[i] = pricedCandidate(string(rune('a'+i)), "shop.co.il", float64(i+1))
	}

	assert.Len(t, svc.Dedupe(pool), 3)
}

func TestRemoveOutliers_DropsExtremePrice(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	pool := []entities.Candidate{
		pricedCandidate("a", "d1", 10),
		pricedCandidate("b", "d2", 11),
		pricedCandidate("c", "d3", 10.5),
		pricedCandidate("d", "d4", 11.5),
		pricedCandidate("e", "d5", 9.5),
		pricedCandidate("f", "d6", 500),
	}

	out := svc.RemoveOutliers(pool)

	assert.Len(t, out, 5)
	for _, c := range out {
		assert.Less(t, *c.Price, 100.0)
	}
}

func TestRemoveOutliers_SkipsSmallPools(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	pool := []entities.Candidate{
		pricedCandidate("a", "d1", 10),
		pricedCandidate("b", "d2", 500),
	}

	out := svc.RemoveOutliers(pool)

	assert.Len(t, out, 2, "fewer priced candidates than the minimum leaves the pool alone")
}

func TestRemoveOutliers_KeepsUnpricedCandidates(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	pool := []entities.Candidate{
		pricedCandidate("a", "d1", 10),
		pricedCandidate("b", "d2", 11),
		pricedCandidate("c", "d3", 10.5),
		pricedCandidate("d", "d4", 11.5),
		pricedCandidate("e", "d5", 9.5),
		pricedCandidate("f", "d6", 500),
		{Title: "unpriced", Domain: "d7", Source: entities.SourceSiteScopedWeb},
	}

	out := svc.RemoveOutliers(pool)

	found := false
	for _, c := range out {
		if c.Title == "unpriced" {
			found = true
		}
	}
	assert.True(t, found, "unpriced candidates never count as outliers")
}

func TestRemoveOutliers_BimodalPoolSurvives(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	// Two price clusters widen the IQR so neither cluster is fenced out.
	pool := []entities.Candidate{
		pricedCandidate("a", "d1", 10),
		pricedCandidate("b", "d2", 10),
		pricedCandidate("c", "d3", 1000),
		pricedCandidate("d", "d4", 1000),
		pricedCandidate("e", "d5", 2000),
		pricedCandidate("f", "d6", 3000),
	}

	out := svc.RemoveOutliers(pool)

	assert.GreaterOrEqual(t, len(out), minSurvivingPool)
}

func TestRemoveOutliers_ZeroIQRDropsBothTails(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	// Degenerate distribution: quartiles collapse onto the mode, fencing
	// out both the cheap and the expensive stray.
	pool := []entities.Candidate{
		pricedCandidate("a", "d1", 5),
		pricedCandidate("b", "d2", 10),
		pricedCandidate("c", "d3", 10),
		pricedCandidate("d", "d4", 10),
		pricedCandidate("e", "d5", 10),
		pricedCandidate("f", "d6", 1000),
	}

	out := svc.RemoveOutliers(pool)

	assert.Len(t, out, 4)
	for _, c := range out {
		assert.Equal(t, 10.0, *c.Price)
	}
}

func TestTagConsensus_CountsAgreeingDomains(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	pool := []entities.Candidate{
		pricedCandidate("a", "shop-a.co.il", 12.00),
		pricedCandidate("b", "shop-b.co.il", 12.40),
		pricedCandidate("c", "shop-c.co.il", 12.10),
	}

	svc.TagConsensus(pool)

	// All three agree within ±5%.
	assert.Equal(t, 2, pool[0].ConsensusCount)
	assert.Equal(t, 2, pool[1].ConsensusCount)
	assert.Equal(t, 2, pool[2].ConsensusCount)
}

func TestTagConsensus_SameDomainDoesNotCount(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	pool := []entities.Candidate{
		pricedCandidate("a", "shop-a.co.il", 12.00),
		pricedCandidate("b", "shop-a.co.il", 12.10),
	}

	svc.TagConsensus(pool)

	assert.Equal(t, 0, pool[0].ConsensusCount)
	assert.Equal(t, 0, pool[1].ConsensusCount)
}

func TestTagConsensus_EmptyDomainExcluded(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	pool := []entities.Candidate{
		pricedCandidate("a", "", 12.00),
		pricedCandidate("b", "shop-b.co.il", 12.00),
	}

	svc.TagConsensus(pool)

	assert.Equal(t, 0, pool[0].ConsensusCount)
	assert.Equal(t, 0, pool[1].ConsensusCount)
}

func TestTagConsensus_OutsideTolerance(t *testing.T) {
	svc := NewPoolFilterService(24, 6, 5)

	pool := []entities.Candidate{
		pricedCandidate("a", "shop-a.co.il", 10.00),
		pricedCandidate("b", "shop-b.co.il", 11.00),
	}

	svc.TagConsensus(pool)

	// 10% apart, beyond the 5% band in both directions.
	assert.Equal(t, 0, pool[0].ConsensusCount)
	assert.Equal(t, 0, pool[1].ConsensusCount)
}
