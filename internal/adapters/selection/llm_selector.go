package selection

import (
	"context"
	"fmt"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	"github.com/noamgl/basketcompare/backend/internal/infrastructure/clients/openai"
)

// llmClient is the subset of the OpenAI client the selector needs.
type llmClient interface {
	SelectCandidate(ctx context.Context, item, chainID string, pool []entities.Candidate) (*openai.Choice, error)
}

// LLMSelector is a selection strategy that asks a language model to pick the
// best offer. The model only ever chooses an index into the collected pool;
// prices, links and titles all come from the chosen candidate, so it cannot
// introduce data the collectors never saw. Errors propagate to the caller,
// which falls back to the deterministic selector.
type LLMSelector struct {
	client      llmClient
	noMatchConf int
}

// NewLLMSelector creates the model-backed selector.
func NewLLMSelector(client llmClient, noMatchConfidence int) *LLMSelector {
	return &LLMSelector{
		client:      client,
		noMatchConf: noMatchConfidence,
	}
}

var _ providers.SelectionStrategy = (*LLMSelector)(nil)

// SelectBest asks the model for an index into the pool and materializes the
// chosen candidate as a line choice.
func (s *LLMSelector) SelectBest(ctx context.Context, item, chainID string, pool []entities.Candidate) (entities.LineChoice, error) {
	if len(pool) == 0 {
		return s.substitute(item), nil
	}

	choice, err := s.client.SelectCandidate(ctx, item, chainID, pool)
	if err != nil {
		return entities.LineChoice{}, err
	}
	// Index -1 is the model's deliberate no-match answer. Any other index
	// outside the pool is a malformed response; the error sends the caller
	// to the deterministic selector instead of discarding the pool.
	if choice.Index == -1 {
		return s.substitute(item), nil
	}
	if choice.Index < 0 || choice.Index >= len(pool) {
		return entities.LineChoice{}, fmt.Errorf("model returned index %d outside pool of %d candidates", choice.Index, len(pool))
	}

	c := pool[choice.Index]
	currency := c.Currency
	if currency == "" {
		currency = entities.DefaultCurrency
	}
	return entities.LineChoice{
		Item:          item,
		Title:         c.Title,
		Price:         c.Price,
		Currency:      currency,
		Link:          c.Link,
		Domain:        c.Domain,
		Merchant:      c.Merchant,
		Source:        c.Source,
		ConfidencePct: int(choice.Confidence),
		Substitute:    !c.HasPrice(),
	}, nil
}

func (s *LLMSelector) substitute(item string) entities.LineChoice {
	return entities.LineChoice{
		Item:          item,
		Currency:      entities.DefaultCurrency,
		ConfidencePct: s.noMatchConf,
		Substitute:    true,
	}
}
