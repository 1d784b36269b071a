package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
	"github.com/noamgl/basketcompare/backend/pkg/retry"
)

// CollectorRunner invokes a provider collector with retry, backoff, and a
// shared TTL cache keyed by provider, chain, and query. A provider that
// keeps failing contributes an empty list; it never aborts aggregation.
type CollectorRunner struct {
	collectors []providers.CandidateCollector
	cache      providers.CacheProvider
	cacheTTL   int
	retryCfg   retry.Config
}

// NewCollectorRunner wires the collectors behind the shared cache.
func NewCollectorRunner(collectors []providers.CandidateCollector, cache providers.CacheProvider, cacheTTLSeconds int) *CollectorRunner {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 60
	}
	return &CollectorRunner{
		collectors: collectors,
		cache:      cache,
		cacheTTL:   cacheTTLSeconds,
		retryCfg:   retry.CollectorConfig(),
	}
}

// CollectAll gathers candidates from every collector for every variant.
// Each (collector, variant) pair runs as its own task so one slow provider
// never serializes the rest; results merge in submission order so downstream
// tie-breaking stays deterministic for a completed candidate set.
func (r *CollectorRunner) CollectAll(ctx context.Context, variants []string, chainID string) []entities.Candidate {
	type task struct {
		collector providers.CandidateCollector
		variant   string
	}
	tasks := make([]task, 0, len(r.collectors)*len(variants))
	for _, collector := range r.collectors {
		for _, variant := range variants {
			tasks = append(tasks, task{collector: collector, variant: variant})
		}
	}

	results := make([][]entities.Candidate, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	for i := range tasks {
		i := i
		g.Go(func() error {
			results[i] = r.collectOne(gctx, tasks[i].collector, tasks[i].variant, chainID)
			return nil
		})
	}
	// Tasks degrade to empty on failure and never return errors.
	_ = g.Wait()

	var pool []entities.Candidate
	for _, candidates := range results {
		pool = append(pool, candidates...)
	}
	return pool
}

func (r *CollectorRunner) collectOne(ctx context.Context, collector providers.CandidateCollector, variant, chainID string) []entities.Candidate {
	cacheKey := fmt.Sprintf("cand:%s:%s:%s", collector.Name(), chainID, variant)
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var candidates []entities.Candidate
			if err := json.Unmarshal(cached, &candidates); err == nil {
				return candidates
			}
		}
	}

	var candidates []entities.Candidate
	err := retry.Do(ctx, r.retryCfg, func() error {
		var collectErr error
		candidates, collectErr = collector.Collect(ctx, variant, chainID)
		return collectErr
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("provider", collector.Name()).
			Str("variant", variant).
			Str("chain", chainID).
			Msg("collector dropped after retries")
		return nil
	}

	if r.cache != nil && len(candidates) > 0 {
		if payload, err := json.Marshal(candidates); err == nil {
			_ = r.cache.Set(ctx, cacheKey, payload, r.cacheTTL)
		}
	}
	return candidates
}
