package sources

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scholarhub/internal/paper"
	"scholarhub/internal/reliability"
)

// BudgetFunc maps the caller's max_results onto a per-source slice. The
// academic databases get up to a third each, the secondary platforms up to
// a quarter, and the pointer sources a fifth, so a default request spreads
// across every catalog without flooding any single one.
type BudgetFunc func(maxResults int) int

// ThirdOf caps at n and takes max/3.
func ThirdOf(n int) BudgetFunc {
	return func(maxResults int) int { return minInt(n, maxResults/3) }
}

// QuarterOf caps at n and takes max/4.
func QuarterOf(n int) BudgetFunc {
	return func(maxResults int) int { return minInt(n, maxResults/4) }
}

// FifthOf caps at n and takes max/5.
func FifthOf(n int) BudgetFunc {
	return func(maxResults int) int { return minInt(n, maxResults/5) }
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// registration pairs a source with its result budget.
type registration struct {
	source Source
	budget BudgetFunc
}

// Aggregator fans a query out to every registered source, tolerating
// individual failures, and merges the results: dedup by normalized title,
// reliability re-score, sort descending, truncate.
type Aggregator struct {
	log    *zap.Logger
	scorer *reliability.Scorer
	regs   []registration
}

// NewAggregator creates an empty aggregator. Sources are attached with
// Register in priority order; merge order is registration order, which the
// stable sort preserves among equal scores.
func NewAggregator(log *zap.Logger, scorer *reliability.Scorer) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{log: log, scorer: scorer}
}

// Register attaches a source with its budget.
func (a *Aggregator) Register(src Source, budget BudgetFunc) {
	a.regs = append(a.regs, registration{source: src, budget: budget})
}

// Search runs the federated query. Individual source errors are logged and
// skipped; the call only fails when the context is cancelled before any
// source finishes.
func (a *Aggregator) Search(ctx context.Context, query string, maxResults int) ([]paper.Paper, error) {
	start := time.Now()

	type sourceHits struct {
		index  int
		papers []paper.Paper
	}

	var mu sync.Mutex
	hits := make([]sourceHits, 0, len(a.regs))

	g, gctx := errgroup.WithContext(ctx)
	for i, reg := range a.regs {
		i, reg := i, reg
		limit := reg.budget(maxResults)
		if limit <= 0 {
			continue
		}
		g.Go(func() error {
			papers, err := reg.source.Search(gctx, query, limit)
			if err != nil {
				a.log.Warn("source search failed",
					zap.String("source", reg.source.Name()),
					zap.String("query", query),
					zap.Error(err))
				return nil
			}
			a.log.Debug("source search completed",
				zap.String("source", reg.source.Name()),
				zap.Int("results", len(papers)))
			mu.Lock()
			hits = append(hits, sourceHits{index: i, papers: papers})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Restore registration order before dedup so the highest-priority
	// source wins a title collision deterministically.
	ordered := make([]paper.Paper, 0, maxResults)
	for i := range a.regs {
		for _, h := range hits {
			if h.index == i {
				ordered = append(ordered, h.papers...)
			}
		}
	}

	merged := dedupeByTitle(ordered)
	a.scorer.Rank(merged)

	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}

	a.log.Info("federated search completed",
		zap.String("query", query),
		zap.Int("results", len(merged)),
		zap.Duration("duration", time.Since(start)))

	return merged, nil
}

// dedupeByTitle drops papers whose normalized title was already seen, and
// papers whose title is too short to identify anything.
func dedupeByTitle(papers []paper.Paper) []paper.Paper {
	seen := make(map[string]struct{}, len(papers))
	unique := make([]paper.Paper, 0, len(papers))
	for _, p := range papers {
		key := p.NormalizedTitle()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
