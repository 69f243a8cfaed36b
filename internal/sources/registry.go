package sources

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"scholarhub/internal/reliability"
)

// FederationConfig carries the settings the default source set needs.
type FederationConfig struct {
	Timeout               time.Duration
	SemanticScholarAPIKey string
	CrossrefMailto        string
	// DisabledSources lists source names to leave unregistered,
	// matched case-insensitively.
	DisabledSources []string
}

// NewDefaultAggregator wires the full catalog federation: the four academic
// databases at a third/quarter of the budget each, the general-knowledge and
// platform sources at a quarter, and the pointer sources at a fifth.
func NewDefaultAggregator(log *zap.Logger, scorer *reliability.Scorer, fc FederationConfig) *Aggregator {
	timeout := fc.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errTooManyRedirects
			}
			return nil
		},
	}

	disabled := make(map[string]bool, len(fc.DisabledSources))
	for _, name := range fc.DisabledSources {
		disabled[strings.ToLower(name)] = true
	}

	agg := NewAggregator(log, scorer)
	register := func(src Source, budget BudgetFunc) {
		if disabled[strings.ToLower(src.Name())] {
			return
		}
		agg.Register(src, budget)
	}

	register(NewArxiv("", client), ThirdOf(3))
	register(NewSemanticScholar("", fc.SemanticScholarAPIKey, client), ThirdOf(3))
	register(NewCrossref("", fc.CrossrefMailto, client), QuarterOf(2))
	register(NewDOAJ("", client), QuarterOf(2))
	register(NewWikipedia("", client), QuarterOf(2))
	register(NewResearchGate("", client), QuarterOf(2))
	register(NewTheses(), FifthOf(1))
	register(NewInstitutions(), FifthOf(1))

	return agg
}
