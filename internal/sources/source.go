// Package sources implements the federated search clients. Each source
// queries one upstream catalog (arXiv, Semantic Scholar, Crossref, DOAJ,
// Wikipedia, ResearchGate) or a static table (theses, institutions) and
// normalizes hits into the shared paper model. The Aggregator fans a query
// out to every registered source concurrently and merges the results.
package sources

import (
	"context"
	"net/http"
	"time"

	"scholarhub/internal/paper"
)

// Source is a single searchable catalog.
type Source interface {
	// Name is the provenance label stamped on every result.
	Name() string
	// Search returns up to limit papers for the query. A limit of zero or
	// less means the source is skipped for this request.
	Search(ctx context.Context, query string, limit int) ([]paper.Paper, error)
}

// defaultTimeout bounds a single upstream call when the caller supplies no
// client of its own.
const defaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the service to upstream APIs.
const DefaultUserAgent = "AcademicResearchHub/1.0"

func httpClientOrDefault(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{
		Timeout: defaultTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errTooManyRedirects
			}
			return nil
		},
	}
}
