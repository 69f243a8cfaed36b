package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scholarhub/internal/paper"
)

const wikipediaDefaultURL = "https://en.wikipedia.org/w/api.php"

// Wikipedia searches the MediaWiki API for encyclopedia articles. Articles
// are treated as current-year general-knowledge references.
type Wikipedia struct {
	baseURL   string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

// NewWikipedia creates a Wikipedia client.
func NewWikipedia(baseURL string, client *http.Client) *Wikipedia {
	if baseURL == "" {
		baseURL = wikipediaDefaultURL
	}
	return &Wikipedia{
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		client:    httpClientOrDefault(client),
		now:       time.Now,
	}
}

// Name implements Source.
func (w *Wikipedia) Name() string { return "Wikipedia" }

// Search implements Source.
func (w *Wikipedia) Search(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("format", "json")
	params.Set("srlimit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: wikipedia returned %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var result wikiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	year := w.now().Year()
	papers := make([]paper.Paper, 0, len(result.Query.Search))
	for _, item := range result.Query.Search {
		if item.Title == "" {
			continue
		}
		pageURL := "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(item.Title, " ", "_")

		p := paper.Paper{
			ID:               paper.NewID(),
			Source:           w.Name(),
			Title:            item.Title,
			Authors:          []string{"Wikipedia Contributors"},
			Abstract:         stripTags(item.Snippet) + "...",
			Year:             year,
			URL:              pageURL,
			Journal:          "Wikipedia",
			ReliabilityScore: 0.6,
			ReliabilityLevel: "Good",
			CitationFormats: map[string]string{
				paper.StyleAPA: fmt.Sprintf("Wikipedia contributors. (%d). %s. In Wikipedia. Retrieved from %s",
					year, item.Title, pageURL),
				paper.StyleMLA: fmt.Sprintf("\"%s.\" Wikipedia, Wikimedia Foundation, %d, %s.",
					item.Title, year, strings.TrimPrefix(pageURL, "https://")),
			},
			FullTextAvailable: true,
		}
		papers = append(papers, p)
	}
	return papers, nil
}

type wikiResponse struct {
	Query wikiQuery `json:"query"`
}

type wikiQuery struct {
	Search []wikiSearchItem `json:"search"`
}

type wikiSearchItem struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
