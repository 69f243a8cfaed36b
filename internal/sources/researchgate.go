package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"scholarhub/internal/paper"
)

const researchGateDefaultURL = "https://www.researchgate.net/search/publication"

// browserUserAgent is sent on scrape requests; the publication search page
// refuses obvious bot agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// ResearchGate scrapes the public publication search page. There is no API,
// so results are best-effort: parse failures on individual cards are
// skipped, and an upstream layout change degrades to zero results rather
// than an error page.
type ResearchGate struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewResearchGate creates a ResearchGate scraper.
func NewResearchGate(baseURL string, client *http.Client) *ResearchGate {
	if baseURL == "" {
		baseURL = researchGateDefaultURL
	}
	return &ResearchGate{
		baseURL: baseURL,
		client:  httpClientOrDefault(client),
		now:     time.Now,
	}
}

// Name implements Source.
func (g *ResearchGate) Name() string { return "ResearchGate" }

// Search implements Source.
func (g *ResearchGate) Search(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	if limit <= 0 {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("researchgate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: researchgate returned %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	return g.parseCards(doc, limit), nil
}

func (g *ResearchGate) parseCards(doc *html.Node, limit int) []paper.Paper {
	year := g.now().Year()
	var papers []paper.Paper

	for _, card := range findAllByClass(doc, "div", "nova-legacy-c-card__body", limit) {
		titleLink := findByClass(card, "a", "nova-legacy-e-link")
		if titleLink == nil {
			continue
		}
		title := strings.TrimSpace(textContent(titleLink))
		if title == "" {
			continue
		}

		link := attrValue(titleLink, "href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://www.researchgate.net/" + strings.TrimPrefix(link, "/")
		}

		abstract := "Abstract not available"
		if content := findByClass(card, "div", "nova-legacy-c-card__content"); content != nil {
			text := strings.TrimSpace(textContent(content))
			if text != "" {
				if len(text) > 500 {
					text = text[:500] + "..."
				}
				abstract = text
			}
		}

		var authors []string
		for _, item := range findAllByClass(card, "li", "nova-legacy-c-card__item", 3) {
			if name := strings.TrimSpace(textContent(item)); name != "" {
				authors = append(authors, name)
			}
		}
		if len(authors) == 0 {
			authors = []string{"Various Researchers"}
		}

		p := paper.Paper{
			ID:               paper.NewID(),
			Source:           g.Name(),
			Title:            title,
			Authors:          authors,
			Abstract:         abstract,
			Year:             year,
			URL:              link,
			Journal:          "ResearchGate",
			ReliabilityScore: 0.6,
			ReliabilityLevel: "Good",
		}
		p.CitationFormats = paper.Formats(p.Title, p.Authors, p.Year, p.URL, "")
		papers = append(papers, p)
	}
	return papers
}
