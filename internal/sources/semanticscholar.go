package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"scholarhub/internal/paper"
)

const semanticScholarDefaultURL = "https://api.semanticscholar.org/graph/v1/paper/search"

// SemanticScholar searches the Semantic Scholar Graph API.
type SemanticScholar struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

// NewSemanticScholar creates a Semantic Scholar client. The API key is
// optional; without it the public rate limits apply.
func NewSemanticScholar(baseURL, apiKey string, client *http.Client) *SemanticScholar {
	if baseURL == "" {
		baseURL = semanticScholarDefaultURL
	}
	return &SemanticScholar{
		baseURL:   baseURL,
		apiKey:    apiKey,
		userAgent: DefaultUserAgent,
		client:    httpClientOrDefault(client),
	}
}

// Name implements Source.
func (s *SemanticScholar) Name() string { return "Semantic Scholar" }

// Search implements Source.
func (s *SemanticScholar) Search(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "title,authors,abstract,year,citationCount,url,openAccessPdf,externalIds,venue,publicationVenue")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("semantic scholar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: semantic scholar returned %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var result s2SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	papers := make([]paper.Paper, 0, len(result.Data))
	for _, item := range result.Data {
		authors := make([]string, 0, len(item.Authors))
		for _, au := range item.Authors {
			if au.Name != "" {
				authors = append(authors, au.Name)
			}
		}

		venue := item.Venue
		if venue == "" && item.PublicationVenue != nil {
			venue = item.PublicationVenue.Name
		}

		pdfURL := ""
		if item.OpenAccessPDF != nil {
			pdfURL = item.OpenAccessPDF.URL
		}

		p := paper.Paper{
			ID:                paper.NewID(),
			Source:            s.Name(),
			Title:             item.Title,
			Authors:           authors,
			Abstract:          item.Abstract,
			Year:              item.Year,
			URL:               item.URL,
			PDFURL:            pdfURL,
			DOI:               item.ExternalIDs.DOI,
			Citations:         item.CitationCount,
			Journal:           venue,
			ReliabilityScore:  0.7,
			ReliabilityLevel:  "High",
			FullTextAvailable: item.OpenAccessPDF != nil,
		}
		p.CitationFormats = paper.Formats(p.Title, p.Authors, p.Year, p.URL, p.DOI)
		papers = append(papers, p)
	}
	return papers, nil
}

type s2SearchResponse struct {
	Data []s2Paper `json:"data"`
}

type s2Paper struct {
	Title            string      `json:"title"`
	Abstract         string      `json:"abstract"`
	Year             int         `json:"year"`
	CitationCount    int         `json:"citationCount"`
	URL              string      `json:"url"`
	Venue            string      `json:"venue"`
	Authors          []s2Author  `json:"authors"`
	ExternalIDs      s2External  `json:"externalIds"`
	OpenAccessPDF    *s2OpenPDF  `json:"openAccessPdf"`
	PublicationVenue *s2PubVenue `json:"publicationVenue"`
}

type s2Author struct {
	Name string `json:"name"`
}

type s2External struct {
	DOI string `json:"DOI"`
}

type s2OpenPDF struct {
	URL string `json:"url"`
}

type s2PubVenue struct {
	Name string `json:"name"`
}
