package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"scholarhub/internal/paper"
)

const doajDefaultURL = "https://doaj.org/api/v2/search/articles"

// DOAJ searches the Directory of Open Access Journals.
type DOAJ struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewDOAJ creates a DOAJ client.
func NewDOAJ(baseURL string, client *http.Client) *DOAJ {
	if baseURL == "" {
		baseURL = doajDefaultURL
	}
	return &DOAJ{
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		client:    httpClientOrDefault(client),
	}
}

// Name implements Source.
func (d *DOAJ) Name() string { return "DOAJ" }

// Search implements Source.
func (d *DOAJ) Search(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	if limit <= 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/%s?page=1&pageSize=%s",
		d.baseURL, url.PathEscape(query), strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("doaj request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: doaj returned %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var result doajResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	papers := make([]paper.Paper, 0, len(result.Results))
	for _, article := range result.Results {
		bib := article.BibJSON
		if bib.Title == "" {
			continue
		}

		authors := make([]string, 0, len(bib.Author))
		for _, au := range bib.Author {
			if au.Name != "" {
				authors = append(authors, au.Name)
			}
		}
		if len(authors) == 0 {
			authors = []string{"Unknown Authors"}
		}

		doi := bib.doi()
		link := ""
		switch {
		case doi != "":
			link = "https://doi.org/" + doi
		case len(bib.Link) > 0:
			link = bib.Link[0].URL
		}

		abstract := bib.Abstract
		if abstract == "" {
			abstract = "Abstract not available"
		}

		year, _ := strconv.Atoi(strings.TrimSpace(bib.Year))

		p := paper.Paper{
			ID:                paper.NewID(),
			Source:            d.Name(),
			Title:             bib.Title,
			Authors:           authors,
			Abstract:          abstract,
			Year:              year,
			URL:               link,
			DOI:               doi,
			Journal:           "Open Access Journal",
			ReliabilityScore:  0.7,
			ReliabilityLevel:  "High",
			FullTextAvailable: true,
		}
		p.CitationFormats = paper.Formats(p.Title, p.Authors, p.Year, p.URL, p.DOI)
		papers = append(papers, p)
	}
	return papers, nil
}

type doajResponse struct {
	Results []doajArticle `json:"results"`
}

type doajArticle struct {
	BibJSON doajBibJSON `json:"bibjson"`
}

type doajBibJSON struct {
	Title      string           `json:"title"`
	Abstract   string           `json:"abstract"`
	Year       string           `json:"year"`
	Author     []doajAuthor     `json:"author"`
	Identifier []doajIdentifier `json:"identifier"`
	Link       []doajLink       `json:"link"`
}

type doajAuthor struct {
	Name string `json:"name"`
}

type doajIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type doajLink struct {
	URL string `json:"url"`
}

// doi prefers an identifier explicitly typed "doi", falling back to the
// first identifier present.
func (b doajBibJSON) doi() string {
	for _, id := range b.Identifier {
		if strings.EqualFold(id.Type, "doi") {
			return id.ID
		}
	}
	if len(b.Identifier) > 0 {
		return b.Identifier[0].ID
	}
	return ""
}
