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

const crossrefDefaultURL = "https://api.crossref.org/works"

// Crossref searches the Crossref works API. A mailto address, when
// configured, is appended per the Crossref polite-pool convention.
type Crossref struct {
	baseURL   string
	mailto    string
	userAgent string
	client    *http.Client
}

// NewCrossref creates a Crossref client.
func NewCrossref(baseURL, mailto string, client *http.Client) *Crossref {
	if baseURL == "" {
		baseURL = crossrefDefaultURL
	}
	return &Crossref{
		baseURL:   baseURL,
		mailto:    mailto,
		userAgent: DefaultUserAgent,
		client:    httpClientOrDefault(client),
	}
}

// Name implements Source.
func (c *Crossref) Name() string { return "Crossref" }

// Search implements Source.
func (c *Crossref) Search(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	if limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("rows", strconv.Itoa(limit))
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crossref request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: crossref returned %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var result crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	papers := make([]paper.Paper, 0, len(result.Message.Items))
	for _, item := range result.Message.Items {
		if len(item.Title) == 0 || item.Title[0] == "" {
			continue
		}

		authors := make([]string, 0, len(item.Author))
		for _, au := range item.Author {
			switch {
			case au.Given != "" && au.Family != "":
				authors = append(authors, au.Given+" "+au.Family)
			case au.Family != "":
				authors = append(authors, au.Family)
			}
		}
		if len(authors) == 0 {
			authors = []string{"Unknown Authors"}
		}

		link := item.URL
		if item.DOI != "" {
			link = "https://doi.org/" + item.DOI
		}

		journal := "Academic Publication"
		if len(item.ContainerTitle) > 0 && item.ContainerTitle[0] != "" {
			journal = item.ContainerTitle[0]
		}

		abstract := item.Abstract
		if abstract == "" {
			abstract = "Abstract not available"
		}

		p := paper.Paper{
			ID:                paper.NewID(),
			Source:            c.Name(),
			Title:             item.Title[0],
			Authors:           authors,
			Abstract:          abstract,
			Year:              item.year(),
			URL:               link,
			DOI:               item.DOI,
			Citations:         item.IsReferencedByCount,
			Journal:           journal,
			ReliabilityScore:  0.7,
			ReliabilityLevel:  "High",
			FullTextAvailable: item.DOI != "",
		}
		p.CitationFormats = paper.Formats(p.Title, p.Authors, p.Year, p.URL, p.DOI)
		papers = append(papers, p)
	}
	return papers, nil
}

type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefItem `json:"items"`
}

type crossrefItem struct {
	Title               []string         `json:"title"`
	Abstract            string           `json:"abstract"`
	DOI                 string           `json:"DOI"`
	URL                 string           `json:"URL"`
	IsReferencedByCount int              `json:"is-referenced-by-count"`
	ContainerTitle      []string         `json:"container-title"`
	Author              []crossrefAuthor `json:"author"`
	PublishedPrint      crossrefDate     `json:"published-print"`
	PublishedOnline     crossrefDate     `json:"published-online"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d crossrefDate) year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}

func (i crossrefItem) year() int {
	if y := i.PublishedPrint.year(); y > 0 {
		return y
	}
	return i.PublishedOnline.year()
}
