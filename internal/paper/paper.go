// Package paper defines the result model shared by every search source:
// a single academic work with its provenance, reliability assessment, and
// pre-rendered citation formats.
package paper

import (
	"strings"

	"github.com/google/uuid"
)

// Paper is one search result from any source. The JSON field names form the
// wire contract consumed by the results page and the synthesis/export
// endpoints, so they stay stable even where the Go names differ.
type Paper struct {
	ID                string            `json:"id"`
	Source            string            `json:"source"`
	Title             string            `json:"title"`
	Authors           []string          `json:"authors"`
	Abstract          string            `json:"abstract"`
	Year              int               `json:"year"`
	URL               string            `json:"url"`
	PDFURL            string            `json:"pdf_url"`
	DOI               string            `json:"doi"`
	Citations         int               `json:"citations"`
	Journal           string            `json:"journal"`
	ReliabilityScore  float64           `json:"reliability_score"`
	ReliabilityLevel  string            `json:"reliability_level"`
	CitationFormats   map[string]string `json:"citations_formatted"`
	FullTextAvailable bool              `json:"full_text_available"`
	Note              string            `json:"note,omitempty"`
}

// NewID returns a fresh result identifier.
func NewID() string {
	return uuid.NewString()
}

// NormalizedTitle returns the dedup key for a paper: the title lowercased
// and trimmed. Titles of three characters or fewer normalize to "" and are
// never considered duplicates of anything, they are just dropped.
func (p Paper) NormalizedTitle() string {
	t := strings.ToLower(strings.TrimSpace(p.Title))
	if len(t) <= 3 {
		return ""
	}
	return t
}

// LeadAuthor returns the first author, or "Unknown" when the list is empty.
func (p Paper) LeadAuthor() string {
	if len(p.Authors) == 0 || p.Authors[0] == "" {
		return "Unknown"
	}
	return p.Authors[0]
}
