// Package reliability scores search results on how trustworthy their origin
// is. Two passes exist: a weighted component score computed from the result's
// own metadata (domain, citations, age, venue), and a post-aggregation
// adjustment that folds in per-source floors and recency/citation bonuses
// before results are ranked.
package reliability

import (
	"sort"
	"strings"
	"time"

	"scholarhub/internal/paper"
)

// Weights controls how much each component contributes to the weighted
// score. They should sum to 1.0.
type Weights struct {
	Domain            float64 `yaml:"domain_score"`
	CitationCount     float64 `yaml:"citation_count"`
	AuthorCredibility float64 `yaml:"author_credentials"`
	PublicationDate   float64 `yaml:"publication_date"`
	JournalImpact     float64 `yaml:"journal_impact"`
}

// DefaultWeights mirrors the service's shipped scoring profile.
func DefaultWeights() Weights {
	return Weights{
		Domain:            0.30,
		CitationCount:     0.25,
		AuthorCredibility: 0.20,
		PublicationDate:   0.15,
		JournalImpact:     0.10,
	}
}

// Sum returns the total of all weights, used by config validation.
func (w Weights) Sum() float64 {
	return w.Domain + w.CitationCount + w.AuthorCredibility + w.PublicationDate + w.JournalImpact
}

// Scorer assigns reliability scores and levels to papers.
type Scorer struct {
	weights Weights
	now     func() time.Time
}

// NewScorer builds a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w, now: time.Now}
}

// Score computes the weighted component score in [0, 1] from a paper's own
// metadata. Used when a source provides no base score of its own.
func (s *Scorer) Score(p paper.Paper) float64 {
	score := domainScore(p.URL)*s.weights.Domain +
		citationScore(p.Citations)*s.weights.CitationCount +
		s.dateScore(p.Year)*s.weights.PublicationDate +
		venueScore(p.Journal)*s.weights.JournalImpact

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Adjust re-scores a paper after aggregation: applies the per-source floor,
// recency and citation bonuses, clamps to [0.3, 1.0], and refreshes the
// level band. The paper's existing score (set by its source) is the base.
func (s *Scorer) Adjust(p *paper.Paper) {
	score := p.ReliabilityScore
	if score == 0 {
		score = 0.5
	}

	switch p.Source {
	case "arXiv", "Crossref", "DOAJ":
		if score < 0.7 {
			score = 0.7
		}
	case "Wikipedia":
		score = 0.6
	case "Research Institution":
		score = 0.9
	}

	if p.Year > 0 {
		age := s.now().Year() - p.Year
		switch {
		case age <= 3:
			score += 0.1
		case age <= 10:
			score += 0.05
		}
	}

	switch {
	case p.Citations > 100:
		score += 0.2
	case p.Citations > 10:
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0.3 {
		score = 0.3
	}

	// Two decimal places keeps the rendered score stable across runs.
	p.ReliabilityScore = float64(int(score*100+0.5)) / 100
	p.ReliabilityLevel = Level(p.ReliabilityScore)
}

// Rank adjusts every paper and sorts them by score, highest first. The sort
// is stable so equal scores keep their source ordering.
func (s *Scorer) Rank(papers []paper.Paper) {
	for i := range papers {
		s.Adjust(&papers[i])
	}
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].ReliabilityScore > papers[j].ReliabilityScore
	})
}

// Level maps a score onto the displayed reliability band.
func Level(score float64) string {
	switch {
	case score >= 0.8:
		return "Very High"
	case score >= 0.7:
		return "High"
	case score >= 0.6:
		return "Good"
	case score >= 0.5:
		return "Medium"
	default:
		return "Low"
	}
}

var highTrustDomains = []string{
	".edu", ".ac.", "arxiv.org", "pubmed", "nih.gov",
	"science.org", "nature.com", "thelancet.com",
}

var mediumTrustDomains = []string{
	"researchgate", "academia.edu", "springer",
	"ieee.org", "acm.org", "jstor.org",
}

func domainScore(url string) float64 {
	if url == "" {
		return 0.3
	}
	lower := strings.ToLower(url)
	for _, d := range highTrustDomains {
		if strings.Contains(lower, d) {
			return 0.9
		}
	}
	for _, d := range mediumTrustDomains {
		if strings.Contains(lower, d) {
			return 0.7
		}
	}
	if strings.Contains(lower, ".gov") {
		return 0.8
	}
	return 0.4
}

func citationScore(citations int) float64 {
	switch {
	case citations > 1000:
		return 1.0
	case citations > 100:
		return 0.8
	case citations > 10:
		return 0.6
	case citations > 0:
		return 0.4
	default:
		return 0.3
	}
}

func (s *Scorer) dateScore(year int) float64 {
	if year == 0 {
		return 0.5
	}
	age := s.now().Year() - year
	switch {
	case age <= 2:
		return 0.8
	case age <= 5:
		return 0.9
	case age <= 10:
		return 0.7
	case age <= 20:
		return 0.5
	default:
		return 0.3
	}
}

var highImpactVenues = []string{
	"nature", "science", "cell", "lancet", "nejm",
	"pnas", "jama", "bmj", "plos one",
}

var goodVenues = []string{
	"ieee", "acm", "springer", "elsevier", "wiley",
	"taylor & francis", "oxford university press",
}

func venueScore(venue string) float64 {
	if venue == "" {
		return 0.5
	}
	lower := strings.ToLower(venue)
	for _, v := range highImpactVenues {
		if strings.Contains(lower, v) {
			return 0.9
		}
	}
	for _, v := range goodVenues {
		if strings.Contains(lower, v) {
			return 0.7
		}
	}
	return 0.5
}
