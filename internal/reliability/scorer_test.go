package reliability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scholarhub/internal/paper"
)

func fixedScorer() *Scorer {
	s := NewScorer(DefaultWeights())
	s.now = func() time.Time { return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestDomainScore(t *testing.T) {
	tests := []struct {
		url  string
		want float64
	}{
		{"", 0.3},
		{"https://arxiv.org/abs/1234", 0.9},
		{"https://web.mit.edu/paper", 0.9},
		{"https://pubmed.ncbi.nlm.nih.gov/x", 0.9},
		{"https://www.researchgate.net/pub", 0.7},
		{"https://dl.acm.org/doi/x", 0.7},
		{"https://www.usda.gov/report", 0.8},
		{"https://randomblog.example.com", 0.4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domainScore(tt.url), "url=%q", tt.url)
	}
}

func TestCitationScore(t *testing.T) {
	assert.Equal(t, 1.0, citationScore(1500))
	assert.Equal(t, 0.8, citationScore(101))
	assert.Equal(t, 0.6, citationScore(11))
	assert.Equal(t, 0.4, citationScore(1))
	assert.Equal(t, 0.3, citationScore(0))
}

func TestDateScore(t *testing.T) {
	s := fixedScorer()
	assert.Equal(t, 0.8, s.dateScore(2025)) // very recent
	assert.Equal(t, 0.9, s.dateScore(2022)) // recent
	assert.Equal(t, 0.7, s.dateScore(2018)) // established
	assert.Equal(t, 0.5, s.dateScore(2008)) // classic
	assert.Equal(t, 0.3, s.dateScore(1990)) // likely outdated
	assert.Equal(t, 0.5, s.dateScore(0))    // unknown
}

func TestVenueScore(t *testing.T) {
	assert.Equal(t, 0.9, venueScore("Nature Communications"))
	assert.Equal(t, 0.7, venueScore("IEEE Transactions on Software Engineering"))
	assert.Equal(t, 0.5, venueScore("Workshop on Obscure Topics"))
	assert.Equal(t, 0.5, venueScore(""))
}

func TestLevelBands(t *testing.T) {
	assert.Equal(t, "Very High", Level(0.85))
	assert.Equal(t, "High", Level(0.7))
	assert.Equal(t, "Good", Level(0.65))
	assert.Equal(t, "Medium", Level(0.5))
	assert.Equal(t, "Low", Level(0.49))
}

func TestAdjust_SourceFloorsAndBonuses(t *testing.T) {
	s := fixedScorer()

	t.Run("arXiv floor plus recency", func(t *testing.T) {
		p := paper.Paper{Source: "arXiv", ReliabilityScore: 0.5, Year: 2025}
		s.Adjust(&p)
		// floor 0.7 + recency 0.1
		assert.InDelta(t, 0.8, p.ReliabilityScore, 0.001)
		assert.Equal(t, "Very High", p.ReliabilityLevel)
	})

	t.Run("wikipedia pinned before bonuses", func(t *testing.T) {
		p := paper.Paper{Source: "Wikipedia", ReliabilityScore: 0.9, Year: 1990}
		s.Adjust(&p)
		assert.InDelta(t, 0.6, p.ReliabilityScore, 0.001)
	})

	t.Run("institution pinned high", func(t *testing.T) {
		p := paper.Paper{Source: "Research Institution", ReliabilityScore: 0.4}
		s.Adjust(&p)
		assert.InDelta(t, 0.9, p.ReliabilityScore, 0.001)
	})

	t.Run("citation bonus and clamp", func(t *testing.T) {
		p := paper.Paper{Source: "Semantic Scholar", ReliabilityScore: 0.9, Year: 2026, Citations: 500}
		s.Adjust(&p)
		assert.InDelta(t, 1.0, p.ReliabilityScore, 0.001)
	})

	t.Run("lower clamp", func(t *testing.T) {
		p := paper.Paper{Source: "Somewhere", ReliabilityScore: 0.1}
		s.Adjust(&p)
		assert.InDelta(t, 0.3, p.ReliabilityScore, 0.001)
	})

	t.Run("zero score defaults to medium base", func(t *testing.T) {
		p := paper.Paper{Source: "Somewhere"}
		s.Adjust(&p)
		assert.InDelta(t, 0.5, p.ReliabilityScore, 0.001)
	})
}

func TestRank_SortsDescendingStable(t *testing.T) {
	s := fixedScorer()
	papers := []paper.Paper{
		{Title: "low", Source: "Somewhere", ReliabilityScore: 0.35},
		{Title: "high", Source: "Research Institution"},
		{Title: "mid", Source: "Semantic Scholar", ReliabilityScore: 0.55},
	}
	s.Rank(papers)

	assert.Equal(t, "high", papers[0].Title)
	assert.Equal(t, "mid", papers[1].Title)
	assert.Equal(t, "low", papers[2].Title)
}

func TestScore_WeightedComponents(t *testing.T) {
	s := fixedScorer()
	p := paper.Paper{
		URL:       "https://arxiv.org/abs/1",
		Citations: 200,
		Year:      2024,
		Journal:   "Nature",
	}
	// 0.9*0.30 + 0.8*0.25 + 0.8*0.15 + 0.9*0.10 = 0.68
	assert.InDelta(t, 0.68, s.Score(p), 0.001)
}
