package synthesis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"scholarhub/internal/paper"
)

// Claim is a finding sentence attributed to one or more sources.
type Claim struct {
	Text              string `json:"claim"`
	SupportingSources int    `json:"supporting_sources,omitempty"`
	SourceIndex       int    `json:"source_index,omitempty"`
}

// Result is the output of a summary synthesis.
type Result struct {
	Summary        string   `json:"summary"`
	KeyPoints      []string `json:"key_points"`
	Consensus      []Claim  `json:"consensus"`
	Contradictions []Claim  `json:"contradictions"`
	SourcesCount   int      `json:"sources_count"`
}

var (
	citationMarkerRe = regexp.MustCompile(`\[\d+\]`)
	parentheticalRe  = regexp.MustCompile(`\([^)]*\)`)
)

// academicIndicators bump a sentence's relevance score; each one present
// adds 0.1.
var academicIndicators = []string{
	"study", "research", "found", "results", "conclusion",
	"evidence", "data", "analysis", "significant", "p <",
}

// claimVerbs mark a sentence as a finding for agreement analysis.
var claimVerbs = []string{
	"found", "showed", "demonstrated", "indicated", "suggested",
	"concluded", "revealed", "confirmed",
}

// Synthesizer runs the deterministic synthesis pipeline.
type Synthesizer struct{}

// New creates a Synthesizer.
func New() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize produces the full summary result for the selected papers.
func (s *Synthesizer) Synthesize(sources []paper.Paper, query string) Result {
	texts := sourceTexts(sources)

	keyPoints := s.ExtractKeyPoints(texts, query)
	consensus, contradictions := s.AnalyzeAgreement(texts)

	return Result{
		Summary:        composeSummary(keyPoints, consensus, contradictions),
		KeyPoints:      keyPoints,
		Consensus:      consensus,
		Contradictions: contradictions,
		SourcesCount:   len(sources),
	}
}

// sourceTexts joins each paper's title and abstract into one analysis text.
func sourceTexts(sources []paper.Paper) []string {
	texts := make([]string, 0, len(sources))
	for _, src := range sources {
		text := strings.TrimSpace(fmt.Sprintf("%s. %s", src.Title, src.Abstract))
		if text != "." {
			texts = append(texts, text)
		}
	}
	return texts
}

// ExtractKeyPoints scores every sentence by query-term overlap plus
// academic-indicator bonuses and returns the top ten, deduplicated in
// score order.
func (s *Synthesizer) ExtractKeyPoints(texts []string, query string) []string {
	queryTerms := uniqueTerms(ContentTerms(query))
	if len(queryTerms) == 0 {
		queryTerms = uniqueTerms(Tokenize(query))
	}
	type scored struct {
		score    float64
		sentence string
	}
	var candidates []scored

	for _, text := range texts {
		for _, sentence := range SplitSentences(text) {
			clean := cleanSentence(sentence)
			if clean == "" {
				continue
			}

			score := 0.0
			if len(queryTerms) > 0 {
				sentenceTerms := make(map[string]struct{})
				for _, term := range Tokenize(clean) {
					sentenceTerms[term] = struct{}{}
				}
				common := 0
				for _, term := range queryTerms {
					if _, ok := sentenceTerms[term]; ok {
						common++
					}
				}
				score = float64(common) / float64(len(queryTerms))
			}

			lower := strings.ToLower(clean)
			for _, indicator := range academicIndicators {
				if strings.Contains(lower, indicator) {
					score += 0.1
				}
			}

			if score > 0 {
				candidates = append(candidates, scored{score: score, sentence: clean})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	seen := make(map[string]struct{})
	points := make([]string, 0, 10)
	for _, c := range candidates {
		if _, dup := seen[c.sentence]; dup {
			continue
		}
		seen[c.sentence] = struct{}{}
		points = append(points, c.sentence)
		if len(points) == 10 {
			break
		}
	}
	return points
}

// AnalyzeAgreement groups finding sentences by a 50-character prefix key.
// A key claimed by more than one sentence is consensus; a singleton is a
// unique (potentially contradictory) point.
func (s *Synthesizer) AnalyzeAgreement(texts []string) (consensus, contradictions []Claim) {
	type attributed struct {
		text        string
		sourceIndex int
	}
	groups := make(map[string][]attributed)
	var keyOrder []string

	for i, text := range texts {
		for _, sentence := range SplitSentences(text) {
			if !isClaim(sentence) {
				continue
			}
			claim := strings.TrimSpace(citationMarkerRe.ReplaceAllString(sentence, ""))
			key := claimKey(claim)
			if key == "" {
				continue
			}
			if _, exists := groups[key]; !exists {
				keyOrder = append(keyOrder, key)
			}
			groups[key] = append(groups[key], attributed{text: claim, sourceIndex: i})
		}
	}

	for _, key := range keyOrder {
		group := groups[key]
		if len(group) > 1 {
			consensus = append(consensus, Claim{
				Text:              group[0].text,
				SupportingSources: len(group),
			})
		} else {
			contradictions = append(contradictions, Claim{
				Text:        group[0].text,
				SourceIndex: group[0].sourceIndex,
			})
		}
	}
	return consensus, contradictions
}

// composeSummary assembles the rendered summary text from the analysis
// parts: top findings, consensus, and unique points.
func composeSummary(keyPoints []string, consensus, contradictions []Claim) string {
	if len(keyPoints) == 0 && len(consensus) == 0 && len(contradictions) == 0 {
		return "No synthesizable content was found in the selected sources."
	}

	var parts []string
	parts = append(parts, "Based on analysis of multiple academic sources:")

	if len(keyPoints) > 0 {
		parts = append(parts, "", "Key Findings:")
		for i, point := range capStrings(keyPoints, 5) {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, point))
		}
	}

	if len(consensus) > 0 {
		parts = append(parts, "", "Points of Consensus:")
		for _, item := range capClaims(consensus, 3) {
			parts = append(parts, fmt.Sprintf("- %s (supported by %d sources)", item.Text, item.SupportingSources))
		}
	}

	if len(contradictions) > 0 {
		parts = append(parts, "", "Unique or Contradictory Points:")
		for _, item := range capClaims(contradictions, 3) {
			parts = append(parts, fmt.Sprintf("- %s (from a single source)", item.Text))
		}
	}

	return strings.Join(parts, "\n")
}

// CitationsDocument renders every stored citation format of the selected
// papers as one text document.
func CitationsDocument(sources []paper.Paper) string {
	var lines []string
	for _, src := range sources {
		if len(src.CitationFormats) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("=== %s ===", titleOrUnknown(src)))

		styles := make([]string, 0, len(src.CitationFormats))
		for style := range src.CitationFormats {
			styles = append(styles, style)
		}
		sort.Strings(styles)
		for _, style := range styles {
			lines = append(lines, fmt.Sprintf("%s: %s", style, src.CitationFormats[style]))
		}
		lines = append(lines, "")
	}
	if len(lines) == 0 {
		return "No citation formats available for selected sources."
	}
	return strings.Join(lines, "\n")
}

func titleOrUnknown(p paper.Paper) string {
	if p.Title == "" {
		return "Unknown"
	}
	return p.Title
}

func cleanSentence(sentence string) string {
	clean := citationMarkerRe.ReplaceAllString(sentence, "")
	clean = parentheticalRe.ReplaceAllString(clean, "")
	// Collapse whitespace the removals left behind.
	clean = strings.Join(strings.Fields(clean), " ")
	clean = strings.ReplaceAll(clean, " .", ".")
	clean = strings.ReplaceAll(clean, " ,", ",")
	return strings.TrimSpace(clean)
}

func isClaim(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, verb := range claimVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// claimKey is the grouping key: the first 50 characters, lowercased.
// Truncation counts runes so multibyte text keeps a valid key.
func claimKey(claim string) string {
	runes := []rune(strings.ToLower(claim))
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return strings.TrimSpace(string(runes))
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func capClaims(items []Claim, n int) []Claim {
	if len(items) > n {
		return items[:n]
	}
	return items
}
