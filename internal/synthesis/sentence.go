// Package synthesis condenses a set of selected papers into key points,
// consensus/contradiction analysis, composed summaries, and review-of-
// related-literature sections. The pipeline is deterministic: rule-based
// sentence splitting, an embedded stopword list, and term-overlap scoring.
package synthesis

import (
	"strings"
	"unicode"
)

// abbreviations that end with a period but do not terminate a sentence.
var abbreviations = map[string]bool{
	"dr":   true,
	"mr":   true,
	"mrs":  true,
	"ms":   true,
	"prof": true,
	"fig":  true,
	"eq":   true,
	"et":   true,
	"al":   true,
	"etc":  true,
	"vs":   true,
	"e.g":  true,
	"i.e":  true,
	"cf":   true,
	"no":   true,
	"vol":  true,
	"pp":   true,
}

// SplitSentences breaks text into sentences on terminal punctuation,
// keeping common academic abbreviations ("et al.", "Fig.", "e.g.") intact.
// Decimal numbers ("p < 0.05") do not split either.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		if r == '.' {
			// Decimal point: digit on both sides.
			if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				continue
			}
			if isAbbreviation(runes, start, i) {
				continue
			}
		}

		// Consume any run of closing punctuation after the terminator.
		end := i + 1
		for end < len(runes) && (runes[end] == '"' || runes[end] == ')' || runes[end] == '\'') {
			end++
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// isAbbreviation reports whether the period at index dot ends a known
// abbreviation rather than a sentence.
func isAbbreviation(runes []rune, start, dot int) bool {
	wordStart := dot
	for wordStart > start && (unicode.IsLetter(runes[wordStart-1]) || runes[wordStart-1] == '.') {
		wordStart--
	}
	word := strings.ToLower(strings.TrimSuffix(string(runes[wordStart:dot]), "."))
	return abbreviations[word]
}

// Tokenize lowercases and splits text into terms, stripping surrounding
// punctuation from each token.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}

// ContentTerms tokenizes and removes stopwords.
func ContentTerms(text string) []string {
	terms := Tokenize(text)
	content := terms[:0]
	for _, t := range terms {
		if !IsStopword(t) {
			content = append(content, t)
		}
	}
	return content
}
