package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"scholarhub/internal/paper"
)

// GenerateRRL composes a Review of Related Literature section from the
// selected papers: an introduction, one paragraph per source in
// chronological order with an in-text citation, and a closing synthesis
// paragraph naming the recurring themes.
func GenerateRRL(sources []paper.Paper, query string) string {
	if len(sources) == 0 {
		return "No sources were selected for the literature review."
	}

	ordered := make([]paper.Paper, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		// Undated works sort last.
		if ordered[i].Year == 0 {
			return false
		}
		if ordered[j].Year == 0 {
			return true
		}
		return ordered[i].Year < ordered[j].Year
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Review of Related Literature: %s\n\n", query)
	fmt.Fprintf(&sb,
		"This review examines %d sources addressing %s. The works are discussed in chronological order to trace how the topic has developed.\n\n",
		len(ordered), query)

	for _, src := range ordered {
		sb.WriteString(reviewParagraph(src))
		sb.WriteString("\n\n")
	}

	themes := recurringThemes(ordered, 3)
	if len(themes) > 0 {
		fmt.Fprintf(&sb,
			"Taken together, the reviewed literature converges on several recurring themes: %s. These threads frame the current understanding of %s and indicate where further investigation is warranted.",
			strings.Join(themes, ", "), query)
	} else {
		fmt.Fprintf(&sb,
			"Taken together, the reviewed literature frames the current understanding of %s and indicates where further investigation is warranted.",
			query)
	}

	return sb.String()
}

// reviewParagraph writes one source's paragraph with an in-text citation.
func reviewParagraph(src paper.Paper) string {
	citation := inTextCitation(src)

	abstract := strings.TrimSpace(src.Abstract)
	summary := firstSentences(abstract, 2)
	if summary == "" {
		summary = "The work does not provide an abstract"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s examined %q. %s", citation, src.Title, summary)
	if !strings.HasSuffix(sb.String(), ".") {
		sb.WriteString(".")
	}
	if src.Citations > 100 {
		fmt.Fprintf(&sb, " The work has been widely cited (%d citations), indicating substantial influence in the field.", src.Citations)
	}
	return sb.String()
}

// inTextCitation renders "(Author et al., 2020)" style attribution text.
func inTextCitation(src paper.Paper) string {
	author := src.LeadAuthor()
	suffix := ""
	if len(src.Authors) > 1 {
		suffix = " et al."
	}
	if src.Year > 0 {
		return fmt.Sprintf("%s%s (%d)", author, suffix, src.Year)
	}
	return fmt.Sprintf("%s%s (n.d.)", author, suffix)
}

// firstSentences returns up to n sentences from text.
func firstSentences(text string, n int) string {
	sentences := SplitSentences(text)
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}

// recurringThemes counts content terms across all titles and abstracts and
// returns the most frequent terms that appear in more than one source.
func recurringThemes(sources []paper.Paper, n int) []string {
	termSources := make(map[string]int)
	for _, src := range sources {
		seen := make(map[string]struct{})
		for _, term := range ContentTerms(src.Title + " " + src.Abstract) {
			if len(term) < 4 {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			termSources[term]++
		}
	}

	type themeCount struct {
		term  string
		count int
	}
	var themes []themeCount
	for term, count := range termSources {
		if count > 1 {
			themes = append(themes, themeCount{term, count})
		}
	}
	sort.Slice(themes, func(i, j int) bool {
		if themes[i].count != themes[j].count {
			return themes[i].count > themes[j].count
		}
		return themes[i].term < themes[j].term
	})

	if len(themes) > n {
		themes = themes[:n]
	}
	out := make([]string, len(themes))
	for i, t := range themes {
		out[i] = t.term
	}
	return out
}
