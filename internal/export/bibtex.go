// Package export renders selected papers as downloadable documents:
// BibTeX bibliographies and CSV spreadsheets.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"scholarhub/internal/paper"
)

// BibTeX renders the selected papers as a BibTeX document of @article
// entries. Entry keys derive from the paper titles.
func BibTeX(sources []paper.Paper) string {
	var sb strings.Builder
	for i, src := range sources {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeBibTeXEntry(&sb, src)
	}
	return sb.String()
}

func writeBibTeXEntry(sb *strings.Builder, src paper.Paper) {
	fmt.Fprintf(sb, "@article{%s,\n", entryKey(src.Title))
	fmt.Fprintf(sb, "  title = {%s},\n", src.Title)
	fmt.Fprintf(sb, "  author = {%s},\n", strings.Join(src.Authors, " and "))
	if src.Year > 0 {
		fmt.Fprintf(sb, "  year = {%d},\n", src.Year)
	}
	if src.Journal != "" {
		fmt.Fprintf(sb, "  journal = {%s},\n", src.Journal)
	}
	if src.DOI != "" {
		fmt.Fprintf(sb, "  doi = {%s},\n", src.DOI)
	}
	if src.URL != "" {
		fmt.Fprintf(sb, "  url = {%s},\n", src.URL)
	}
	sb.WriteString("  note = {Retrieved from Academic Research Hub}\n")
	sb.WriteString("}\n")
}

// entryKey builds a citation key from the first 50 characters of the
// title, lowercased, with every non-alphanumeric run collapsed to an
// underscore.
func entryKey(title string) string {
	key := sanitize(strings.ToLower(title))
	if key == "" {
		return "untitled"
	}
	return key
}

// sanitize keeps the first 50 characters and collapses each
// non-alphanumeric run to a single underscore. Truncation counts runes
// so a multibyte character is never split.
func sanitize(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		runes = runes[:50]
	}

	var sb strings.Builder
	lastUnderscore := false
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			sb.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(sb.String(), "_")
}

// Filename derives a download filename from the search query: the
// sanitized query, case preserved, plus the given suffix,
// e.g. "references.bib".
func Filename(query, suffix string) string {
	base := sanitize(query)
	if base == "" {
		base = "export"
	}
	return base + "_" + suffix
}
