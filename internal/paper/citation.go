package paper

import (
	"fmt"
	"strings"
	"time"
)

// Citation style names used as keys in Paper.CitationFormats.
const (
	StyleAPA       = "APA"
	StyleMLA       = "MLA"
	StyleChicago   = "Chicago"
	StyleHarvard   = "Harvard"
	StyleIEEE      = "IEEE"
	StyleVancouver = "Vancouver"
)

// Formats renders a work in the six supported citation styles. A DOI, when
// present, replaces the retrieval phrasing in the APA and MLA entries.
func Formats(title string, authors []string, year int, url, doi string) map[string]string {
	return formatsAt(title, authors, year, url, doi, time.Now())
}

func formatsAt(title string, authors []string, year int, url, doi string, now time.Time) map[string]string {
	if len(authors) == 0 {
		authors = []string{"Unknown"}
	}

	var apaAuthors, mlaAuthors string
	switch len(authors) {
	case 1:
		apaAuthors = authors[0]
		mlaAuthors = authors[0]
	case 2:
		apaAuthors = fmt.Sprintf("%s & %s", authors[0], authors[1])
		mlaAuthors = fmt.Sprintf("%s, and %s", authors[0], authors[1])
	default:
		apaAuthors = fmt.Sprintf("%s et al.", authors[0])
		mlaAuthors = fmt.Sprintf("%s, et al.", authors[0])
	}

	citations := map[string]string{
		StyleAPA:       fmt.Sprintf("%s (%d). %s. Retrieved from %s", apaAuthors, year, title, url),
		StyleMLA:       fmt.Sprintf("%s. \"%s.\" %d. Web. %d.", mlaAuthors, title, year, now.Year()),
		StyleChicago:   fmt.Sprintf("%s et al. \"%s.\" (%d). %s", authors[0], title, year, url),
		StyleHarvard:   fmt.Sprintf("%s et al. (%d) %s. Available at: %s (Accessed: %s)", authors[0], year, title, url, now.Format("02 January 2006")),
		StyleIEEE:      fmt.Sprintf("[%s. %s et al., \"%s,\" %d.]", leadInitial(authors[0]), leadSurname(authors[0]), title, year),
		StyleVancouver: fmt.Sprintf("%s. %s. [Internet]. %d. Available from: %s", apaAuthors, title, year, url),
	}

	if doi != "" {
		citations[StyleAPA] = fmt.Sprintf("%s (%d). %s. https://doi.org/%s", apaAuthors, year, title, doi)
		citations[StyleMLA] = fmt.Sprintf("%s. \"%s.\" %d. doi:%s.", mlaAuthors, title, year, doi)
	}

	return citations
}

func leadInitial(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return "U"
	}
	return string([]rune(author)[0])
}

func leadSurname(author string) string {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return "Unknown"
	}
	return fields[len(fields)-1]
}
