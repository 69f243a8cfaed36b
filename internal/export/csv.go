package export

import (
	"encoding/csv"
	"fmt"
	"strings"

	"scholarhub/internal/paper"
)

// csvHeader is the fixed column order of CSV exports.
var csvHeader = []string{
	"Title", "Authors", "Year", "Source", "Citations",
	"Reliability Score", "DOI", "URL", "Abstract Preview",
}

const abstractPreviewLimit = 200

// CSV renders the selected papers as a CSV document with one row per
// paper. Abstracts are truncated to a short preview.
func CSV(sources []paper.Paper) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, src := range sources {
		row := []string{
			src.Title,
			strings.Join(src.Authors, "; "),
			yearField(src.Year),
			src.Source,
			fmt.Sprintf("%d", src.Citations),
			fmt.Sprintf("%.2f", src.ReliabilityScore),
			src.DOI,
			src.URL,
			abstractPreview(src.Abstract),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return sb.String(), nil
}

func yearField(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf("%d", year)
}

func abstractPreview(abstract string) string {
	runes := []rune(abstract)
	if len(runes) <= abstractPreviewLimit {
		return abstract
	}
	return string(runes[:abstractPreviewLimit]) + "..."
}
