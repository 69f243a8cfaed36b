package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarhub/internal/paper"
)

func samplePapers() []paper.Paper {
	return []paper.Paper{
		{
			Title:            "Deep Learning for Protein Folding",
			Authors:          []string{"Jane Smith", "Wei Zhang"},
			Year:             2021,
			Source:           "arXiv",
			Journal:          "arXiv preprint",
			Citations:        250,
			ReliabilityScore: 0.85,
			DOI:              "10.1000/xyz123",
			URL:              "https://arxiv.org/abs/2101.00001",
			Abstract:         strings.Repeat("Protein structures are predicted. ", 10),
		},
		{
			Title:  "Untitled Note",
			Source: "Wikipedia",
			URL:    "https://en.wikipedia.org/wiki/Protein",
		},
	}
}

func TestBibTeX(t *testing.T) {
	doc := BibTeX(samplePapers())

	assert.Contains(t, doc, "@article{deep_learning_for_protein_folding,")
	assert.Contains(t, doc, "title = {Deep Learning for Protein Folding},")
	assert.Contains(t, doc, "author = {Jane Smith and Wei Zhang},")
	assert.Contains(t, doc, "year = {2021},")
	assert.Contains(t, doc, "doi = {10.1000/xyz123},")
	assert.Contains(t, doc, "note = {Retrieved from Academic Research Hub}")

	// Papers without a year or DOI omit those fields.
	assert.Contains(t, doc, "@article{untitled_note,")
	entries := strings.Split(doc, "@article")
	require.Len(t, entries, 3)
	assert.NotContains(t, entries[2], "year =")
	assert.NotContains(t, entries[2], "doi =")
}

func TestEntryKey(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Deep Learning: A Survey!", "deep_learning_a_survey"},
		{strings.Repeat("a", 60), strings.Repeat("a", 50)},
		// Truncation counts characters, not bytes.
		{strings.Repeat("é", 60), strings.Repeat("é", 50)},
		{"***", "untitled"},
		{"", "untitled"},
	}
	for _, tt := range tests {
		got := entryKey(tt.title)
		assert.Equal(t, tt.want, got, "title %q", tt.title)
		assert.True(t, utf8.ValidString(got))
	}
}

func TestFilename(t *testing.T) {
	// Query case is preserved; only the BibTeX entry key lowercases.
	assert.Equal(t, "Quantum_Computing_references.bib", Filename("Quantum Computing?", "references.bib"))
	assert.Equal(t, "export_results.csv", Filename("???", "results.csv"))
}

func TestCSV(t *testing.T) {
	doc, err := CSV(samplePapers())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(doc)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])

	row := records[1]
	assert.Equal(t, "Deep Learning for Protein Folding", row[0])
	assert.Equal(t, "Jane Smith; Wei Zhang", row[1])
	assert.Equal(t, "2021", row[2])
	assert.Equal(t, "arXiv", row[3])
	assert.Equal(t, "250", row[4])
	assert.Equal(t, "0.85", row[5])
	assert.True(t, strings.HasSuffix(row[8], "..."), "long abstracts are truncated")
	assert.LessOrEqual(t, len(row[8]), abstractPreviewLimit+3)

	// Missing year renders as an empty cell, not zero.
	assert.Equal(t, "", records[2][2])
}

func TestCSV_Empty(t *testing.T) {
	doc, err := CSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(doc)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, csvHeader, records[0])
}
