package paper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func TestFormats_SingleAuthor(t *testing.T) {
	c := formatsAt("Deep Learning", []string{"Yann LeCun"}, 2015, "https://example.org/dl", "", fixedNow)

	assert.Equal(t, "Yann LeCun (2015). Deep Learning. Retrieved from https://example.org/dl", c[StyleAPA])
	assert.Equal(t, "Yann LeCun. \"Deep Learning.\" 2015. Web. 2026.", c[StyleMLA])
	assert.Contains(t, c[StyleHarvard], "Accessed: 14 March 2026")
	assert.Equal(t, "[Y. LeCun et al., \"Deep Learning,\" 2015.]", c[StyleIEEE])
}

func TestFormats_TwoAuthors(t *testing.T) {
	c := formatsAt("Attention", []string{"Ashish Vaswani", "Noam Shazeer"}, 2017, "u", "", fixedNow)

	assert.Equal(t, "Ashish Vaswani & Noam Shazeer (2017). Attention. Retrieved from u", c[StyleAPA])
	assert.Equal(t, "Ashish Vaswani, and Noam Shazeer. \"Attention.\" 2017. Web. 2026.", c[StyleMLA])
}

func TestFormats_ManyAuthors(t *testing.T) {
	c := formatsAt("BERT", []string{"Jacob Devlin", "Ming-Wei Chang", "Kenton Lee"}, 2019, "u", "", fixedNow)

	assert.Equal(t, "Jacob Devlin et al. (2019). BERT. Retrieved from u", c[StyleAPA])
	assert.Equal(t, "Jacob Devlin, et al. \"BERT.\" 2019. Web. 2026.", c[StyleMLA])
	assert.Equal(t, "Jacob Devlin et al. \"BERT.\" (2019). u", c[StyleChicago])
}

func TestFormats_DOIReplacesRetrieval(t *testing.T) {
	c := formatsAt("Paper", []string{"A B"}, 2020, "https://x", "10.1000/xyz", fixedNow)

	assert.Equal(t, "A B (2020). Paper. https://doi.org/10.1000/xyz", c[StyleAPA])
	assert.Equal(t, "A B. \"Paper.\" 2020. doi:10.1000/xyz.", c[StyleMLA])
	// Other styles keep the URL form.
	assert.Contains(t, c[StyleVancouver], "Available from: https://x")
}

func TestFormats_NoAuthors(t *testing.T) {
	c := formatsAt("Anon Work", nil, 2001, "u", "", fixedNow)
	assert.Equal(t, "Unknown (2001). Anon Work. Retrieved from u", c[StyleAPA])
}

func TestNormalizedTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"mixed case trimmed", "  The Study of Things ", "the study of things"},
		{"too short", "AI", ""},
		{"empty", "", ""},
		{"exactly four chars kept", "CNNs", "cnns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paper{Title: tt.title}
			assert.Equal(t, tt.want, p.NormalizedTitle())
		})
	}
}

func TestLeadAuthor(t *testing.T) {
	assert.Equal(t, "Unknown", Paper{}.LeadAuthor())
	assert.Equal(t, "Ada Lovelace", Paper{Authors: []string{"Ada Lovelace"}}.LeadAuthor())
}
