package article

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "  Boise   wildfire ", "Boise wildfire"},
		{"tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities", "Tom &amp; Jerry &lt;3 &quot;quoted&quot; &#39;single&#39;", `Tom & Jerry <3 "quoted" 'single'`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanHTML(tt.input))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	out := SanitizeHTML(`<p onclick="evil()">Body</p><script>alert(1)</script>`)

	assert.Contains(t, out, "<p>Body</p>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.Equal(t, "", SanitizeHTML(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "Cœu", Truncate("Cœur d'Alene", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestFold(t *testing.T) {
	assert.Equal(t, Fold("IDAHO"), Fold("idaho"))
	assert.True(t, ContainsFold("Wildfire near BOISE", "boise"))
	assert.False(t, ContainsFold("Wildfire near Boise", ""))
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, fallback, ParseDate("", fallback))
	assert.Equal(t, fallback, ParseDate("yesterday-ish", fallback))
	assert.True(t, time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC).Equal(ParseDate("2026-10-15T08:00:00Z", fallback)))
	assert.True(t, time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC).Equal(ParseDate("Thu, 15 Oct 2026 10:00:00 +0000", fallback)))
}

func TestClassifySource(t *testing.T) {
	assert.Equal(t, SourceWire, ClassifySource("Reuters"))
	assert.Equal(t, SourceLocal, ClassifySource("idaho statesman"))
	assert.Equal(t, SourceRegional, ClassifySource("Spokesman-Review"))
	assert.Equal(t, SourceUnknown, ClassifySource("Some Blog"))
	assert.Equal(t, SourceUnknown, ClassifySource(""))
}

func TestClassifySourceFindsLocalAndBroadcastNamesInside(t *testing.T) {
	assert.Equal(t, SourceBroadcast, ClassifySource("KTVB.com"))
	assert.Equal(t, SourceBroadcast, ClassifySource("KIVI-TV Idaho"))
	assert.Equal(t, SourceLocal, ClassifySource("Idaho Statesman (via Yahoo)"))
	assert.Equal(t, SourceLocal, ClassifySource("BoiseDev Newsletter"))

	// Only local and broadcast names match inside longer names.
	assert.Equal(t, SourceUnknown, ClassifySource("Reuters via Yahoo"))
	assert.Equal(t, SourceUnknown, ClassifySource("Seattle Times Blog"))
}

func TestArticleKeys(t *testing.T) {
	withURL := Article{Title: "T", Source: "S", URL: "https://example.com"}
	withoutURL := Article{Title: "T", Source: "S"}

	assert.Equal(t, "https://example.com", withURL.Key())
	assert.Equal(t, "https://example.com", withURL.FetchKey())
	assert.Equal(t, "T", withoutURL.Key())
	assert.Equal(t, "T-S", withoutURL.FetchKey())
}

func TestConfidenceRank(t *testing.T) {
	assert.Greater(t, ConfidenceHigh.Rank(), ConfidenceMedium.Rank())
	assert.Greater(t, ConfidenceMedium.Rank(), ConfidenceLow.Rank())
	assert.Equal(t, 0, Confidence("").Rank())
}
