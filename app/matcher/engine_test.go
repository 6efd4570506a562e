package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/geo"
	"github.com/lysyi3m/news-watch/app/watch"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(geo.NewScorer(), func() time.Time { return fixedNow })
}

func wildfireWatcher() watch.Watcher {
	return watch.Watcher{
		ID:          "w1",
		Name:        "Wildfire",
		Keywords:    []string{"wildfire"},
		GeoState:    "Idaho",
		DateMode:    watch.DateModeRolling,
		RollingDays: 3,
	}
}

func TestMatchBoiseWildfireScenario(t *testing.T) {
	a := article.Article{
		Title:  "Boise wildfire forces evacuations",
		Source: "Idaho Statesman",
		Date:   fixedNow.Add(-24 * time.Hour),
	}

	result := newTestEngine().Match([]article.Article{a}, wildfireWatcher())

	require.Len(t, result.Matched, 1)
	assert.Empty(t, result.Excluded)

	m := result.Matched[0]
	assert.Contains(t, []article.Confidence{article.ConfidenceMedium, article.ConfidenceHigh}, m.GeoConfidence)
	assert.GreaterOrEqual(t, m.GeoScore, 0.3)
	assert.True(t, m.KeywordMatch)
	assert.False(t, m.EntityMatch)
	assert.Equal(t, []string{"Boise"}, m.MatchedLocations)
}

func TestMatchFalsePositiveIsDroppedNotExcluded(t *testing.T) {
	a := article.Article{Title: "Idaho Springs ski resort reopens after wildfire", Date: fixedNow}

	result := newTestEngine().Match([]article.Article{a}, wildfireWatcher())

	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Excluded)
}

func TestMatchWithoutInclusionIsSilentlyDropped(t *testing.T) {
	a := article.Article{Title: "Boise council meets", Source: "Idaho Statesman", Date: fixedNow}

	result := newTestEngine().Match([]article.Article{a}, wildfireWatcher())

	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Excluded)
}

func TestMatchTrackedEntityIsAlternativeInclusion(t *testing.T) {
	w := wildfireWatcher()
	w.TrackedEntities = []string{"Brad Little"}
	a := article.Article{Title: "Gov. Brad Little signs budget in Boise", Source: "Idaho Statesman", Date: fixedNow}

	result := newTestEngine().Match([]article.Article{a}, w)

	require.Len(t, result.Matched, 1)
	assert.False(t, result.Matched[0].KeywordMatch)
	assert.True(t, result.Matched[0].EntityMatch)
}

func TestMatchExclusionTakesPrecedence(t *testing.T) {
	w := wildfireWatcher()
	w.ExcludeKeywords = []string{"drill"}
	a := article.Article{Title: "Boise wildfire DRILL planned", Source: "Idaho Statesman", Date: fixedNow}

	result := newTestEngine().Match([]article.Article{a}, w)

	assert.Empty(t, result.Matched)
	require.Len(t, result.Excluded, 1)
	assert.Equal(t, "matched exclusion keyword: drill", result.Excluded[0].Reason)
	assert.Equal(t, "w1", result.Excluded[0].MatchedWatcherID)
}

func TestMatchGeoFloor(t *testing.T) {
	articles := []article.Article{
		{Title: "Oregon wildfire spreads", URL: "https://example.com/or", Date: fixedNow},
		{Title: "Gem State wildfire season ends", URL: "https://example.com/gem", Date: fixedNow},
	}

	result := newTestEngine().Match(articles, wildfireWatcher())

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "https://example.com/gem", result.Matched[0].URL)
	assert.Equal(t, article.ConfidenceLow, result.Matched[0].GeoConfidence)
	assert.Equal(t, 0.2, result.Matched[0].GeoScore)
}

func TestMatchWithoutGeoCriteriaScoresHigh(t *testing.T) {
	w := wildfireWatcher()
	w.GeoState = ""

	result := newTestEngine().Match([]article.Article{{Title: "Oregon wildfire spreads", Date: fixedNow}}, w)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, 1.0, result.Matched[0].GeoScore)
	assert.Equal(t, article.ConfidenceHigh, result.Matched[0].GeoConfidence)
}

func TestMatchRollingWindowIsInclusive(t *testing.T) {
	w := wildfireWatcher()
	w.GeoState = ""
	w.RollingDays = 7

	articles := []article.Article{
		{Title: "wildfire boundary", Date: fixedNow.Add(-7 * 24 * time.Hour)},
		{Title: "wildfire too old", Date: fixedNow.Add(-8 * 24 * time.Hour)},
		{Title: "wildfire undated"},
	}

	result := newTestEngine().Match(articles, w)

	require.Len(t, result.Matched, 2)
	titles := []string{result.Matched[0].Title, result.Matched[1].Title}
	assert.ElementsMatch(t, []string{"wildfire boundary", "wildfire undated"}, titles)
}

func TestMatchSourceTypeFilter(t *testing.T) {
	w := wildfireWatcher()
	w.GeoState = ""
	w.SourceTypeFilter = []article.SourceType{article.SourceLocal}

	articles := []article.Article{
		{Title: "wildfire local", SourceType: article.SourceLocal, Date: fixedNow},
		{Title: "wildfire wire", SourceType: article.SourceWire, Date: fixedNow},
	}

	result := newTestEngine().Match(articles, w)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "wildfire local", result.Matched[0].Title)
}

func TestMatchSortsByConfidenceThenDate(t *testing.T) {
	articles := []article.Article{
		{Title: "Gem State wildfire outlook", URL: "low", Date: fixedNow},
		{Title: "Boise wildfire older", URL: "medium-old", Source: "Idaho Statesman", Date: fixedNow.Add(-2 * time.Hour)},
		{Title: "Idaho wildfire near Meridian", URL: "high", Source: "Idaho Statesman", Date: fixedNow.Add(-48 * time.Hour)},
		{Title: "Boise wildfire newer", URL: "medium-new", Source: "Idaho Statesman", Date: fixedNow.Add(-1 * time.Hour)},
	}

	result := newTestEngine().Match(articles, wildfireWatcher())

	require.Len(t, result.Matched, 4)
	var order []string
	for _, m := range result.Matched {
		order = append(order, m.URL)
	}
	assert.Equal(t, []string{"high", "medium-new", "medium-old", "low"}, order)
}

func TestMatchIsDeterministic(t *testing.T) {
	articles := []article.Article{
		{Title: "Boise wildfire a", URL: "a", Source: "Idaho Statesman", Date: fixedNow},
		{Title: "Boise wildfire b", URL: "b", Source: "Idaho Statesman", Date: fixedNow},
	}
	e := newTestEngine()

	first := e.Match(articles, wildfireWatcher())
	second := e.Match(articles, wildfireWatcher())

	assert.Equal(t, first, second)
	assert.Equal(t, "a", first.Matched[0].URL)
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name    string
		watcher watch.Watcher
		want    string
	}{
		{"keywords only", watch.Watcher{Keywords: []string{"wildfire", "smoke"}}, "wildfire OR smoke"},
		{"with state", watch.Watcher{Keywords: []string{"wildfire"}, GeoState: "Idaho"}, "wildfire Idaho"},
		{"with region", watch.Watcher{Keywords: []string{"wildfire", "evacuation"}, GeoState: "Idaho", GeoRegion: "Southwestern Idaho"}, "wildfire OR evacuation Idaho Southwestern Idaho"},
		{"no keywords", watch.Watcher{GeoState: "Idaho"}, ""},
		{"blank keywords", watch.Watcher{Keywords: []string{" ", ""}, GeoState: "Idaho"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.watcher))
		})
	}
}
