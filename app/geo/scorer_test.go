package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/news-watch/app/article"
)

func TestScoreWithoutCriteriaBypasses(t *testing.T) {
	s := NewScorer()

	result := s.Score(article.Article{Title: "Anything at all"}, Criteria{State: "  "})

	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, article.ConfidenceHigh, result.Confidence)
	assert.Empty(t, result.MatchedLocations)
	assert.Equal(t, 0, result.Layer)
}

func TestScoreFalsePositiveOverridesEverything(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name   string
		title  string
		actual string
	}{
		{"ski town", "Idaho Springs ski resort reopens", "Colorado"},
		{"street name", "Crash on Idaho Street in Boise", "street name, not state"},
		{"detention center", "Northwest Detention Center hunger strike", "Tacoma, WA"},
		{"idaho city without comma", "Idaho City fire station opens", "could be Idaho City, ID, check context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := article.Article{
				Title:   tt.title,
				Snippet: "Idaho Boise Ada County Meridian Treasure Valley Boise State",
				Source:  "Idaho Statesman",
			}

			result := s.Score(a, Criteria{State: "Idaho", Region: "Southwestern Idaho", Custom: "boise"})

			assert.Equal(t, 0.0, result.Score)
			assert.Equal(t, article.ConfidenceLow, result.Confidence)
			assert.Empty(t, result.MatchedLocations)
			assert.Equal(t, tt.actual, result.FalsePositive)
		})
	}
}

func TestScoreIdahoCityWithCommaIsNotAFalsePositive(t *testing.T) {
	result := NewScorer().Score(article.Article{Title: "Idaho City, Idaho hosts festival"}, Criteria{State: "Idaho"})

	assert.Empty(t, result.FalsePositive)
	assert.Greater(t, result.Score, 0.0)
}

func TestScoreBoiseWildfireFromStatesman(t *testing.T) {
	a := article.Article{Title: "Boise wildfire forces evacuations", Source: "Idaho Statesman"}

	result := NewScorer().Score(a, Criteria{State: "Idaho"})

	// Boise statewide city sweep 0.25 plus source origin 0.2.
	assert.Equal(t, 0.45, result.Score)
	assert.Equal(t, article.ConfidenceMedium, result.Confidence)
	assert.Equal(t, []string{"Boise"}, result.MatchedLocations)
}

func TestScoreAccumulatesSignals(t *testing.T) {
	a := article.Article{
		Title:   "Idaho lawmakers visit Meridian",
		Snippet: "Growth continues",
	}

	result := NewScorer().Score(a, Criteria{State: "Idaho", Region: "southwestern idaho"})

	// state 0.3, region city 0.4, statewide city 0.25.
	assert.Equal(t, 0.95, result.Score)
	assert.Equal(t, article.ConfidenceHigh, result.Confidence)
	assert.Equal(t, []string{"Idaho", "Meridian", "Ada County"}, result.MatchedLocations)
}

func TestScoreClampsToOne(t *testing.T) {
	a := article.Article{Title: "Boise State and Idaho lawmakers meet in Boise, Ada County"}

	result := NewScorer().Score(a, Criteria{State: "Idaho", Region: "Southwestern Idaho", Custom: "boise"})

	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, article.ConfidenceHigh, result.Confidence)
}

func TestScoreSynonymNeedsTargetState(t *testing.T) {
	s := NewScorer()

	gem := s.Score(article.Article{Title: "Gem State budget"}, Criteria{State: "Idaho"})
	assert.Equal(t, 0.2, gem.Score)
	assert.Equal(t, []string{"Gem State"}, gem.MatchedLocations)

	palouse := s.Score(article.Article{Title: "Palouse wheat harvest"}, Criteria{State: "Idaho"})
	assert.Equal(t, 0.0, palouse.Score)
	assert.Equal(t, article.ConfidenceLow, palouse.Confidence)
}

func TestScoreGazetteerMatchesInsideWords(t *testing.T) {
	s := NewScorer()
	c := Criteria{State: "Idaho", Region: "Southwestern Idaho"}

	// Boise as region county 0.4, region city 0.4 and statewide city 0.25.
	demonym := s.Score(article.Article{Title: "Boiseans rally against wildfire smoke"}, c)
	assert.Equal(t, 1.0, demonym.Score)
	assert.Equal(t, article.ConfidenceHigh, demonym.Confidence)
	assert.Equal(t, []string{"Boise County", "Boise", "Ada County"}, demonym.MatchedLocations)

	plural := s.Score(article.Article{Title: "Treasure Valleys fire crews"}, c)
	assert.Equal(t, 0.4, plural.Score)
	assert.Equal(t, article.ConfidenceMedium, plural.Confidence)
	assert.Equal(t, []string{"Valley County"}, plural.MatchedLocations)
}

func TestScoreCustomTermsAndFacilities(t *testing.T) {
	a := article.Article{
		Title:       "INL announces reactor test",
		FullContent: "The test near Arco drew attention from the Lost River community.",
	}

	result := NewScorer().Score(a, Criteria{Custom: "lost river, , salmon river"})

	// custom 0.5 plus facility 0.35; no state so no statewide sweep.
	assert.Equal(t, 0.85, result.Score)
	assert.Equal(t, article.ConfidenceHigh, result.Confidence)
	assert.Equal(t, []string{"lost river", "Idaho National Laboratory", "Butte County"}, result.MatchedLocations)
}

func TestScoreStatewideCountySweep(t *testing.T) {
	a := article.Article{Title: "Kootenai County commissioners meet"}

	result := NewScorer().Score(a, Criteria{State: "Idaho"})

	assert.Equal(t, 0.3, result.Score)
	assert.Equal(t, article.ConfidenceMedium, result.Confidence)
	assert.Equal(t, []string{"Kootenai County"}, result.MatchedLocations)
}

func TestScoreSourceOriginMustMatchState(t *testing.T) {
	a := article.Article{Title: "Regional news roundup", Source: "Spokesman-Review"}

	idaho := NewScorer().Score(a, Criteria{State: "Idaho"})
	assert.Equal(t, 0.0, idaho.Score)

	washington := NewScorer().Score(a, Criteria{State: "Washington"})
	assert.Equal(t, 0.2, washington.Score)
	assert.Equal(t, article.ConfidenceLow, washington.Confidence)
}

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, article.ConfidenceHigh, ConfidenceFor(0.6))
	assert.Equal(t, article.ConfidenceMedium, ConfidenceFor(0.59))
	assert.Equal(t, article.ConfidenceMedium, ConfidenceFor(0.3))
	assert.Equal(t, article.ConfidenceLow, ConfidenceFor(0.29))
	assert.Equal(t, article.ConfidenceLow, ConfidenceFor(0))
}

func TestScoreIsIdempotent(t *testing.T) {
	s := NewScorer()
	a := article.Article{Title: "Nampa and Caldwell schools", Snippet: "Canyon County", Source: "KIVI"}
	c := Criteria{State: "Idaho", Region: "Southwestern Idaho"}

	assert.Equal(t, s.Score(a, c), s.Score(a, c))
}

type fixedEntities struct {
	locations []string
}

func (f fixedEntities) Extract(article.Article) Entities {
	return Entities{Locations: f.locations}
}

type fixedRelevance struct {
	verdicts []Relevance
	err      error
	targets  []string
}

func (f *fixedRelevance) Score(_ context.Context, articles []article.Article, target string) ([]Relevance, error) {
	f.targets = append(f.targets, target)
	return f.verdicts, f.err
}

func TestEntityLayerAddsLocationsOnly(t *testing.T) {
	s := NewScorerWithLayers(fixedEntities{locations: []string{"Stanley"}}, NoopRelevanceScorer{})

	result := s.Score(article.Article{Title: "Kootenai County commissioners meet"}, Criteria{State: "Idaho"})

	assert.Equal(t, 0.3, result.Score)
	assert.Equal(t, []string{"Kootenai County", "Stanley"}, result.MatchedLocations)
}

func TestRefineNoopKeepsEverything(t *testing.T) {
	matched := []article.Scored{
		{Article: article.Article{Title: "a"}, GeoConfidence: article.ConfidenceMedium},
		{Article: article.Article{Title: "b"}, GeoConfidence: article.ConfidenceHigh},
	}

	assert.Equal(t, matched, NewScorer().Refine(context.Background(), matched, "Idaho"))
}

func TestRefineDropsRejectedMediumMatches(t *testing.T) {
	no := false
	yes := true
	relevance := &fixedRelevance{verdicts: []Relevance{{Relevant: &no}, {Relevant: &yes}}}
	s := NewScorerWithLayers(NoopEntityExtractor{}, relevance)

	matched := []article.Scored{
		{Article: article.Article{Title: "medium rejected"}, GeoConfidence: article.ConfidenceMedium},
		{Article: article.Article{Title: "high"}, GeoConfidence: article.ConfidenceHigh},
		{Article: article.Article{Title: "medium kept"}, GeoConfidence: article.ConfidenceMedium},
	}

	refined := s.Refine(context.Background(), matched, "Idaho")

	require.Len(t, refined, 2)
	assert.Equal(t, "high", refined[0].Title)
	assert.Equal(t, "medium kept", refined[1].Title)
	assert.Equal(t, []string{"Idaho"}, relevance.targets)
}

func TestRefineErrorKeepsMatches(t *testing.T) {
	s := NewScorerWithLayers(NoopEntityExtractor{}, &fixedRelevance{err: errors.New("unavailable")})
	matched := []article.Scored{{Article: article.Article{Title: "a"}, GeoConfidence: article.ConfidenceMedium}}

	assert.Len(t, s.Refine(context.Background(), matched, "Idaho"), 1)
}
