package geo

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/lysyi3m/news-watch/app/article"
)

const (
	weightState          = 0.3
	weightSynonym        = 0.2
	weightRegionPlace    = 0.4
	weightCustom         = 0.5
	weightFacility       = 0.35
	weightStatewideCount = 0.3
	weightStatewideCity  = 0.25
	weightSourceOrigin   = 0.2

	thresholdHigh   = 0.6
	thresholdMedium = 0.3
)

// Criteria is a watcher's geographic filter. Custom is a comma-separated
// list of extra terms.
type Criteria struct {
	State  string
	Region string
	Custom string
}

func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.State) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Custom) == ""
}

type Result struct {
	Score            float64            `json:"score"`
	Confidence       article.Confidence `json:"confidence"`
	MatchedLocations []string           `json:"matchedLocations"`
	FalsePositive    string             `json:"falsePositive,omitempty"`
	Layer            int                `json:"layer"`
}

// ConfidenceFor maps a score to its band.
func ConfidenceFor(score float64) article.Confidence {
	switch {
	case score >= thresholdHigh:
		return article.ConfidenceHigh
	case score >= thresholdMedium:
		return article.ConfidenceMedium
	default:
		return article.ConfidenceLow
	}
}

// Scorer rates how relevant an article is to a place. Keyword and gazetteer
// matching decides the score; the entity and relevance layers can only add
// locations or veto medium matches.
type Scorer struct {
	entities  EntityExtractor
	relevance RelevanceScorer
}

func NewScorer() *Scorer {
	return NewScorerWithLayers(NoopEntityExtractor{}, NoopRelevanceScorer{})
}

func NewScorerWithLayers(entities EntityExtractor, relevance RelevanceScorer) *Scorer {
	return &Scorer{
		entities:  entities,
		relevance: relevance,
	}
}

// Score rates a against c. Without criteria every article scores 1.0/high.
func (s *Scorer) Score(a article.Article, c Criteria) Result {
	if c.Empty() {
		return Result{Score: 1, Confidence: article.ConfidenceHigh, MatchedLocations: []string{}}
	}

	text := article.Fold(a.Title + " " + a.Snippet + " " + a.FullContent)

	for _, fp := range FalsePositives {
		if fp.Pattern.MatchString(text) {
			return Result{
				Score:            0,
				Confidence:       article.ConfidenceLow,
				MatchedLocations: []string{},
				FalsePositive:    fp.Actual,
				Layer:            1,
			}
		}
	}

	locations := &locationSet{}
	score := 0.0
	state := article.Fold(strings.TrimSpace(c.State))

	if state != "" {
		if strings.Contains(text, state) {
			score += weightState
			locations.add(strings.TrimSpace(c.State))
		}

		for _, syn := range Synonyms {
			if containsTerm(text, syn.Term) && targetsState(syn.Targets, state) {
				score += weightSynonym
				locations.add(syn.Term)
			}
		}
	}

	if region, ok := findRegion(c.Region); ok {
		for _, county := range region.Counties {
			if containsTerm(text, county) {
				score += weightRegionPlace
				locations.add(county + " County")
			}
		}
		for _, city := range region.Cities {
			if containsTerm(text, city) {
				score += weightRegionPlace
				locations.add(city)
				if county, ok := CountySeats[city]; ok {
					locations.add(county + " County")
				}
			}
		}
	}

	for _, term := range strings.Split(c.Custom, ",") {
		term = strings.TrimSpace(term)
		if term != "" && strings.Contains(text, article.Fold(term)) {
			score += weightCustom
			locations.add(term)
		}
	}

	for _, facility := range Facilities {
		if containsTerm(text, facility.Term) {
			score += weightFacility
			locations.add(facility.DisplayName())
			if facility.County != "" {
				locations.add(facility.County + " County")
			}
		}
	}

	if denseStates[state] {
		for _, county := range AllCounties {
			if containsTerm(text, county+" County") {
				score += weightStatewideCount
				locations.add(county + " County")
			}
		}
		for _, city := range AllCities {
			if containsTerm(text, city) {
				score += weightStatewideCity
				locations.add(city)
			}
		}
	}

	if origin, ok := sourceOrigin(a.Source); ok && state != "" && article.Fold(origin.State) == state {
		score += weightSourceOrigin
	}

	for _, location := range s.entities.Extract(a).Locations {
		locations.add(location)
	}

	score = math.Round(min(score, 1)*10000) / 10000

	return Result{
		Score:            score,
		Confidence:       ConfidenceFor(score),
		MatchedLocations: locations.list(),
		Layer:            1,
	}
}

// Refine asks the relevance layer about medium-confidence matches and drops
// those it rejects. Articles without a verdict are kept.
func (s *Scorer) Refine(ctx context.Context, matched []article.Scored, target string) []article.Scored {
	var medium []article.Article
	var positions []int
	for i, m := range matched {
		if m.GeoConfidence == article.ConfidenceMedium {
			medium = append(medium, m.Article)
			positions = append(positions, i)
		}
	}
	if len(medium) == 0 {
		return matched
	}

	verdicts, err := s.relevance.Score(ctx, medium, target)
	if err != nil {
		slog.Warn("Relevance scoring failed, keeping keyword scores", "error", err)
		return matched
	}

	rejected := make(map[int]bool)
	for i, verdict := range verdicts {
		if i < len(positions) && verdict.Relevant != nil && !*verdict.Relevant {
			rejected[positions[i]] = true
		}
	}
	if len(rejected) == 0 {
		return matched
	}

	kept := make([]article.Scored, 0, len(matched)-len(rejected))
	for i, m := range matched {
		if !rejected[i] {
			kept = append(kept, m)
		}
	}
	return kept
}

func findRegion(name string) (Region, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Region{}, false
	}

	folded := article.Fold(name)
	for _, r := range Regions {
		if r.Name == name || article.Fold(r.Name) == folded {
			return r, true
		}
	}
	return Region{}, false
}

func targetsState(targets []string, state string) bool {
	for _, target := range targets {
		if strings.Contains(article.Fold(target), state) {
			return true
		}
	}
	return false
}

func sourceOrigin(source string) (SourceOrigin, bool) {
	if origin, ok := SourceOrigins[source]; ok {
		return origin, true
	}

	folded := article.Fold(strings.TrimSpace(source))
	for name, origin := range SourceOrigins {
		if article.Fold(name) == folded {
			return origin, true
		}
	}
	return SourceOrigin{}, false
}

// containsTerm reports whether the folded text contains term anywhere, so
// "Boise" also matches "Boiseans".
func containsTerm(foldedText, term string) bool {
	return strings.Contains(foldedText, article.Fold(term))
}

type locationSet struct {
	seen  map[string]struct{}
	items []string
}

func (l *locationSet) add(location string) {
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, ok := l.seen[location]; ok {
		return
	}
	l.seen[location] = struct{}{}
	l.items = append(l.items, location)
}

func (l *locationSet) list() []string {
	if l.items == nil {
		return []string{}
	}
	return l.items
}
