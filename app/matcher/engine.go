package matcher

import (
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/feed"
	"github.com/lysyi3m/news-watch/app/geo"
	"github.com/lysyi3m/news-watch/app/watch"
)

// minGeoScore is the floor below which low-confidence matches are dropped.
// Scores in [0.1, 0.3) pass with low confidence.
const minGeoScore = 0.1

type Result struct {
	Matched  []article.Scored   `json:"matched"`
	Excluded []article.Excluded `json:"excluded"`
}

// Engine applies a watcher's keyword, exclusion, geo, date and source type
// filters to fetched articles.
type Engine struct {
	scorer   *geo.Scorer
	filterer *feed.Filterer
	now      func() time.Time
}

func NewEngine(scorer *geo.Scorer, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}

	return &Engine{
		scorer:   scorer,
		filterer: feed.NewFilterer(),
		now:      now,
	}
}

func (e *Engine) Match(articles []article.Article, w watch.Watcher) Result {
	result := Result{
		Matched:  []article.Scored{},
		Excluded: []article.Excluded{},
	}

	window := DateWindow(w, e.now())
	criteria := geo.Criteria{State: w.GeoState, Region: w.GeoRegion, Custom: w.GeoCustom}

	for _, a := range articles {
		text := a.Title + " " + a.Snippet

		keywordMatch := len(w.Keywords) == 0
		if !keywordMatch {
			_, keywordMatch = e.filterer.MatchAny(text, w.Keywords)
		}
		_, entityMatch := e.filterer.MatchAny(text, w.TrackedEntities)
		if !keywordMatch && !entityMatch {
			continue
		}

		if keyword, ok := e.filterer.MatchAny(text, w.ExcludeKeywords); ok {
			result.Excluded = append(result.Excluded, article.Excluded{
				Article:          a,
				MatchedWatcherID: w.ID,
				Reason:           "matched exclusion keyword: " + keyword,
			})
			continue
		}

		geoResult := e.scorer.Score(a, criteria)
		if geoResult.Confidence == article.ConfidenceLow && geoResult.Score < minGeoScore {
			continue
		}

		if !window.Contains(a.Date) {
			continue
		}

		if !allowedSourceType(w.SourceTypeFilter, a.SourceType) {
			continue
		}

		result.Matched = append(result.Matched, article.Scored{
			Article:          a,
			GeoScore:         geoResult.Score,
			GeoConfidence:    geoResult.Confidence,
			MatchedLocations: geoResult.MatchedLocations,
			KeywordMatch:     keywordMatch,
			EntityMatch:      entityMatch,
		})
	}

	SortScored(result.Matched)

	return result
}

// SortScored orders by confidence rank, then newest first.
func SortScored(scored []article.Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		ri, rj := scored[i].GeoConfidence.Rank(), scored[j].GeoConfidence.Rank()
		if ri != rj {
			return ri > rj
		}
		return scored[i].Date.After(scored[j].Date)
	})
}

// BuildQuery joins keywords with OR and appends the state and region as bare
// terms. It returns "" when the watcher has no keywords.
func BuildQuery(w watch.Watcher) string {
	var keywords []string
	for _, kw := range w.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return ""
	}

	query := strings.Join(keywords, " OR ")
	if state := strings.TrimSpace(w.GeoState); state != "" {
		query += " " + state
	}
	if region := strings.TrimSpace(w.GeoRegion); region != "" {
		query += " " + region
	}
	return query
}

func allowedSourceType(filter []article.SourceType, sourceType article.SourceType) bool {
	if len(filter) == 0 {
		return true
	}
	for _, allowed := range filter {
		if allowed == sourceType {
			return true
		}
	}
	return false
}
