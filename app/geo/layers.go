package geo

import (
	"context"

	"github.com/lysyi3m/news-watch/app/article"
)

// Entities are named entities pulled from an article's text.
type Entities struct {
	Locations     []string `json:"locations"`
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Facilities    []string `json:"facilities"`
}

// EntityExtractor is the second scoring layer. Extracted locations are
// recorded as matched locations but never change the score.
type EntityExtractor interface {
	Extract(a article.Article) Entities
}

// Relevance is a model verdict on one article. Nil fields mean no verdict.
type Relevance struct {
	Relevant   *bool    `json:"relevant"`
	Confidence *float64 `json:"confidence"`
	Reason     string   `json:"reason"`
}

// RelevanceScorer is the third scoring layer. It is consulted only for
// medium-confidence matches and returns one verdict per article.
type RelevanceScorer interface {
	Score(ctx context.Context, articles []article.Article, target string) ([]Relevance, error)
}

type NoopEntityExtractor struct{}

func (NoopEntityExtractor) Extract(article.Article) Entities {
	return Entities{}
}

type NoopRelevanceScorer struct{}

func (NoopRelevanceScorer) Score(_ context.Context, articles []article.Article, _ string) ([]Relevance, error) {
	verdicts := make([]Relevance, len(articles))
	for i := range verdicts {
		verdicts[i] = Relevance{Reason: "relevance scoring not configured"}
	}
	return verdicts, nil
}
