package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/feed"
	"github.com/lysyi3m/news-watch/app/httpclient"
)

const googleNewsSearchURL = "https://news.google.com/rss/search"

// GoogleRSS searches Google News through its RSS endpoint. It needs no
// credential and has no daily limit.
type GoogleRSS struct {
	client   *httpclient.Client
	parser   *feed.Parser
	baseURL  string
	proxyURL string
	now      func() time.Time
}

func NewGoogleRSS(client *httpclient.Client, parser *feed.Parser, proxyURL string) *GoogleRSS {
	return &GoogleRSS{
		client:   client,
		parser:   parser,
		baseURL:  googleNewsSearchURL,
		proxyURL: strings.TrimRight(proxyURL, "/"),
		now:      time.Now,
	}
}

func (p *GoogleRSS) Name() article.Provider {
	return article.ProviderRSS
}

func (p *GoogleRSS) Fetch(ctx context.Context, query string, _ Options) ([]article.Article, error) {
	body, err := p.client.Get(ctx, p.requestURL(query), "application/rss+xml, application/xml, text/xml")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rss: %w", err)
	}

	items, _, err := p.parser.Run(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rss: %w", err)
	}

	raws := make([]article.Raw, 0, len(items))
	for _, item := range items {
		raws = append(raws, article.Raw{
			"title":       item.Title,
			"source":      item.Source,
			"link":        item.Link,
			"pubDate":     item.Published,
			"description": item.Description,
		})
	}

	return normalizeAll(article.ProviderRSS, raws, p.now()), nil
}

func (p *GoogleRSS) requestURL(query string) string {
	if p.proxyURL != "" {
		return fmt.Sprintf("%s/api/news/rss?q=%s", p.proxyURL, url.QueryEscape(query))
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")
	return p.baseURL + "?" + params.Encode()
}
