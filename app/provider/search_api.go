package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/httpclient"
)

type endpoint struct {
	baseURL    string
	keyParam   string
	resultsKey string
	params     func(query string, opts Options) url.Values
}

var endpoints = map[article.Provider]endpoint{
	article.ProviderNewsAPI: {
		baseURL:    "https://newsapi.org/v2/everything",
		keyParam:   "apiKey",
		resultsKey: "articles",
		params: func(query string, opts Options) url.Values {
			params := url.Values{}
			params.Set("q", query)
			params.Set("language", "en")
			params.Set("sortBy", "publishedAt")
			params.Set("pageSize", "20")
			setRange(params, opts, "2006-01-02T15:04:05")
			return params
		},
	},
	article.ProviderGNews: {
		baseURL:    "https://gnews.io/api/v4/search",
		keyParam:   "token",
		resultsKey: "articles",
		params: func(query string, opts Options) url.Values {
			params := url.Values{}
			params.Set("q", query)
			params.Set("lang", "en")
			params.Set("max", "10")
			setRange(params, opts, "2006-01-02T15:04:05Z")
			return params
		},
	},
	// The latest endpoint has no date range parameters.
	article.ProviderNewsData: {
		baseURL:    "https://newsdata.io/api/1/latest",
		keyParam:   "apikey",
		resultsKey: "results",
		params: func(query string, opts Options) url.Values {
			params := url.Values{}
			params.Set("q", query)
			params.Set("language", "en")
			return params
		},
	},
}

// SearchAPI is a JSON search provider: NewsAPI.org, GNews or NewsData.io.
// With a proxy URL the request goes to <proxy>/api/news/<provider> and the
// proxy adds the credential.
type SearchAPI struct {
	name     article.Provider
	endpoint endpoint
	client   *httpclient.Client
	apiKey   string
	proxyURL string
	now      func() time.Time
}

func NewNewsAPI(client *httpclient.Client, apiKey, proxyURL string) *SearchAPI {
	return newSearchAPI(article.ProviderNewsAPI, client, apiKey, proxyURL)
}

func NewGNews(client *httpclient.Client, apiKey, proxyURL string) *SearchAPI {
	return newSearchAPI(article.ProviderGNews, client, apiKey, proxyURL)
}

func NewNewsData(client *httpclient.Client, apiKey, proxyURL string) *SearchAPI {
	return newSearchAPI(article.ProviderNewsData, client, apiKey, proxyURL)
}

func newSearchAPI(name article.Provider, client *httpclient.Client, apiKey, proxyURL string) *SearchAPI {
	return &SearchAPI{
		name:     name,
		endpoint: endpoints[name],
		client:   client,
		apiKey:   apiKey,
		proxyURL: strings.TrimRight(proxyURL, "/"),
		now:      time.Now,
	}
}

func (p *SearchAPI) Name() article.Provider {
	return p.name
}

func (p *SearchAPI) Fetch(ctx context.Context, query string, opts Options) ([]article.Article, error) {
	body, err := p.client.Get(ctx, p.requestURL(query, opts), "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", p.name, err)
	}

	raws, err := p.decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", p.name, err)
	}

	return normalizeAll(p.name, raws, p.now()), nil
}

func (p *SearchAPI) requestURL(query string, opts Options) string {
	params := p.endpoint.params(query, opts)

	if p.proxyURL != "" {
		return fmt.Sprintf("%s/api/news/%s?%s", p.proxyURL, p.name, params.Encode())
	}

	params.Set(p.endpoint.keyParam, p.apiKey)
	return p.endpoint.baseURL + "?" + params.Encode()
}

// decode pulls the results array out of the payload. Elements that are not
// JSON objects are skipped.
func (p *SearchAPI) decode(body []byte) ([]article.Raw, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	data, ok := payload[p.endpoint.resultsKey]
	if !ok || string(data) == "null" {
		return nil, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, err
	}

	raws := make([]article.Raw, 0, len(elements))
	for i, element := range elements {
		var raw article.Raw
		if err := json.Unmarshal(element, &raw); err != nil || raw == nil {
			slog.Debug("Skipping malformed article", "provider", p.name, "index", i)
			continue
		}
		raws = append(raws, raw)
	}

	return raws, nil
}

func setRange(params url.Values, opts Options, layout string) {
	if !opts.From.IsZero() {
		params.Set("from", opts.From.UTC().Format(layout))
	}
	if !opts.To.IsZero() {
		params.Set("to", opts.To.UTC().Format(layout))
	}
}
