package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

// Parser reads RSS first and falls back to Atom when the document is not RSS
// or contains no <item> elements.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Run(data []byte) ([]Item, Format, error) {
	rssItems, rssErr := p.parseRSS(data)
	if rssErr == nil && len(rssItems) > 0 {
		return rssItems, FormatRSS, nil
	}

	atomItems, atomErr := p.parseAtom(data)
	if atomErr == nil {
		return atomItems, FormatAtom, nil
	}

	if rssErr == nil {
		// Valid RSS with an empty channel.
		return rssItems, FormatRSS, nil
	}

	return nil, "", fmt.Errorf("failed to parse feed: rss: %v, atom: %w", rssErr, atomErr)
}

func (p *Parser) parseRSS(data []byte) ([]Item, error) {
	// gofeed parsers keep per-document state, so each call gets its own.
	parsed, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}

		item := Item{
			Title:       strings.TrimSpace(entry.Title),
			Link:        strings.TrimSpace(entry.Link),
			Description: strings.TrimSpace(entry.Description),
			Content:     strings.TrimSpace(entry.Content),
			Published:   strings.TrimSpace(entry.PubDate),
			PublishedAt: entry.PubDateParsed,
		}
		if entry.Source != nil {
			item.Source = strings.TrimSpace(entry.Source.Title)
		}

		items = append(items, item)
	}

	return items, nil
}

func (p *Parser) parseAtom(data []byte) ([]Item, error) {
	parsed, err := (&atom.Parser{}).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(parsed.Entries))
	for _, entry := range parsed.Entries {
		if entry == nil {
			continue
		}

		item := Item{
			Title:     strings.TrimSpace(entry.Title),
			Link:      p.atomLink(entry.Links),
			Published: strings.TrimSpace(cmp.Or(entry.Updated, entry.Published)),
		}

		if entry.UpdatedParsed != nil {
			item.PublishedAt = entry.UpdatedParsed
		} else {
			item.PublishedAt = entry.PublishedParsed
		}

		var content string
		if entry.Content != nil {
			content = strings.TrimSpace(entry.Content.Value)
		}
		item.Description = cmp.Or(strings.TrimSpace(entry.Summary), content)
		item.Content = content

		items = append(items, item)
	}

	return items, nil
}

// atomLink prefers the alternate link and falls back to the first one.
func (p *Parser) atomLink(links []*atom.Link) string {
	first := ""
	for _, link := range links {
		if link == nil || link.Href == "" {
			continue
		}
		if first == "" {
			first = link.Href
		}
		if link.Rel == "" || link.Rel == "alternate" {
			return strings.TrimSpace(link.Href)
		}
	}
	return strings.TrimSpace(first)
}
