package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/news-watch/app/article"
)

// Channel describes the outer <channel> of a generated feed.
type Channel struct {
	ID          string
	Title       string
	Description string
	BaseURL     string
	Version     string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders scored articles as an RSS 2.0 document.
func (g *Generator) Run(channel Channel, articles []article.Scored) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	selfLink := fmt.Sprintf("%s/feeds/%s", channel.BaseURL, channel.ID)

	g.writeElement(&buf, "title", cmp.Or(channel.Title, "News Watch"), 4)
	g.writeElement(&buf, "link", channel.BaseURL, 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, fmt.Sprintf("Matched articles for %s", channel.ID)), 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().UTC()
	if len(articles) > 0 && !articles[0].Date.IsZero() {
		lastBuildDate = articles[0].Date
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("NewsWatch/%s", channel.Version), 4)

	for _, a := range articles {
		g.writeItem(&buf, a)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, a article.Scored) {
	buf.WriteString("    <item>\n")

	guid := a.Key()
	if guid != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(guid)))
		xml.EscapeText(buf, []byte(guid))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", a.Title, 6)
	g.writeElement(buf, "link", a.URL, 6)
	g.writeElement(buf, "description", cmp.Or(a.Snippet, "No description available"), 6)

	if a.FullContent != "" && a.FullContent != a.Snippet {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(a.FullContent)
		buf.WriteString("]]></content:encoded>\n")
	}

	if !a.Date.IsZero() {
		g.writeElement(buf, "pubDate", a.Date.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "source", a.Source, 6)

	if a.SourceType != "" {
		g.writeElement(buf, "category", string(a.SourceType), 6)
	}
	if a.GeoConfidence != "" {
		g.writeElement(buf, "category", "confidence:"+string(a.GeoConfidence), 6)
	}
	if a.MatchedWatcherName != "" {
		g.writeElement(buf, "category", a.MatchedWatcherName, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
