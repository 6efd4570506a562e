package feed

import (
	"time"
)

// Item is one entry of an RSS or Atom document.
type Item struct {
	Title       string
	Link        string
	Description string
	Content     string
	Source      string     // RSS <source> element, empty for Atom
	Published   string     // raw date text as found in the feed
	PublishedAt *time.Time // parsed date when the feed's format was recognizable
}

type Format string

const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
)
