package matcher

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/lysyi3m/news-watch/app/watch"
)

const dateOnlyLayout = "2006-01-02"

// Window is an inclusive publication date range. A zero From is open.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window. Undated articles pass.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// DateWindow resolves the range articles must fall in. Rolling mode covers
// the last rollingDays up to now. Fixed mode uses dateFrom and dateTo, with
// an empty dateFrom left open and an empty dateTo meaning now.
func DateWindow(w watch.Watcher, now time.Time) Window {
	if w.DateMode == watch.DateModeFixed {
		return Window{
			From: parseBound(w.DateFrom, false),
			To:   orNow(parseBound(w.DateTo, true), now),
		}
	}

	return Window{
		From: now.Add(-time.Duration(rollingDays(w)) * 24 * time.Hour),
		To:   now,
	}
}

// QueryWindow is the range passed to providers. Rolling windows start at
// midnight UTC so repeated polls on one day send identical queries.
func QueryWindow(w watch.Watcher, now time.Time) Window {
	if w.DateMode == watch.DateModeFixed {
		return Window{
			From: parseBound(w.DateFrom, false),
			To:   parseBound(w.DateTo, true),
		}
	}

	from := now.UTC().AddDate(0, 0, -rollingDays(w))
	return Window{From: time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)}
}

func rollingDays(w watch.Watcher) int {
	if w.RollingDays <= 0 {
		return watch.DefaultRollingDays
	}
	return w.RollingDays
}

// parseBound parses a fixed bound. A bare date used as an upper bound
// covers the whole day.
func parseBound(value string, upper bool) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	if day, err := time.Parse(dateOnlyLayout, value); err == nil {
		if upper {
			return day.Add(24*time.Hour - time.Nanosecond)
		}
		return day
	}

	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}
