package gov

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/news-watch/app/watch"
)

const (
	LevelFederal = "federal"
	LevelState   = "state"
)

//go:embed registry.yml
var registryYAML []byte

// Feed is one government RSS or Atom feed from the registry.
type Feed struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Category string `yaml:"category" json:"category"`
	Level    string `yaml:"-" json:"level"`
}

type registryFile struct {
	Federal []Feed            `yaml:"federal"`
	States  map[string][]Feed `yaml:"states"`
}

// Registry is the static catalog of federal and per-state feeds.
type Registry struct {
	federal []Feed
	states  map[string][]Feed
	byID    map[string]Feed
}

// NewRegistry loads the embedded catalog.
func NewRegistry() (*Registry, error) {
	return ParseRegistry(registryYAML)
}

func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}

	r := &Registry{
		states: make(map[string][]Feed, len(file.States)),
		byID:   make(map[string]Feed),
	}

	for _, f := range file.Federal {
		f.Level = LevelFederal
		if err := r.add(f); err != nil {
			return nil, err
		}
		r.federal = append(r.federal, f)
	}

	for state, feeds := range file.States {
		for _, f := range feeds {
			f.Level = LevelState
			if err := r.add(f); err != nil {
				return nil, err
			}
			r.states[state] = append(r.states[state], f)
		}
	}

	return r, nil
}

func (r *Registry) add(f Feed) error {
	if f.ID == "" || f.URL == "" {
		return fmt.Errorf("registry feed %q is missing id or url", f.Name)
	}
	if _, exists := r.byID[f.ID]; exists {
		return fmt.Errorf("duplicate registry feed id: %s", f.ID)
	}
	r.byID[f.ID] = f
	return nil
}

func (r *Registry) Federal() []Feed {
	return append([]Feed(nil), r.federal...)
}

// State returns the feeds for a state name, matched case-insensitively.
func (r *Registry) State(name string) []Feed {
	name = strings.TrimSpace(name)
	if feeds, ok := r.states[name]; ok {
		return append([]Feed(nil), feeds...)
	}
	for state, feeds := range r.states {
		if strings.EqualFold(state, name) {
			return append([]Feed(nil), feeds...)
		}
	}
	return nil
}

// States lists the state names in alphabetical order.
func (r *Registry) States() []string {
	names := make([]string, 0, len(r.states))
	for name := range r.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Find(id string) (Feed, bool) {
	f, ok := r.byID[id]
	return f, ok
}

// Source is a feed to fetch, optionally owned by a gov watcher.
type Source struct {
	Feed
	WatcherID string
}

// Sources builds the feed list for a gov poll: every active gov watcher,
// plus the federal and state registry feeds when auto-watch is enabled.
// A feed is fetched once even when several rules cover it.
func (r *Registry) Sources(watchers []watch.GovWatcher, settings watch.Settings) []Source {
	var sources []Source
	seen := make(map[string]bool)

	for _, gw := range watchers {
		if !gw.Active || seen[gw.FeedID] {
			continue
		}
		seen[gw.FeedID] = true

		sources = append(sources, Source{
			Feed: Feed{
				ID:       gw.FeedID,
				Name:     gw.Name,
				URL:      gw.FeedURL,
				Category: gw.Category,
				Level:    gw.Level,
			},
			WatcherID: gw.ID,
		})
	}

	if !settings.GovWatchEnabled {
		return sources
	}

	var auto []Feed
	if settings.GovFederal {
		auto = append(auto, r.federal...)
	}
	if settings.GovState != "" {
		auto = append(auto, r.State(settings.GovState)...)
	}

	for _, f := range auto {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		sources = append(sources, Source{Feed: f})
	}

	return sources
}
