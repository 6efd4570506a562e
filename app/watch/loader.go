package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/news-watch/app/article"
)

// watcherFile is the YAML shape of a watcher definition. The file name
// without .yml is the watcher id.
type watcherFile struct {
	Name            string   `yaml:"name"`
	Keywords        []string `yaml:"keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	TrackedEntities []string `yaml:"tracked_entities"`
	Geo             struct {
		State  *string `yaml:"state"`
		Region string  `yaml:"region"`
		Custom string  `yaml:"custom"`
	} `yaml:"geo"`
	Date struct {
		Mode        DateMode `yaml:"mode"`
		RollingDays int      `yaml:"rolling_days"`
		From        string   `yaml:"from"`
		To          string   `yaml:"to"`
	} `yaml:"date"`
	SourceTypes []article.SourceType `yaml:"source_types"`
	Active      *bool                `yaml:"active"`
	AlertMode   AlertMode            `yaml:"alert_mode"`
	Channels    *Channels            `yaml:"channels"`
}

// Loader reads watcher definitions from *.yml files in a directory.
type Loader struct {
	watchersDir string
	cache       map[string]*Watcher
	mu          sync.RWMutex
}

func NewLoader(watchersDir string) *Loader {
	return &Loader{
		watchersDir: watchersDir,
		cache:       make(map[string]*Watcher),
	}
}

// Run loads every definition in the directory. A missing directory is not
// an error.
func (l *Loader) Run() error {
	if _, err := os.Stat(l.watchersDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(l.watchersDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		id := strings.TrimSuffix(filepath.Base(file), ".yml")

		w, err := l.Load(id)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Watcher definition loaded", "watcher", id, "active", w.Active, "keywords", len(w.Keywords))
	}

	return nil
}

func (l *Loader) Load(id string) (*Watcher, error) {
	file := filepath.Join(l.watchersDir, id+".yml")

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var def watcherFile
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	w := def.toWatcher(id)
	w.ApplyDefaults()
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid watcher %s: %w", file, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[id] = w

	return w, nil
}

// Watchers returns the loaded definitions sorted by id.
func (l *Loader) Watchers() []Watcher {
	l.mu.RLock()
	defer l.mu.RUnlock()

	watchers := make([]Watcher, 0, len(l.cache))
	for _, w := range l.cache {
		watchers = append(watchers, *w)
	}
	sort.Slice(watchers, func(i, j int) bool { return watchers[i].ID < watchers[j].ID })
	return watchers
}

// Seed upserts every loaded definition into repo.
func (l *Loader) Seed(repo *Repository) (int, error) {
	watchers := l.Watchers()
	for _, w := range watchers {
		if _, err := repo.UpsertWatcher(w); err != nil {
			return 0, fmt.Errorf("failed to seed watcher %s: %w", w.ID, err)
		}
	}
	return len(watchers), nil
}

func (def watcherFile) toWatcher(id string) *Watcher {
	w := &Watcher{
		ID:               id,
		Name:             def.Name,
		Keywords:         def.Keywords,
		ExcludeKeywords:  def.ExcludeKeywords,
		TrackedEntities:  def.TrackedEntities,
		GeoState:         DefaultGeoState,
		GeoRegion:        def.Geo.Region,
		GeoCustom:        def.Geo.Custom,
		DateMode:         def.Date.Mode,
		RollingDays:      def.Date.RollingDays,
		DateFrom:         def.Date.From,
		DateTo:           def.Date.To,
		SourceTypeFilter: def.SourceTypes,
		Active:           true,
		AlertMode:        def.AlertMode,
	}

	if def.Geo.State != nil {
		w.GeoState = *def.Geo.State
	}
	if def.Active != nil {
		w.Active = *def.Active
	}
	if def.Channels != nil {
		w.Channels = *def.Channels
	}

	return w
}
