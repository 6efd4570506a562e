package watch

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/news-watch/app/database"
)

const (
	keyWatchers      = "watchers"
	keyGovWatchers   = "gov_watchers"
	keySettings      = "settings"
	keyNotifications = "notifications"

	MaxNotifications = 100
)

// Repository persists watchers, gov watchers, settings and notification
// history in a key/value store. Each collection is stored as one JSON value.
type Repository struct {
	store    database.Store
	defaults Settings
	now      func() time.Time

	mu sync.Mutex
}

func NewRepository(store database.Store, defaults Settings, now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}

	return &Repository{
		store:    store,
		defaults: defaults,
		now:      now,
	}
}

func (r *Repository) ListWatchers() ([]Watcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadWatchers()
}

func (r *Repository) ActiveWatchers() ([]Watcher, error) {
	watchers, err := r.ListWatchers()
	if err != nil {
		return nil, err
	}

	active := make([]Watcher, 0, len(watchers))
	for _, w := range watchers {
		if w.Active {
			active = append(active, w)
		}
	}
	return active, nil
}

func (r *Repository) GetWatcher(id string) (Watcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	watchers, err := r.loadWatchers()
	if err != nil {
		return Watcher{}, err
	}

	idx := indexOf(watchers, id)
	if idx < 0 {
		return Watcher{}, fmt.Errorf("watcher %s: %w", id, ErrNotFound)
	}
	return watchers[idx], nil
}

// CreateWatcher assigns an id and creation time, applies defaults and
// appends the watcher. New watchers start active.
func (r *Repository) CreateWatcher(w Watcher) (Watcher, error) {
	w.ID = uuid.NewString()
	w.CreatedAt = r.now().UTC()
	w.Active = true
	w.ApplyDefaults()
	if err := w.Validate(); err != nil {
		return Watcher{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	watchers, err := r.loadWatchers()
	if err != nil {
		return Watcher{}, err
	}

	watchers = append(watchers, w)
	if err := r.store.Set(keyWatchers, watchers); err != nil {
		return Watcher{}, fmt.Errorf("failed to save watchers: %w", err)
	}

	return w, nil
}

// UpdateWatcher replaces a watcher, keeping its id and creation time.
func (r *Repository) UpdateWatcher(id string, w Watcher) (Watcher, error) {
	w.ApplyDefaults()
	if err := w.Validate(); err != nil {
		return Watcher{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	watchers, err := r.loadWatchers()
	if err != nil {
		return Watcher{}, err
	}

	idx := indexOf(watchers, id)
	if idx < 0 {
		return Watcher{}, fmt.Errorf("watcher %s: %w", id, ErrNotFound)
	}

	w.ID = watchers[idx].ID
	w.CreatedAt = watchers[idx].CreatedAt
	watchers[idx] = w

	if err := r.store.Set(keyWatchers, watchers); err != nil {
		return Watcher{}, fmt.Errorf("failed to save watchers: %w", err)
	}

	return w, nil
}

// UpsertWatcher stores w under its own id, creating it when missing.
func (r *Repository) UpsertWatcher(w Watcher) (Watcher, error) {
	if w.ID == "" {
		return Watcher{}, fmt.Errorf("watcher id is required")
	}
	w.ApplyDefaults()
	if err := w.Validate(); err != nil {
		return Watcher{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	watchers, err := r.loadWatchers()
	if err != nil {
		return Watcher{}, err
	}

	if idx := indexOf(watchers, w.ID); idx >= 0 {
		w.CreatedAt = watchers[idx].CreatedAt
		watchers[idx] = w
	} else {
		w.CreatedAt = r.now().UTC()
		watchers = append(watchers, w)
	}

	if err := r.store.Set(keyWatchers, watchers); err != nil {
		return Watcher{}, fmt.Errorf("failed to save watchers: %w", err)
	}

	return w, nil
}

func (r *Repository) ToggleWatcher(id string) (Watcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	watchers, err := r.loadWatchers()
	if err != nil {
		return Watcher{}, err
	}

	idx := indexOf(watchers, id)
	if idx < 0 {
		return Watcher{}, fmt.Errorf("watcher %s: %w", id, ErrNotFound)
	}

	watchers[idx].Active = !watchers[idx].Active
	if err := r.store.Set(keyWatchers, watchers); err != nil {
		return Watcher{}, fmt.Errorf("failed to save watchers: %w", err)
	}

	return watchers[idx], nil
}

func (r *Repository) DeleteWatcher(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	watchers, err := r.loadWatchers()
	if err != nil {
		return err
	}

	idx := indexOf(watchers, id)
	if idx < 0 {
		return fmt.Errorf("watcher %s: %w", id, ErrNotFound)
	}

	watchers = slices.Delete(watchers, idx, idx+1)
	if err := r.store.Set(keyWatchers, watchers); err != nil {
		return fmt.Errorf("failed to save watchers: %w", err)
	}

	return nil
}

func (r *Repository) ListGovWatchers() ([]GovWatcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadGovWatchers()
}

// AddGovWatcher creates an active gov watcher. A feed can be watched once.
func (r *Repository) AddGovWatcher(gw GovWatcher) (GovWatcher, error) {
	if gw.FeedID == "" || gw.FeedURL == "" {
		return GovWatcher{}, fmt.Errorf("feed id and url are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	govWatchers, err := r.loadGovWatchers()
	if err != nil {
		return GovWatcher{}, err
	}

	for _, existing := range govWatchers {
		if existing.FeedID == gw.FeedID {
			return GovWatcher{}, fmt.Errorf("feed %s: %w", gw.FeedID, ErrDuplicateFeed)
		}
	}

	gw.ID = uuid.NewString()
	gw.Active = true
	gw.CreatedAt = r.now().UTC()

	govWatchers = append(govWatchers, gw)
	if err := r.store.Set(keyGovWatchers, govWatchers); err != nil {
		return GovWatcher{}, fmt.Errorf("failed to save gov watchers: %w", err)
	}

	return gw, nil
}

func (r *Repository) ToggleGovWatcher(id string) (GovWatcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	govWatchers, err := r.loadGovWatchers()
	if err != nil {
		return GovWatcher{}, err
	}

	for i := range govWatchers {
		if govWatchers[i].ID != id {
			continue
		}
		govWatchers[i].Active = !govWatchers[i].Active
		if err := r.store.Set(keyGovWatchers, govWatchers); err != nil {
			return GovWatcher{}, fmt.Errorf("failed to save gov watchers: %w", err)
		}
		return govWatchers[i], nil
	}

	return GovWatcher{}, fmt.Errorf("gov watcher %s: %w", id, ErrNotFound)
}

func (r *Repository) DeleteGovWatcher(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	govWatchers, err := r.loadGovWatchers()
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(govWatchers, func(gw GovWatcher) bool { return gw.ID == id })
	if idx < 0 {
		return fmt.Errorf("gov watcher %s: %w", id, ErrNotFound)
	}

	govWatchers = slices.Delete(govWatchers, idx, idx+1)
	if err := r.store.Set(keyGovWatchers, govWatchers); err != nil {
		return fmt.Errorf("failed to save gov watchers: %w", err)
	}

	return nil
}

// GetSettings returns the stored settings, or the defaults before the first save.
func (r *Repository) GetSettings() (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := r.defaults
	if _, err := r.store.Get(keySettings, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func (r *Repository) SaveSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(keySettings, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// ListNotifications returns the history, newest first.
func (r *Repository) ListNotifications() ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadNotifications()
}

// AddNotifications prepends records to the history and trims it to
// MaxNotifications.
func (r *Repository) AddNotifications(records []Notification) error {
	if len(records) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := r.loadNotifications()
	if err != nil {
		return err
	}

	history = append(slices.Clone(records), history...)
	if len(history) > MaxNotifications {
		history = history[:MaxNotifications]
	}

	if err := r.store.Set(keyNotifications, history); err != nil {
		return fmt.Errorf("failed to save notifications: %w", err)
	}
	return nil
}

func (r *Repository) MarkAllRead() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := r.loadNotifications()
	if err != nil {
		return err
	}

	for i := range history {
		history[i].Read = true
	}

	if err := r.store.Set(keyNotifications, history); err != nil {
		return fmt.Errorf("failed to save notifications: %w", err)
	}
	return nil
}

func (r *Repository) loadWatchers() ([]Watcher, error) {
	watchers := []Watcher{}
	if _, err := r.store.Get(keyWatchers, &watchers); err != nil {
		return nil, fmt.Errorf("failed to load watchers: %w", err)
	}
	return watchers, nil
}

func (r *Repository) loadGovWatchers() ([]GovWatcher, error) {
	govWatchers := []GovWatcher{}
	if _, err := r.store.Get(keyGovWatchers, &govWatchers); err != nil {
		return nil, fmt.Errorf("failed to load gov watchers: %w", err)
	}
	return govWatchers, nil
}

func (r *Repository) loadNotifications() ([]Notification, error) {
	history := []Notification{}
	if _, err := r.store.Get(keyNotifications, &history); err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return history, nil
}

func indexOf(watchers []Watcher, id string) int {
	return slices.IndexFunc(watchers, func(w Watcher) bool { return w.ID == id })
}
