package database

import (
	"path/filepath"
	"testing"
	"time"
)

type testRecord struct {
	Name     string            `json:"name"`
	Tags     []string          `json:"tags"`
	Limits   map[string]int    `json:"limits"`
	Nested   *testRecord       `json:"nested,omitempty"`
	Channels map[string]bool   `json:"channels"`
	At       time.Time         `json:"at"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected migration version 1, got %d", version)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}

	return db
}

func storeImplementations(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": NewKVStore(setupTestDB(t)),
		"memory": NewMemoryStore(),
	}
}

func TestStoreGetMissingKey(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			var record testRecord
			found, err := store.Get("missing", &record)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if found {
				t.Error("Expected missing key to report not found")
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	original := testRecord{
		Name:     "boise-fires",
		Tags:     []string{"wildfire", "evacuation"},
		Limits:   map[string]int{"newsapi": 100, "rss": -1},
		Nested:   &testRecord{Name: "child", Tags: []string{}},
		Channels: map[string]bool{"push": true, "email": false},
		At:       at,
	}

	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set("record", original); err != nil {
				t.Fatalf("Failed to set: %v", err)
			}

			var loaded testRecord
			found, err := store.Get("record", &loaded)
			if err != nil {
				t.Fatalf("Failed to get: %v", err)
			}
			if !found {
				t.Fatal("Expected key to be found")
			}

			if loaded.Name != original.Name {
				t.Errorf("Expected name '%s', got '%s'", original.Name, loaded.Name)
			}
			if len(loaded.Tags) != 2 || loaded.Tags[1] != "evacuation" {
				t.Errorf("Expected tags to round-trip, got %v", loaded.Tags)
			}
			if loaded.Limits["rss"] != -1 {
				t.Errorf("Expected rss limit -1, got %d", loaded.Limits["rss"])
			}
			if loaded.Nested == nil || loaded.Nested.Name != "child" {
				t.Errorf("Expected nested record to round-trip, got %+v", loaded.Nested)
			}
			if loaded.Nested != nil && loaded.Nested.Tags == nil {
				t.Error("Expected empty slice to stay non-nil")
			}
			if !loaded.Channels["push"] || loaded.Channels["email"] {
				t.Errorf("Expected channels to round-trip, got %v", loaded.Channels)
			}
			if !loaded.At.Equal(at) {
				t.Errorf("Expected time %v, got %v", at, loaded.At)
			}
			if loaded.Extra != nil {
				t.Errorf("Expected omitted field to stay nil, got %v", loaded.Extra)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set("counter", 1); err != nil {
				t.Fatal(err)
			}
			if err := store.Set("counter", 2); err != nil {
				t.Fatal(err)
			}

			var value int
			if _, err := store.Get("counter", &value); err != nil {
				t.Fatal(err)
			}
			if value != 2 {
				t.Errorf("Expected 2, got %d", value)
			}
		})
	}
}

func TestStoreDecodeError(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set("text", "not a number"); err != nil {
				t.Fatal(err)
			}

			var value int
			if _, err := store.Get("text", &value); err == nil {
				t.Error("Expected decode error")
			}
		})
	}
}

func TestKVStorePersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	db, err := NewConnection(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	if err := NewKVStore(db).Set("settings", map[string]int{"pollingInterval": 10}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	reopened, err := NewConnection(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if _, _, err := RunMigrations(reopened); err != nil {
		t.Fatal(err)
	}

	var settings map[string]int
	found, err := NewKVStore(reopened).Get("settings", &settings)
	if err != nil {
		t.Fatal(err)
	}
	if !found || settings["pollingInterval"] != 10 {
		t.Errorf("Expected persisted settings, got found=%v value=%v", found, settings)
	}
}
