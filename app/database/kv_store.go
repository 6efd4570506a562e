package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const kvTable = "kv_store"

// KVStore persists JSON values in the kv_store table.
type KVStore struct {
	db      *DB
	builder sq.StatementBuilderType
}

func NewKVStore(db *DB) *KVStore {
	return &KVStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (s *KVStore) Get(key string, dest any) (bool, error) {
	query, args, err := s.builder.
		Select("value").
		From(kvTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var value string
	err = s.db.QueryRow(query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return false, fmt.Errorf("failed to decode key %s: %w", key, err)
	}

	return true, nil
}

func (s *KVStore) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode key %s: %w", key, err)
	}

	query, args, err := s.builder.
		Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, string(data), time.Now().UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}
