package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// KV is a string key-value store.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// GetSetting retrieves a setting value by key. ok is false when the key is unset.
func GetSetting(db *sql.DB, key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE key = ?`
	var value string
	err := db.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting sets a setting value by key.
func SetSetting(db *sql.DB, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	_, err := db.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}
