package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// GetPreference returns the value stored under key, or "" and false when unset
func (db *DB) GetPreference(key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference stores value under key
func (db *DB) SetPreference(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// DeletePreference removes key
func (db *DB) DeletePreference(key string) error {
	if _, err := db.conn.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// GetIntPreference returns an integer preference, or def when unset or malformed
func (db *DB) GetIntPreference(key string, def int) int {
	value, ok, err := db.GetPreference(key)
	if err != nil || !ok {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// SetIntPreference stores an integer preference
func (db *DB) SetIntPreference(key string, value int) error {
	return db.SetPreference(key, strconv.Itoa(value))
}

// LastSession returns the session that was active when the client last ran
func (db *DB) LastSession() string {
	value, _, err := db.GetPreference(KeyLastSession)
	if err != nil {
		return ""
	}
	return value
}

// SetLastSession remembers the active session
func (db *DB) SetLastSession(id string) error {
	if id == "" {
		return db.DeletePreference(KeyLastSession)
	}
	return db.SetPreference(KeyLastSession, id)
}
