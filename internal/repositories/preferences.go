package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/steamwatch/internal/models"
)

const (
	KeyIdentity        = "identity"
	KeyRefreshInterval = "refresh_interval"
)

// ErrPreferenceNotFound is returned by [PreferencesRepository.Get] for unset keys.
var ErrPreferenceNotFound = errors.New("preference not set")

// PreferencesRepository stores small key/value preferences that survive restarts.
type PreferencesRepository struct {
	db *sql.DB
}

// NewPreferencesRepository creates a new [PreferencesRepository] with the given database connection
func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the raw value for key.
func (r *PreferencesRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrPreferenceNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query preference: %w", err)
	}
	return value, nil
}

// Set upserts the value for key.
func (r *PreferencesRepository) Set(key, value string) error {
	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an unset key is not an error.
func (r *PreferencesRepository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// LoadIdentity returns the stored identity, or nil when nobody is signed in.
func (r *PreferencesRepository) LoadIdentity() (*models.Identity, error) {
	raw, err := r.Get(KeyIdentity)
	if errors.Is(err, ErrPreferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("corrupt stored identity: %w", err)
	}
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt stored identity: %w", err)
	}
	return &identity, nil
}

// SaveIdentity persists the signed-in identity.
func (r *PreferencesRepository) SaveIdentity(identity models.Identity) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	return r.Set(KeyIdentity, string(data))
}

// ClearIdentity forgets the signed-in identity.
func (r *PreferencesRepository) ClearIdentity() error {
	return r.Delete(KeyIdentity)
}

// LoadInterval returns the stored refresh interval and whether one was stored.
//
// A stored value outside [models.Intervals] is reported as unset.
func (r *PreferencesRepository) LoadInterval() (models.RefreshInterval, bool, error) {
	raw, err := r.Get(KeyRefreshInterval)
	if errors.Is(err, ErrPreferenceNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, nil
	}
	interval := models.RefreshInterval(v)
	if interval.Validate() != nil {
		return 0, false, nil
	}
	return interval, true, nil
}

// SaveInterval persists the refresh interval.
func (r *PreferencesRepository) SaveInterval(interval models.RefreshInterval) error {
	if err := interval.Validate(); err != nil {
		return err
	}
	return r.Set(KeyRefreshInterval, strconv.FormatFloat(float64(interval), 'f', -1, 64))
}
