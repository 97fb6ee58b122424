package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// CacheEntry is one cached value with its validator and TTL metadata.
//
//nolint:revive // CacheEntry reads better than Entry at call sites outside the package.
type CacheEntry struct {
	// Key is the SHA256 hash of the query the data answers.
	Key string `json:"key"`

	// Data is the cached value.
	Data json.RawMessage `json:"data"`

	// ETag is the validator the server sent with Data, if any.
	ETag string `json:"etag,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	TTLSeconds int `json:"ttl_seconds"`
}

// NewCacheEntry creates an entry expiring ttlSeconds from now.
func NewCacheEntry(key string, data json.RawMessage, etag string, ttlSeconds int) *CacheEntry {
	now := time.Now()
	return &CacheEntry{
		Key:        key,
		Data:       data,
		ETag:       etag,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// IsExpired reports whether the entry is past its expiry.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Age returns the time since the entry was written.
func (e *CacheEntry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// TimeUntilExpiration returns the remaining lifetime, or 0 once expired.
func (e *CacheEntry) TimeUntilExpiration() time.Duration {
	return max(time.Until(e.ExpiresAt), 0)
}

// MarshalJSON writes times as RFC3339 so cache files stay readable.
func (e *CacheEntry) MarshalJSON() ([]byte, error) {
	type Alias CacheEntry
	return json.Marshal(&struct {
		*Alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		Alias:     (*Alias)(e),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		ExpiresAt: e.ExpiresAt.Format(time.RFC3339),
	})
}

// UnmarshalJSON parses the RFC3339 times written by MarshalJSON.
func (e *CacheEntry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil CacheEntry")
	}
	type Alias CacheEntry
	aux := &struct {
		*Alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if e.CreatedAt, err = time.Parse(time.RFC3339, aux.CreatedAt); err != nil {
		return err
	}
	if e.ExpiresAt, err = time.Parse(time.RFC3339, aux.ExpiresAt); err != nil {
		return err
	}
	return nil
}
