package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const cacheFileExtension = ".json"

// Cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// FileStore keeps cache entries as JSON files in one directory.
// It is safe for concurrent use.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int

	mu sync.RWMutex
}

// Stats summarizes the entries on disk.
type Stats struct {
	Entries int
	Expired int
	Bytes   int64
	Oldest  time.Time
	Newest  time.Time
}

// NewFileStore creates a store in directory, creating it if needed.
// A disabled store refuses every operation with ErrCacheDisabled.
func NewFileStore(directory string, enabled bool, ttlSeconds int) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		directory:  directory,
		enabled:    true,
		ttlSeconds: ttlSeconds,
	}, nil
}

// Get returns the entry for key, or ErrCacheNotFound / ErrCacheExpired.
func (s *FileStore) Get(key string) (*CacheEntry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	filePath := s.keyToFilePath(key)
	entry, err := readEntry(filePath)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheNotFound
		}
		return nil, err
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(filePath)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}
	return entry, nil
}

// Set stores data and its validator under key, replacing any previous entry.
func (s *FileStore) Set(key string, data json.RawMessage, etag string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	entryData, err := json.MarshalIndent(NewCacheEntry(key, data, etag, s.ttlSeconds), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.keyToFilePath(key)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}
	return nil
}

// Delete removes the entry for key. Deleting a missing entry is not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	return s.removeWhere(func(*CacheEntry) bool { return true })
}

// CleanupExpired removes expired entries and returns how many were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	return s.removeWhere(func(e *CacheEntry) bool { return e == nil || e.IsExpired() })
}

// removeWhere deletes the entries match selects. Unreadable files are passed
// to match as nil.
func (s *FileStore) removeWhere(match func(*CacheEntry) bool) (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range files {
		entry, readErr := readEntry(path)
		if readErr != nil {
			entry = nil
		}
		if !match(entry) {
			continue
		}
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return removed, fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(path), rmErr)
		}
		removed++
	}
	return removed, nil
}

// Stats reports entry count, expired count, total size and age range.
func (s *FileStore) Stats() (Stats, error) {
	if !s.enabled {
		return Stats{}, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entryFiles()
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, path := range files {
		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		st.Entries++
		st.Bytes += info.Size()

		entry, readErr := readEntry(path)
		if readErr != nil {
			st.Expired++
			continue
		}
		if entry.IsExpired() {
			st.Expired++
		}
		if st.Oldest.IsZero() || entry.CreatedAt.Before(st.Oldest) {
			st.Oldest = entry.CreatedAt
		}
		if entry.CreatedAt.After(st.Newest) {
			st.Newest = entry.CreatedAt
		}
	}
	return st, nil
}

// IsEnabled reports whether the store is active.
func (s *FileStore) IsEnabled() bool {
	return s.enabled
}

// GetDirectory returns the cache directory.
func (s *FileStore) GetDirectory() string {
	return s.directory
}

// GetTTL returns the TTL applied to new entries, in seconds.
func (s *FileStore) GetTTL() int {
	return s.ttlSeconds
}

func (s *FileStore) entryFiles() ([]string, error) {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == cacheFileExtension {
			files = append(files, filepath.Join(s.directory, e.Name()))
		}
	}
	return files, nil
}

func readEntry(path string) (*CacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	var entry CacheEntry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", unmarshalErr)
	}
	return &entry, nil
}

// keyToFilePath maps a key to a file name safe on every platform.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.directory, safeKey+cacheFileExtension)
}
