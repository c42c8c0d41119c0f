// Package cache persists repository metadata between runs so repeated
// searches do not spend API quota on repositories seen recently.
package cache

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spiffcs/racefinder/internal/log"
	"github.com/spiffcs/racefinder/internal/model"
)

// Cache stores repository metadata as one JSON file per repository.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// DefaultDir returns the cache directory under the user cache dir.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "racefinder", "repos"), nil
}

// New opens (creating if needed) a cache in dir whose entries expire after ttl.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the directory the cache writes to.
func (c *Cache) Dir() string {
	return c.dir
}

// fileName maps a repository API URL to a file name, e.g.
// https://api.github.com/repos/o/r -> api.github.com_o_r.json
func fileName(repoURL string) (string, bool) {
	u, err := url.Parse(repoURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	path := strings.Trim(strings.TrimPrefix(u.Path, "/repos/"), "/")
	if path == "" {
		return "", false
	}
	safe := strings.NewReplacer("/", "_", ":", "_").Replace(u.Host + "/" + path)
	return safe + ".json", true
}

// Get returns the cached entry for repoURL if present and not expired.
func (c *Cache) Get(repoURL string) (*RepositoryEntry, bool) {
	name, ok := fileName(repoURL)
	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, false
	}

	var entry RepositoryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Debug("ignoring corrupt cache entry", "file", name, "error", err)
		return nil, false
	}
	if !c.valid(entry) {
		return nil, false
	}

	repo := entry.Repository
	return &repo, true
}

// Set writes repo to the cache.
func (c *Cache) Set(repoURL string, repo *model.Repository) error {
	name, ok := fileName(repoURL)
	if !ok || repo == nil {
		return nil
	}

	data, err := json.Marshal(RepositoryEntry{
		Repository: *repo,
		CachedAt:   c.now(),
		Version:    Version,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, name), data, 0600)
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Stats counts cached entries and how many are still fresh.
func (c *Cache) Stats() (*Stats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		stats.Total++

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry RepositoryEntry
		if json.Unmarshal(data, &entry) == nil && c.valid(entry) {
			stats.Valid++
		}
	}
	return stats, nil
}

func (c *Cache) valid(entry RepositoryEntry) bool {
	if entry.Version != Version {
		return false
	}
	return c.now().Sub(entry.CachedAt) <= c.ttl
}
