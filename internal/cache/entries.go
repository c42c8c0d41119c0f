package cache

import (
	"time"

	"github.com/spiffcs/racefinder/internal/model"
)

// Version is bumped whenever the entry format changes; older entries are
// ignored.
const Version = 2

// RepositoryEntry is a repository cached on disk together with the ETag
// GitHub served it with, so it can be revalidated before use.
type RepositoryEntry struct {
	Repository model.Repository `json:"repository"`
	ETag       string           `json:"etag"`
	CachedAt   time.Time        `json:"cachedAt"`
	Version    int              `json:"version"`
}

// Stats describes the entries on disk.
type Stats struct {
	Total int
	Valid int
}
