package ghclient

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spiffcs/racefinder/internal/cache"
	"github.com/spiffcs/racefinder/internal/log"
	"github.com/spiffcs/racefinder/internal/model"
)

// RepositoryFetcher fetches repository metadata from the API.
type RepositoryFetcher interface {
	Repository(ctx context.Context, repoURL string) (*model.Repository, error)
	RepositoryIfModified(ctx context.Context, repoURL, etag string) (*RepositoryRevision, error)
}

// RepositoryStore provides cache-aware repository lookups. Many issues share
// a repository, so lookups are memoized for the run. When a disk cache is
// configured, entries saved by earlier runs are revalidated with their ETag
// and used only when GitHub answers 304 Not Modified.
type RepositoryStore struct {
	fetcher RepositoryFetcher
	memo    *lru.Cache[string, model.Repository]
	disk    *cache.Cache

	hits   int
	misses int
}

// NewRepositoryStore creates a store holding up to size repositories in
// memory. disk may be nil.
func NewRepositoryStore(fetcher RepositoryFetcher, disk *cache.Cache, size int) (*RepositoryStore, error) {
	memo, err := lru.New[string, model.Repository](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository cache: %w", err)
	}
	return &RepositoryStore{fetcher: fetcher, memo: memo, disk: disk}, nil
}

// Repository returns metadata for repoURL from memory, a revalidated disk
// entry or the API.
func (s *RepositoryStore) Repository(ctx context.Context, repoURL string) (*model.Repository, error) {
	if repo, ok := s.memo.Get(repoURL); ok {
		s.hits++
		return &repo, nil
	}

	if s.disk == nil {
		s.misses++
		repo, err := s.fetcher.Repository(ctx, repoURL)
		if err != nil {
			return nil, err
		}
		s.memo.Add(repoURL, *repo)
		return repo, nil
	}

	var etag string
	entry, cached := s.disk.Get(repoURL)
	if cached {
		etag = entry.ETag
	}

	rev, err := s.fetcher.RepositoryIfModified(ctx, repoURL, etag)
	if err != nil {
		return nil, err
	}

	if rev.NotModified {
		if !cached {
			return nil, fmt.Errorf("unexpected 304 Not Modified for %s", repoURL)
		}
		log.Debug("repository cache revalidated", "url", repoURL)
		s.hits++
		repo := entry.Repository
		s.memo.Add(repoURL, repo)
		return &repo, nil
	}

	s.misses++
	repo := rev.Repository
	s.memo.Add(repoURL, *repo)
	if rev.ETag != "" {
		if err := s.disk.Set(repoURL, repo, rev.ETag); err != nil {
			log.Debug("failed to cache repository", "url", repoURL, "error", err)
		}
	}
	return repo, nil
}

// Stats returns the number of lookups served from memory or a revalidated
// disk entry, and the number that transferred the repository from the API.
func (s *RepositoryStore) Stats() (hits, misses int) {
	return s.hits, s.misses
}

// CachedClient is a Client whose repository lookups go through a
// RepositoryStore. It satisfies the pipeline's client interface.
type CachedClient struct {
	*Client
	repos *RepositoryStore
}

// NewCachedClient wraps c with repos.
func NewCachedClient(c *Client, repos *RepositoryStore) *CachedClient {
	return &CachedClient{Client: c, repos: repos}
}

// Repository overrides Client.Repository with the cached lookup.
func (c *CachedClient) Repository(ctx context.Context, repoURL string) (*model.Repository, error) {
	return c.repos.Repository(ctx, repoURL)
}
