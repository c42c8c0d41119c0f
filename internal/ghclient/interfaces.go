package ghclient

import "github.com/spiffcs/racefinder/internal/miner"

// Ensure both clients satisfy the pipeline's client interface.
var (
	_ miner.Client = (*Client)(nil)
	_ miner.Client = (*CachedClient)(nil)
)

// Ensure Client can back a RepositoryStore.
var _ RepositoryFetcher = (*Client)(nil)
