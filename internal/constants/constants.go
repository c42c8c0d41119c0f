// Package constants collects the tunables shared across racefinder packages.
package constants

import "time"

// Progress display
const (
	// ProgressEvery is how many examined issues pass between progress lines.
	ProgressEvery = 10
)

// GitHub API
const (
	// RateLimitLowWatermark is the remaining quota below which requests are
	// logged at debug level.
	RateLimitLowWatermark = 10

	// MaxPerPage is the largest page size the REST API serves.
	MaxPerPage = 100
)

// Caching
const (
	// RepositoryCacheTTL bounds how long repository metadata persisted on
	// disk is kept for revalidation. Entries are only ever used after GitHub
	// confirms them with 304 Not Modified.
	RepositoryCacheTTL = 7 * 24 * time.Hour

	// RepositoryMemoSize is the number of repositories kept in memory during
	// a run.
	RepositoryMemoSize = 1024
)

// Issue states accepted by the is: qualifier.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)
