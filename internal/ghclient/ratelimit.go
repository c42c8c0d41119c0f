package ghclient

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spiffcs/racefinder/internal/constants"
	"github.com/spiffcs/racefinder/internal/log"
)

// ErrRateLimited is returned when the GitHub API quota is exhausted.
var ErrRateLimited = errors.New("rate limited")

// GitHub meters these API resources separately, as named by the
// X-RateLimit-Resource response header.
const (
	ResourceCore       = "core"
	ResourceSearch     = "search"
	ResourceCodeSearch = "code_search"
)

type quota struct {
	remaining int
	limit     int
	resetAt   time.Time
	limited   bool
}

func (q quota) exhausted(now time.Time) bool {
	return q.limited && now.Before(q.resetAt)
}

// RateLimitState tracks the most recently reported quota of each resource.
type RateLimitState struct {
	mu     sync.RWMutex
	quotas map[string]quota
}

// IsLimited reports whether requests to resource should be refused until
// its reset.
func (s *RateLimitState) IsLimited(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quotas[resource].exhausted(time.Now())
}

// SetLimited marks resource as limited until resetAt.
func (s *RateLimitState) SetLimited(resource string, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.get(resource)
	q.limited = true
	q.resetAt = resetAt
	s.quotas[resource] = q
}

// Update records the quota of resource from response headers.
func (s *RateLimitState) Update(resource string, remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quotas == nil {
		s.quotas = make(map[string]quota)
	}
	s.quotas[resource] = quota{
		remaining: remaining,
		limit:     limit,
		resetAt:   resetAt,
		limited:   remaining == 0,
	}
}

// Status returns the last observed quota of resource.
func (s *RateLimitState) Status(resource string) (remaining, limit int, resetAt time.Time, limited bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := s.quotas[resource]
	return q.remaining, q.limit, q.resetAt, q.exhausted(time.Now())
}

// get must be called with the write lock held.
func (s *RateLimitState) get(resource string) quota {
	if s.quotas == nil {
		s.quotas = make(map[string]quota)
	}
	return s.quotas[resource]
}

// resourceFor maps a request to the quota GitHub charges it against.
func resourceFor(req *http.Request) string {
	path := strings.TrimSuffix(req.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/search/code"):
		return ResourceCodeSearch
	case strings.Contains(path, "/search/"):
		return ResourceSearch
	default:
		return ResourceCore
	}
}

// rateLimitTransport refuses requests while their resource's quota is
// exhausted and converts rate limit responses into ErrRateLimited.
type rateLimitTransport struct {
	base  http.RoundTripper
	state *RateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resource := resourceFor(req)
	if t.state.IsLimited(resource) {
		return nil, ErrRateLimited
	}

	log.Trace("github request", "method", req.Method, "url", req.URL.String(), "resource", resource)
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if r := resp.Header.Get("X-RateLimit-Resource"); r != "" {
		resource = r
	}
	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		t.state.Update(resource, remaining, limit, resetAt)
	}
	if remaining >= 0 && remaining <= constants.RateLimitLowWatermark {
		log.Debug("rate limit low", "resource", resource, "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	if resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
		t.state.SetLimited(resource, resetAt)
		_ = resp.Body.Close()
		return nil, ErrRateLimited
	}

	// go-github files code search under its search category, so an exhausted
	// code search quota would block issue searches too.
	if resource == ResourceCodeSearch {
		stripRateLimitHeaders(resp.Header)
	}

	return resp, nil
}

func stripRateLimitHeaders(h http.Header) {
	for _, k := range []string{
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"X-RateLimit-Reset",
		"X-RateLimit-Used",
		"X-RateLimit-Resource",
	} {
		h.Del(k)
	}
}

// parseRateLimitHeaders extracts the X-RateLimit-* headers; missing values
// are reported as -1 (or the zero time).
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining, limit = -1, -1

	if v, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); err == nil {
		remaining = v
	}
	if v, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit")); err == nil {
		limit = v
	}
	if v, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		resetAt = time.Unix(v, 0)
	}
	return remaining, limit, resetAt
}
