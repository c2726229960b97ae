package identity

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"chatsync/pkg/logger"
)

// Avatar lookups are cached per identity with two TTLs: a long one when a
// picture was found (a confirmed avatar rarely changes) and a short one when
// the lookup returned nothing (a not-yet-available picture should be retried
// soon). Lookups in flight are coalesced so a burst of viewport recomputes
// does not restart the same fetch.
const (
	FoundTTL = 6 * time.Hour
	MissTTL  = 90 * time.Second
)

// LookupFunc fetches the avatar URL for an identity. An empty URL with a
// nil error is a valid "no picture" answer and is cached with MissTTL.
type LookupFunc func(ctx context.Context, identity string) (string, error)

type cacheEntry struct {
	url       string
	expiresAt time.Time
}

// Resolver is the avatar cache. It is the only state shared across
// conversations and is safe for concurrent use.
type Resolver struct {
	lookup  LookupFunc
	limiter *rate.Limiter

	mu       sync.Mutex
	cache    map[string]cacheEntry
	inflight map[string]chan struct{}
	now      func() time.Time
}

// NewResolver builds a Resolver around lookup. Lookups are rate limited to
// keep a degraded avatar backend from being hammered by scroll bursts.
func NewResolver(lookup LookupFunc) *Resolver {
	return &Resolver{
		lookup:   lookup,
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
		cache:    make(map[string]cacheEntry),
		inflight: make(map[string]chan struct{}),
		now:      time.Now,
	}
}

// NewResolverWithLimit builds a Resolver with a custom lookup rate.
// Non-positive values keep the defaults.
func NewResolverWithLimit(lookup LookupFunc, rps float64, burst int) *Resolver {
	r := NewResolver(lookup)
	if rps > 0 && burst > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return r
}

// AvatarURL returns the cached avatar URL for identity, performing (or
// joining) a lookup when the cache has no live entry. An empty string means
// no picture is known.
func (r *Resolver) AvatarURL(ctx context.Context, identity string) (string, error) {
	if identity == "" {
		return "", nil
	}
	for {
		r.mu.Lock()
		if e, ok := r.cache[identity]; ok && r.now().Before(e.expiresAt) {
			r.mu.Unlock()
			return e.url, nil
		}
		if ch, ok := r.inflight[identity]; ok {
			// join the lookup already in flight
			r.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return "", ctx.Err()
			}
			continue
		}
		ch := make(chan struct{})
		r.inflight[identity] = ch
		r.mu.Unlock()

		url, err := r.doLookup(ctx, identity)

		r.mu.Lock()
		delete(r.inflight, identity)
		close(ch)
		if err == nil {
			ttl := FoundTTL
			if url == "" {
				ttl = MissTTL
			}
			r.cache[identity] = cacheEntry{url: url, expiresAt: r.now().Add(ttl)}
		}
		r.mu.Unlock()
		return url, err
	}
}

func (r *Resolver) doLookup(ctx context.Context, identity string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.lookup(ctx, identity)
}

// Prefetch warms the cache for the given identities in the background.
// Failures are logged and retried on the next demand (no retry loop here).
func (r *Resolver) Prefetch(identities []string) {
	for _, id := range identities {
		id := id
		r.mu.Lock()
		_, cached := r.cache[id]
		if cached {
			if e := r.cache[id]; r.now().Before(e.expiresAt) {
				r.mu.Unlock()
				continue
			}
		}
		_, busy := r.inflight[id]
		r.mu.Unlock()
		if busy || id == "" {
			continue
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := r.AvatarURL(ctx, id); err != nil {
				logger.Warn("avatar_prefetch_failed", "identity", id, "error", err)
			}
		}()
	}
}

// Sweep drops expired cache entries and returns how many were removed.
// Called on a schedule by internal/sweeper.
func (r *Resolver) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for k, e := range r.cache {
		if !now.Before(e.expiresAt) {
			delete(r.cache, k)
			removed++
		}
	}
	return removed
}

// Size returns the number of live cache entries.
func (r *Resolver) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// SetClock overrides the time source, for tests.
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }
