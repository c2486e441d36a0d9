// Package query is a small keyed read cache with invalidation, standing in
// for the request/response caching layer the UI's data fetching runs through.
// Each key owns a fetch function; Invalidate marks the key stale and refetches
// so the authoritative server state replaces any optimistic local copy.
package query

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

type Key string

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

type FetchFunc func(ctx context.Context) (interface{}, error)

type entry struct {
	fetch  FetchFunc
	status Status
	data   interface{}
	err    error
}

type Cache struct {
	mu         sync.Mutex
	entries    map[Key]*entry
	maxRetries uint64
	backoff    time.Duration
	subs       []func(Key)
}

// NewCache builds a cache whose reads are retried maxRetries times with a
// constant backoff. Mutations are never issued through the cache, so retry
// only ever applies to idempotent fetches.
func NewCache(maxRetries uint64, backoff time.Duration) *Cache {
	return &Cache{
		entries:    make(map[Key]*entry),
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Register binds a fetch function to a key. Re-registering replaces the fetch
// and drops any cached value.
func (c *Cache) Register(key Key, fetch FetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{fetch: fetch}
}

// Get returns the cached value for the key, fetching it first if the key has
// never resolved or was invalidated.
func (c *Cache) Get(ctx context.Context, key Key) (interface{}, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil, ErrUnknownKey
	}
	if e.status == StatusSuccess {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	e.status = StatusLoading
	fetch := e.fetch
	c.mu.Unlock()

	var data interface{}
	err := retry.Do(ctx, retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.backoff)), func(ctx context.Context) error {
		var fetchErr error
		data, fetchErr = fetch(ctx)
		if fetchErr != nil {
			return retry.RetryableError(fetchErr)
		}
		return nil
	})

	c.mu.Lock()
	if err != nil {
		e.status = StatusError
		e.err = err
	} else {
		e.status = StatusSuccess
		e.data = data
		e.err = nil
	}
	c.mu.Unlock()

	return data, err
}

// Invalidate drops the cached value for each key and refetches immediately.
// Fetch failures are kept as the key's error state; callers observing the key
// see the stale-then-error progression the same way a query library reports it.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) {
	for _, key := range keys {
		c.mu.Lock()
		e, ok := c.entries[key]
		if !ok {
			c.mu.Unlock()
			continue
		}
		e.status = StatusIdle
		e.data = nil
		subs := append([]func(Key){}, c.subs...)
		c.mu.Unlock()

		_, _ = c.Get(ctx, key)

		for _, fn := range subs {
			fn(key)
		}
	}
}

// Subscribe registers a callback invoked after a key is invalidated and
// refetched.
func (c *Cache) Subscribe(fn func(Key)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Status reports the current state of a key without triggering a fetch.
func (c *Cache) Status(key Key) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.status
	}
	return StatusIdle
}
