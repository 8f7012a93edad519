package cache

import (
	"sync"
	"time"

	"github.com/distinctmentorship/payments/internal/provider"
)

// ConfirmationCache bridges the gap between a confirmation landing and its
// durable write becoming visible to a concurrent poll. It is an availability
// optimization only; the transaction store stays the source of truth.
type ConfirmationCache interface {
	Put(checkoutID string, result provider.Result)
	Get(checkoutID string) (provider.Result, bool)
	Evict(checkoutID string)
}

type entry struct {
	result    provider.Result
	expiresAt time.Time
}

type confirmationCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewConfirmationCache builds a process-lifetime cache. Entries expire after
// ttl so unmatched confirmations cannot accumulate unbounded.
func NewConfirmationCache(ttl time.Duration) ConfirmationCache {
	return &confirmationCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *confirmationCache) Put(checkoutID string, result provider.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpiredLocked()
	c.entries[checkoutID] = entry{result: result, expiresAt: c.now().Add(c.ttl)}
}

func (c *confirmationCache) Get(checkoutID string) (provider.Result, bool) {
	c.mu.RLock()
	e, ok := c.entries[checkoutID]
	c.mu.RUnlock()

	if !ok {
		return provider.Result{}, false
	}

	if c.now().After(e.expiresAt) {
		c.Evict(checkoutID)
		return provider.Result{}, false
	}

	return e.result, true
}

func (c *confirmationCache) Evict(checkoutID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, checkoutID)
}

func (c *confirmationCache) purgeExpiredLocked() {
	now := c.now()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}
