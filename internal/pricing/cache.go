package pricing

import (
	"sync"
	"time"

	"github.com/dinhdungweb/nerdsociety-v3-sub002/internal/resource"
)

// ruleCache is a small in-process TTL cache for pricing rules.
// Rules are read on every booking request but change rarely, so a
// short TTL plus an explicit invalidation hook on admin edits keeps
// reads cheap without serving stale prices for long.
type ruleCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[resource.Category]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	rule      *Rule
	expiresAt time.Time
}

func newRuleCache(ttl time.Duration) *ruleCache {
	return &ruleCache{
		ttl:     ttl,
		entries: make(map[resource.Category]cacheEntry),
		now:     time.Now,
	}
}

func (c *ruleCache) get(category resource.Category) (*Rule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[category]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.rule, true
}

func (c *ruleCache) set(category resource.Category, rule *Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[category] = cacheEntry{
		rule:      rule,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *ruleCache) invalidate(category resource.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, category)
}
