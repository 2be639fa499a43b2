package services

import (
	"sync"
	"time"
)

const defaultAssociationTTL = 5 * time.Minute

// AssociationCache is an in-process read-through cache of "which modifier
// lists does item X have", keyed by item Square ID. It exists so on-demand
// item-detail lookups between syncs do not hit the remote API repeatedly.
// It is injected rather than a package global, and a full sync must Clear it
// so post-sync reads are never served pre-sync data.
type AssociationCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]assocEntry

	// now is replaceable in tests.
	now func() time.Time
}

type assocEntry struct {
	listSquareIDs []string
	cachedAt      time.Time
}

func NewAssociationCache(ttl time.Duration) *AssociationCache {
	if ttl <= 0 {
		ttl = defaultAssociationTTL
	}
	return &AssociationCache{
		ttl:     ttl,
		entries: make(map[string]assocEntry),
		now:     time.Now,
	}
}

// Get returns the cached modifier-list IDs for an item, or ok=false on a miss
// or an expired entry.
func (c *AssociationCache) Get(itemSquareID string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[itemSquareID]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.cachedAt) > c.ttl {
		delete(c.entries, itemSquareID)
		return nil, false
	}
	ids := make([]string, len(entry.listSquareIDs))
	copy(ids, entry.listSquareIDs)
	return ids, true
}

func (c *AssociationCache) Put(itemSquareID string, listSquareIDs []string) {
	ids := make([]string, len(listSquareIDs))
	copy(ids, listSquareIDs)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[itemSquareID] = assocEntry{listSquareIDs: ids, cachedAt: c.now()}
}

// Clear drops every entry. Called once at the end of a full sync.
func (c *AssociationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]assocEntry)
}
