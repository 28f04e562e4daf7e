package db

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// LedgerCache holds derived per-user results. Entries are keyed by a history
// version that is bumped whenever the user's ledger changes, so stale entries
// are simply never read again and age out of ristretto.
type LedgerCache struct {
	cache    *ristretto.Cache
	versions struct {
		sync.RWMutex
		m map[string]uint64
	}
}

func NewLedgerCache() (*LedgerCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10000, // number of keys to track frequency of
		MaxCost:            10000,
		BufferItems:        64, // number of keys per Get buffer
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	lc := &LedgerCache{cache: c}
	lc.versions.m = make(map[string]uint64)
	return lc, nil
}

// BumpHistory invalidates everything cached for userID.
func (c *LedgerCache) BumpHistory(userID string) {
	c.versions.Lock()
	c.versions.m[userID]++
	c.versions.Unlock()
}

func (c *LedgerCache) HistoryVersion(userID string) uint64 {
	c.versions.RLock()
	defer c.versions.RUnlock()
	return c.versions.m[userID]
}

// Forget drops the user's version counter once the account is gone.
func (c *LedgerCache) Forget(userID string) {
	c.versions.Lock()
	delete(c.versions.m, userID)
	c.versions.Unlock()
}

func key(kind, userID string, version uint64) string {
	return fmt.Sprintf("%s:%s:%d", kind, userID, version)
}

// Get looks up a result computed from history at version.
func (c *LedgerCache) Get(kind, userID string, version uint64) (interface{}, bool) {
	return c.cache.Get(key(kind, userID, version))
}

// Set stores a result computed from history read at version. Results whose
// version has already been superseded are dropped.
func (c *LedgerCache) Set(kind, userID string, version uint64, value interface{}) {
	if c.HistoryVersion(userID) != version {
		return
	}
	c.cache.Set(key(kind, userID, version), value, 1)
	c.cache.Wait()
}

func (c *LedgerCache) Close() {
	c.cache.Close()
}
