// Package cache provides the in-memory snapshot cache that sits between
// the HTTP layer and the ledger store. Read paths hit the cache, write
// paths purge it.
package cache

import (
	"time"

	"tally/internal/log"
)

// Cache is the read-through cache used for ledger snapshots and
// derived analytics views.
type Cache[T any] interface {
	// Get retrieves a value from the cache.
	Get(key string) (T, bool)

	// Set stores a value in the cache.
	Set(key string, data T)

	// Delete removes a key from the cache.
	Delete(key string)

	// Purge removes every entry. Called after a write so readers
	// never see a stale ledger.
	Purge()

	// Size returns the current number of items in the cache.
	Size() int
}

// Stats is a point-in-time counter snapshot, exposed on /metrics.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps expired entries from registered caches.
type Janitor struct {
	logger *log.Logger
	caches []Cleaner
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewJanitor creates a janitor. Register caches before calling Start.
func NewJanitor(logger *log.Logger) *Janitor {
	return &Janitor{
		logger: logger.WithComponent(log.ComponentCache),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Register adds a cache to the sweep set.
func (j *Janitor) Register(cache Cleaner) {
	j.caches = append(j.caches, cache)
}

// Start begins the periodic sweep in a background goroutine.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, cache := range j.caches {
				cleaned += cache.CleanExpired()
			}
			if cleaned > 0 {
				j.logger.Debug("swept expired cache entries", "cleaned", cleaned)
			}
		case <-j.stopCh:
			return
		}
	}
}

// Stop halts the sweep and waits for the goroutine to exit.
func (j *Janitor) Stop() {
	close(j.stopCh)
	<-j.doneCh
}
