package ttlcleanup

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Start deletes expired items from c every interval until the returned stop function is called.
//
// Expired items are never returned by Get, so the loop only bounds memory and fires eviction hooks.
// Stop may be called at any time, including before the loop has been scheduled, and more than once.
func Start[K comparable, V any](c *ttlcache.Cache[K, V], interval time.Duration) func() {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.DeleteExpired()
			}
		}
	}()

	return sync.OnceFunc(func() {
		close(done)
	})
}
