package application

import (
	"sync"
	"time"

	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
)

// listingCache remembers each user's most recent bookings listing so that
// cancel-by-index resolves against exactly what the user saw. Entries expire
// after a TTL and every mutation clears the cache, since any change can shift
// the indices.
type listingCache struct {
	mu      sync.RWMutex
	now     func() time.Time
	ttl     time.Duration
	entries map[string]listingEntry
}

type listingEntry struct {
	bookings  []persistence.Booking
	expiresAt time.Time
}

func newListingCache(ttl time.Duration, now func() time.Time) *listingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &listingCache{
		now:     now,
		ttl:     ttl,
		entries: make(map[string]listingEntry),
	}
}

func (c *listingCache) Get(ownerID string) ([]persistence.Booking, bool) {
	c.mu.RLock()
	entry, ok := c.entries[ownerID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, ownerID)
		c.mu.Unlock()
		return nil, false
	}
	return cloneBookings(entry.bookings), true
}

func (c *listingCache) Store(ownerID string, bookings []persistence.Booking) {
	cloned := cloneBookings(bookings)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.entries[ownerID] = listingEntry{bookings: cloned, expiresAt: expiry}
}

func (c *listingCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]listingEntry)
	c.mu.Unlock()
}

func cloneBookings(bookings []persistence.Booking) []persistence.Booking {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]persistence.Booking, len(bookings))
	copy(out, bookings)
	return out
}
