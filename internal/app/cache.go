package service

import (
	"sync"

	"github.com/okian/paddock/internal/domain/types"
)

// outcomeCache is a bounded map of race outcomes keyed by race ID.
// When full, storing a new race evicts the oldest one, so the most
// recent races stay queryable.
type outcomeCache struct {
	mu       sync.RWMutex
	outcomes map[string]types.RaceOutcome
	ring     []string
	next     int
	maxSize  int
}

func newOutcomeCache(maxSize int) *outcomeCache {
	c := &outcomeCache{
		outcomes: make(map[string]types.RaceOutcome),
		maxSize:  maxSize,
	}
	if maxSize > 0 {
		c.ring = make([]string, maxSize)
	}
	return c
}

// put stores or replaces an outcome. Replacing an existing race (the
// pending record being finalized) does not consume a new slot.
func (c *outcomeCache) put(outcome types.RaceOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.outcomes[outcome.RaceID]; exists {
		c.outcomes[outcome.RaceID] = outcome
		return
	}

	if c.maxSize > 0 {
		if old := c.ring[c.next]; old != "" {
			delete(c.outcomes, old)
		}
		c.ring[c.next] = outcome.RaceID
		c.next = (c.next + 1) % c.maxSize
	}
	c.outcomes[outcome.RaceID] = outcome
}

func (c *outcomeCache) get(raceID string) (types.RaceOutcome, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out, ok := c.outcomes[raceID]
	return out, ok
}

// drop removes a race, freeing its ring slot for reuse.
func (c *outcomeCache) drop(raceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.outcomes[raceID]; !exists {
		return
	}
	delete(c.outcomes, raceID)
	if c.maxSize > 0 {
		for i := range c.ring {
			if c.ring[i] == raceID {
				c.ring[i] = ""
				break
			}
		}
	}
}

func (c *outcomeCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.outcomes)
}
