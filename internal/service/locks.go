package service

import (
	"sync"

	"github.com/google/uuid"
)

// GigLocks serializes mutations per gig. Every status/report_count
// change and every thread append for one gig goes through that gig's
// mutex; different gigs never contend.
//
// Locks are never evicted: one mutex per gig ever touched is cheap at
// this scale, and eviction would race with lock acquisition.
type GigLocks struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewGigLocks() *GigLocks {
	return &GigLocks{}
}

// Lock acquires the mutex for a gig and returns its unlock function.
func (g *GigLocks) Lock(gigID uuid.UUID) func() {
	actual, _ := g.locks.LoadOrStore(gigID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
