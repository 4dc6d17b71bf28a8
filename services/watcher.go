package services

import (
	"sync"

	"nssc-portal/store"
)

// Reconciler keeps whichever of the last local write and the last remote
// snapshot carries the higher version. Late, stale snapshots are dropped.
type Reconciler struct {
	mu      sync.Mutex
	current store.Snapshot
}

// Local records a snapshot produced by our own write.
func (r *Reconciler) Local(s store.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Version > r.current.Version {
		r.current = s
	}
}

// Remote offers a snapshot from the change feed and reports whether it was newer.
func (r *Reconciler) Remote(s store.Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Version <= r.current.Version {
		return false
	}
	r.current = s
	return true
}

func (r *Reconciler) Current() store.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
