package dashboard

import (
	"sync"
	"time"
)

// PickRegistry holds picks waiting for the operator's label. Each entry is
// independent; taking one never affects another.
type PickRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	pending map[string]Pick
}

func NewPickRegistry(ttl time.Duration) *PickRegistry {
	return &PickRegistry{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]Pick),
	}
}

func (r *PickRegistry) Open(p Pick) {
	r.mu.Lock()
	r.pending[p.ID] = p
	r.mu.Unlock()
}

// Take removes and returns the pick. Expired picks are dropped.
func (r *PickRegistry) Take(id string) (Pick, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[id]
	if !ok {
		return Pick{}, ErrPickNotFound
	}
	delete(r.pending, id)
	if r.expired(p) {
		return Pick{}, ErrPickNotFound
	}
	return p, nil
}

func (r *PickRegistry) Cancel(id string) error {
	_, err := r.Take(id)
	return err
}

func (r *PickRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Sweep drops expired picks and returns how many were removed.
func (r *PickRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, p := range r.pending {
		if r.expired(p) {
			delete(r.pending, id)
			removed++
		}
	}
	return removed
}

func (r *PickRegistry) expired(p Pick) bool {
	return r.ttl > 0 && r.now().Sub(p.PickedAt) > r.ttl
}
