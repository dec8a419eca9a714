package repository

import (
	"context"
	"sync"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
)

const DefaultDecisionCapacity = 1000

// memoryDecisionRepository is a bounded ring used when no database is
// configured. Summary covers every decision seen, not just the retained ones.
type memoryDecisionRepository struct {
	mu      sync.RWMutex
	ring    []*decision.Decision
	next    int
	full    bool
	summary *decision.Summary
}

func NewMemoryDecisionRepository(capacity int) decision.Repository {
	if capacity <= 0 {
		capacity = DefaultDecisionCapacity
	}
	return &memoryDecisionRepository{
		ring:    make([]*decision.Decision, capacity),
		summary: decision.NewSummary(),
	}
}

func (r *memoryDecisionRepository) Save(_ context.Context, d *decision.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring[r.next] = d
	r.next = (r.next + 1) % len(r.ring)
	if r.next == 0 {
		r.full = true
	}
	r.summary.Add(d)
	return nil
}

func (r *memoryDecisionRepository) ListRecent(_ context.Context, limit int) ([]*decision.Decision, error) {
	if limit <= 0 {
		limit = decision.DefaultListLimit
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = len(r.ring)
	}
	if limit > size {
		limit = size
	}
	out := make([]*decision.Decision, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.ring)) % len(r.ring)
		out = append(out, r.ring[idx])
	}
	return out, nil
}

func (r *memoryDecisionRepository) Summary(context.Context) (*decision.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := *r.summary
	out.AttackTypes = make(map[string]int64, len(r.summary.AttackTypes))
	for k, v := range r.summary.AttackTypes {
		out.AttackTypes[k] = v
	}
	return &out, nil
}
