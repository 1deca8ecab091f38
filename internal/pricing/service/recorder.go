package service

import (
	"sync"

	"repricer/internal/domain"
)

// recorder accumulates product outcomes while a batch runs. Entries are only
// ever added; the first outcome recorded for a product wins.
type recorder struct {
	mu      sync.Mutex
	outcome domain.BatchOutcome
}

func newRecorder(runID string, op domain.BatchOperation, total int) *recorder {
	return &recorder{
		outcome: domain.BatchOutcome{
			RunID:      runID,
			Operation:  op,
			Total:      total,
			PerProduct: make(map[string]domain.ProductOutcome, total),
		},
	}
}

func (r *recorder) record(p domain.ProductOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.outcome.PerProduct[p.ProductID]; exists {
		return
	}
	r.outcome.PerProduct[p.ProductID] = p

	switch p.Status {
	case domain.OutcomeOK:
		r.outcome.Succeeded++
	case domain.OutcomeFailed:
		r.outcome.Failed++
	case domain.OutcomeSkipped:
		r.outcome.Skipped++
	}
}

// result returns a copy detached from the recorder.
func (r *recorder) result() domain.BatchOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.outcome
	out.PerProduct = make(map[string]domain.ProductOutcome, len(r.outcome.PerProduct))
	for id, p := range r.outcome.PerProduct {
		out.PerProduct[id] = p
	}
	return out
}
