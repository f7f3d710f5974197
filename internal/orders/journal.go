package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

// Journal is the key-value backed execution journal fed from order events
type Journal struct {
	store store.Store
	mu    sync.Mutex
}

// NewJournal creates a journal over st
func NewJournal(st store.Store) *Journal {
	return &Journal{store: st}
}

// RecordExecution appends e unless an entry for the same order and source exists
func (j *Journal) RecordExecution(ctx context.Context, e *models.Execution) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range entries {
		if existing.OrderID == e.OrderID && existing.Source == e.Source {
			return nil
		}
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	return store.SaveJSON(ctx, j.store, store.KeyExecutions, append(entries, e))
}

// ExecutionExists reports whether the order was already journaled from source
func (j *Journal) ExecutionExists(ctx context.Context, orderID, source string) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.load(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.OrderID == orderID && e.Source == source {
			return true, nil
		}
	}
	return false, nil
}

// ListExecutions returns entries newest first
func (j *Journal) ListExecutions(ctx context.Context) ([]*models.Execution, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].ExecutedAt.After(entries[b].ExecutedAt)
	})
	return entries, nil
}

func (j *Journal) load(ctx context.Context) ([]*models.Execution, error) {
	entries := []*models.Execution{}
	if _, err := store.LoadJSON(ctx, j.store, store.KeyExecutions, &entries); err != nil {
		return nil, fmt.Errorf("failed to load executions: %w", err)
	}
	return entries, nil
}
