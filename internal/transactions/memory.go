package transactions

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryLog is an in-memory implementation of Log
type MemoryLog struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryLog creates a new in-memory transaction log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{records: make(map[string]*Record)}
}

// Create stores a new record
func (l *MemoryLog) Create(_ context.Context, r *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.records[r.ID]; exists {
		return fmt.Errorf("%s: %w", r.ID, ErrAlreadyExists)
	}

	l.records[r.ID] = r.Clone()
	return nil
}

// Get retrieves a record by ID
func (l *MemoryLog) Get(_ context.Context, id string) (*Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, exists := l.records[id]
	if !exists {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	// Return a copy to prevent external modification
	return r.Clone(), nil
}

// Update replaces an existing record
func (l *MemoryLog) Update(_ context.Context, r *Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.records[r.ID]; !exists {
		return fmt.Errorf("%s: %w", r.ID, ErrNotFound)
	}

	l.records[r.ID] = r.Clone()
	return nil
}

// List returns records matching the filter, newest first
func (l *MemoryLog) List(_ context.Context, filter Filter) ([]*Record, error) {
	l.mu.RLock()
	result := make([]*Record, 0, len(l.records))
	for _, r := range l.records {
		if !filter.matches(r) {
			continue
		}
		result = append(result, r.Clone())
	}
	l.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].PaidAt.Equal(result[j].PaidAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].PaidAt.After(result[j].PaidAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Close is a no-op.
func (l *MemoryLog) Close() error {
	return nil
}
