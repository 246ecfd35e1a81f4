package transactions

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrAlreadyExists = errors.New("transaction already exists")
)

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status Status
	Since  time.Time
	Limit  int
}

func (f Filter) matches(r *Record) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && r.PaidAt.Before(f.Since) {
		return false
	}
	return true
}

// Log stores transaction records keyed by id. List returns newest first.
type Log interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, r *Record) error
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}
