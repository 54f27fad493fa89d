package upsert

import (
	"context"

	"github.com/joseph-ayodele/restaurant-seeder/internal/repository"
)

// Batch is one transaction of upserts.
type Batch interface {
	Store() Store
	Commit() error
	Rollback() error
}

// Beginner opens batches.
type Beginner interface {
	BeginBatch(ctx context.Context) (Batch, error)
}

// BeginFunc adapts a function to Beginner.
type BeginFunc func(ctx context.Context) (Batch, error)

func (f BeginFunc) BeginBatch(ctx context.Context) (Batch, error) { return f(ctx) }

// Transactions opens batches as transactions on s.
func Transactions(s *repository.Store) Beginner {
	return BeginFunc(func(ctx context.Context) (Batch, error) {
		tx, err := s.Begin(ctx)
		if err != nil {
			return nil, err
		}
		return txBatch{tx}, nil
	})
}

type txBatch struct{ *repository.Tx }

func (b txBatch) Store() Store { return b.Restaurants() }
