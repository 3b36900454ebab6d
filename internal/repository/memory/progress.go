package memory

import (
	"context"
	"time"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func (s *Store) AppendProgress(ctx context.Context, entry *model.TransactionProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[entry.TransactionID]; !ok {
		return repository.ErrNotFound
	}
	entry.ID = s.nextID("progress")
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.progress[entry.ID] = *entry
	return nil
}

func (s *Store) ListProgress(ctx context.Context, transactionID uint) ([]model.TransactionProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.TransactionProgress{}
	for _, e := range s.progress {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return newestFirst(out, func(e model.TransactionProgress) (time.Time, uint) { return e.CreatedAt, e.ID }), nil
}
