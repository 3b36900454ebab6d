package memory

import (
	"context"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func (s *Store) CreateOTP(ctx context.Context, rec *model.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID("otps")
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	s.otps[rec.ID] = *rec
	return nil
}

func (s *Store) ConsumeLatestOTP(ctx context.Context, buyerID uint, code string) (*model.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *model.OTPRecord
	for _, r := range s.otps {
		if r.BuyerID != buyerID || r.Code != code || r.IsVerified {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) ||
			(r.CreatedAt.Equal(latest.CreatedAt) && r.ID > latest.ID) {
			r := r
			latest = &r
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}

	latest.IsVerified = true
	s.otps[latest.ID] = *latest
	return latest, nil
}
