package memory

import (
	"context"
	"sort"
	"time"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func (s *Store) CreateAvailability(ctx context.Context, a *model.VisitAvailability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp("availability", &a.ID, &a.CreatedAt, &a.UpdatedAt)
	s.availability[a.ID] = *a
	return nil
}

func (s *Store) ListAvailability(ctx context.Context, propertyID uint) ([]model.VisitAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.VisitAvailability{}
	for _, a := range s.availability {
		if a.PropertyID == propertyID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AvailableDate.Equal(out[j].AvailableDate) {
			return out[i].AvailableDate.Before(out[j].AvailableDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateVisit(ctx context.Context, v *model.VisitRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp("visits", &v.ID, &v.CreatedAt, &v.UpdatedAt)
	s.visits[v.ID] = *v
	return nil
}

func (s *Store) GetVisit(ctx context.Context, id uint) (*model.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (s *Store) SaveVisit(ctx context.Context, v *model.VisitRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visits[v.ID]; !ok {
		return repository.ErrNotFound
	}
	v.UpdatedAt = s.now()
	s.visits[v.ID] = *v
	return nil
}

func (s *Store) ListVisitsBySeller(ctx context.Context, sellerID uint) ([]model.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.VisitRequest{}
	for _, v := range s.visits {
		if p, ok := s.properties[v.PropertyID]; ok && p.SellerID == sellerID {
			out = append(out, v)
		}
	}
	return newestFirst(out, func(v model.VisitRequest) (time.Time, uint) { return v.CreatedAt, v.ID }), nil
}

func (s *Store) ListVisitsScheduledBetween(ctx context.Context, status model.VisitStatus, from, to time.Time) ([]model.VisitRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.VisitRequest{}
	for _, v := range s.visits {
		if v.Status == status && !v.ScheduledDate.Before(from) && v.ScheduledDate.Before(to) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}
