package memory

import (
	"context"
	"time"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func (s *Store) CreateLead(ctx context.Context, lead *model.Lead, guard repository.LeadGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guard != nil {
		var existing []model.Lead
		for _, l := range s.leads {
			if l.BuyerID == lead.BuyerID && l.PropertyID == lead.PropertyID {
				existing = append(existing, l)
			}
		}
		if err := guard(existing); err != nil {
			return err
		}
	}

	s.stamp("leads", &lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	s.leads[lead.ID] = *lead
	return nil
}

func (s *Store) GetLead(ctx context.Context, id uint) (*model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (s *Store) SaveLead(ctx context.Context, lead *model.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[lead.ID]; !ok {
		return repository.ErrNotFound
	}
	lead.UpdatedAt = s.now()
	s.leads[lead.ID] = *lead
	return nil
}

func (s *Store) ListLeadsByBroker(ctx context.Context, brokerID uint) ([]model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Lead{}
	for _, l := range s.leads {
		if l.BrokerID == brokerID {
			out = append(out, l)
		}
	}
	return newestFirst(out, func(l model.Lead) (time.Time, uint) { return l.CreatedAt, l.ID }), nil
}
