package memory

import (
	"context"
	"time"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func (s *Store) CreateAssociation(ctx context.Context, a *model.AgentBuyerAssociation, guard repository.AssociationGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guard != nil && a.BuyerID != nil {
		var existing []model.AgentBuyerAssociation
		for _, e := range s.associations {
			if e.BuyerID != nil && *e.BuyerID == *a.BuyerID && e.PropertyID == a.PropertyID {
				existing = append(existing, e)
			}
		}
		if err := guard(existing); err != nil {
			return err
		}
	}

	s.stamp("associations", &a.ID, &a.CreatedAt, &a.UpdatedAt)
	s.associations[a.ID] = *a
	return nil
}

func (s *Store) CreateTemporaryAssociation(ctx context.Context, a *model.AgentBuyerAssociation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.buyers {
		if b.Name == a.TempBuyerName && b.IdentificationNumber == a.TempBuyerIdentificationNumber {
			a.BuyerID = ptrUint(&b.ID)
			break
		}
	}

	s.stamp("associations", &a.ID, &a.CreatedAt, &a.UpdatedAt)
	s.associations[a.ID] = *a
	return nil
}

func (s *Store) BindTemporaryAssociations(ctx context.Context, buyerID uint, name, identificationNumber string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, a := range s.associations {
		if a.BuyerID == nil && a.TempBuyerName == name && a.TempBuyerIdentificationNumber == identificationNumber {
			a.BuyerID = ptrUint(&buyerID)
			a.UpdatedAt = s.now()
			s.associations[id] = a
			n++
		}
	}
	return n, nil
}

func (s *Store) GetAssociation(ctx context.Context, id uint) (*model.AgentBuyerAssociation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.associations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *Store) RecordAssociationResponse(ctx context.Context, a *model.AgentBuyerAssociation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.associations[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Accepted != nil {
		return repository.ErrStaleState
	}
	stored.Accepted = a.Accepted
	stored.LockUntil = a.LockUntil
	stored.UpdatedAt = s.now()
	s.associations[a.ID] = stored
	a.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) listAssociations(match func(model.AgentBuyerAssociation) bool) []model.AgentBuyerAssociation {
	out := []model.AgentBuyerAssociation{}
	for _, a := range s.associations {
		if match(a) {
			out = append(out, a)
		}
	}
	return newestFirst(out, func(a model.AgentBuyerAssociation) (time.Time, uint) { return a.CreatedAt, a.ID })
}

func (s *Store) ListAssociationsByBroker(ctx context.Context, brokerID uint) ([]model.AgentBuyerAssociation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAssociations(func(a model.AgentBuyerAssociation) bool { return a.BrokerID == brokerID }), nil
}

func (s *Store) ListAssociationsByBuyer(ctx context.Context, buyerID uint) ([]model.AgentBuyerAssociation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAssociations(func(a model.AgentBuyerAssociation) bool {
		return a.BuyerID != nil && *a.BuyerID == buyerID
	}), nil
}
