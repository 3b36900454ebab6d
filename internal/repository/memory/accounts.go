package memory

import (
	"context"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func (s *Store) GetUser(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetSeller(ctx context.Context, id uint) (*model.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.sellers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (s *Store) GetBuyer(ctx context.Context, id uint) (*model.Buyer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.buyers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (s *Store) GetBroker(ctx context.Context, id uint) (*model.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.brokers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (s *Store) GetProperty(ctx context.Context, id uint) (*model.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.properties[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (s *Store) GetSellerByUser(ctx context.Context, userID uint) (*model.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.sellers {
		if v.UserID == userID {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetBuyerByUser(ctx context.Context, userID uint) (*model.Buyer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.buyers {
		if v.UserID != nil && *v.UserID == userID {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetBrokerByUser(ctx context.Context, userID uint) (*model.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.brokers {
		if v.UserID == userID {
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) insertUser(u *model.User) error {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	s.stamp("users", &u.ID, &u.CreatedAt, &u.UpdatedAt)
	s.users[u.ID] = *u
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertUser(user)
}

func (s *Store) CreateSellerAccount(ctx context.Context, user *model.User, seller *model.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertUser(user); err != nil {
		return err
	}
	seller.UserID = user.ID
	s.stamp("sellers", &seller.ID, &seller.CreatedAt, &seller.UpdatedAt)
	s.sellers[seller.ID] = *seller
	return nil
}

func (s *Store) CreateBuyerAccount(ctx context.Context, user *model.User, buyer *model.Buyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertUser(user); err != nil {
		return err
	}
	uid := user.ID
	buyer.UserID = &uid
	s.stamp("buyers", &buyer.ID, &buyer.CreatedAt, &buyer.UpdatedAt)
	s.buyers[buyer.ID] = *buyer
	return nil
}

func (s *Store) CreateBrokerAccount(ctx context.Context, user *model.User, broker *model.Broker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertUser(user); err != nil {
		return err
	}
	broker.UserID = user.ID
	s.stamp("brokers", &broker.ID, &broker.CreatedAt, &broker.UpdatedAt)
	s.brokers[broker.ID] = *broker
	return nil
}

func (s *Store) CreateProperty(ctx context.Context, property *model.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sellers[property.SellerID]; !ok {
		return repository.ErrNotFound
	}
	s.stamp("properties", &property.ID, &property.CreatedAt, &property.UpdatedAt)
	s.properties[property.ID] = *property
	return nil
}

// SaveBroker updates a broker row. Used by seeding and tests to verify brokers.
func (s *Store) SaveBroker(ctx context.Context, broker *model.Broker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.brokers[broker.ID]; !ok {
		return repository.ErrNotFound
	}
	broker.UpdatedAt = s.now()
	s.brokers[broker.ID] = *broker
	return nil
}

// CreateBuyer inserts a buyer without a user account.
func (s *Store) CreateBuyer(ctx context.Context, buyer *model.Buyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp("buyers", &buyer.ID, &buyer.CreatedAt, &buyer.UpdatedAt)
	s.buyers[buyer.ID] = *buyer
	return nil
}
