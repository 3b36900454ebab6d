package memory

import (
	"context"
	"time"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func (s *Store) GetOrCreateActive(ctx context.Context, propertyID, buyerID uint, brokerID *uint) (*model.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.PropertyID == propertyID && t.BuyerID == buyerID && t.Active() {
			return &t, false, nil
		}
	}

	t := model.Transaction{
		PropertyID: propertyID,
		BuyerID:    buyerID,
		BrokerID:   ptrUint(brokerID),
		Status:     model.TransactionPreDeposit,
	}
	s.stamp("transactions", &t.ID, &t.CreatedAt, &t.UpdatedAt)
	s.transactions[t.ID] = t
	return &t, true, nil
}

func (s *Store) GetTransaction(ctx context.Context, id uint) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Store) AttachDocuments(ctx context.Context, id uint, contract, proof string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if contract != "" {
		t.ContractDocument = contract
	}
	if proof != "" {
		t.PaymentProof = proof
	}
	t.UpdatedAt = s.now()
	s.transactions[id] = t
	return &t, nil
}

func (s *Store) ResetToPreDeposit(ctx context.Context, id uint, brokerID *uint) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.Status != model.TransactionPreDeposit && t.Status != model.TransactionDepositPaid {
		return nil, repository.ErrStaleState
	}
	if brokerID != nil {
		t.BrokerID = ptrUint(brokerID)
	}
	t.Status = model.TransactionPreDeposit
	t.UpdatedAt = s.now()
	s.transactions[id] = t
	return &t, nil
}

func (s *Store) AdvanceTransaction(ctx context.Context, t *model.Transaction, from model.TransactionStatus, mark model.PropertyMark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.transactions[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStaleState
	}
	prop, ok := s.properties[t.PropertyID]
	if !ok && mark != model.MarkNone {
		return repository.ErrNotFound
	}

	now := s.now()
	switch mark {
	case model.MarkReserved:
		prop.IsReserved = true
	case model.MarkSold:
		prop.IsSold = true
	}
	if mark != model.MarkNone {
		prop.UpdatedAt = now
		s.properties[prop.ID] = prop
	}

	stored.Status = t.Status
	stored.DepositAmount = t.DepositAmount
	stored.DepositPaid = t.DepositPaid
	stored.UpdatedAt = now
	s.transactions[t.ID] = stored
	*t = stored
	return nil
}

func (s *Store) listTransactions(match func(model.Transaction) bool) []model.Transaction {
	out := []model.Transaction{}
	for _, t := range s.transactions {
		if match(t) {
			out = append(out, t)
		}
	}
	return newestFirst(out, func(t model.Transaction) (time.Time, uint) { return t.CreatedAt, t.ID })
}

func (s *Store) ListTransactionsByBuyer(ctx context.Context, buyerID uint) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTransactions(func(t model.Transaction) bool { return t.BuyerID == buyerID }), nil
}

func (s *Store) ListTransactionsByBroker(ctx context.Context, brokerID uint) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTransactions(func(t model.Transaction) bool {
		return t.BrokerID != nil && *t.BrokerID == brokerID
	}), nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTransactions(func(model.Transaction) bool { return true }), nil
}

// SetTransactionStatus overwrites a status directly. Only seeding and tests
// use it; the workflow never cancels through the public API.
func (s *Store) SetTransactionStatus(ctx context.Context, id uint, status model.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	s.transactions[id] = t
	return nil
}

func (s *Store) CreatePayout(ctx context.Context, p *model.CommissionPayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.payouts {
		if existing.TransactionID == p.TransactionID {
			return repository.ErrDuplicate
		}
	}
	s.stamp("payouts", &p.ID, &p.CreatedAt, &p.UpdatedAt)
	s.payouts[p.ID] = *p
	return nil
}

func (s *Store) SavePayout(ctx context.Context, p *model.CommissionPayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payouts[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = s.now()
	s.payouts[p.ID] = *p
	return nil
}

func (s *Store) GetPayoutByTransaction(ctx context.Context, transactionID uint) (*model.CommissionPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payouts {
		if p.TransactionID == transactionID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListPayoutsByStatus(ctx context.Context, status model.PayoutStatus) ([]model.CommissionPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.CommissionPayout{}
	for _, p := range s.payouts {
		if p.Status == status {
			out = append(out, p)
		}
	}
	sortByID(out)
	return out, nil
}
