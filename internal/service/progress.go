package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/pkg/logger"
)

// TransactionReader is the read side of TransactionStore.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id uint) (*model.Transaction, error)
}

// ProgressService keeps the append-only milestone log of a transaction.
type ProgressService struct {
	store        ProgressStore
	transactions TransactionReader
	accounts     AccountLookup
	now          Clock
}

func NewProgressService(store ProgressStore, transactions TransactionReader, accounts AccountLookup, now Clock) *ProgressService {
	if now == nil {
		now = systemClock
	}
	return &ProgressService{store: store, transactions: transactions, accounts: accounts, now: now}
}

func (s *ProgressService) Append(ctx context.Context, p model.Principal, transactionID uint, milestone model.Milestone, comment string) (*model.TransactionProgress, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if _, err := s.transactions.GetTransaction(ctx, transactionID); err != nil {
		return nil, lookupError(err, "transaction")
	}
	if !milestone.Valid() {
		return nil, errBadRequest("invalid_milestone", "unknown progress status "+string(milestone))
	}

	entry := &model.TransactionProgress{
		TransactionID: transactionID,
		Status:        milestone,
		Comment:       comment,
		AuthorID:      p.UserID,
		CreatedAt:     s.now(),
	}
	if err := s.store.AppendProgress(ctx, entry); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"milestone":      milestone,
		"author_id":      p.UserID,
	}).Info("Progress milestone recorded")
	return entry, nil
}

// List returns the milestones newest first. Visible to administrators and to
// the transaction's buyer, broker and property seller.
func (s *ProgressService) List(ctx context.Context, p model.Principal, transactionID uint) ([]model.TransactionProgress, error) {
	t, err := s.transactions.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, lookupError(err, "transaction")
	}
	ok, err := s.participant(ctx, p, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errForbidden("not_participant", "not a participant of this transaction")
	}
	return s.store.ListProgress(ctx, transactionID)
}

func (s *ProgressService) participant(ctx context.Context, p model.Principal, t *model.Transaction) (bool, error) {
	switch p.Role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleBuyer:
		return p.PartyID == t.BuyerID, nil
	case model.RoleBroker:
		return t.BrokerID != nil && *t.BrokerID == p.PartyID, nil
	case model.RoleSeller:
		prop, err := s.accounts.GetProperty(ctx, t.PropertyID)
		if err != nil {
			return false, lookupError(err, "property")
		}
		return prop.SellerID == p.PartyID, nil
	}
	return false, nil
}
