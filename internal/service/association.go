package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
	"estatedeal_backend/pkg/logger"
	"estatedeal_backend/pkg/metrics"
)

type AssociationService struct {
	store    AssociationStore
	accounts AccountLookup
	now      Clock
}

func NewAssociationService(store AssociationStore, accounts AccountLookup, now Clock) *AssociationService {
	if now == nil {
		now = systemClock
	}
	return &AssociationService{store: store, accounts: accounts, now: now}
}

// CreateWithBuyer links a registered buyer to the calling broker for a property.
func (s *AssociationService) CreateWithBuyer(ctx context.Context, p model.Principal, buyerID, propertyID uint) (*model.AgentBuyerAssociation, error) {
	brokerID, err := requireBroker(p)
	if err != nil {
		return nil, err
	}
	if buyerID == 0 || propertyID == 0 {
		return nil, errBadRequest("association_fields_required", "buyer and property are required")
	}
	if _, err := s.accounts.GetBuyer(ctx, buyerID); err != nil {
		return nil, lookupError(err, "buyer")
	}
	return s.link(ctx, brokerID, buyerID, propertyID)
}

func (s *AssociationService) link(ctx context.Context, brokerID, buyerID, propertyID uint) (*model.AgentBuyerAssociation, error) {
	if _, err := s.accounts.GetProperty(ctx, propertyID); err != nil {
		return nil, lookupError(err, "property")
	}

	now := s.now()
	a := &model.AgentBuyerAssociation{
		BuyerID:    &buyerID,
		BrokerID:   brokerID,
		PropertyID: propertyID,
	}
	err := s.store.CreateAssociation(ctx, a, func(existing []model.AgentBuyerAssociation) error {
		for _, e := range existing {
			if IsLocked(e.LockUntil, now) {
				return newError(KindConflict, "association_locked", "this buyer rejected a broker for this property recently")
			}
		}
		return nil
	})
	if err != nil {
		if IsKind(err, KindConflict) {
			metrics.LockConflicts.WithLabelValues("association").Inc()
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"association_id": a.ID,
		"broker_id":      brokerID,
		"buyer_id":       buyerID,
		"property_id":    propertyID,
	}).Info("Broker-buyer association created")
	return a, nil
}

// CreateTemporary records a claim on a buyer who has not registered yet,
// identified by exact name and identification number.
func (s *AssociationService) CreateTemporary(ctx context.Context, p model.Principal, propertyID uint, name, identificationNumber string) (*model.AgentBuyerAssociation, error) {
	brokerID, err := requireBroker(p)
	if err != nil {
		return nil, err
	}
	if propertyID == 0 || strings.TrimSpace(name) == "" || strings.TrimSpace(identificationNumber) == "" {
		return nil, errBadRequest("temporary_fields_required", "property, temp_buyer_name and temp_buyer_identification_number are required")
	}
	if _, err := s.accounts.GetProperty(ctx, propertyID); err != nil {
		return nil, lookupError(err, "property")
	}

	a := &model.AgentBuyerAssociation{
		BrokerID:                      brokerID,
		PropertyID:                    propertyID,
		TempBuyerName:                 name,
		TempBuyerIdentificationNumber: identificationNumber,
	}
	if err := s.store.CreateTemporaryAssociation(ctx, a); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"association_id": a.ID,
		"broker_id":      brokerID,
		"property_id":    propertyID,
		"bound":          a.Resolved(),
	}).Info("Temporary association created")
	return a, nil
}

// ResolveOnRegistration binds every unresolved temporary association whose
// name and identification number match the buyer exactly.
func (s *AssociationService) ResolveOnRegistration(ctx context.Context, buyer *model.Buyer) (int64, error) {
	if buyer.Name == "" || buyer.IdentificationNumber == "" {
		return 0, nil
	}
	n, err := s.store.BindTemporaryAssociations(ctx, buyer.ID, buyer.Name, buyer.IdentificationNumber)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.WithFields(logrus.Fields{"buyer_id": buyer.ID, "bound": n}).Info("Temporary associations bound to buyer")
	}
	return n, nil
}

// BindPending re-runs the registration binding for the calling buyer. Only
// unbound associations match, so repeating it is harmless.
func (s *AssociationService) BindPending(ctx context.Context, p model.Principal) (int64, error) {
	buyerID, err := requireBuyer(p)
	if err != nil {
		return 0, err
	}
	buyer, err := s.accounts.GetBuyer(ctx, buyerID)
	if err != nil {
		return 0, lookupError(err, "buyer")
	}
	return s.ResolveOnRegistration(ctx, buyer)
}

// Respond records the buyer's answer once. A rejection locks the pair for
// AssociationRejectionLock.
func (s *AssociationService) Respond(ctx context.Context, p model.Principal, associationID uint, accepted *bool) (*model.AgentBuyerAssociation, error) {
	buyerID, err := requireBuyer(p)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAssociation(ctx, associationID)
	if err != nil {
		return nil, lookupError(err, "association")
	}
	if a.BuyerID == nil || *a.BuyerID != buyerID {
		return nil, errForbidden("not_your_association", "association does not belong to this buyer")
	}
	if accepted == nil {
		return nil, errBadRequest("accepted_required", "field 'accepted' is required")
	}
	if a.Accepted != nil {
		return nil, errInvalidState("already_responded", "association was already answered")
	}

	value := *accepted
	a.Accepted = &value
	if !value {
		until := ComputeLock(s.now(), AssociationRejectionLock)
		a.LockUntil = &until
	}

	if err := s.store.RecordAssociationResponse(ctx, a); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, errInvalidState("already_responded", "association was already answered")
		}
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{"association_id": a.ID, "accepted": value}).Info("Association response recorded")
	return a, nil
}

func (s *AssociationService) List(ctx context.Context, p model.Principal) ([]model.AgentBuyerAssociation, error) {
	if id, ok := p.BrokerID(); ok {
		return s.store.ListAssociationsByBroker(ctx, id)
	}
	if id, ok := p.BuyerID(); ok {
		return s.store.ListAssociationsByBuyer(ctx, id)
	}
	return nil, errForbidden("broker_or_buyer_required", "only brokers and buyers have associations")
}
