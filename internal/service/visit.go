package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/pkg/logger"
	"estatedeal_backend/pkg/metrics"
)

type VisitService struct {
	store    VisitStore
	accounts AccountLookup
	now      Clock
}

func NewVisitService(store VisitStore, accounts AccountLookup, now Clock) *VisitService {
	if now == nil {
		now = systemClock
	}
	return &VisitService{store: store, accounts: accounts, now: now}
}

func (s *VisitService) ownedProperty(ctx context.Context, p model.Principal, propertyID uint) (*model.Property, error) {
	sellerID, err := requireSeller(p)
	if err != nil {
		return nil, err
	}
	prop, err := s.accounts.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, lookupError(err, "property")
	}
	if prop.SellerID != sellerID {
		return nil, errForbidden("not_property_owner", "you are not the owner of this property")
	}
	return prop, nil
}

func (s *VisitService) AddAvailability(ctx context.Context, p model.Principal, propertyID uint, date time.Time) (*model.VisitAvailability, error) {
	if _, err := s.ownedProperty(ctx, p, propertyID); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, errBadRequest("available_date_required", "available_date is required")
	}

	a := &model.VisitAvailability{PropertyID: propertyID, AvailableDate: date}
	if err := s.store.CreateAvailability(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *VisitService) ListAvailability(ctx context.Context, propertyID uint) ([]model.VisitAvailability, error) {
	if _, err := s.accounts.GetProperty(ctx, propertyID); err != nil {
		return nil, lookupError(err, "property")
	}
	return s.store.ListAvailability(ctx, propertyID)
}

// Request books a visit. The seller handles it when they opted in, otherwise
// it is delegated to administrators.
func (s *VisitService) Request(ctx context.Context, p model.Principal, propertyID uint, scheduled time.Time, notes string) (*model.VisitRequest, error) {
	buyerID, err := requireBuyer(p)
	if err != nil {
		return nil, err
	}
	if propertyID == 0 {
		return nil, errBadRequest("property_required", "property is required")
	}
	prop, err := s.accounts.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, lookupError(err, "property")
	}
	if !scheduled.After(s.now()) {
		return nil, errBadRequest("scheduled_date_past", "scheduled_date must be in the future")
	}
	seller, err := s.accounts.GetSeller(ctx, prop.SellerID)
	if err != nil {
		return nil, lookupError(err, "seller")
	}

	v := &model.VisitRequest{
		PropertyID:    propertyID,
		BuyerID:       buyerID,
		ScheduledDate: scheduled,
		Status:        model.VisitPending,
		BuyerNotes:    notes,
	}
	if seller.HandleVisits {
		handler := seller.UserID
		v.HandlerID = &handler
	} else {
		v.Delegated = true
	}

	if err := s.store.CreateVisit(ctx, v); err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{
		"visit_id":    v.ID,
		"property_id": propertyID,
		"buyer_id":    buyerID,
		"delegated":   v.Delegated,
	}).Info("Visit requested")
	return v, nil
}

func (s *VisitService) ListForSeller(ctx context.Context, p model.Principal) ([]model.VisitRequest, error) {
	sellerID, err := requireSeller(p)
	if err != nil {
		return nil, err
	}
	return s.store.ListVisitsBySeller(ctx, sellerID)
}

// Update lets the property's seller approve or reject a visit and leave notes.
func (s *VisitService) Update(ctx context.Context, p model.Principal, visitID uint, status *model.VisitStatus, sellerNotes *string) (*model.VisitRequest, error) {
	if _, err := requireSeller(p); err != nil {
		return nil, err
	}
	v, err := s.store.GetVisit(ctx, visitID)
	if err != nil {
		return nil, lookupError(err, "visit_request")
	}
	if _, err := s.ownedProperty(ctx, p, v.PropertyID); err != nil {
		return nil, err
	}

	if status != nil {
		switch *status {
		case model.VisitPending, model.VisitApproved, model.VisitRejected:
		default:
			return nil, errBadRequest("invalid_visit_status", "status must be PENDING, APPROVED or REJECTED")
		}
		if v.Status.Cancelled() {
			return nil, errInvalidState("visit_cancelled", "visit request was cancelled")
		}
		v.Status = *status
	}
	if sellerNotes != nil {
		v.SellerNotes = *sellerNotes
	}

	if err := s.store.SaveVisit(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// BuyerCancel is refused with Expired once the visit is less than
// VisitCancellationCutoff away.
func (s *VisitService) BuyerCancel(ctx context.Context, p model.Principal, visitID uint, reason string) (*model.VisitRequest, error) {
	v, err := s.store.GetVisit(ctx, visitID)
	if err != nil {
		return nil, lookupError(err, "visit_request")
	}
	if buyerID, ok := p.BuyerID(); !ok || buyerID != v.BuyerID {
		metrics.VisitCancellations.WithLabelValues("buyer", "forbidden").Inc()
		return nil, errForbidden("not_visit_buyer", "not allowed")
	}
	if PastCutoff(v.ScheduledDate, s.now(), VisitCancellationCutoff) {
		metrics.VisitCancellations.WithLabelValues("buyer", "expired").Inc()
		return nil, newError(KindExpired, "cancellation_period_expired",
			"cancellation period has expired, you must cancel at least 1 day before the scheduled visit")
	}

	v.Status = model.VisitCancelledByBuyer
	v.CancellationReason = reason
	if err := s.store.SaveVisit(ctx, v); err != nil {
		return nil, err
	}
	metrics.VisitCancellations.WithLabelValues("buyer", "success").Inc()
	logger.Log.WithFields(logrus.Fields{"visit_id": v.ID}).Info("Visit cancelled by buyer")
	return v, nil
}

// SellerCancel always refuses: sellers cancel through platform support.
func (s *VisitService) SellerCancel(ctx context.Context, p model.Principal, visitID uint) error {
	metrics.VisitCancellations.WithLabelValues("seller", "forbidden").Inc()
	return errForbidden("contact_support", "open a support ticket and an administrator will cancel the visit")
}

// AdminCancel cancels on the seller's behalf.
func (s *VisitService) AdminCancel(ctx context.Context, p model.Principal, visitID uint, reason string) (*model.VisitRequest, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	v, err := s.store.GetVisit(ctx, visitID)
	if err != nil {
		return nil, lookupError(err, "visit_request")
	}

	v.Status = model.VisitCancelledBySeller
	v.CancellationReason = reason
	if err := s.store.SaveVisit(ctx, v); err != nil {
		return nil, err
	}
	metrics.VisitCancellations.WithLabelValues("admin", "success").Inc()
	logger.Log.WithFields(logrus.Fields{"visit_id": v.ID, "admin_id": p.UserID}).Info("Visit cancelled by administrator")
	return v, nil
}

// UpcomingApproved lists approved visits scheduled within the next window.
func (s *VisitService) UpcomingApproved(ctx context.Context, window time.Duration) ([]model.VisitRequest, error) {
	now := s.now()
	return s.store.ListVisitsScheduledBetween(ctx, model.VisitApproved, now, now.Add(window))
}
