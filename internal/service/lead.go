package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/pkg/logger"
	"estatedeal_backend/pkg/metrics"
)

type LeadOptions struct {
	// RequireOTPBeforeOutcome refuses SetOutcome until the lead's code was verified.
	RequireOTPBeforeOutcome bool
	Now                     Clock
	Codes                   CodeGenerator
}

type LeadService struct {
	store    LeadStore
	accounts AccountLookup
	sender   OTPSender
	opts     LeadOptions
}

func NewLeadService(store LeadStore, accounts AccountLookup, sender OTPSender, opts LeadOptions) *LeadService {
	if opts.Now == nil {
		opts.Now = systemClock
	}
	if opts.Codes == nil {
		opts.Codes = GenerateCode
	}
	return &LeadService{store: store, accounts: accounts, sender: sender, opts: opts}
}

// Create records a broker's contact with a buyer about a property and issues
// the lead's one-time code. Refused with Conflict while an earlier lead for
// the same pair is locked.
func (s *LeadService) Create(ctx context.Context, p model.Principal, buyerID, propertyID uint) (*model.Lead, error) {
	brokerID, err := requireVerifiedBroker(p)
	if err != nil {
		return nil, err
	}
	if buyerID == 0 || propertyID == 0 {
		return nil, errBadRequest("lead_fields_required", "buyer and property are required")
	}

	buyer, err := s.accounts.GetBuyer(ctx, buyerID)
	if err != nil {
		return nil, lookupError(err, "buyer")
	}
	if _, err := s.accounts.GetProperty(ctx, propertyID); err != nil {
		return nil, lookupError(err, "property")
	}

	code, err := s.opts.Codes(model.OTPLength)
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := s.opts.Now()
	lead := &model.Lead{
		BrokerID:   brokerID,
		BuyerID:    buyerID,
		PropertyID: propertyID,
		OTPCode:    &code,
	}
	err = s.store.CreateLead(ctx, lead, func(existing []model.Lead) error {
		for _, l := range existing {
			if IsLocked(l.LockedUntil, now) {
				return newError(KindConflict, "buyer_locked", "this buyer is locked for this property")
			}
		}
		return nil
	})
	if err != nil {
		if IsKind(err, KindConflict) {
			metrics.LockConflicts.WithLabelValues("lead").Inc()
		}
		return nil, err
	}
	metrics.LeadsCreated.Inc()

	fields := logrus.Fields{"lead_id": lead.ID, "broker_id": brokerID, "buyer_id": buyerID, "property_id": propertyID}
	logger.Log.WithFields(fields).Info("Lead created")
	logger.Log.WithFields(fields).Debugf("OTP for lead is %s", code)

	if s.sender != nil {
		if err := s.sender.SendOTP(ctx, buyer, code); err != nil {
			logger.Log.WithFields(fields).Warnf("Could not deliver lead OTP: %v", err)
		}
	}
	return lead, nil
}

func (s *LeadService) ownedLead(ctx context.Context, p model.Principal, leadID uint) (*model.Lead, error) {
	brokerID, err := requireVerifiedBroker(p)
	if err != nil {
		return nil, err
	}
	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, lookupError(err, "lead")
	}
	if lead.BrokerID != brokerID {
		return nil, errForbidden("not_your_lead", "not your lead")
	}
	return lead, nil
}

// VerifyOTP checks the code against the one stored on the lead. It does not
// touch the interest outcome.
func (s *LeadService) VerifyOTP(ctx context.Context, p model.Principal, leadID uint, code string) (*model.Lead, error) {
	lead, err := s.ownedLead(ctx, p, leadID)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errBadRequest("otp_code_required", "otp_code is required")
	}

	if lead.OTPCode == nil || *lead.OTPCode != code {
		metrics.OTPVerifications.WithLabelValues("lead", "failure").Inc()
		return nil, newError(KindInvalidCode, "invalid_otp", "invalid OTP code")
	}

	lead.OTPVerified = true
	if err := s.store.SaveLead(ctx, lead); err != nil {
		return nil, err
	}
	metrics.OTPVerifications.WithLabelValues("lead", "success").Inc()

	logger.Log.WithFields(logrus.Fields{"lead_id": lead.ID}).Info("Lead OTP verified")
	return lead, nil
}

// SetOutcome records whether the buyer is interested. Not interested locks
// the pair for LeadRecontactLock; interested clears any lock.
func (s *LeadService) SetOutcome(ctx context.Context, p model.Principal, leadID uint, interested *bool) (*model.Lead, error) {
	lead, err := s.ownedLead(ctx, p, leadID)
	if err != nil {
		return nil, err
	}
	if interested == nil {
		return nil, errBadRequest("interested_required", "interested is required")
	}
	if s.opts.RequireOTPBeforeOutcome && !lead.OTPVerified {
		return nil, errInvalidState("otp_not_verified", "lead OTP must be verified before setting the outcome")
	}

	value := *interested
	lead.Interested = &value
	if value {
		lead.LockedUntil = nil
	} else {
		until := ComputeLock(s.opts.Now(), LeadRecontactLock)
		lead.LockedUntil = &until
	}

	if err := s.store.SaveLead(ctx, lead); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"lead_id":    lead.ID,
		"interested": value,
		"state":      lead.State(),
	}).Info("Lead outcome recorded")
	return lead, nil
}

func (s *LeadService) ListForBroker(ctx context.Context, p model.Principal) ([]model.Lead, error) {
	brokerID, err := requireBroker(p)
	if err != nil {
		return nil, err
	}
	return s.store.ListLeadsByBroker(ctx, brokerID)
}
