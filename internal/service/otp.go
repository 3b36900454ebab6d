package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
	"estatedeal_backend/pkg/logger"
	"estatedeal_backend/pkg/metrics"
)

// OTPSender delivers an issued code to the buyer.
type OTPSender interface {
	SendOTP(ctx context.Context, buyer *model.Buyer, code string) error
}

// OTPService issues and verifies standalone buyer codes. Lead codes live on
// the lead itself and are handled by LeadService.
type OTPService struct {
	store    OTPStore
	accounts AccountLookup
	sender   OTPSender
	codes    CodeGenerator
}

func NewOTPService(store OTPStore, accounts AccountLookup, sender OTPSender, codes CodeGenerator) *OTPService {
	if codes == nil {
		codes = GenerateCode
	}
	return &OTPService{store: store, accounts: accounts, sender: sender, codes: codes}
}

// Issue persists a fresh unconsumed code for the buyer and returns it.
func (s *OTPService) Issue(ctx context.Context, p model.Principal, buyerID uint) (string, error) {
	if err := requireAuthenticated(p); err != nil {
		return "", err
	}
	if buyerID == 0 {
		return "", errBadRequest("buyer_id_required", "buyer_id is required")
	}
	buyer, err := s.accounts.GetBuyer(ctx, buyerID)
	if err != nil {
		return "", lookupError(err, "buyer")
	}

	code, err := s.codes(model.OTPLength)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	rec := &model.OTPRecord{BuyerID: buyer.ID, Code: code}
	if err := s.store.CreateOTP(ctx, rec); err != nil {
		return "", err
	}

	if s.sender != nil {
		if err := s.sender.SendOTP(ctx, buyer, code); err != nil {
			logger.Log.WithFields(logrus.Fields{"buyer_id": buyer.ID, "otp_id": rec.ID}).
				Warnf("Could not deliver OTP: %v", err)
		}
	}

	logger.Log.WithFields(logrus.Fields{"buyer_id": buyer.ID, "otp_id": rec.ID}).Info("OTP issued")
	return code, nil
}

// Verify consumes the newest unconsumed record matching (buyer, code).
func (s *OTPService) Verify(ctx context.Context, p model.Principal, buyerID uint, code string) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if buyerID == 0 || code == "" {
		return errBadRequest("otp_fields_required", "buyer_id and otp are required")
	}

	rec, err := s.store.ConsumeLatestOTP(ctx, buyerID, code)
	metrics.OTPVerifications.WithLabelValues("standalone", metrics.Result(err)).Inc()
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(KindInvalidCode, "otp_invalid_or_expired", "invalid or expired OTP")
		}
		return err
	}

	logger.Log.WithFields(logrus.Fields{"buyer_id": buyerID, "otp_id": rec.ID}).Info("OTP verified")
	return nil
}
