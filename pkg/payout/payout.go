package payout

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/transfer"

	"estatedeal_backend/pkg/logger"
)

var ErrNoPayoutAccount = errors.New("broker has no payout account")

// Request describes one commission disbursement.
type Request struct {
	TransactionID uint
	BrokerID      uint
	Account       string
	Amount        decimal.Decimal
	Currency      string
	Attempt       int
}

// IdempotencyKey depends on the transaction only. Retries reuse it, so a
// transfer Stripe already executed is returned instead of sent again.
func (r Request) IdempotencyKey() string {
	return fmt.Sprintf("commission-%d", r.TransactionID)
}

// StripePayer sends commissions as Stripe transfers to the broker's
// connected account.
type StripePayer struct{}

func NewStripePayer(secretKey string) *StripePayer {
	stripe.Key = secretKey
	return &StripePayer{}
}

func (p *StripePayer) PayCommission(ctx context.Context, req Request) (string, error) {
	if req.Account == "" {
		return "", ErrNoPayoutAccount
	}
	cents := req.Amount.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return "", fmt.Errorf("invalid commission amount %s", req.Amount.String())
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(cents),
		Currency:    stripe.String(req.Currency),
		Destination: stripe.String(req.Account),
	}
	params.Context = ctx
	params.AddMetadata("transaction_id", strconv.FormatUint(uint64(req.TransactionID), 10))
	params.AddMetadata("broker_id", strconv.FormatUint(uint64(req.BrokerID), 10))
	params.SetIdempotencyKey(req.IdempotencyKey())

	t, err := transfer.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return "", fmt.Errorf("stripe transfer failed (%s): %w", stripeErr.Code, err)
		}
		return "", err
	}

	logger.Log.WithFields(logrus.Fields{
		"transaction_id": req.TransactionID,
		"broker_id":      req.BrokerID,
		"transfer_id":    t.ID,
	}).Info("Commission transfer created")
	return t.ID, nil
}

// LogPayer records the payout in the log only. Used when Stripe is not configured.
type LogPayer struct{}

func (LogPayer) PayCommission(ctx context.Context, req Request) (string, error) {
	if req.Account == "" {
		return "", ErrNoPayoutAccount
	}
	logger.Log.WithFields(logrus.Fields{
		"transaction_id": req.TransactionID,
		"broker_id":      req.BrokerID,
		"amount":         req.Amount.StringFixed(2),
		"currency":       req.Currency,
	}).Infof("Paying commission to account %s", req.Account)
	return "log-" + req.IdempotencyKey(), nil
}
