package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
	"estatedeal_backend/pkg/logger"
	"estatedeal_backend/pkg/metrics"
	"estatedeal_backend/pkg/payout"
	"estatedeal_backend/pkg/utils/storage"
)

type CommissionPayer interface {
	PayCommission(ctx context.Context, req payout.Request) (string, error)
}

type DocumentStore interface {
	Save(ctx context.Context, doc storage.Document) (string, error)
}

// PayoutMailer tells a broker their commission went out.
type PayoutMailer interface {
	SendCommissionPaidEmail(ctx context.Context, email, name, amount, currency string, transactionID uint) error
}

const (
	DocumentContract     = "contract"
	DocumentPaymentProof = "payment-proof"
)

type TransactionOptions struct {
	Currency string
	Now      Clock
	Mailer   PayoutMailer
}

type TransactionService struct {
	store    TransactionStore
	payouts  PayoutStore
	accounts AccountLookup
	docs     DocumentStore
	payer    CommissionPayer
	opts     TransactionOptions
}

func NewTransactionService(store TransactionStore, payouts PayoutStore, accounts AccountLookup, docs DocumentStore, payer CommissionPayer, opts TransactionOptions) *TransactionService {
	if opts.Now == nil {
		opts.Now = systemClock
	}
	if opts.Currency == "" {
		opts.Currency = "eur"
	}
	return &TransactionService{
		store:    store,
		payouts:  payouts,
		accounts: accounts,
		docs:     docs,
		payer:    payer,
		opts:     opts,
	}
}

// ExpressInterest gets or creates the active transaction for the calling
// buyer and the property. An existing PRE_DEPOSIT or DEPOSIT_PAID match is
// reset to PRE_DEPOSIT and re-attached to the given broker.
func (s *TransactionService) ExpressInterest(ctx context.Context, p model.Principal, propertyID uint, brokerID *uint) (*model.Transaction, bool, error) {
	buyerID, err := requireBuyer(p)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.accounts.GetProperty(ctx, propertyID); err != nil {
		return nil, false, lookupError(err, "property")
	}

	if brokerID != nil {
		if _, err := s.accounts.GetBroker(ctx, *brokerID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, false, err
			}
			logger.Log.WithFields(logrus.Fields{"broker_id": *brokerID, "property_id": propertyID}).
				Warn("Ignoring unknown broker on interest")
			brokerID = nil
		}
	}

	t, created, err := s.store.GetOrCreateActive(ctx, propertyID, buyerID, brokerID)
	if err != nil {
		return nil, false, err
	}
	fields := logrus.Fields{"transaction_id": t.ID, "buyer_id": buyerID, "property_id": propertyID}

	if created {
		metrics.TransactionTransitions.WithLabelValues(string(model.TransactionPreDeposit)).Inc()
		logger.Log.WithFields(fields).Info("Transaction created")
		return t, true, nil
	}

	if t.Status == model.TransactionFinalized {
		return nil, false, errInvalidState("transaction_finalized", "the sale of this property to this buyer is already finalized")
	}
	t, err = s.store.ResetToPreDeposit(ctx, t.ID, brokerID)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, false, errInvalidState("transaction_changed", "transaction state changed, reload and retry")
		}
		return nil, false, err
	}

	logger.Log.WithFields(fields).Info("Transaction interest renewed")
	return t, false, nil
}

func (s *TransactionService) buyersTransaction(ctx context.Context, p model.Principal, transactionID uint) (*model.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, lookupError(err, "transaction")
	}
	if buyerID, ok := p.BuyerID(); !ok || buyerID != t.BuyerID {
		return nil, errForbidden("not_transaction_buyer", "only the transaction's buyer can do this")
	}
	return t, nil
}

// PayDeposit moves a PRE_DEPOSIT transaction to DEPOSIT_PAID and reserves
// the property.
func (s *TransactionService) PayDeposit(ctx context.Context, p model.Principal, transactionID uint, amount *decimal.Decimal) (*model.Transaction, error) {
	t, err := s.buyersTransaction(ctx, p, transactionID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.TransactionPreDeposit {
		return nil, errInvalidState("not_pre_deposit", "transaction is not in pre-deposit state")
	}
	if amount == nil {
		return nil, errBadRequest("deposit_amount_required", "deposit_amount is required")
	}
	if !amount.IsPositive() {
		return nil, errBadRequest("deposit_amount_invalid", "deposit_amount must be positive")
	}

	next := *t
	next.DepositAmount = decimal.NewNullDecimal(*amount)
	next.DepositPaid = true
	next.Status = model.TransactionDepositPaid

	if err := s.advance(ctx, &next, model.TransactionPreDeposit, model.MarkReserved); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"transaction_id": next.ID,
		"amount":         amount.StringFixed(2),
	}).Info("Deposit paid, property reserved")
	return &next, nil
}

// UploadDocuments attaches the contract and/or payment proof. Status is unchanged.
func (s *TransactionService) UploadDocuments(ctx context.Context, p model.Principal, transactionID uint, contract, proof *storage.Document) (*model.Transaction, error) {
	t, err := s.buyersTransaction(ctx, p, transactionID)
	if err != nil {
		return nil, err
	}
	if contract == nil && proof == nil {
		return nil, errBadRequest("document_required", "final_contract_doc or proof_of_payment_doc is required")
	}

	var contractRef, proofRef string
	if contract != nil {
		if contractRef, err = s.saveDocument(ctx, t.ID, DocumentContract, *contract); err != nil {
			return nil, err
		}
	}
	if proof != nil {
		if proofRef, err = s.saveDocument(ctx, t.ID, DocumentPaymentProof, *proof); err != nil {
			return nil, err
		}
	}

	t, err = s.store.AttachDocuments(ctx, t.ID, contractRef, proofRef)
	if err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{"transaction_id": t.ID}).Info("Transaction documents uploaded")
	return t, nil
}

func (s *TransactionService) saveDocument(ctx context.Context, transactionID uint, kind string, doc storage.Document) (string, error) {
	doc.TransactionID = transactionID
	doc.Kind = kind
	if err := doc.Validate(); err != nil {
		return "", wrapError(KindBadRequest, "invalid_document", err.Error(), err)
	}
	ref, err := s.docs.Save(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("store %s document: %w", kind, err)
	}
	return ref, nil
}

// Finalize closes the sale: FINALIZED, property sold, and when a broker is
// attached a commission payout. The payout runs after the transition commits;
// its failure is recorded for retry and never undoes the sale.
func (s *TransactionService) Finalize(ctx context.Context, p model.Principal, transactionID uint) (*model.Transaction, *model.CommissionPayout, error) {
	t, err := s.buyersTransaction(ctx, p, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if t.Status != model.TransactionDepositPaid {
		return nil, nil, errInvalidState("not_deposit_paid", "transaction is not in deposit-paid state")
	}

	next := *t
	next.Status = model.TransactionFinalized
	if err := s.advance(ctx, &next, model.TransactionDepositPaid, model.MarkSold); err != nil {
		return nil, nil, err
	}
	logger.Log.WithFields(logrus.Fields{"transaction_id": next.ID}).Info("Transaction finalized, property sold")

	if !next.HasBroker() {
		return &next, nil, nil
	}
	rec, err := s.payCommission(ctx, &next)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"transaction_id": next.ID}).Errorf("Could not record commission payout: %v", err)
	}
	return &next, rec, nil
}

func (s *TransactionService) advance(ctx context.Context, t *model.Transaction, from model.TransactionStatus, mark model.PropertyMark) error {
	if err := s.store.AdvanceTransaction(ctx, t, from, mark); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return errInvalidState("transaction_changed", "transaction state changed, reload and retry")
		}
		return err
	}
	metrics.TransactionTransitions.WithLabelValues(string(t.Status)).Inc()
	return nil
}

func (s *TransactionService) payCommission(ctx context.Context, t *model.Transaction) (*model.CommissionPayout, error) {
	broker, err := s.accounts.GetBroker(ctx, *t.BrokerID)
	if err != nil {
		return nil, lookupError(err, "broker")
	}

	rec := &model.CommissionPayout{
		TransactionID: t.ID,
		BrokerID:      broker.ID,
		PayoutAccount: broker.PayoutAccount,
		Amount:        t.DepositAmount.Decimal,
		Details: datatypes.JSONMap{
			"currency":        s.opts.Currency,
			"commission_rate": broker.CommissionRate.String(),
			"property_id":     t.PropertyID,
		},
	}
	s.attempt(ctx, rec, broker)

	if err := s.payouts.CreatePayout(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// attempt calls the payer once and records the outcome on rec.
func (s *TransactionService) attempt(ctx context.Context, rec *model.CommissionPayout, broker *model.Broker) {
	rec.Attempts++
	rec.PayoutAccount = broker.PayoutAccount

	ref, err := s.payer.PayCommission(ctx, payout.Request{
		TransactionID: rec.TransactionID,
		BrokerID:      rec.BrokerID,
		Account:       broker.PayoutAccount,
		Amount:        rec.Amount,
		Currency:      s.opts.Currency,
		Attempt:       rec.Attempts,
	})
	metrics.CommissionPayouts.WithLabelValues(metrics.Result(err)).Inc()

	fields := logrus.Fields{"transaction_id": rec.TransactionID, "broker_id": rec.BrokerID, "attempt": rec.Attempts}
	if err != nil {
		rec.Status = model.PayoutFailed
		rec.LastError = err.Error()
		logger.Log.WithFields(fields).Warnf("Commission payout failed: %v", err)
		return
	}

	rec.Status = model.PayoutSent
	rec.ExternalRef = ref
	rec.LastError = ""
	logger.Log.WithFields(fields).Info("Commission payout sent")

	if s.opts.Mailer != nil && broker.Email != "" {
		if err := s.opts.Mailer.SendCommissionPaidEmail(ctx, broker.Email, broker.Name, rec.Amount.StringFixed(2), s.opts.Currency, rec.TransactionID); err != nil {
			logger.Log.WithFields(fields).Warnf("Could not send commission email: %v", err)
		}
	}
}

// RetryFailedPayouts re-attempts every FAILED payout and returns how many
// went through.
func (s *TransactionService) RetryFailedPayouts(ctx context.Context) (int, error) {
	failed, err := s.payouts.ListPayoutsByStatus(ctx, model.PayoutFailed)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range failed {
		rec := &failed[i]
		broker, err := s.accounts.GetBroker(ctx, rec.BrokerID)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{"payout_id": rec.ID}).Errorf("Could not load broker for payout retry: %v", err)
			continue
		}
		s.attempt(ctx, rec, broker)
		if err := s.payouts.SavePayout(ctx, rec); err != nil {
			return sent, err
		}
		if rec.Status == model.PayoutSent {
			sent++
		}
	}
	return sent, nil
}

func (s *TransactionService) Payout(ctx context.Context, p model.Principal, transactionID uint) (*model.CommissionPayout, error) {
	t, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, lookupError(err, "transaction")
	}
	brokerID, isBroker := p.BrokerID()
	if !p.IsAdmin() && !(isBroker && t.BrokerID != nil && *t.BrokerID == brokerID) {
		return nil, errForbidden("not_transaction_broker", "only the transaction's broker can see its payout")
	}
	rec, err := s.payouts.GetPayoutByTransaction(ctx, transactionID)
	if err != nil {
		return nil, lookupError(err, "payout")
	}
	return rec, nil
}

func (s *TransactionService) List(ctx context.Context, p model.Principal) ([]model.Transaction, error) {
	if id, ok := p.BuyerID(); ok {
		return s.store.ListTransactionsByBuyer(ctx, id)
	}
	if id, ok := p.BrokerID(); ok {
		return s.store.ListTransactionsByBroker(ctx, id)
	}
	if p.IsAdmin() {
		return s.store.ListTransactions(ctx)
	}
	return nil, errForbidden("transactions_forbidden", "sellers have no transactions to list")
}
