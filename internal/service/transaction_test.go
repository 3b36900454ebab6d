package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
	"estatedeal_backend/pkg/utils/storage"
)

type recordingMailer struct {
	mu    sync.Mutex
	sends []uint
}

func (m *recordingMailer) SendCommissionPaidEmail(ctx context.Context, email, name, amount, currency string, transactionID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, transactionID)
	return nil
}

func newTransactionService(f *fixture, payer CommissionPayer, mailer PayoutMailer) (*TransactionService, *fakeDocs) {
	docs := &fakeDocs{}
	opts := TransactionOptions{Currency: "eur", Now: f.clock, Mailer: mailer}
	return NewTransactionService(f.store, f.store, f.store, docs, payer, opts), docs
}

func TestTransactionHappyPathWithBroker(t *testing.T) {
	f := newFixture(t)
	payer := &fakePayer{}
	mailer := &recordingMailer{}
	svc, _ := newTransactionService(f, payer, mailer)
	ctx := context.Background()

	tx, created, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, uintPtr(f.broker.ID))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.TransactionPreDeposit, tx.Status)

	tx, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("5000.00"))
	require.NoError(t, err)
	assert.Equal(t, model.TransactionDepositPaid, tx.Status)
	assert.True(t, tx.DepositPaid)

	prop, err := f.store.GetProperty(ctx, f.property.ID)
	require.NoError(t, err)
	assert.True(t, prop.IsReserved)
	assert.False(t, prop.IsSold)

	tx, rec, err := svc.Finalize(ctx, f.buyerP, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionFinalized, tx.Status)

	prop, err = f.store.GetProperty(ctx, f.property.ID)
	require.NoError(t, err)
	assert.True(t, prop.IsSold)

	require.NotNil(t, rec)
	assert.Equal(t, model.PayoutSent, rec.Status)
	assert.True(t, decimal.RequireFromString("5000").Equal(rec.Amount))
	assert.Equal(t, 1, rec.Attempts)

	require.Len(t, payer.calls, 1)
	assert.Equal(t, "acct_broker", payer.calls[0].Account)
	assert.Equal(t, "eur", payer.calls[0].Currency)
	assert.Equal(t, []uint{tx.ID}, mailer.sends)

	got, err := svc.Payout(ctx, f.brokerP, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestFinalizeWithoutBrokerSkipsPayout(t *testing.T) {
	f := newFixture(t)
	payer := &fakePayer{}
	svc, _ := newTransactionService(f, payer, nil)
	ctx := context.Background()

	tx, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)
	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("100"))
	require.NoError(t, err)

	tx, rec, err := svc.Finalize(ctx, f.buyerP, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionFinalized, tx.Status)
	assert.Nil(t, rec)
	assert.Empty(t, payer.calls)
}

func TestPayoutFailureKeepsSaleAndRetries(t *testing.T) {
	f := newFixture(t)
	payer := &fakePayer{}
	payer.failWith(errPayoutDown)
	svc, _ := newTransactionService(f, payer, nil)
	ctx := context.Background()

	tx, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, uintPtr(f.broker.ID))
	require.NoError(t, err)
	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("750.50"))
	require.NoError(t, err)

	tx, rec, err := svc.Finalize(ctx, f.buyerP, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionFinalized, tx.Status)
	require.NotNil(t, rec)
	assert.Equal(t, model.PayoutFailed, rec.Status)
	assert.Contains(t, rec.LastError, "unavailable")

	sent, err := svc.RetryFailedPayouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	payer.failWith(nil)
	sent, err = svc.RetryFailedPayouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	got, err := svc.Payout(ctx, f.adminP, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PayoutSent, got.Status)
	assert.Equal(t, 3, got.Attempts)
	assert.Empty(t, got.LastError)

	// Retries reuse the transaction's idempotency key.
	require.Len(t, payer.calls, 3)
	assert.Equal(t, 1, payer.calls[0].Attempt)
	assert.Equal(t, 3, payer.calls[2].Attempt)
	assert.Equal(t, payer.calls[0].IdempotencyKey(), payer.calls[2].IdempotencyKey())
	assert.True(t, strings.HasSuffix(got.ExternalRef, payer.calls[2].IdempotencyKey()))
}

func TestTransactionGuards(t *testing.T) {
	f := newFixture(t)
	svc, _ := newTransactionService(f, &fakePayer{}, nil)
	ctx := context.Background()

	_, _, err := svc.ExpressInterest(ctx, f.brokerP, f.property.ID, nil)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, _, err = svc.ExpressInterest(ctx, f.buyerP, 999, nil)
	assert.Equal(t, KindNotFound, KindOf(err))

	tx, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)

	_, _, err = svc.Finalize(ctx, f.buyerP, tx.ID)
	assert.Equal(t, KindInvalidState, KindOf(err), "finalize cannot skip the deposit")

	_, other := f.addBuyer(t, "o@example.com", "O", "O1")
	_, err = svc.PayDeposit(ctx, other, tx.ID, decPtr("10"))
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, nil)
	assert.Equal(t, KindBadRequest, KindOf(err))
	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("-1"))
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, err = svc.PayDeposit(ctx, f.buyerP, 999, decPtr("10"))
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("10"))
	require.NoError(t, err)
	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("10"))
	assert.Equal(t, KindInvalidState, KindOf(err))

	_, err = svc.Payout(ctx, f.brokerP, tx.ID)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestExpressInterestReusesActiveTransaction(t *testing.T) {
	f := newFixture(t)
	svc, _ := newTransactionService(f, &fakePayer{}, nil)
	ctx := context.Background()

	first, created, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)
	require.True(t, created)
	_, err = svc.PayDeposit(ctx, f.buyerP, first.ID, decPtr("10"))
	require.NoError(t, err)

	again, created, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, uintPtr(f.broker.ID))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, model.TransactionPreDeposit, again.Status)
	require.NotNil(t, again.BrokerID)
	assert.Equal(t, f.broker.ID, *again.BrokerID)

	// An unknown broker is dropped rather than failing the request.
	_, _, err = svc.ExpressInterest(ctx, f.buyerP, f.property.ID, uintPtr(999))
	assert.NoError(t, err)
}

func TestExpressInterestAfterFinalizeOrCancel(t *testing.T) {
	f := newFixture(t)
	svc, _ := newTransactionService(f, &fakePayer{}, nil)
	ctx := context.Background()

	tx, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)
	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("10"))
	require.NoError(t, err)
	_, _, err = svc.Finalize(ctx, f.buyerP, tx.ID)
	require.NoError(t, err)

	_, _, err = svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	assert.Equal(t, KindInvalidState, KindOf(err))

	require.NoError(t, f.store.SetTransactionStatus(ctx, tx.ID, model.TransactionCancelled))
	fresh, created, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, tx.ID, fresh.ID)
}

func TestConcurrentInterestCreatesOneTransaction(t *testing.T) {
	f := newFixture(t)
	svc, _ := newTransactionService(f, &fakePayer{}, nil)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	ids := make([]uint, workers)
	creations := make([]bool, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx, created, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
			errs[i] = err
			creations[i] = created
			if tx != nil {
				ids[i] = tx.ID
			}
		}(i)
	}
	wg.Wait()

	createdCount := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
		if creations[i] {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)

	all, err := svc.List(ctx, f.adminP)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUploadDocuments(t *testing.T) {
	f := newFixture(t)
	svc, docs := newTransactionService(f, &fakePayer{}, nil)
	ctx := context.Background()

	tx, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)

	_, err = svc.UploadDocuments(ctx, f.buyerP, tx.ID, nil, nil)
	assert.Equal(t, KindBadRequest, KindOf(err))

	bad := &storage.Document{Filename: "x.exe", ContentType: "application/x-msdownload", Body: strings.NewReader("MZ")}
	_, err = svc.UploadDocuments(ctx, f.buyerP, tx.ID, bad, nil)
	assert.Equal(t, KindBadRequest, KindOf(err))

	contract := &storage.Document{Filename: "Contract.pdf", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF")}
	proof := &storage.Document{Filename: "proof.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
	updated, err := svc.UploadDocuments(ctx, f.buyerP, tx.ID, contract, proof)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionPreDeposit, updated.Status)
	assert.Equal(t, "docs/contract/Contract.pdf", updated.ContractDocument)
	assert.Equal(t, "docs/payment-proof/proof.png", updated.PaymentProof)

	require.Len(t, docs.saved, 2)
	assert.Equal(t, tx.ID, docs.saved[0].TransactionID)
}

func TestFinalizeDuringUploadStaysFinalized(t *testing.T) {
	f := newFixture(t)
	payer := &fakePayer{}
	svc, docs := newTransactionService(f, payer, nil)
	ctx := context.Background()

	tx, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, uintPtr(f.broker.ID))
	require.NoError(t, err)
	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("900.00"))
	require.NoError(t, err)

	var finalizeErr error
	docs.onSave = func() {
		docs.onSave = nil
		_, _, finalizeErr = svc.Finalize(ctx, f.buyerP, tx.ID)
	}
	contract := &storage.Document{Filename: "c.pdf", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF")}
	updated, err := svc.UploadDocuments(ctx, f.buyerP, tx.ID, contract, nil)
	require.NoError(t, err)
	require.NoError(t, finalizeErr)

	assert.Equal(t, model.TransactionFinalized, updated.Status)
	assert.True(t, updated.DepositPaid)
	assert.Equal(t, "docs/contract/c.pdf", updated.ContractDocument)

	stored, err := f.store.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionFinalized, stored.Status)
	assert.True(t, decimal.RequireFromString("900").Equal(stored.DepositAmount.Decimal))

	_, _, err = svc.Finalize(ctx, f.buyerP, tx.ID)
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.Len(t, payer.calls, 1)
}

func TestDepositSurvivesDocumentUpload(t *testing.T) {
	f := newFixture(t)
	svc, docs := newTransactionService(f, &fakePayer{}, nil)
	ctx := context.Background()

	tx, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)

	var depositErr error
	docs.onSave = func() {
		docs.onSave = nil
		_, depositErr = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("50"))
	}
	proof := &storage.Document{Filename: "p.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
	updated, err := svc.UploadDocuments(ctx, f.buyerP, tx.ID, nil, proof)
	require.NoError(t, err)
	require.NoError(t, depositErr)
	assert.Equal(t, model.TransactionDepositPaid, updated.Status)
	assert.Equal(t, "docs/payment-proof/p.png", updated.PaymentProof)
}

func TestResetToPreDepositRefusesTerminalRows(t *testing.T) {
	f := newFixture(t)
	svc, _ := newTransactionService(f, &fakePayer{}, nil)
	ctx := context.Background()

	tx, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)
	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("10"))
	require.NoError(t, err)

	reset, err := f.store.ResetToPreDeposit(ctx, tx.ID, uintPtr(f.broker.ID))
	require.NoError(t, err)
	assert.Equal(t, model.TransactionPreDeposit, reset.Status)
	require.NotNil(t, reset.BrokerID)

	_, err = svc.PayDeposit(ctx, f.buyerP, tx.ID, decPtr("10"))
	require.NoError(t, err)
	_, _, err = svc.Finalize(ctx, f.buyerP, tx.ID)
	require.NoError(t, err)

	_, err = f.store.ResetToPreDeposit(ctx, tx.ID, nil)
	assert.ErrorIs(t, err, repository.ErrStaleState)
	stored, err := f.store.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionFinalized, stored.Status)
}

func TestListTransactionsByRole(t *testing.T) {
	f := newFixture(t)
	svc, _ := newTransactionService(f, &fakePayer{}, nil)
	ctx := context.Background()

	_, _, err := svc.ExpressInterest(ctx, f.buyerP, f.property.ID, uintPtr(f.broker.ID))
	require.NoError(t, err)

	mine, err := svc.List(ctx, f.buyerP)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	brokered, err := svc.List(ctx, f.brokerP)
	require.NoError(t, err)
	assert.Len(t, brokered, 1)

	_, err = svc.List(ctx, f.sellerP)
	assert.Equal(t, KindForbidden, KindOf(err))
}
