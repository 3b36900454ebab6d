package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/pkg/database"
)

// These tests run against a real postgres; the locking and conflict
// behavior they cover has no in-memory equivalent.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	require.NoError(t, database.InitDB(dsn))
	require.NoError(t, database.MigrateDatabase(database.Models()...))
	return database.GetDB()
}

func seedBuyer(t *testing.T, db *gorm.DB, name, identification string) *model.Buyer {
	t.Helper()
	b := &model.Buyer{Name: name, IdentificationNumber: identification}
	require.NoError(t, db.Create(b).Error)
	return b
}

func seedProperty(t *testing.T, db *gorm.DB) *model.Property {
	t.Helper()
	p := &model.Property{SellerID: 1, Title: "Integration flat", Price: decimal.NewFromInt(250000)}
	require.NoError(t, NewAccountRepository(db).CreateProperty(context.Background(), p))
	return p
}

func uniqueIdentity(t *testing.T) string {
	return fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())
}

// runConcurrently starts n calls of fn at once and collects their errors.
func runConcurrently(n int, fn func(i int) error) []error {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestCreateLeadAdmitsOneConcurrentCreator(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewLeadRepository(db)
	buyer := seedBuyer(t, db, "Lead Buyer", uniqueIdentity(t))
	property := seedProperty(t, db)

	errTaken := errors.New("pair already led")
	guard := func(existing []model.Lead) error {
		if len(existing) > 0 {
			return errTaken
		}
		return nil
	}

	errs := runConcurrently(8, func(i int) error {
		return repo.CreateLead(ctx, &model.Lead{
			BrokerID:   uint(100 + i),
			BuyerID:    buyer.ID,
			PropertyID: property.ID,
		}, guard)
	})

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, errTaken)
	}
	assert.Equal(t, 1, created)

	var count int64
	require.NoError(t, db.Model(&model.Lead{}).
		Where("buyer_id = ? AND property_id = ?", buyer.ID, property.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateActiveReturnsOneRow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewTransactionRepository(db)
	buyer := seedBuyer(t, db, "Deal Buyer", uniqueIdentity(t))
	property := seedProperty(t, db)

	var (
		mu      sync.Mutex
		ids     = map[uint]bool{}
		created int
	)
	errs := runConcurrently(8, func(int) error {
		tx, isNew, err := repo.GetOrCreateActive(ctx, property.ID, buyer.ID, nil)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		ids[tx.ID] = true
		if isNew {
			created++
		}
		return nil
	})
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, created)
	require.Len(t, ids, 1)

	var first uint
	for id := range ids {
		first = id
	}
	current, err := repo.GetTransaction(ctx, first)
	require.NoError(t, err)
	current.Status = model.TransactionCancelled
	require.NoError(t, repo.AdvanceTransaction(ctx, current, model.TransactionPreDeposit, model.MarkNone))

	again, isNew, err := repo.GetOrCreateActive(ctx, property.ID, buyer.ID, nil)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEqual(t, first, again.ID)
	assert.Equal(t, model.TransactionPreDeposit, again.Status)
}

func TestConsumeLatestOTPNewestFirstAndOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewOTPRepository(db)
	buyer := seedBuyer(t, db, "Code Buyer", uniqueIdentity(t))

	now := time.Now()
	older := &model.OTPRecord{BuyerID: buyer.ID, Code: "123456", CreatedAt: now.Add(-time.Minute)}
	newer := &model.OTPRecord{BuyerID: buyer.ID, Code: "123456", CreatedAt: now}
	require.NoError(t, repo.CreateOTP(ctx, older))
	require.NoError(t, repo.CreateOTP(ctx, newer))

	got, err := repo.ConsumeLatestOTP(ctx, buyer.ID, "123456")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
	assert.True(t, got.IsVerified)

	got, err = repo.ConsumeLatestOTP(ctx, buyer.ID, "123456")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	_, err = repo.ConsumeLatestOTP(ctx, buyer.ID, "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeLatestOTPConcurrentCallersConsumeOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewOTPRepository(db)
	buyer := seedBuyer(t, db, "Race Buyer", uniqueIdentity(t))
	require.NoError(t, repo.CreateOTP(ctx, &model.OTPRecord{BuyerID: buyer.ID, Code: "654321", CreatedAt: time.Now()}))

	errs := runConcurrently(6, func(int) error {
		_, err := repo.ConsumeLatestOTP(ctx, buyer.ID, "654321")
		return err
	})
	consumed := 0
	for _, err := range errs {
		if err == nil {
			consumed++
			continue
		}
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 1, consumed)
}

func TestAdvanceTransactionIsConditional(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewTransactionRepository(db)
	accounts := NewAccountRepository(db)
	buyer := seedBuyer(t, db, "Advance Buyer", uniqueIdentity(t))
	property := seedProperty(t, db)

	tx, _, err := repo.GetOrCreateActive(ctx, property.ID, buyer.ID, nil)
	require.NoError(t, err)

	tx.Status = model.TransactionDepositPaid
	tx.DepositPaid = true
	tx.DepositAmount = decimal.NewNullDecimal(decimal.NewFromInt(5000))
	require.NoError(t, repo.AdvanceTransaction(ctx, tx, model.TransactionPreDeposit, model.MarkReserved))

	p, err := accounts.GetProperty(ctx, property.ID)
	require.NoError(t, err)
	assert.True(t, p.IsReserved)
	assert.False(t, p.IsSold)

	stale := *tx
	stale.Status = model.TransactionCancelled
	err = repo.AdvanceTransaction(ctx, &stale, model.TransactionPreDeposit, model.MarkNone)
	assert.ErrorIs(t, err, ErrStaleState)

	stored, err := repo.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionDepositPaid, stored.Status)
	assert.True(t, stored.DepositAmount.Decimal.Equal(decimal.NewFromInt(5000)))
}

func TestColumnUpdatesLeaveFinalizedRowsAlone(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewTransactionRepository(db)
	buyer := seedBuyer(t, db, "Finalized Buyer", uniqueIdentity(t))
	property := seedProperty(t, db)

	tx, _, err := repo.GetOrCreateActive(ctx, property.ID, buyer.ID, nil)
	require.NoError(t, err)
	tx.Status = model.TransactionDepositPaid
	tx.DepositPaid = true
	tx.DepositAmount = decimal.NewNullDecimal(decimal.NewFromInt(1000))
	require.NoError(t, repo.AdvanceTransaction(ctx, tx, model.TransactionPreDeposit, model.MarkReserved))
	tx.Status = model.TransactionFinalized
	require.NoError(t, repo.AdvanceTransaction(ctx, tx, model.TransactionDepositPaid, model.MarkSold))

	attached, err := repo.AttachDocuments(ctx, tx.ID, "contracts/late.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionFinalized, attached.Status)
	assert.Equal(t, "contracts/late.pdf", attached.ContractDocument)

	broker := uint(77)
	_, err = repo.ResetToPreDeposit(ctx, tx.ID, &broker)
	assert.ErrorIs(t, err, ErrStaleState)

	stored, err := repo.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionFinalized, stored.Status)
	assert.Nil(t, stored.BrokerID)

	_, err = repo.AttachDocuments(ctx, 1<<31, "x", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBindTemporaryAssociationsAcrossProperties(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewAssociationRepository(db)
	identification := uniqueIdentity(t)
	first := seedProperty(t, db)
	second := seedProperty(t, db)

	for i, p := range []*model.Property{first, second} {
		require.NoError(t, repo.CreateTemporaryAssociation(ctx, &model.AgentBuyerAssociation{
			BrokerID:                      uint(200 + i),
			PropertyID:                    p.ID,
			TempBuyerName:                 "Pending Buyer",
			TempBuyerIdentificationNumber: identification,
		}))
	}

	buyer := seedBuyer(t, db, "Pending Buyer", identification)
	bound, err := repo.BindTemporaryAssociations(ctx, buyer.ID, "Pending Buyer", identification)
	require.NoError(t, err)
	assert.EqualValues(t, 2, bound)

	bound, err = repo.BindTemporaryAssociations(ctx, buyer.ID, "Pending Buyer", identification)
	require.NoError(t, err)
	assert.Zero(t, bound)

	list, err := repo.ListAssociationsByBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
