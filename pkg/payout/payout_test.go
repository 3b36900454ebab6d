package payout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPayer(t *testing.T) {
	req := Request{
		TransactionID: 9,
		BrokerID:      3,
		Account:       "acct_123",
		Amount:        decimal.RequireFromString("1500.00"),
		Currency:      "eur",
		Attempt:       1,
	}

	ref, err := LogPayer{}.PayCommission(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "log-commission-9", ref)
}

func TestIdempotencyKeyStableAcrossAttempts(t *testing.T) {
	first := Request{TransactionID: 42, BrokerID: 3, Account: "acct_1", Attempt: 1}
	retry := first
	retry.Attempt = 4

	assert.Equal(t, "commission-42", first.IdempotencyKey())
	assert.Equal(t, first.IdempotencyKey(), retry.IdempotencyKey())
	assert.NotEqual(t, first.IdempotencyKey(), Request{TransactionID: 43, Attempt: 1}.IdempotencyKey())
}

func TestLogPayerWithoutAccount(t *testing.T) {
	_, err := LogPayer{}.PayCommission(context.Background(), Request{TransactionID: 1})
	assert.ErrorIs(t, err, ErrNoPayoutAccount)
}
