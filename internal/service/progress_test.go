package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatedeal_backend/internal/model"
)

func TestProgressAppendAndList(t *testing.T) {
	f := newFixture(t)
	txs, _ := newTransactionService(f, &fakePayer{}, nil)
	svc := NewProgressService(f.store, f.store, f.store, f.clock)
	ctx := context.Background()

	tx, _, err := txs.ExpressInterest(ctx, f.buyerP, f.property.ID, uintPtr(f.broker.ID))
	require.NoError(t, err)

	_, err = svc.Append(ctx, f.adminP, tx.ID, model.MilestoneInquiry, "first call")
	require.NoError(t, err)
	f.advance(time.Hour)
	last, err := svc.Append(ctx, f.adminP, tx.ID, model.MilestoneAppointmentScheduled, "")
	require.NoError(t, err)
	assert.Equal(t, f.adminP.UserID, last.AuthorID)

	for _, p := range []model.Principal{f.adminP, f.buyerP, f.brokerP, f.sellerP} {
		entries, err := svc.List(ctx, p, tx.ID)
		require.NoError(t, err, p.Role)
		require.Len(t, entries, 2)
		assert.Equal(t, model.MilestoneAppointmentScheduled, entries[0].Status)
		assert.Equal(t, "first call", entries[1].Comment)
	}
}

func TestProgressGuards(t *testing.T) {
	f := newFixture(t)
	txs, _ := newTransactionService(f, &fakePayer{}, nil)
	svc := NewProgressService(f.store, f.store, f.store, f.clock)
	ctx := context.Background()

	tx, _, err := txs.ExpressInterest(ctx, f.buyerP, f.property.ID, nil)
	require.NoError(t, err)

	_, err = svc.Append(ctx, f.buyerP, tx.ID, model.MilestoneInquiry, "")
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.Append(ctx, f.adminP, 999, model.MilestoneInquiry, "")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.Append(ctx, f.adminP, tx.ID, model.Milestone("SIGNED_IN_BLOOD"), "")
	assert.Equal(t, KindBadRequest, KindOf(err))

	// No broker attached, so the broker is not a participant.
	_, err = svc.List(ctx, f.brokerP, tx.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, outsider := f.addBuyer(t, "o@example.com", "O", "O1")
	_, err = svc.List(ctx, outsider, tx.ID)
	assert.Equal(t, KindForbidden, KindOf(err))
}
