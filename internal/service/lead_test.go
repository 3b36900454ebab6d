package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatedeal_backend/internal/model"
)

func newLeadService(f *fixture, sender OTPSender, requireOTP bool, codes CodeGenerator) *LeadService {
	return NewLeadService(f.store, f.store, sender, LeadOptions{
		RequireOTPBeforeOutcome: requireOTP,
		Now:                     f.clock,
		Codes:                   codes,
	})
}

func TestLeadLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}
	svc := newLeadService(f, sender, false, fixedCodes("482913"))
	ctx := context.Background()

	lead, err := svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	require.NoError(t, err)
	require.NotNil(t, lead.OTPCode)
	assert.Equal(t, "482913", *lead.OTPCode)
	assert.Equal(t, model.LeadOTPIssued, lead.State())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, sentOTP{buyerID: f.buyer.ID, code: "482913"}, sender.sent[0])

	lead, err = svc.VerifyOTP(ctx, f.brokerP, lead.ID, "482913")
	require.NoError(t, err)
	assert.True(t, lead.OTPVerified)
	assert.Nil(t, lead.Interested)

	lead, err = svc.SetOutcome(ctx, f.brokerP, lead.ID, boolPtr(false))
	require.NoError(t, err)
	require.NotNil(t, lead.LockedUntil)
	assert.Equal(t, t0.Add(90*24*time.Hour), *lead.LockedUntil)
	assert.Equal(t, model.LeadVerifiedNotInterested, lead.State())

	f.advance(30 * 24 * time.Hour)
	_, err = svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	assert.Equal(t, KindConflict, KindOf(err))

	f.set(t0.Add(90 * 24 * time.Hour))
	_, err = svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	assert.NoError(t, err)
}

func TestLeadLockIsPerPair(t *testing.T) {
	f := newFixture(t)
	svc := newLeadService(f, nil, false, fixedCodes("111111"))
	ctx := context.Background()

	lead, err := svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	require.NoError(t, err)
	_, err = svc.SetOutcome(ctx, f.brokerP, lead.ID, boolPtr(false))
	require.NoError(t, err)

	other, _ := f.addBuyer(t, "other@example.com", "Other", "ZZ1")
	_, err = svc.Create(ctx, f.brokerP, other.ID, f.property.ID)
	assert.NoError(t, err)

	// Another broker is blocked just the same.
	_, otherBroker := f.addBroker(t, "b2@example.com", true, "")
	_, err = svc.Create(ctx, otherBroker, f.buyer.ID, f.property.ID)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestLeadInterestedClearsLock(t *testing.T) {
	f := newFixture(t)
	svc := newLeadService(f, nil, false, fixedCodes("222222"))
	ctx := context.Background()

	lead, err := svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	require.NoError(t, err)
	_, err = svc.SetOutcome(ctx, f.brokerP, lead.ID, boolPtr(false))
	require.NoError(t, err)

	lead, err = svc.SetOutcome(ctx, f.brokerP, lead.ID, boolPtr(true))
	require.NoError(t, err)
	assert.Nil(t, lead.LockedUntil)
	assert.Equal(t, model.LeadVerifiedInterested, lead.State())

	_, err = svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	assert.NoError(t, err)
}

func TestLeadVerifyOTPGuards(t *testing.T) {
	f := newFixture(t)
	svc := newLeadService(f, nil, false, fixedCodes("333333"))
	ctx := context.Background()

	lead, err := svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	require.NoError(t, err)

	_, otherBroker := f.addBroker(t, "b2@example.com", true, "")
	_, err = svc.VerifyOTP(ctx, otherBroker, lead.ID, "333333")
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = svc.VerifyOTP(ctx, otherBroker, lead.ID, "")
	assert.Equal(t, KindForbidden, KindOf(err), "ownership is checked before the code")
	_, err = svc.VerifyOTP(ctx, f.brokerP, lead.ID, "")
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, err = svc.VerifyOTP(ctx, f.brokerP, lead.ID, "000000")
	assert.Equal(t, KindInvalidCode, KindOf(err))

	stored, err := f.store.GetLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.False(t, stored.OTPVerified)

	_, err = svc.VerifyOTP(ctx, f.brokerP, 999, "333333")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestLeadOutcomeGuards(t *testing.T) {
	f := newFixture(t)
	svc := newLeadService(f, nil, false, fixedCodes("444444"))
	ctx := context.Background()

	lead, err := svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	require.NoError(t, err)

	_, otherBroker := f.addBroker(t, "b2@example.com", true, "")
	_, err = svc.SetOutcome(ctx, otherBroker, lead.ID, boolPtr(true))
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.SetOutcome(ctx, f.brokerP, lead.ID, nil)
	assert.Equal(t, KindBadRequest, KindOf(err))

	// Outcome without verification is allowed by default.
	_, err = svc.SetOutcome(ctx, f.brokerP, lead.ID, boolPtr(true))
	assert.NoError(t, err)
}

func TestLeadOutcomeRequiresOTPWhenConfigured(t *testing.T) {
	f := newFixture(t)
	svc := newLeadService(f, nil, true, fixedCodes("555555"))
	ctx := context.Background()

	lead, err := svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	require.NoError(t, err)

	_, err = svc.SetOutcome(ctx, f.brokerP, lead.ID, boolPtr(false))
	assert.Equal(t, KindInvalidState, KindOf(err))

	_, err = svc.VerifyOTP(ctx, f.brokerP, lead.ID, "555555")
	require.NoError(t, err)
	_, err = svc.SetOutcome(ctx, f.brokerP, lead.ID, boolPtr(false))
	assert.NoError(t, err)
}

func TestLeadRequiresVerifiedBroker(t *testing.T) {
	f := newFixture(t)
	svc := newLeadService(f, nil, false, fixedCodes("666666"))
	ctx := context.Background()

	_, unverified := f.addBroker(t, "new@example.com", false, "")
	_, err := svc.Create(ctx, unverified, f.buyer.ID, f.property.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.Create(ctx, f.buyerP, f.buyer.ID, f.property.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.Create(ctx, f.brokerP, 999, f.property.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListLeadsForBroker(t *testing.T) {
	f := newFixture(t)
	svc := newLeadService(f, nil, false, fixedCodes("777777"))
	ctx := context.Background()

	first, err := svc.Create(ctx, f.brokerP, f.buyer.ID, f.property.ID)
	require.NoError(t, err)
	f.advance(time.Minute)
	other, _ := f.addBuyer(t, "o@example.com", "O", "1")
	second, err := svc.Create(ctx, f.brokerP, other.ID, f.property.ID)
	require.NoError(t, err)

	leads, err := svc.ListForBroker(ctx, f.brokerP)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, second.ID, leads[0].ID)
	assert.Equal(t, first.ID, leads[1].ID)
}
