package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository/memory"
	"estatedeal_backend/pkg/payout"
	"estatedeal_backend/pkg/utils/storage"
)

var (
	_ AccountStore     = (*memory.Store)(nil)
	_ LeadStore        = (*memory.Store)(nil)
	_ AssociationStore = (*memory.Store)(nil)
	_ TransactionStore = (*memory.Store)(nil)
	_ PayoutStore      = (*memory.Store)(nil)
	_ OTPStore         = (*memory.Store)(nil)
	_ ProgressStore    = (*memory.Store)(nil)
	_ VisitStore       = (*memory.Store)(nil)
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store

	mu  sync.Mutex
	now time.Time

	seller   *model.Seller
	buyer    *model.Buyer
	broker   *model.Broker
	property *model.Property

	sellerP model.Principal
	buyerP  model.Principal
	brokerP model.Principal
	adminP  model.Principal
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fixture) set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: t0}
	f.store = memory.New(memory.WithClock(f.clock))
	ctx := context.Background()

	sellerUser := &model.User{Email: "seller@example.com", Role: model.RoleSeller}
	f.seller = &model.Seller{Name: "Maria Seller", Email: "seller@example.com", HandleVisits: true}
	require.NoError(t, f.store.CreateSellerAccount(ctx, sellerUser, f.seller))
	f.sellerP = model.Principal{UserID: sellerUser.ID, Role: model.RoleSeller, PartyID: f.seller.ID}

	f.property = &model.Property{SellerID: f.seller.ID, Title: "Sea view flat", Price: decimal.NewFromInt(250000)}
	require.NoError(t, f.store.CreateProperty(ctx, f.property))

	buyerUser := &model.User{Email: "buyer@example.com", Role: model.RoleBuyer}
	f.buyer = &model.Buyer{Name: "Nikos Buyer", Email: "buyer@example.com", Phone: "+306900000000", IdentificationNumber: "AB123456"}
	require.NoError(t, f.store.CreateBuyerAccount(ctx, buyerUser, f.buyer))
	f.buyerP = model.Principal{UserID: buyerUser.ID, Role: model.RoleBuyer, PartyID: f.buyer.ID}

	brokerUser := &model.User{Email: "broker@example.com", Role: model.RoleBroker}
	f.broker = &model.Broker{Name: "Eleni Broker", Email: "broker@example.com", IsVerified: true, PayoutAccount: "acct_broker"}
	require.NoError(t, f.store.CreateBrokerAccount(ctx, brokerUser, f.broker))
	f.brokerP = model.Principal{UserID: brokerUser.ID, Role: model.RoleBroker, PartyID: f.broker.ID, VerifiedBroker: true}

	adminUser := &model.User{Email: "admin@example.com", Role: model.RoleAdmin}
	require.NoError(t, f.store.CreateUser(ctx, adminUser))
	f.adminP = model.Principal{UserID: adminUser.ID, Role: model.RoleAdmin}

	return f
}

// addBuyer registers another buyer account and returns it with its principal.
func (f *fixture) addBuyer(t *testing.T, email, name, idNumber string) (*model.Buyer, model.Principal) {
	t.Helper()
	u := &model.User{Email: email, Role: model.RoleBuyer}
	b := &model.Buyer{Name: name, Email: email, IdentificationNumber: idNumber}
	require.NoError(t, f.store.CreateBuyerAccount(context.Background(), u, b))
	return b, model.Principal{UserID: u.ID, Role: model.RoleBuyer, PartyID: b.ID}
}

func (f *fixture) addBroker(t *testing.T, email string, verified bool, account string) (*model.Broker, model.Principal) {
	t.Helper()
	u := &model.User{Email: email, Role: model.RoleBroker}
	b := &model.Broker{Name: email, Email: email, IsVerified: verified, PayoutAccount: account}
	require.NoError(t, f.store.CreateBrokerAccount(context.Background(), u, b))
	return b, model.Principal{UserID: u.ID, Role: model.RoleBroker, PartyID: b.ID, VerifiedBroker: verified}
}

// fixedCodes hands out the given codes in order, then repeats the last one.
func fixedCodes(codes ...string) CodeGenerator {
	var mu sync.Mutex
	i := 0
	return func(int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c, nil
	}
}

type sentOTP struct {
	buyerID uint
	code    string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentOTP
}

func (r *recordingSender) SendOTP(ctx context.Context, buyer *model.Buyer, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentOTP{buyerID: buyer.ID, code: code})
	return nil
}

type fakePayer struct {
	mu    sync.Mutex
	calls []payout.Request
	err   error
}

func (p *fakePayer) PayCommission(ctx context.Context, req payout.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if p.err != nil {
		return "", p.err
	}
	return "tr_" + req.IdempotencyKey(), nil
}

func (p *fakePayer) failWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

type fakeDocs struct {
	saved []storage.Document
	// onSave runs after the body is read, while the upload is still in flight.
	onSave func()
}

func (d *fakeDocs) Save(ctx context.Context, doc storage.Document) (string, error) {
	if _, err := io.ReadAll(doc.Body); err != nil {
		return "", err
	}
	if d.onSave != nil {
		d.onSave()
	}
	d.saved = append(d.saved, doc)
	return "docs/" + doc.Kind + "/" + doc.Filename, nil
}

var errPayoutDown = errors.New("payout provider unavailable")

func boolPtr(b bool) *bool { return &b }

func uintPtr(v uint) *uint { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
