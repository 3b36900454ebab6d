package seed

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/service"
	"estatedeal_backend/pkg/logger"
)

const demoPassword = "demo-password"

type Store interface {
	GetBroker(ctx context.Context, id uint) (*model.Broker, error)
	SaveBroker(ctx context.Context, broker *model.Broker) error
	CreateProperty(ctx context.Context, property *model.Property) error
}

// Admin makes sure the administrator account exists.
func Admin(ctx context.Context, accounts *service.AccountService, email, password string) error {
	user, created, err := accounts.EnsureAdmin(ctx, email, password)
	if err != nil {
		return err
	}
	if created {
		logger.Log.WithField("user_id", user.ID).Info("Administrator account created")
	} else {
		logger.Log.WithField("user_id", user.ID).Info("Administrator account already exists")
	}
	return nil
}

type DemoData struct {
	SellerID   uint
	BuyerID    uint
	BrokerID   uint
	PropertyID uint
}

// ensure registers the account, or logs into it when it was seeded before.
func ensure(ctx context.Context, accounts *service.AccountService, in service.RegisterInput) (model.Principal, bool, error) {
	_, p, err := accounts.Register(ctx, in)
	if err == nil {
		return p, true, nil
	}
	if !service.IsKind(err, service.KindConflict) {
		return model.Anonymous, false, err
	}
	_, p, err = accounts.Authenticate(ctx, in.Email, in.Password)
	return p, false, err
}

// Demo creates a seller with one property, a verified broker and a buyer.
// Running it again reuses the accounts.
func Demo(ctx context.Context, accounts *service.AccountService, store Store) (*DemoData, error) {
	seller, sellerCreated, err := ensure(ctx, accounts, service.RegisterInput{
		Email: "seller@demo.estatedeal.app", Password: demoPassword, Role: model.RoleSeller,
		Name: "Demo Seller", Phone: "+302100000001",
	})
	if err != nil {
		return nil, err
	}
	broker, _, err := ensure(ctx, accounts, service.RegisterInput{
		Email: "broker@demo.estatedeal.app", Password: demoPassword, Role: model.RoleBroker,
		Name: "Demo Broker", Phone: "+302100000002", PayoutAccount: "acct_demo_broker",
	})
	if err != nil {
		return nil, err
	}
	buyer, _, err := ensure(ctx, accounts, service.RegisterInput{
		Email: "buyer@demo.estatedeal.app", Password: demoPassword, Role: model.RoleBuyer,
		Name: "Demo Buyer", Phone: "+306900000003", IdentificationNumber: "DEMO0001",
	})
	if err != nil {
		return nil, err
	}

	b, err := store.GetBroker(ctx, broker.PartyID)
	if err != nil {
		return nil, err
	}
	if !b.IsVerified {
		b.IsVerified = true
		if err := store.SaveBroker(ctx, b); err != nil {
			return nil, err
		}
	}

	data := &DemoData{SellerID: seller.PartyID, BuyerID: buyer.PartyID, BrokerID: broker.PartyID}
	if sellerCreated {
		prop := &model.Property{
			SellerID: seller.PartyID,
			Title:    "Two-bedroom flat in Kifisia",
			Price:    decimal.NewFromInt(320000),
		}
		if err := store.CreateProperty(ctx, prop); err != nil {
			return nil, err
		}
		data.PropertyID = prop.ID
	}

	logger.Log.WithFields(logrus.Fields{
		"seller_id":   data.SellerID,
		"buyer_id":    data.BuyerID,
		"broker_id":   data.BrokerID,
		"property_id": data.PropertyID,
	}).Info("Demo data seeded")
	return data, nil
}
