package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
	"estatedeal_backend/pkg/logger"
)

// WelcomeMailer greets newly registered users.
type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, email, name, role string) error
}

type RegisterInput struct {
	Email                string
	Password             string
	Role                 model.Role
	Name                 string
	Phone                string
	IdentificationNumber string
	HandleVisits         *bool
	PayoutAccount        string
	// BrokerID and PropertyID come from a broker's referral link.
	BrokerID   *uint
	PropertyID *uint
}

type AccountService struct {
	store        AccountStore
	associations *AssociationService
	mailer       WelcomeMailer
}

func NewAccountService(store AccountStore, associations *AssociationService, mailer WelcomeMailer) *AccountService {
	return &AccountService{store: store, associations: associations, mailer: mailer}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Register creates the user and its role record. Buyers are bound to any
// matching temporary associations, and to the referring broker when the
// registration came through a referral link.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, model.Principal, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, model.Anonymous, errBadRequest("credentials_required", "email and password are required")
	}
	if in.Role == model.RoleAdmin || !in.Role.Valid() {
		return nil, model.Anonymous, errBadRequest("invalid_role", "role must be seller, buyer or broker")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, model.Anonymous, errBadRequest("name_required", "name is required")
	}
	if (in.BrokerID == nil) != (in.PropertyID == nil) {
		return nil, model.Anonymous, errBadRequest("referral_incomplete", "broker_id and property_id must be given together")
	}
	if in.BrokerID != nil {
		if in.Role != model.RoleBuyer {
			return nil, model.Anonymous, errBadRequest("referral_buyers_only", "only buyers register through a broker link")
		}
		if _, err := s.store.GetBroker(ctx, *in.BrokerID); err != nil {
			return nil, model.Anonymous, lookupError(err, "broker")
		}
		if _, err := s.store.GetProperty(ctx, *in.PropertyID); err != nil {
			return nil, model.Anonymous, lookupError(err, "property")
		}
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, model.Anonymous, err
	}
	user := &model.User{Email: in.Email, Password: hashed, Role: in.Role}
	principal := model.Principal{Role: in.Role}

	switch in.Role {
	case model.RoleSeller:
		seller := &model.Seller{Name: in.Name, Email: in.Email, Phone: in.Phone, HandleVisits: true}
		if in.HandleVisits != nil {
			seller.HandleVisits = *in.HandleVisits
		}
		err = s.store.CreateSellerAccount(ctx, user, seller)
		principal.PartyID = seller.ID
	case model.RoleBroker:
		broker := &model.Broker{
			Name:           in.Name,
			Email:          in.Email,
			Phone:          in.Phone,
			PayoutAccount:  in.PayoutAccount,
			CommissionRate: decimal.NewFromFloat(2.5),
		}
		err = s.store.CreateBrokerAccount(ctx, user, broker)
		principal.PartyID = broker.ID
	case model.RoleBuyer:
		buyer := &model.Buyer{
			Name:                 in.Name,
			Email:                in.Email,
			Phone:                in.Phone,
			IdentificationNumber: in.IdentificationNumber,
			BrokerID:             in.BrokerID,
		}
		err = s.store.CreateBuyerAccount(ctx, user, buyer)
		principal.PartyID = buyer.ID
		if err == nil {
			s.afterBuyerRegistered(ctx, buyer, in)
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.Anonymous, newError(KindConflict, "email_taken", "this email is already registered")
		}
		return nil, model.Anonymous, err
	}
	principal.UserID = user.ID

	logger.Log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("Account registered")
	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(ctx, user.Email, in.Name, string(user.Role)); err != nil {
			logger.Log.WithFields(logrus.Fields{"user_id": user.ID}).Warnf("Could not send welcome email: %v", err)
		}
	}
	return user, principal, nil
}

// afterBuyerRegistered runs once the buyer row exists. Its failures are
// logged, not returned: the account is already committed, and a failed
// binding is repaired through AssociationService.BindPending.
func (s *AccountService) afterBuyerRegistered(ctx context.Context, buyer *model.Buyer, in RegisterInput) {
	if s.associations == nil {
		return
	}
	fields := logrus.Fields{"buyer_id": buyer.ID}
	if _, err := s.associations.ResolveOnRegistration(ctx, buyer); err != nil {
		logger.Log.WithFields(fields).Errorf("Could not bind temporary associations: %v", err)
	}
	if in.BrokerID != nil {
		if _, err := s.associations.link(ctx, *in.BrokerID, buyer.ID, *in.PropertyID); err != nil {
			logger.Log.WithFields(fields).WithField("broker_id", *in.BrokerID).
				Warnf("Could not link buyer to referring broker: %v", err)
		}
	}
}

// Authenticate checks credentials and returns the user with its principal.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*model.User, model.Principal, error) {
	invalid := newError(KindUnauthorized, "invalid_credentials", "invalid email or password")

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.Anonymous, invalid
		}
		return nil, model.Anonymous, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, model.Anonymous, invalid
	}

	p, err := s.principalFor(ctx, user)
	if err != nil {
		return nil, model.Anonymous, err
	}
	return user, p, nil
}

// ResolvePrincipal loads the user and the single role record it acts under.
func (s *AccountService) ResolvePrincipal(ctx context.Context, userID uint) (model.Principal, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Anonymous, newError(KindUnauthorized, "user_not_found", "user no longer exists")
		}
		return model.Anonymous, err
	}
	return s.principalFor(ctx, user)
}

func (s *AccountService) principalFor(ctx context.Context, user *model.User) (model.Principal, error) {
	p := model.Principal{UserID: user.ID, Role: user.Role}

	var err error
	switch user.Role {
	case model.RoleAdmin:
		return p, nil
	case model.RoleSeller:
		var seller *model.Seller
		if seller, err = s.store.GetSellerByUser(ctx, user.ID); err == nil {
			p.PartyID = seller.ID
		}
	case model.RoleBuyer:
		var buyer *model.Buyer
		if buyer, err = s.store.GetBuyerByUser(ctx, user.ID); err == nil {
			p.PartyID = buyer.ID
		}
	case model.RoleBroker:
		var broker *model.Broker
		if broker, err = s.store.GetBrokerByUser(ctx, user.ID); err == nil {
			p.PartyID = broker.ID
			p.VerifiedBroker = broker.IsVerified
		}
	default:
		return model.Anonymous, newError(KindUnauthorized, "unknown_role", "account has no usable role")
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Anonymous, newError(KindUnauthorized, "role_record_missing", "account has no "+string(user.Role)+" profile")
		}
		return model.Anonymous, err
	}
	return p, nil
}

// EnsureAdmin creates the administrator account when it does not exist yet.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (*model.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, false, errBadRequest("credentials_required", "admin email and password are required")
	}
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, false, err
	}
	user := &model.User{Email: email, Password: hashed, Role: model.RoleAdmin}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
