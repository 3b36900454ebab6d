package service

import (
	"errors"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func requireAuthenticated(p model.Principal) error {
	if !p.Authenticated() {
		return newError(KindUnauthorized, "unauthenticated", "authentication required")
	}
	return nil
}

func requireBuyer(p model.Principal) (uint, error) {
	id, ok := p.BuyerID()
	if !ok {
		return 0, errForbidden("buyer_required", "only buyers can perform this action")
	}
	return id, nil
}

func requireBroker(p model.Principal) (uint, error) {
	id, ok := p.BrokerID()
	if !ok {
		return 0, errForbidden("broker_required", "only brokers can perform this action")
	}
	return id, nil
}

func requireVerifiedBroker(p model.Principal) (uint, error) {
	id, err := requireBroker(p)
	if err != nil {
		return 0, err
	}
	if !p.VerifiedBroker {
		return 0, errForbidden("broker_not_verified", "broker account is not verified")
	}
	return id, nil
}

func requireSeller(p model.Principal) (uint, error) {
	id, ok := p.SellerID()
	if !ok {
		return 0, errForbidden("seller_required", "only sellers can perform this action")
	}
	return id, nil
}

func requireAdmin(p model.Principal) error {
	if !p.IsAdmin() {
		return errForbidden("admin_required", "administrator privilege required")
	}
	return nil
}

// lookupError turns a store miss into a NotFound for the named entity.
func lookupError(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errNotFound(what)
	}
	return err
}
