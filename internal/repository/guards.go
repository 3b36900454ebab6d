package repository

import "estatedeal_backend/internal/model"

// LeadGuard inspects the existing leads for a (buyer, property) pair before
// a new one is inserted. A non-nil error aborts the insert and is returned
// unchanged.
type LeadGuard func(existing []model.Lead) error

// AssociationGuard does the same for broker-buyer associations.
type AssociationGuard func(existing []model.AgentBuyerAssociation) error
