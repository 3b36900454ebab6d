package service

import (
	"context"
	"time"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

// AccountLookup reads the parties and properties the workflow refers to.
type AccountLookup interface {
	GetBuyer(ctx context.Context, id uint) (*model.Buyer, error)
	GetBroker(ctx context.Context, id uint) (*model.Broker, error)
	GetSeller(ctx context.Context, id uint) (*model.Seller, error)
	GetProperty(ctx context.Context, id uint) (*model.Property, error)
}

type AccountStore interface {
	AccountLookup
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetSellerByUser(ctx context.Context, userID uint) (*model.Seller, error)
	GetBuyerByUser(ctx context.Context, userID uint) (*model.Buyer, error)
	GetBrokerByUser(ctx context.Context, userID uint) (*model.Broker, error)
	CreateUser(ctx context.Context, user *model.User) error
	CreateSellerAccount(ctx context.Context, user *model.User, seller *model.Seller) error
	CreateBuyerAccount(ctx context.Context, user *model.User, buyer *model.Buyer) error
	CreateBrokerAccount(ctx context.Context, user *model.User, broker *model.Broker) error
	CreateProperty(ctx context.Context, property *model.Property) error
}

type LeadStore interface {
	// CreateLead runs guard and the insert as one serialized step per pair.
	CreateLead(ctx context.Context, lead *model.Lead, guard repository.LeadGuard) error
	GetLead(ctx context.Context, id uint) (*model.Lead, error)
	SaveLead(ctx context.Context, lead *model.Lead) error
	ListLeadsByBroker(ctx context.Context, brokerID uint) ([]model.Lead, error)
}

type AssociationStore interface {
	CreateAssociation(ctx context.Context, a *model.AgentBuyerAssociation, guard repository.AssociationGuard) error
	// CreateTemporaryAssociation inserts a temporary association, binding it
	// at once when a buyer with the same name and identification number
	// already exists. Serialized with BindTemporaryAssociations per pair.
	CreateTemporaryAssociation(ctx context.Context, a *model.AgentBuyerAssociation) error
	BindTemporaryAssociations(ctx context.Context, buyerID uint, name, identificationNumber string) (int64, error)
	GetAssociation(ctx context.Context, id uint) (*model.AgentBuyerAssociation, error)
	// RecordAssociationResponse persists accepted and lock_until only if no
	// response was recorded yet; otherwise it returns repository.ErrStaleState.
	RecordAssociationResponse(ctx context.Context, a *model.AgentBuyerAssociation) error
	ListAssociationsByBroker(ctx context.Context, brokerID uint) ([]model.AgentBuyerAssociation, error)
	ListAssociationsByBuyer(ctx context.Context, buyerID uint) ([]model.AgentBuyerAssociation, error)
}

type TransactionStore interface {
	// GetOrCreateActive returns the active transaction for the pair, creating
	// it atomically in PRE_DEPOSIT when none exists.
	GetOrCreateActive(ctx context.Context, propertyID, buyerID uint, brokerID *uint) (*model.Transaction, bool, error)
	GetTransaction(ctx context.Context, id uint) (*model.Transaction, error)
	// AttachDocuments sets only the non-empty document references and returns
	// the stored row; status and deposit columns are never written.
	AttachDocuments(ctx context.Context, id uint, contract, proof string) (*model.Transaction, error)
	// ResetToPreDeposit moves a PRE_DEPOSIT or DEPOSIT_PAID row back to
	// PRE_DEPOSIT, re-attaching brokerID when set. repository.ErrStaleState
	// when the row is in any other status.
	ResetToPreDeposit(ctx context.Context, id uint, brokerID *uint) (*model.Transaction, error)
	// AdvanceTransaction persists t only while the stored status still equals
	// from, and applies mark to the property in the same unit of work.
	AdvanceTransaction(ctx context.Context, t *model.Transaction, from model.TransactionStatus, mark model.PropertyMark) error
	ListTransactionsByBuyer(ctx context.Context, buyerID uint) ([]model.Transaction, error)
	ListTransactionsByBroker(ctx context.Context, brokerID uint) ([]model.Transaction, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
}

type PayoutStore interface {
	CreatePayout(ctx context.Context, p *model.CommissionPayout) error
	SavePayout(ctx context.Context, p *model.CommissionPayout) error
	GetPayoutByTransaction(ctx context.Context, transactionID uint) (*model.CommissionPayout, error)
	ListPayoutsByStatus(ctx context.Context, status model.PayoutStatus) ([]model.CommissionPayout, error)
}

type OTPStore interface {
	CreateOTP(ctx context.Context, rec *model.OTPRecord) error
	// ConsumeLatestOTP marks the newest unverified record matching
	// (buyer, code) as verified. repository.ErrNotFound when none match.
	ConsumeLatestOTP(ctx context.Context, buyerID uint, code string) (*model.OTPRecord, error)
}

type ProgressStore interface {
	AppendProgress(ctx context.Context, entry *model.TransactionProgress) error
	// ListProgress returns entries newest first.
	ListProgress(ctx context.Context, transactionID uint) ([]model.TransactionProgress, error)
}

type VisitStore interface {
	CreateAvailability(ctx context.Context, a *model.VisitAvailability) error
	ListAvailability(ctx context.Context, propertyID uint) ([]model.VisitAvailability, error)
	CreateVisit(ctx context.Context, v *model.VisitRequest) error
	GetVisit(ctx context.Context, id uint) (*model.VisitRequest, error)
	SaveVisit(ctx context.Context, v *model.VisitRequest) error
	ListVisitsBySeller(ctx context.Context, sellerID uint) ([]model.VisitRequest, error)
	ListVisitsScheduledBetween(ctx context.Context, status model.VisitStatus, from, to time.Time) ([]model.VisitRequest, error)
}

type SupportStore interface {
	CreateTicket(ctx context.Context, t *model.SupportTicket) error
	GetTicket(ctx context.Context, id uint) (*model.SupportTicket, error)
	ListTicketsByOpener(ctx context.Context, userID uint) ([]model.SupportTicket, error)
	ListTickets(ctx context.Context) ([]model.SupportTicket, error)
	// CloseTicket returns repository.ErrStaleState when the ticket is not open.
	CloseTicket(ctx context.Context, id uint) error
	// AddMessage returns repository.ErrStaleState when the ticket was closed.
	AddMessage(ctx context.Context, m *model.SupportMessage) error
	ListMessages(ctx context.Context, ticketID uint) ([]model.SupportMessage, error)
}
