package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
	"estatedeal_backend/pkg/logger"
)

// SupportService runs the ticket channel between buyers or sellers and the
// administrators. Sellers use it to ask for visit cancellations.
type SupportService struct {
	store    SupportStore
	accounts AccountLookup
	now      Clock
}

func NewSupportService(store SupportStore, accounts AccountLookup, now Clock) *SupportService {
	if now == nil {
		now = systemClock
	}
	return &SupportService{store: store, accounts: accounts, now: now}
}

type TicketInput struct {
	PropertyID  *uint
	Subject     string
	Description string
}

func (s *SupportService) Open(ctx context.Context, p model.Principal, in TicketInput) (*model.SupportTicket, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if p.Role != model.RoleBuyer && p.Role != model.RoleSeller {
		return nil, errForbidden("buyer_or_seller_required", "only buyers and sellers open support tickets")
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" || strings.TrimSpace(in.Description) == "" {
		return nil, errBadRequest("ticket_fields_required", "subject and description are required")
	}
	if in.PropertyID != nil {
		prop, err := s.accounts.GetProperty(ctx, *in.PropertyID)
		if err != nil {
			return nil, lookupError(err, "property")
		}
		if sellerID, ok := p.SellerID(); ok && prop.SellerID != sellerID {
			return nil, errForbidden("not_property_owner", "sellers can only open tickets about their own properties")
		}
	}

	t := &model.SupportTicket{
		OpenedBy:    p.UserID,
		OpenerRole:  p.Role,
		PropertyID:  in.PropertyID,
		Subject:     subject,
		Description: in.Description,
		Status:      model.TicketOpen,
	}
	if err := s.store.CreateTicket(ctx, t); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{"ticket_id": t.ID, "user_id": p.UserID, "role": p.Role}).Info("Support ticket opened")
	return t, nil
}

// List returns the caller's own tickets, or every ticket for administrators,
// newest first.
func (s *SupportService) List(ctx context.Context, p model.Principal) ([]model.SupportTicket, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	if p.IsAdmin() {
		return s.store.ListTickets(ctx)
	}
	return s.store.ListTicketsByOpener(ctx, p.UserID)
}

func (s *SupportService) visibleTicket(ctx context.Context, p model.Principal, ticketID uint) (*model.SupportTicket, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	t, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, lookupError(err, "ticket")
	}
	if !p.IsAdmin() && t.OpenedBy != p.UserID {
		return nil, errForbidden("not_your_ticket", "ticket belongs to another user")
	}
	return t, nil
}

// PostMessage appends to an open ticket. Only its opener and administrators
// take part in the conversation.
func (s *SupportService) PostMessage(ctx context.Context, p model.Principal, ticketID uint, content string) (*model.SupportMessage, error) {
	t, err := s.visibleTicket(ctx, p, ticketID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, errBadRequest("content_required", "content is required")
	}
	if t.Status != model.TicketOpen {
		return nil, errInvalidState("ticket_closed", "ticket is closed")
	}

	m := &model.SupportMessage{TicketID: t.ID, SenderID: p.UserID, Content: content, CreatedAt: s.now()}
	if err := s.store.AddMessage(ctx, m); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, errInvalidState("ticket_closed", "ticket is closed")
		}
		return nil, err
	}
	return m, nil
}

// Messages returns the conversation oldest first.
func (s *SupportService) Messages(ctx context.Context, p model.Principal, ticketID uint) ([]model.SupportMessage, error) {
	if _, err := s.visibleTicket(ctx, p, ticketID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, ticketID)
}

func (s *SupportService) Close(ctx context.Context, p model.Principal, ticketID uint) (*model.SupportTicket, error) {
	t, err := s.visibleTicket(ctx, p, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.store.CloseTicket(ctx, t.ID); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, errInvalidState("ticket_closed", "ticket is already closed")
		}
		return nil, err
	}
	t.Status = model.TicketClosed

	logger.Log.WithFields(logrus.Fields{"ticket_id": t.ID, "closed_by": p.UserID}).Info("Support ticket closed")
	return t, nil
}
