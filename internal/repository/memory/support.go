package memory

import (
	"context"
	"sort"
	"time"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/internal/repository"
)

func (s *Store) CreateTicket(ctx context.Context, t *model.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Status == "" {
		t.Status = model.TicketOpen
	}
	s.stamp("tickets", &t.ID, &t.CreatedAt, &t.UpdatedAt)
	s.tickets[t.ID] = *t
	return nil
}

func (s *Store) GetTicket(ctx context.Context, id uint) (*model.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Store) listTickets(match func(model.SupportTicket) bool) []model.SupportTicket {
	out := []model.SupportTicket{}
	for _, t := range s.tickets {
		if match(t) {
			out = append(out, t)
		}
	}
	return newestFirst(out, func(t model.SupportTicket) (time.Time, uint) { return t.CreatedAt, t.ID })
}

func (s *Store) ListTicketsByOpener(ctx context.Context, userID uint) ([]model.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTickets(func(t model.SupportTicket) bool { return t.OpenedBy == userID }), nil
}

func (s *Store) ListTickets(ctx context.Context) ([]model.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listTickets(func(model.SupportTicket) bool { return true }), nil
}

func (s *Store) CloseTicket(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Status != model.TicketOpen {
		return repository.ErrStaleState
	}
	t.Status = model.TicketClosed
	t.UpdatedAt = s.now()
	s.tickets[id] = t
	return nil
}

func (s *Store) AddMessage(ctx context.Context, m *model.SupportMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[m.TicketID]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Status != model.TicketOpen {
		return repository.ErrStaleState
	}
	m.ID = s.nextID("support_messages")
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	s.messages[m.ID] = *m
	t.UpdatedAt = m.CreatedAt
	s.tickets[t.ID] = t
	return nil
}

func (s *Store) ListMessages(ctx context.Context, ticketID uint) ([]model.SupportMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.SupportMessage{}
	for _, m := range s.messages {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
