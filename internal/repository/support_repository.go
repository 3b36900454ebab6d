package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"estatedeal_backend/internal/model"
)

type SupportRepository struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

func (r *SupportRepository) CreateTicket(ctx context.Context, t *model.SupportTicket) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *SupportRepository) GetTicket(ctx context.Context, id uint) (*model.SupportTicket, error) {
	var t model.SupportTicket
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *SupportRepository) ListTicketsByOpener(ctx context.Context, userID uint) ([]model.SupportTicket, error) {
	var out []model.SupportTicket
	err := r.db.WithContext(ctx).Where("opened_by = ?", userID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

func (r *SupportRepository) ListTickets(ctx context.Context) ([]model.SupportTicket, error) {
	var out []model.SupportTicket
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

func (r *SupportRepository) CloseTicket(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.SupportTicket{}).
		Where("id = ? AND status = ?", id, model.TicketOpen).
		Updates(map[string]interface{}{"status": model.TicketClosed, "updated_at": time.Now()})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// AddMessage locks the ticket row so a message never lands on a ticket that
// was closed after the caller checked it.
func (r *SupportRepository) AddMessage(ctx context.Context, m *model.SupportMessage) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.SupportTicket
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, m.TicketID).Error; err != nil {
			return err
		}
		if t.Status != model.TicketOpen {
			return ErrStaleState
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&t).Update("updated_at", time.Now()).Error
	}))
}

func (r *SupportRepository) ListMessages(ctx context.Context, ticketID uint) ([]model.SupportMessage, error) {
	var out []model.SupportMessage
	err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).Order("created_at, id").Find(&out).Error
	return out, translate(err)
}
