package repository

import (
	"context"

	"gorm.io/gorm"

	"estatedeal_backend/internal/model"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// CreateLead serializes on the (buyer, property) pair with an advisory lock
// so two concurrent creations cannot both pass guard.
func (r *LeadRepository) CreateLead(ctx context.Context, lead *model.Lead, guard LeadGuard) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advisoryLock(tx, pairKey("lead", lead.BuyerID, lead.PropertyID)); err != nil {
			return err
		}
		if guard != nil {
			var existing []model.Lead
			if err := tx.Where("buyer_id = ? AND property_id = ?", lead.BuyerID, lead.PropertyID).
				Find(&existing).Error; err != nil {
				return err
			}
			if err := guard(existing); err != nil {
				return err
			}
		}
		return tx.Create(lead).Error
	}))
}

func (r *LeadRepository) GetLead(ctx context.Context, id uint) (*model.Lead, error) {
	var l model.Lead
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *LeadRepository) SaveLead(ctx context.Context, lead *model.Lead) error {
	return translate(r.db.WithContext(ctx).Save(lead).Error)
}

func (r *LeadRepository) ListLeadsByBroker(ctx context.Context, brokerID uint) ([]model.Lead, error) {
	var leads []model.Lead
	err := r.db.WithContext(ctx).
		Where("broker_id = ?", brokerID).
		Order("created_at DESC, id DESC").
		Find(&leads).Error
	return leads, translate(err)
}
