package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"estatedeal_backend/internal/model"
)

type AssociationRepository struct {
	db *gorm.DB
}

func NewAssociationRepository(db *gorm.DB) *AssociationRepository {
	return &AssociationRepository{db: db}
}

func identityKey(name, identificationNumber string) string {
	return "buyer-identity:" + name + "\x00" + identificationNumber
}

func (r *AssociationRepository) CreateAssociation(ctx context.Context, a *model.AgentBuyerAssociation, guard AssociationGuard) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if guard != nil && a.BuyerID != nil {
			if err := advisoryLock(tx, pairKey("association", *a.BuyerID, a.PropertyID)); err != nil {
				return err
			}
			var existing []model.AgentBuyerAssociation
			if err := tx.Where("buyer_id = ? AND property_id = ?", *a.BuyerID, a.PropertyID).
				Find(&existing).Error; err != nil {
				return err
			}
			if err := guard(existing); err != nil {
				return err
			}
		}
		return tx.Create(a).Error
	}))
}

// CreateTemporaryAssociation holds the identity lock shared with
// BindTemporaryAssociations, so a buyer registering concurrently either sees
// this row or is seen by it.
func (r *AssociationRepository) CreateTemporaryAssociation(ctx context.Context, a *model.AgentBuyerAssociation) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advisoryLock(tx, identityKey(a.TempBuyerName, a.TempBuyerIdentificationNumber)); err != nil {
			return err
		}
		var buyer model.Buyer
		err := tx.Where("name = ? AND identification_number = ?", a.TempBuyerName, a.TempBuyerIdentificationNumber).
			Order("id").First(&buyer).Error
		switch {
		case err == nil:
			a.BuyerID = &buyer.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(a).Error
	}))
}

func (r *AssociationRepository) BindTemporaryAssociations(ctx context.Context, buyerID uint, name, identificationNumber string) (int64, error) {
	var bound int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := advisoryLock(tx, identityKey(name, identificationNumber)); err != nil {
			return err
		}
		res := tx.Model(&model.AgentBuyerAssociation{}).
			Where("buyer_id IS NULL AND temp_buyer_name = ? AND temp_buyer_identification_number = ?", name, identificationNumber).
			Update("buyer_id", buyerID)
		bound = res.RowsAffected
		return res.Error
	})
	return bound, translate(err)
}

func (r *AssociationRepository) GetAssociation(ctx context.Context, id uint) (*model.AgentBuyerAssociation, error) {
	var a model.AgentBuyerAssociation
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AssociationRepository) RecordAssociationResponse(ctx context.Context, a *model.AgentBuyerAssociation) error {
	res := r.db.WithContext(ctx).Model(&model.AgentBuyerAssociation{}).
		Where("id = ? AND accepted IS NULL", a.ID).
		Updates(map[string]interface{}{
			"accepted":   a.Accepted,
			"lock_until": a.LockUntil,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetAssociation(ctx, a.ID); err != nil {
			return err
		}
		return ErrStaleState
	}
	return nil
}

func (r *AssociationRepository) ListAssociationsByBroker(ctx context.Context, brokerID uint) ([]model.AgentBuyerAssociation, error) {
	var out []model.AgentBuyerAssociation
	err := r.db.WithContext(ctx).Where("broker_id = ?", brokerID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

func (r *AssociationRepository) ListAssociationsByBuyer(ctx context.Context, buyerID uint) ([]model.AgentBuyerAssociation, error) {
	var out []model.AgentBuyerAssociation
	err := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}
