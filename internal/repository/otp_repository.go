package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"estatedeal_backend/internal/model"
)

type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) CreateOTP(ctx context.Context, rec *model.OTPRecord) error {
	return translate(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *OTPRepository) ConsumeLatestOTP(ctx context.Context, buyerID uint, code string) (*model.OTPRecord, error) {
	var rec model.OTPRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("buyer_id = ? AND code = ? AND is_verified = ?", buyerID, code, false).
			Order("created_at DESC, id DESC").
			First(&rec).Error; err != nil {
			return err
		}
		rec.IsVerified = true
		return tx.Model(&model.OTPRecord{}).Where("id = ?", rec.ID).Update("is_verified", true).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) AppendProgress(ctx context.Context, entry *model.TransactionProgress) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *ProgressRepository) ListProgress(ctx context.Context, transactionID uint) ([]model.TransactionProgress, error) {
	var out []model.TransactionProgress
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, translate(err)
}
