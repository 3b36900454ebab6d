package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"estatedeal_backend/internal/model"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) CreateAvailability(ctx context.Context, a *model.VisitAvailability) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *VisitRepository) ListAvailability(ctx context.Context, propertyID uint) ([]model.VisitAvailability, error) {
	var out []model.VisitAvailability
	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("available_date, id").Find(&out).Error
	return out, translate(err)
}

func (r *VisitRepository) CreateVisit(ctx context.Context, v *model.VisitRequest) error {
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *VisitRepository) GetVisit(ctx context.Context, id uint) (*model.VisitRequest, error) {
	var v model.VisitRequest
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *VisitRepository) SaveVisit(ctx context.Context, v *model.VisitRequest) error {
	return translate(r.db.WithContext(ctx).Save(v).Error)
}

func (r *VisitRepository) ListVisitsBySeller(ctx context.Context, sellerID uint) ([]model.VisitRequest, error) {
	var out []model.VisitRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN properties ON properties.id = visit_requests.property_id").
		Where("properties.seller_id = ?", sellerID).
		Order("visit_requests.created_at DESC, visit_requests.id DESC").
		Find(&out).Error
	return out, translate(err)
}

func (r *VisitRepository) ListVisitsScheduledBetween(ctx context.Context, status model.VisitStatus, from, to time.Time) ([]model.VisitRequest, error) {
	var out []model.VisitRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_date >= ? AND scheduled_date < ?", status, from, to).
		Order("scheduled_date").
		Find(&out).Error
	return out, translate(err)
}
