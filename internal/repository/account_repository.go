package repository

import (
	"context"

	"gorm.io/gorm"

	"estatedeal_backend/internal/model"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *AccountRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *AccountRepository) GetSeller(ctx context.Context, id uint) (*model.Seller, error) {
	var s model.Seller
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *AccountRepository) GetBuyer(ctx context.Context, id uint) (*model.Buyer, error) {
	var b model.Buyer
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *AccountRepository) GetBroker(ctx context.Context, id uint) (*model.Broker, error) {
	var b model.Broker
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *AccountRepository) GetProperty(ctx context.Context, id uint) (*model.Property, error) {
	var p model.Property
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *AccountRepository) GetSellerByUser(ctx context.Context, userID uint) (*model.Seller, error) {
	var s model.Seller
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *AccountRepository) GetBuyerByUser(ctx context.Context, userID uint) (*model.Buyer, error) {
	var b model.Buyer
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *AccountRepository) GetBrokerByUser(ctx context.Context, userID uint) (*model.Broker, error) {
	var b model.Broker
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *AccountRepository) CreateUser(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *AccountRepository) CreateSellerAccount(ctx context.Context, user *model.User, seller *model.Seller) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		seller.UserID = user.ID
		return tx.Create(seller).Error
	}))
}

func (r *AccountRepository) CreateBuyerAccount(ctx context.Context, user *model.User, buyer *model.Buyer) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		uid := user.ID
		buyer.UserID = &uid
		return tx.Create(buyer).Error
	}))
}

func (r *AccountRepository) CreateBrokerAccount(ctx context.Context, user *model.User, broker *model.Broker) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		broker.UserID = user.ID
		return tx.Create(broker).Error
	}))
}

func (r *AccountRepository) CreateProperty(ctx context.Context, property *model.Property) error {
	return translate(r.db.WithContext(ctx).Create(property).Error)
}

func (r *AccountRepository) SaveBroker(ctx context.Context, broker *model.Broker) error {
	return translate(r.db.WithContext(ctx).Save(broker).Error)
}
