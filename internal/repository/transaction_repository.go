package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"estatedeal_backend/internal/model"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetOrCreateActive inserts with ON CONFLICT DO NOTHING against the partial
// unique index on active (property, buyer) pairs, then reads the winner.
func (r *TransactionRepository) GetOrCreateActive(ctx context.Context, propertyID, buyerID uint, brokerID *uint) (*model.Transaction, bool, error) {
	var (
		out     model.Transaction
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := model.Transaction{
			PropertyID: propertyID,
			BuyerID:    buyerID,
			BrokerID:   brokerID,
			Status:     model.TransactionPreDeposit,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "property_id"}, {Name: "buyer_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "status <> 'CANCELLED'"},
			}},
			DoNothing: true,
		}).Create(&t)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			out, created = t, true
			return nil
		}
		return tx.Where("property_id = ? AND buyer_id = ? AND status <> ?", propertyID, buyerID, model.TransactionCancelled).
			First(&out).Error
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &out, created, nil
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, id uint) (*model.Transaction, error) {
	var t model.Transaction
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TransactionRepository) AttachDocuments(ctx context.Context, id uint, contract, proof string) (*model.Transaction, error) {
	cols := map[string]interface{}{"updated_at": time.Now()}
	if contract != "" {
		cols["contract_document"] = contract
	}
	if proof != "" {
		cols["payment_proof"] = proof
	}

	var out model.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Transaction{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&out, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// ResetToPreDeposit is conditional on the status, so it can never reopen a
// FINALIZED or CANCELLED row that changed after the caller read it.
func (r *TransactionRepository) ResetToPreDeposit(ctx context.Context, id uint, brokerID *uint) (*model.Transaction, error) {
	cols := map[string]interface{}{
		"status":     model.TransactionPreDeposit,
		"updated_at": time.Now(),
	}
	if brokerID != nil {
		cols["broker_id"] = *brokerID
	}

	var out model.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Transaction{}).
			Where("id = ? AND status IN ?", id, []model.TransactionStatus{model.TransactionPreDeposit, model.TransactionDepositPaid}).
			Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}
		return tx.First(&out, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// AdvanceTransaction is a conditional update on the current status plus the
// property flag, in one database transaction.
func (r *TransactionRepository) AdvanceTransaction(ctx context.Context, t *model.Transaction, from model.TransactionStatus, mark model.PropertyMark) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&model.Transaction{}).
			Where("id = ? AND status = ?", t.ID, from).
			Updates(map[string]interface{}{
				"status":         t.Status,
				"deposit_amount": t.DepositAmount,
				"deposit_paid":   t.DepositPaid,
				"updated_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		var column string
		switch mark {
		case model.MarkReserved:
			column = "is_reserved"
		case model.MarkSold:
			column = "is_sold"
		default:
			t.UpdatedAt = now
			return nil
		}
		res = tx.Model(&model.Property{}).Where("id = ?", t.PropertyID).Update(column, true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		t.UpdatedAt = now
		return nil
	}))
}

func (r *TransactionRepository) ListTransactionsByBuyer(ctx context.Context, buyerID uint) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

func (r *TransactionRepository) ListTransactionsByBroker(ctx context.Context, brokerID uint) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.db.WithContext(ctx).Where("broker_id = ?", brokerID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

func (r *TransactionRepository) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error
	return out, translate(err)
}

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) CreatePayout(ctx context.Context, p *model.CommissionPayout) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PayoutRepository) SavePayout(ctx context.Context, p *model.CommissionPayout) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *PayoutRepository) GetPayoutByTransaction(ctx context.Context, transactionID uint) (*model.CommissionPayout, error) {
	var p model.CommissionPayout
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PayoutRepository) ListPayoutsByStatus(ctx context.Context, status model.PayoutStatus) ([]model.CommissionPayout, error) {
	var out []model.CommissionPayout
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&out).Error
	return out, translate(err)
}
