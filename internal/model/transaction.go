package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionStatus string

const (
	TransactionPreDeposit  TransactionStatus = "PRE_DEPOSIT"
	TransactionDepositPaid TransactionStatus = "DEPOSIT_PAID"
	TransactionFinalized   TransactionStatus = "FINALIZED"
	TransactionCancelled   TransactionStatus = "CANCELLED"
)

// Transaction drives one property sale. At most one non-cancelled row exists
// per (property, buyer); the partial unique index enforces it.
type Transaction struct {
	gorm.Model
	PropertyID       uint                `json:"property_id" gorm:"not null;uniqueIndex:idx_active_transaction,where:status <> 'CANCELLED'"`
	BuyerID          uint                `json:"buyer_id" gorm:"not null;uniqueIndex:idx_active_transaction,where:status <> 'CANCELLED'"`
	BrokerID         *uint               `json:"broker_id" gorm:"index"`
	Status           TransactionStatus   `json:"status" gorm:"not null;default:'PRE_DEPOSIT'"`
	DepositAmount    decimal.NullDecimal `json:"deposit_amount" gorm:"type:decimal(12,2)"`
	DepositPaid      bool                `json:"deposit_paid" gorm:"default:false"`
	ContractDocument string              `json:"contract_document,omitempty"`
	PaymentProof     string              `json:"payment_proof,omitempty"`
}

func (t *Transaction) Active() bool {
	return t.Status != TransactionCancelled
}

func (t *Transaction) HasBroker() bool {
	return t.BrokerID != nil && *t.BrokerID != 0
}
