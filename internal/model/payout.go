package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PayoutStatus string

const (
	PayoutSent   PayoutStatus = "SENT"
	PayoutFailed PayoutStatus = "FAILED"
)

// CommissionPayout records the commission sent to a broker when a
// transaction is finalized. One row per transaction.
type CommissionPayout struct {
	gorm.Model
	TransactionID uint              `json:"transaction_id" gorm:"uniqueIndex;not null"`
	BrokerID      uint              `json:"broker_id" gorm:"index;not null"`
	PayoutAccount string            `json:"-"`
	Amount        decimal.Decimal   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status        PayoutStatus      `json:"status" gorm:"index;not null"`
	ExternalRef   string            `json:"external_ref"`
	Attempts      int               `json:"attempts" gorm:"default:0"`
	LastError     string            `json:"last_error"`
	Details       datatypes.JSONMap `json:"details"`
}
