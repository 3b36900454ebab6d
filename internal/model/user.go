package model

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null"`
}

// Seller owns listed properties.
type Seller struct {
	gorm.Model
	UserID       uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	HandleVisits bool   `json:"handle_visits"`
}

type Buyer struct {
	gorm.Model
	UserID               *uint  `json:"user_id" gorm:"uniqueIndex"`
	Name                 string `json:"name" gorm:"not null;index:idx_buyer_identity"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	IdentificationNumber string `json:"identification_number" gorm:"index:idx_buyer_identity"`
	BrokerID             *uint  `json:"broker_id"`
}

// Broker is a real-estate agent. PayoutAccount identifies where commission is
// sent (a Stripe connected account when Stripe payouts are enabled).
type Broker struct {
	gorm.Model
	UserID         uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	Name           string          `json:"name" gorm:"not null"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	IsVerified     bool            `json:"is_verified" gorm:"default:false"`
	PayoutAccount  string          `json:"-"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"type:decimal(5,2);default:2.5"`
}

func (b *Broker) HasPayoutAccount() bool {
	return strings.TrimSpace(b.PayoutAccount) != ""
}
