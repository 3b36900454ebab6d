package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Property carries only what the deal workflow reads and writes; listing
// attributes live with the listings service.
type Property struct {
	gorm.Model
	SellerID   uint            `json:"seller_id" gorm:"index;not null"`
	Title      string          `json:"title" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	IsReserved bool            `json:"is_reserved" gorm:"default:false"`
	IsSold     bool            `json:"is_sold" gorm:"default:false"`
	BrokerID   *uint           `json:"broker_id"`
}

// PropertyMark is the flag a transaction transition sets on its property.
type PropertyMark int

const (
	MarkNone PropertyMark = iota
	MarkReserved
	MarkSold
)
