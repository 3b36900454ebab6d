package model

import (
	"time"

	"gorm.io/gorm"
)

// AgentBuyerAssociation is a broker's claim on a buyer for a property. A
// temporary association has a nil BuyerID until a buyer with the same name
// and identification number registers.
type AgentBuyerAssociation struct {
	gorm.Model
	BuyerID                       *uint      `json:"buyer_id" gorm:"index"`
	BrokerID                      uint       `json:"broker_id" gorm:"index;not null"`
	PropertyID                    uint       `json:"property_id" gorm:"index;not null"`
	Accepted                      *bool      `json:"accepted"`
	LockUntil                     *time.Time `json:"lock_until"`
	TempBuyerName                 string     `json:"temp_buyer_name,omitempty" gorm:"index:idx_temp_buyer"`
	TempBuyerIdentificationNumber string     `json:"temp_buyer_identification_number,omitempty" gorm:"index:idx_temp_buyer"`
}

func (a *AgentBuyerAssociation) IsTemporary() bool {
	return a.TempBuyerName != "" || a.TempBuyerIdentificationNumber != ""
}

func (a *AgentBuyerAssociation) Resolved() bool {
	return a.BuyerID != nil
}
