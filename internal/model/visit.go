package model

import (
	"time"

	"gorm.io/gorm"
)

type VisitStatus string

const (
	VisitPending           VisitStatus = "PENDING"
	VisitApproved          VisitStatus = "APPROVED"
	VisitRejected          VisitStatus = "REJECTED"
	VisitCancelledByBuyer  VisitStatus = "CANCELLED_BY_BUYER"
	VisitCancelledBySeller VisitStatus = "CANCELLED_BY_SELLER"
)

func (s VisitStatus) Cancelled() bool {
	return s == VisitCancelledByBuyer || s == VisitCancelledBySeller
}

type VisitAvailability struct {
	gorm.Model
	PropertyID    uint      `json:"property_id" gorm:"index;not null"`
	AvailableDate time.Time `json:"available_date" gorm:"not null"`
}

// VisitRequest is a buyer's request to see a property. HandlerID is the
// seller's user when the seller handles visits; otherwise the request is
// delegated to administrators.
type VisitRequest struct {
	gorm.Model
	PropertyID         uint        `json:"property_id" gorm:"index;not null"`
	BuyerID            uint        `json:"buyer_id" gorm:"index;not null"`
	HandlerID          *uint       `json:"handler_id"`
	ScheduledDate      time.Time   `json:"scheduled_date" gorm:"index;not null"`
	Status             VisitStatus `json:"status" gorm:"not null;default:'PENDING'"`
	CancellationReason string      `json:"cancellation_reason" gorm:"type:text"`
	Delegated          bool        `json:"delegated" gorm:"default:false"`
	BuyerNotes         string      `json:"buyer_notes" gorm:"type:text"`
	SellerNotes        string      `json:"seller_notes" gorm:"type:text"`
}
