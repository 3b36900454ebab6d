package model

import (
	"time"

	"gorm.io/gorm"
)

// Lead is a broker's recorded contact with a buyer about a property.
// OTPCode is set once at creation and never serialized.
type Lead struct {
	gorm.Model
	BrokerID    uint       `json:"broker_id" gorm:"index;not null"`
	BuyerID     uint       `json:"buyer_id" gorm:"index:idx_lead_pair;not null"`
	PropertyID  uint       `json:"property_id" gorm:"index:idx_lead_pair;not null"`
	Interested  *bool      `json:"interested"`
	LockedUntil *time.Time `json:"locked_until"`
	OTPCode     *string    `json:"-" gorm:"size:10"`
	OTPVerified bool       `json:"otp_verified" gorm:"default:false"`
}

type LeadState string

const (
	LeadUncontacted           LeadState = "UNCONTACTED"
	LeadOTPIssued             LeadState = "OTP_ISSUED"
	LeadVerifiedInterested    LeadState = "VERIFIED_INTERESTED"
	LeadVerifiedNotInterested LeadState = "VERIFIED_NOT_INTERESTED"
)

// State derives the qualification state from the stored fields.
func (l *Lead) State() LeadState {
	switch {
	case l.Interested != nil && *l.Interested:
		return LeadVerifiedInterested
	case l.Interested != nil:
		return LeadVerifiedNotInterested
	case l.OTPCode != nil:
		return LeadOTPIssued
	default:
		return LeadUncontacted
	}
}
