package model

import "time"

const OTPLength = 6

// OTPRecord is a standalone one-time code issued for a buyer. Verification
// consumes the newest unverified record matching the presented code.
type OTPRecord struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	BuyerID    uint      `json:"buyer_id" gorm:"index:idx_otp_lookup;not null"`
	Code       string    `json:"-" gorm:"size:6;index:idx_otp_lookup;not null"`
	CreatedAt  time.Time `json:"created_at"`
	IsVerified bool      `json:"is_verified" gorm:"default:false"`
}
