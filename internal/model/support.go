package model

import (
	"time"

	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketOpen   TicketStatus = "OPEN"
	TicketClosed TicketStatus = "CLOSED"
)

// SupportTicket is opened by a buyer or seller and answered by administrators.
// PropertyID ties it to a listing when the question is about one.
type SupportTicket struct {
	gorm.Model
	OpenedBy    uint         `json:"opened_by" gorm:"index;not null"`
	OpenerRole  Role         `json:"opener_role" gorm:"size:20;not null"`
	PropertyID  *uint        `json:"property_id" gorm:"index"`
	Subject     string       `json:"subject" gorm:"size:255;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Status      TicketStatus `json:"status" gorm:"size:20;not null;default:'OPEN'"`
}

type SupportMessage struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	TicketID  uint      `json:"ticket_id" gorm:"index;not null"`
	SenderID  uint      `json:"sender_id" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}
