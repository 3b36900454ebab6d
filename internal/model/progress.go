package model

import "time"

// Milestone labels cover the wider deal process, including steps that happen
// before a transaction has a deposit.
type Milestone string

const (
	MilestoneInquiry              Milestone = "INQUIRY"
	MilestoneAppointmentScheduled Milestone = "APPOINTMENT_SCHEDULED"
	MilestoneAppointmentCompleted Milestone = "APPOINTMENT_COMPLETED"
	MilestoneDocumentCheck        Milestone = "DOCUMENT_CHECK"
	MilestonePreDeposit           Milestone = "PRE_DEPOSIT"
	MilestoneContractSigning      Milestone = "CONTRACT_SIGNING"
	MilestoneCompleted            Milestone = "COMPLETED"
)

var milestones = map[Milestone]bool{
	MilestoneInquiry:              true,
	MilestoneAppointmentScheduled: true,
	MilestoneAppointmentCompleted: true,
	MilestoneDocumentCheck:        true,
	MilestonePreDeposit:           true,
	MilestoneContractSigning:      true,
	MilestoneCompleted:            true,
}

func (m Milestone) Valid() bool {
	return milestones[m]
}

// TransactionProgress is append-only; it has no update or delete path.
type TransactionProgress struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	TransactionID uint      `json:"transaction_id" gorm:"index;not null"`
	Status        Milestone `json:"status" gorm:"size:50;not null"`
	Comment       string    `json:"comment" gorm:"type:text"`
	AuthorID      uint      `json:"created_by"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}

func (TransactionProgress) TableName() string {
	return "transaction_progress"
}
