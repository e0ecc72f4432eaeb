package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Job struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	Description string          `gorm:"type:text;not null;default:''" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Paid        bool            `gorm:"not null;default:false" json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	ContractID  int64           `gorm:"not null;index" json:"contractId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// JobSettlement is a job read together with its contract and both parties.
type JobSettlement struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}
