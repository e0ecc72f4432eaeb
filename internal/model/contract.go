package model

import "time"

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

type Contract struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	Terms        string         `gorm:"type:text;not null;default:''" json:"terms"`
	Status       ContractStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	ClientID     int64          `gorm:"not null;index" json:"clientId"`
	ContractorID int64          `gorm:"not null;index" json:"contractorId"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// HasParty reports whether the profile is the client or the contractor of the contract.
func (c Contract) HasParty(profileID int64) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}

func (c Contract) IsActive() bool {
	return c.Status == ContractStatusInProgress
}
