package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProfileType string

const (
	ProfileTypeClient     ProfileType = "client"
	ProfileTypeContractor ProfileType = "contractor"
)

type Profile struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	FirstName  string          `gorm:"size:128;not null" json:"firstName"`
	LastName   string          `gorm:"size:128;not null;default:''" json:"lastName"`
	Profession string          `gorm:"size:128;not null;default:''" json:"profession"`
	Type       ProfileType     `gorm:"type:varchar(16);not null" json:"type"`
	Balance    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (p Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

func (p Profile) IsClient() bool {
	return p.Type == ProfileTypeClient
}
