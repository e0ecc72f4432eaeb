package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProfessionEarnings struct {
	Profession string          `json:"profession"`
	Total      decimal.Decimal `json:"total"`
}

type ClientSpending struct {
	ID       int64           `json:"id"`
	FullName string          `json:"fullName"`
	Paid     decimal.Decimal `json:"paid"`
}

type AdminReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Professions []ProfessionEarnings
	Clients     []ClientSpending
}

type JobReceipt struct {
	Settlement JobSettlement
	IssuedAt   time.Time
}
