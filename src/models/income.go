package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceSalary     Source = "Salary"
	SourceBusiness   Source = "Business"
	SourceInvestment Source = "Investment"
	SourceOther      Source = "Other"
)

var Sources = []Source{SourceSalary, SourceBusiness, SourceInvestment, SourceOther}

func (s Source) Valid() bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

type Income struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Source       Source           `json:"source"`
	Date         Date             `json:"date"`
	Currency     string           `json:"currency"`
	CreatedAt    time.Time        `json:"created_at"`
	AmountInBase *decimal.Decimal `json:"amount_in_base,omitempty"`
}
