package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryRent          Category = "Rent"
	CategoryUtilities     Category = "Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryRent,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Category     Category         `json:"category"`
	Note         string           `json:"note"`
	Date         Date             `json:"date"`
	Currency     string           `json:"currency"`
	ReceiptText  string           `json:"receipt_text,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	AmountInBase *decimal.Decimal `json:"amount_in_base,omitempty"`
}
