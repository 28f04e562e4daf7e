package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Debt struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CreditorName    string          `json:"creditor_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	MinimumPayment  decimal.Decimal `json:"minimum_payment"`
	IsPaid          bool            `json:"is_paid"`
	CreatedAt       time.Time       `json:"created_at"`
}

type DebtPaymentResult struct {
	Debt     Debt            `json:"debt"`
	Overpaid decimal.Decimal `json:"overpaid"`
}
