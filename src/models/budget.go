package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Category     Category        `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BudgetStatus is a budget evaluated against one month of expenses.
type BudgetStatus struct {
	Budget
	Month       string          `json:"month"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed decimal.Decimal `json:"percent_used"`
	OverBudget  bool            `json:"over_budget"`
}
