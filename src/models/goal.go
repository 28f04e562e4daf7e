package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FinancialGoal struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	TargetDate    Date            `json:"target_date"`
	Category      string          `json:"category"`
	IsAchieved    bool            `json:"is_achieved"`
	CreatedAt     time.Time       `json:"created_at"`
}
