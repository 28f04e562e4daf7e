package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillReminder struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   Date            `json:"due_date"`
	Category  Category        `json:"category"`
	IsPaid    bool            `json:"is_paid"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
