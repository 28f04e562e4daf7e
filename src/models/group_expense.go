package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SplitType string

const (
	SplitEqual  SplitType = "equal"
	SplitCustom SplitType = "custom"
)

type GroupMember struct {
	Email string          `json:"email"`
	Share decimal.Decimal `json:"share"`
	Paid  bool            `json:"paid"`
}

type GroupExpense struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SplitType   SplitType       `json:"split_type"`
	Members     []GroupMember   `json:"members"`
	CreatedAt   time.Time       `json:"created_at"`
}
