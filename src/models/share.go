package models

import "time"

// ShareGrant lets MemberEmail read the owner's expenses and income.
type ShareGrant struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MemberEmail string    `json:"member_email"`
	CreatedAt   time.Time `json:"created_at"`
}
