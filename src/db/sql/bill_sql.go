package db

import (
	"context"
	"fmt"

	"fintrack-server/src/models"
)

const billColumns = `id, user_id, title, amount, due_date, category, is_paid, paid_at, created_at`

func scanBill(row rowScanner) (models.BillReminder, error) {
	var b models.BillReminder
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Amount, &b.DueDate.Time, &b.Category, &b.IsPaid, &b.PaidAt, &b.CreatedAt)
	b.DueDate = models.NewDate(b.DueDate.Time)
	return b, err
}

func (s *Store) CreateBill(ctx context.Context, bill *models.BillReminder) (*models.BillReminder, error) {
	b := *bill
	b.ID = newID()
	b.DueDate = models.NewDate(b.DueDate.Time)
	b.IsPaid = false
	b.PaidAt = nil
	b.CreatedAt = s.timestamp()
	query := `
		INSERT INTO bills (id, user_id, title, amount, due_date, category, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.c.exec(ctx, query, b.ID, b.UserID, b.Title, b.Amount, b.DueDate.Time, string(b.Category), b.IsPaid, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	return &b, nil
}

// ListBills returns the user's bills ordered by due date.
func (s *Store) ListBills(ctx context.Context, userID string) ([]models.BillReminder, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills WHERE user_id = $1
		ORDER BY due_date, created_at
	`
	rows, err := s.c.query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := []models.BillReminder{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (s *Store) MarkBillPaid(ctx context.Context, userID, billID string) (*models.BillReminder, error) {
	query := `UPDATE bills SET is_paid = $1, paid_at = $2 WHERE id = $3 AND user_id = $4`
	n, err := s.c.exec(ctx, query, true, s.timestamp(), billID, userID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	b, err := scanBill(s.c.queryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1 AND user_id = $2`, billID, userID))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) DeleteBill(ctx context.Context, userID, billID string) error {
	return s.deleteOwned(ctx, "bills", userID, billID)
}
