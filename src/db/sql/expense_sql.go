package db

import (
	"context"
	"fmt"

	"fintrack-server/src/models"
)

const expenseColumns = `id, user_id, amount, category, note, date, currency, receipt_text, created_at`

func scanExpense(row rowScanner) (models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Note, &e.Date.Time, &e.Currency, &e.ReceiptText, &e.CreatedAt)
	e.Date = models.NewDate(e.Date.Time)
	return e, err
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	e := *expense
	e.ID = newID()
	e.Date = models.NewDate(e.Date.Time)
	e.CreatedAt = s.timestamp()
	query := `
		INSERT INTO expenses (id, user_id, amount, category, note, date, currency, receipt_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.c.exec(ctx, query, e.ID, e.UserID, e.Amount, string(e.Category), e.Note, e.Date.Time, e.Currency, e.ReceiptText, e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return &e, nil
}

// ListExpenses returns the user's expenses, newest date first.
func (s *Store) ListExpenses(ctx context.Context, userID string, opts ListOptions) ([]models.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`
	rows, err := s.c.query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for !opts.full(len(expenses)) && rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		if opts.Range.Contains(e.Date.Time) {
			expenses = append(expenses, e)
		}
	}
	return expenses, rows.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	return s.deleteOwned(ctx, "expenses", userID, expenseID)
}
