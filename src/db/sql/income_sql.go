package db

import (
	"context"
	"fmt"

	"fintrack-server/src/models"
)

const incomeColumns = `id, user_id, amount, source, date, currency, created_at`

func scanIncome(row rowScanner) (models.Income, error) {
	var i models.Income
	err := row.Scan(&i.ID, &i.UserID, &i.Amount, &i.Source, &i.Date.Time, &i.Currency, &i.CreatedAt)
	i.Date = models.NewDate(i.Date.Time)
	return i, err
}

func (s *Store) CreateIncome(ctx context.Context, income *models.Income) (*models.Income, error) {
	i := *income
	i.ID = newID()
	i.Date = models.NewDate(i.Date.Time)
	i.CreatedAt = s.timestamp()
	query := `
		INSERT INTO incomes (id, user_id, amount, source, date, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.c.exec(ctx, query, i.ID, i.UserID, i.Amount, string(i.Source), i.Date.Time, i.Currency, i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create income: %w", err)
	}
	return &i, nil
}

// ListIncome returns the user's income entries, newest date first.
func (s *Store) ListIncome(ctx context.Context, userID string, opts ListOptions) ([]models.Income, error) {
	query := `
		SELECT ` + incomeColumns + `
		FROM incomes WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`
	rows, err := s.c.query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := []models.Income{}
	for !opts.full(len(incomes)) && rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		if opts.Range.Contains(i.Date.Time) {
			incomes = append(incomes, i)
		}
	}
	return incomes, rows.Err()
}

func (s *Store) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	return s.deleteOwned(ctx, "incomes", userID, incomeID)
}
