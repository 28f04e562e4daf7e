package db

import (
	"context"
	"fmt"

	"fintrack-server/src/models"
)

const budgetColumns = `id, user_id, category, monthly_limit, created_at, updated_at`

func scanBudget(row rowScanner) (models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.MonthlyLimit, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// UpsertBudget sets the monthly limit for the user's category, creating the
// budget when the category has none yet.
func (s *Store) UpsertBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	now := s.timestamp()
	query := `
		INSERT INTO budgets (id, user_id, category, monthly_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, category)
		DO UPDATE SET monthly_limit = excluded.monthly_limit, updated_at = excluded.updated_at
	`
	_, err := s.c.exec(ctx, query, newID(), budget.UserID, string(budget.Category), budget.MonthlyLimit, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert budget: %w", err)
	}
	b, err := scanBudget(s.c.queryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 AND category = $2`,
		budget.UserID, string(budget.Category)))
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets WHERE user_id = $1
		ORDER BY category
	`
	rows, err := s.c.query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *Store) DeleteBudget(ctx context.Context, userID string, category models.Category) error {
	n, err := s.c.exec(ctx, `DELETE FROM budgets WHERE user_id = $1 AND category = $2`, userID, string(category))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
