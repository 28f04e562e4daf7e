package db

import (
	"context"
	"fmt"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

const goalColumns = `id, user_id, title, target_amount, current_amount, target_date, category, is_achieved, created_at`

func scanGoal(row rowScanner) (models.FinancialGoal, error) {
	var g models.FinancialGoal
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate.Time, &g.Category, &g.IsAchieved, &g.CreatedAt)
	g.TargetDate = models.NewDate(g.TargetDate.Time)
	return g, err
}

// CreateGoal stores a new goal. Savings start at zero and only grow through contributions.
func (s *Store) CreateGoal(ctx context.Context, goal *models.FinancialGoal) (*models.FinancialGoal, error) {
	g := *goal
	g.ID = newID()
	g.CurrentAmount = decimal.Zero
	g.IsAchieved = false
	g.TargetDate = models.NewDate(g.TargetDate.Time)
	g.CreatedAt = s.timestamp()
	query := `
		INSERT INTO goals (id, user_id, title, target_amount, current_amount, target_date, category, is_achieved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.c.exec(ctx, query, g.ID, g.UserID, g.Title, g.TargetAmount, g.CurrentAmount, g.TargetDate.Time, g.Category, g.IsAchieved, g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return &g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]models.FinancialGoal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals WHERE user_id = $1
		ORDER BY target_date, created_at
	`
	rows, err := s.c.query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.FinancialGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) GetGoal(ctx context.Context, userID, goalID string) (*models.FinancialGoal, error) {
	g, err := scanGoal(s.c.queryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID))
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ContributeToGoal adds to the goal's savings inside one transaction.
func (s *Store) ContributeToGoal(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*models.FinancialGoal, error) {
	var updated models.FinancialGoal
	err := s.withTx(ctx, func(c conn) error {
		current, err := scanGoal(c.queryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`+s.forUpdate(), goalID, userID))
		if err != nil {
			return err
		}
		updated, err = ledger.ContributeToGoal(current, amount)
		if err != nil {
			return err
		}
		_, err = c.exec(ctx, `UPDATE goals SET current_amount = $1, is_achieved = $2 WHERE id = $3 AND user_id = $4`,
			updated.CurrentAmount, updated.IsAchieved, goalID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, goalID string) error {
	return s.deleteOwned(ctx, "goals", userID, goalID)
}
