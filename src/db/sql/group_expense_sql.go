package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fintrack-server/src/models"
)

const groupExpenseColumns = `id, user_id, description, total_amount, split_type, members, created_at`

func scanGroupExpense(row rowScanner) (models.GroupExpense, error) {
	var g models.GroupExpense
	var members []byte
	if err := row.Scan(&g.ID, &g.UserID, &g.Description, &g.TotalAmount, &g.SplitType, &members, &g.CreatedAt); err != nil {
		return g, err
	}
	if err := json.Unmarshal(members, &g.Members); err != nil {
		return g, fmt.Errorf("failed to decode members of group expense %s: %w", g.ID, err)
	}
	return g, nil
}

// CreateGroupExpense stores a group expense whose member shares are already split.
func (s *Store) CreateGroupExpense(ctx context.Context, expense *models.GroupExpense) (*models.GroupExpense, error) {
	g := *expense
	g.ID = newID()
	g.CreatedAt = s.timestamp()
	members, err := json.Marshal(g.Members)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO group_expenses (id, user_id, description, total_amount, split_type, members, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.c.exec(ctx, query, g.ID, g.UserID, g.Description, g.TotalAmount, string(g.SplitType), members, g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group expense: %w", err)
	}
	return &g, nil
}

func (s *Store) ListGroupExpenses(ctx context.Context, userID string) ([]models.GroupExpense, error) {
	query := `
		SELECT ` + groupExpenseColumns + `
		FROM group_expenses WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.c.query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []models.GroupExpense{}
	for rows.Next() {
		g, err := scanGroupExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, g)
	}
	return expenses, rows.Err()
}

// SetGroupMemberPaid flags one member's share as settled.
func (s *Store) SetGroupMemberPaid(ctx context.Context, userID, groupID, email string, paid bool) (*models.GroupExpense, error) {
	var updated models.GroupExpense
	err := s.withTx(ctx, func(c conn) error {
		g, err := scanGroupExpense(c.queryRow(ctx,
			`SELECT `+groupExpenseColumns+` FROM group_expenses WHERE id = $1 AND user_id = $2`+s.forUpdate(), groupID, userID))
		if err != nil {
			return err
		}
		found := false
		for i := range g.Members {
			if strings.EqualFold(g.Members[i].Email, email) {
				g.Members[i].Paid = paid
				found = true
			}
		}
		if !found {
			return ErrNotFound
		}
		members, err := json.Marshal(g.Members)
		if err != nil {
			return err
		}
		if _, err := c.exec(ctx, `UPDATE group_expenses SET members = $1 WHERE id = $2 AND user_id = $3`, members, groupID, userID); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteGroupExpense(ctx context.Context, userID, groupID string) error {
	return s.deleteOwned(ctx, "group_expenses", userID, groupID)
}
