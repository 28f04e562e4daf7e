package db

import (
	"context"
	"fmt"
	"strings"

	"fintrack-server/src/models"
)

const userColumns = `id, name, email, password_hash, gemini_api_key, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.GeminiAPIKey, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.HasGeminiKey = u.GeminiAPIKey != ""
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, req models.RegisterRequest, hashedPassword []byte) (*models.User, error) {
	u := models.User{
		ID:           newID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashedPassword,
		CreatedAt:    s.timestamp(),
	}
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.c.exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.c.queryRow(ctx, query, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.c.queryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (s *Store) UpdateUserProfile(ctx context.Context, userID, name, email string) error {
	query := `UPDATE users SET name = $1, email = $2 WHERE id = $3`
	n, err := s.c.exec(ctx, query, strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)), userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID string, hashedPassword []byte) error {
	n, err := s.c.exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hashedPassword, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, userID, key string) error {
	n, err := s.c.exec(ctx, `UPDATE users SET gemini_api_key = $1 WHERE id = $2`, strings.TrimSpace(key), userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetGeminiAPIKey returns the stored key, or "" when none is saved.
func (s *Store) GetGeminiAPIKey(ctx context.Context, userID string) (string, error) {
	var key string
	err := s.c.queryRow(ctx, `SELECT gemini_api_key FROM users WHERE id = $1`, userID).Scan(&key)
	if err != nil {
		return "", err
	}
	return key, nil
}

// DeleteUser removes the user together with every record they own and any
// share grants naming them.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	return s.withTx(ctx, func(c conn) error {
		var email string
		if err := c.queryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
			return err
		}
		for _, table := range []string{"expenses", "incomes", "budgets", "bills", "debts", "goals", "group_expenses", "shares"} {
			if _, err := c.exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
				return fmt.Errorf("failed to delete %s: %w", table, err)
			}
		}
		if _, err := c.exec(ctx, `DELETE FROM shares WHERE member_email = $1`, email); err != nil {
			return fmt.Errorf("failed to delete incoming shares: %w", err)
		}
		if _, err := c.exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
