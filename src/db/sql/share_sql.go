package db

import (
	"context"
	"fmt"
	"strings"

	"fintrack-server/src/models"
)

func scanShare(row rowScanner) (models.ShareGrant, error) {
	var g models.ShareGrant
	err := row.Scan(&g.ID, &g.UserID, &g.MemberEmail, &g.CreatedAt)
	return g, err
}

func (s *Store) CreateShare(ctx context.Context, userID, memberEmail string) (*models.ShareGrant, error) {
	g := models.ShareGrant{
		ID:          newID(),
		UserID:      userID,
		MemberEmail: strings.ToLower(strings.TrimSpace(memberEmail)),
		CreatedAt:   s.timestamp(),
	}
	query := `
		INSERT INTO shares (id, user_id, member_email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.c.exec(ctx, query, g.ID, g.UserID, g.MemberEmail, g.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}
	return &g, nil
}

// ListShares returns the grants the user has given out.
func (s *Store) ListShares(ctx context.Context, userID string) ([]models.ShareGrant, error) {
	return s.listShares(ctx, `SELECT id, user_id, member_email, created_at FROM shares WHERE user_id = $1 ORDER BY member_email`, userID)
}

// ListSharesForMember returns the grants other users have given to email.
func (s *Store) ListSharesForMember(ctx context.Context, email string) ([]models.ShareGrant, error) {
	return s.listShares(ctx, `SELECT id, user_id, member_email, created_at FROM shares WHERE member_email = $1 ORDER BY created_at`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) listShares(ctx context.Context, query, arg string) ([]models.ShareGrant, error) {
	rows, err := s.c.query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := []models.ShareGrant{}
	for rows.Next() {
		g, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (s *Store) HasShare(ctx context.Context, ownerID, memberEmail string) (bool, error) {
	var n int
	err := s.c.queryRow(ctx, `SELECT COUNT(*) FROM shares WHERE user_id = $1 AND member_email = $2`,
		ownerID, strings.ToLower(strings.TrimSpace(memberEmail))).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteShare(ctx context.Context, userID, memberEmail string) error {
	n, err := s.c.exec(ctx, `DELETE FROM shares WHERE user_id = $1 AND member_email = $2`,
		userID, strings.ToLower(strings.TrimSpace(memberEmail)))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
