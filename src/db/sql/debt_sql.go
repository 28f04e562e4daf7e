package db

import (
	"context"
	"fmt"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

const debtColumns = `id, user_id, creditor_name, total_amount, remaining_amount, interest_rate, minimum_payment, is_paid, created_at`

func scanDebt(row rowScanner) (models.Debt, error) {
	var d models.Debt
	err := row.Scan(&d.ID, &d.UserID, &d.CreditorName, &d.TotalAmount, &d.RemainingAmount, &d.InterestRate, &d.MinimumPayment, &d.IsPaid, &d.CreatedAt)
	return d, err
}

// CreateDebt stores a new debt with its remaining balance equal to the total.
func (s *Store) CreateDebt(ctx context.Context, debt *models.Debt) (*models.Debt, error) {
	d := *debt
	d.ID = newID()
	d.RemainingAmount = d.TotalAmount
	d.IsPaid = !d.TotalAmount.IsPositive()
	d.CreatedAt = s.timestamp()
	query := `
		INSERT INTO debts (id, user_id, creditor_name, total_amount, remaining_amount, interest_rate, minimum_payment, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.c.exec(ctx, query, d.ID, d.UserID, d.CreditorName, d.TotalAmount, d.RemainingAmount, d.InterestRate, d.MinimumPayment, d.IsPaid, d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create debt: %w", err)
	}
	return &d, nil
}

func (s *Store) ListDebts(ctx context.Context, userID string) ([]models.Debt, error) {
	query := `
		SELECT ` + debtColumns + `
		FROM debts WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := s.c.query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

func (s *Store) GetDebt(ctx context.Context, userID, debtID string) (*models.Debt, error) {
	d, err := scanDebt(s.c.queryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = $1 AND user_id = $2`, debtID, userID))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ApplyDebtPayment records a payment against the debt inside one transaction.
// It is the only writer of remaining_amount after creation.
func (s *Store) ApplyDebtPayment(ctx context.Context, userID, debtID string, payment decimal.Decimal) (*models.DebtPaymentResult, error) {
	var result models.DebtPaymentResult
	err := s.withTx(ctx, func(c conn) error {
		current, err := scanDebt(c.queryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = $1 AND user_id = $2`+s.forUpdate(), debtID, userID))
		if err != nil {
			return err
		}
		updated, overpaid, err := ledger.ApplyDebtPayment(current, payment)
		if err != nil {
			return err
		}
		_, err = c.exec(ctx, `UPDATE debts SET remaining_amount = $1, is_paid = $2 WHERE id = $3 AND user_id = $4`,
			updated.RemainingAmount, updated.IsPaid, debtID, userID)
		if err != nil {
			return err
		}
		result = models.DebtPaymentResult{Debt: updated, Overpaid: overpaid}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Store) DeleteDebt(ctx context.Context, userID, debtID string) error {
	return s.deleteOwned(ctx, "debts", userID, debtID)
}
