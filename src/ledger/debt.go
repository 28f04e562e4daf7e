package ledger

import (
	"errors"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePayment      = errors.New("payment must be greater than zero")
	ErrNonPositiveContribution = errors.New("contribution must be greater than zero")
	ErrDebtAlreadyPaid         = errors.New("debt is already paid off")
)

// ApplyDebtPayment subtracts payment from the remaining balance. A balance at or
// below zero marks the debt paid and is stored as zero; the excess is returned.
func ApplyDebtPayment(d models.Debt, payment decimal.Decimal) (models.Debt, decimal.Decimal, error) {
	if !payment.IsPositive() {
		return d, decimal.Zero, ErrNonPositivePayment
	}
	if d.IsPaid {
		return d, decimal.Zero, ErrDebtAlreadyPaid
	}
	remaining := d.RemainingAmount.Sub(payment)
	overpaid := decimal.Zero
	if !remaining.IsPositive() {
		overpaid = remaining.Neg()
		remaining = decimal.Zero
		d.IsPaid = true
	}
	d.RemainingAmount = remaining
	return d, overpaid, nil
}

// DebtPaidPercent is the share of the original total already repaid.
func DebtPaidPercent(total, remaining decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	paid := total.Sub(clampZero(remaining))
	return percent(paid, total)
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}
