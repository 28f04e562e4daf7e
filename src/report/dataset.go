package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	store "fintrack-server/src/db/sql"
	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

// Source is the slice of the ledger store reports read from.
type Source interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListExpenses(ctx context.Context, userID string, opts store.ListOptions) ([]models.Expense, error)
	ListIncome(ctx context.Context, userID string, opts store.ListOptions) ([]models.Income, error)
}

// Dataset is one user's ledger restricted to a date range, newest first.
type Dataset struct {
	UserName     string
	Range        ledger.DateRange
	Expenses     []models.Expense
	Incomes      []models.Income
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
	GeneratedAt  time.Time
}

func NewDataset(name string, rng ledger.DateRange, expenses []models.Expense, incomes []models.Income, now time.Time) *Dataset {
	d := &Dataset{
		UserName:    name,
		Range:       rng,
		Expenses:    ledger.FilterExpenses(expenses, rng),
		Incomes:     ledger.FilterIncome(incomes, rng),
		GeneratedAt: now.UTC(),
	}
	d.TotalIncome = ledger.SumIncome(d.Incomes)
	d.TotalExpense = ledger.SumExpenses(d.Expenses)
	d.Balance = d.TotalIncome.Sub(d.TotalExpense)
	return d
}

// FormatAmount renders d with two decimals and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

// InsightPrompt is the narrative request sent for a report covering rng.
func InsightPrompt(rng ledger.DateRange) string {
	start, end := "the beginning", "now"
	if rng.Start != nil {
		start = rng.Start.String()
	}
	if rng.End != nil {
		end = rng.End.String()
	}
	return fmt.Sprintf("Summarize my spending between %s and %s and give the top 5 recommendations to improve my finances.", start, end)
}

// Load reads the user's full ledger and restricts it to rng. Store failures are returned as is.
func (g *Generator) Load(ctx context.Context, userID string, rng ledger.DateRange) (*Dataset, error) {
	user, err := g.src.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	expenses, err := g.src.ListExpenses(ctx, userID, store.ListOptions{Range: rng})
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	incomes, err := g.src.ListIncome(ctx, userID, store.ListOptions{Range: rng})
	if err != nil {
		return nil, fmt.Errorf("load income: %w", err)
	}
	return NewDataset(user.Name, rng, expenses, incomes, g.now()), nil
}
