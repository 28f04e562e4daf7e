package ledger

import (
	"fmt"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

// BudgetStatuses evaluates each budget against expenses dated in month's calendar month.
func BudgetStatuses(budgets []models.Budget, expenses []models.Expense, month time.Time) []models.BudgetStatus {
	y, m, _ := month.Date()
	spent := make(map[models.Category]decimal.Decimal)
	for _, e := range expenses {
		ey, em, _ := e.Date.Date()
		if ey == y && em == m {
			spent[e.Category] = spent[e.Category].Add(e.Amount)
		}
	}

	label := fmt.Sprintf("%04d-%02d", y, int(m))
	out := make([]models.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		out = append(out, models.BudgetStatus{
			Budget:      b,
			Month:       label,
			Spent:       s,
			Remaining:   b.MonthlyLimit.Sub(s),
			PercentUsed: percent(s, b.MonthlyLimit),
			OverBudget:  s.GreaterThan(b.MonthlyLimit),
		})
	}
	return out
}

// BudgetSummaryLines renders one "Category: spent/limit (pct%)" line per status.
func BudgetSummaryLines(statuses []models.BudgetStatus) []string {
	lines := make([]string, 0, len(statuses))
	for _, s := range statuses {
		lines = append(lines, fmt.Sprintf("%s: %s/%s (%s%%)",
			s.Category, s.Spent.StringFixed(2), s.MonthlyLimit.StringFixed(2), s.PercentUsed.StringFixed(1)))
	}
	return lines
}
