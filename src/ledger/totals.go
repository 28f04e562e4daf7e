package ledger

import (
	"sort"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

func SumExpenses(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

func SumIncome(incomes []models.Income) decimal.Decimal {
	total := decimal.Zero
	for _, i := range incomes {
		total = total.Add(i.Amount)
	}
	return total
}

// CategoryTotals sums expenses per category, largest first; ties sort by name.
func CategoryTotals(expenses []models.Expense) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := string(e.Category)
		sums[key] = sums[key].Add(e.Amount)
	}
	out := make([]CategoryTotal, 0, len(sums))
	for c, t := range sums {
		out = append(out, CategoryTotal{Category: c, Total: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Total.Cmp(out[j].Total); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyTotals sums expenses per calendar month in chronological order.
func MonthlyTotals(expenses []models.Expense) []MonthTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := e.Date.Format("2006-01")
		sums[key] = sums[key].Add(e.Amount)
	}
	out := make([]MonthTotal, 0, len(sums))
	for m, t := range sums {
		out = append(out, MonthTotal{Month: m, Total: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
