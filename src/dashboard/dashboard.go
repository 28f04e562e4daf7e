package dashboard

import (
	"fmt"
	"strings"
	"time"

	"fintrack-server/src/ledger"
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

type Period string

const (
	Today Period = "today"
	Month Period = "month"
	Year  Period = "year"
	Life  Period = "life"
)

var lowSavingsRate = decimal.NewFromInt(20)

// ParsePeriod defaults to the monthly view.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Month, nil
	case Today, Month, Year, Life:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Range is the date window the period covers as of now.
func (p Period) Range(now time.Time) ledger.DateRange {
	today := models.NewDate(now)
	switch p {
	case Today:
		return ledger.NewDateRange(&today, &today)
	case Month:
		start := models.NewDate(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC))
		return ledger.DateRange{Start: &start}
	case Year:
		start := models.NewDate(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
		return ledger.DateRange{Start: &start}
	default:
		return ledger.DateRange{}
	}
}

type Summary struct {
	Period       Period                 `json:"period"`
	TotalIncome  decimal.Decimal        `json:"total_income"`
	TotalExpense decimal.Decimal        `json:"total_expense"`
	Balance      decimal.Decimal        `json:"balance"`
	SavingsRate  *decimal.Decimal       `json:"savings_rate,omitempty"`
	LowSavings   bool                   `json:"low_savings"`
	Categories   []ledger.CategoryTotal `json:"categories"`
	Trend        []ledger.MonthTotal    `json:"trend"`
}

type Health struct {
	BillsDue         int                  `json:"bills_due"`
	BillsDueTotal    decimal.Decimal      `json:"bills_due_total"`
	BillsPaid        int                  `json:"bills_paid"`
	NextBill         *models.BillReminder `json:"next_bill,omitempty"`
	DebtRemaining    decimal.Decimal      `json:"debt_remaining"`
	DebtPaidPercent  decimal.Decimal      `json:"debt_paid_percent"`
	GoalsActive      int                  `json:"goals_active"`
	GoalsAchieved    int                  `json:"goals_achieved"`
	GoalsProgress    decimal.Decimal      `json:"goals_progress"`
	Assets           decimal.Decimal      `json:"assets"`
	NetWorth         decimal.Decimal      `json:"net_worth"`
	ThisMonthBalance decimal.Decimal      `json:"this_month_balance"`
}

type Dashboard struct {
	Summary Summary `json:"summary"`
	Health  Health  `json:"health"`
}

// Ledger is a user's complete history.
type Ledger struct {
	Expenses []models.Expense
	Incomes  []models.Income
	Bills    []models.BillReminder
	Debts    []models.Debt
	Goals    []models.FinancialGoal
}

func Build(p Period, l Ledger, now time.Time) Dashboard {
	return Dashboard{
		Summary: Summarize(p, l.Expenses, l.Incomes, now),
		Health:  BuildHealth(l, now),
	}
}

// Summarize totals the records that fall inside the period.
func Summarize(p Period, expenses []models.Expense, incomes []models.Income, now time.Time) Summary {
	rng := p.Range(now)
	expenses = ledger.FilterExpenses(expenses, rng)
	incomes = ledger.FilterIncome(incomes, rng)

	s := Summary{
		Period:       p,
		TotalIncome:  ledger.SumIncome(incomes),
		TotalExpense: ledger.SumExpenses(expenses),
		Categories:   ledger.CategoryTotals(expenses),
		Trend:        []ledger.MonthTotal{},
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	if s.TotalIncome.IsPositive() {
		rate := s.Balance.Div(s.TotalIncome).Mul(decimal.NewFromInt(100)).Round(2)
		s.SavingsRate = &rate
		s.LowSavings = rate.LessThan(lowSavingsRate)
	}
	if p != Today {
		s.Trend = ledger.MonthlyTotals(expenses)
	}
	return s
}

func BuildHealth(l Ledger, now time.Time) Health {
	var h Health
	for i, b := range l.Bills {
		if b.IsPaid {
			h.BillsPaid++
			continue
		}
		h.BillsDue++
		h.BillsDueTotal = h.BillsDueTotal.Add(b.Amount)
		if h.NextBill == nil || b.DueDate.Before(h.NextBill.DueDate.Time) {
			h.NextBill = &l.Bills[i]
		}
	}

	debtTotal := decimal.Zero
	for _, d := range l.Debts {
		debtTotal = debtTotal.Add(d.TotalAmount)
		h.DebtRemaining = h.DebtRemaining.Add(d.RemainingAmount)
	}
	h.DebtPaidPercent = ledger.DebtPaidPercent(debtTotal, h.DebtRemaining)

	saved, target := decimal.Zero, decimal.Zero
	for _, g := range l.Goals {
		if g.IsAchieved {
			h.GoalsAchieved++
		} else {
			h.GoalsActive++
		}
		saved = saved.Add(ledger.GoalProgress(g).Mul(g.TargetAmount))
		target = target.Add(g.TargetAmount)
	}
	if target.IsPositive() {
		h.GoalsProgress = saved.Div(target).Round(2)
	}

	h.Assets = ledger.SumIncome(l.Incomes).Sub(ledger.SumExpenses(l.Expenses))
	h.NetWorth = h.Assets.Sub(h.DebtRemaining)

	month := Summarize(Month, l.Expenses, l.Incomes, now)
	h.ThisMonthBalance = month.Balance
	return h
}
