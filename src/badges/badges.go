package badges

import (
	"fmt"
	"sort"
	"time"

	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

type Badge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// History is everything badge evaluation looks at for one user.
type History struct {
	Expenses []models.Expense
	Incomes  []models.Income
	Budgets  []models.BudgetStatus
}

type stats struct {
	expenseCount  int
	expenseTotal  decimal.Decimal
	largestSpend  decimal.Decimal
	streak        int
	weeksActive   int
	incomeCount   int
	incomeTotal   decimal.Decimal
	largestIncome decimal.Decimal
	currencies    int
	categories    int
	budgets       int
	receipts      int
	underBudget   bool
}

type tier struct {
	badge Badge
	met   func(s stats) bool
}

func amountAtLeast(v func(s stats) decimal.Decimal, threshold int64) func(s stats) bool {
	t := decimal.NewFromInt(threshold)
	return func(s stats) bool { return v(s).GreaterThanOrEqual(t) }
}

func countAtLeast(v func(s stats) int, threshold int) func(s stats) bool {
	return func(s stats) bool { return v(s) >= threshold }
}

var (
	expenseCount  = func(s stats) int { return s.expenseCount }
	streak        = func(s stats) int { return s.streak }
	weeksActive   = func(s stats) int { return s.weeksActive }
	incomeCount   = func(s stats) int { return s.incomeCount }
	currencies    = func(s stats) int { return s.currencies }
	categories    = func(s stats) int { return s.categories }
	budgets       = func(s stats) int { return s.budgets }
	receipts      = func(s stats) int { return s.receipts }
	expenseTotal  = func(s stats) decimal.Decimal { return s.expenseTotal }
	largestSpend  = func(s stats) decimal.Decimal { return s.largestSpend }
	incomeTotal   = func(s stats) decimal.Decimal { return s.incomeTotal }
	largestIncome = func(s stats) decimal.Decimal { return s.largestIncome }
)

// tiers is evaluated in order; the output keeps this order.
var tiers = []tier{
	{Badge{"First Expense", "Logged your first expense"}, countAtLeast(expenseCount, 1)},
	{Badge{"Expense Enthusiast", "Logged 50 expenses"}, countAtLeast(expenseCount, 50)},
	{Badge{"Expense Centurion", "Logged 100 expenses"}, countAtLeast(expenseCount, 100)},
	{Badge{"3-Day Streak", "Logged expenses on 3 consecutive days"}, countAtLeast(streak, 3)},
	{Badge{"7-Day Streak", "Logged expenses on 7 consecutive days"}, countAtLeast(streak, 7)},
	{Badge{"30-Day Streak", "Logged expenses on 30 consecutive days"}, countAtLeast(streak, 30)},
	{Badge{"High Spender", "Tracked 10,000 in total spending"}, amountAtLeast(expenseTotal, 10_000)},
	{Badge{"Big Ledger", "Tracked 100,000 in total spending"}, amountAtLeast(expenseTotal, 100_000)},
	{Badge{"Big Spender", "Logged a single expense of 2,000 or more"}, amountAtLeast(largestSpend, 2_000)},
	{Badge{"Consistent Week", "Logged expenses in 4 different weeks"}, countAtLeast(weeksActive, 4)},
	{Badge{"Steady Tracker", "Logged expenses in 12 different weeks"}, countAtLeast(weeksActive, 12)},
	{Badge{"First Income", "Recorded your first income"}, countAtLeast(incomeCount, 1)},
	{Badge{"Income Regular", "Recorded 12 income entries"}, countAtLeast(incomeCount, 12)},
	{Badge{"Earner", "Recorded 10,000 in total income"}, amountAtLeast(incomeTotal, 10_000)},
	{Badge{"High Earner", "Recorded 100,000 in total income"}, amountAtLeast(incomeTotal, 100_000)},
	{Badge{"Big Payday", "Recorded a single income of 5,000 or more"}, amountAtLeast(largestIncome, 5_000)},
	{Badge{"Globetrotter", "Used 2 or more currencies"}, countAtLeast(currencies, 2)},
	{Badge{"Category Explorer", "Spent in 4 different categories"}, countAtLeast(categories, 4)},
	{Badge{"All-Rounder", "Spent in 6 different categories"}, countAtLeast(categories, 6)},
	{Badge{"Budget Planner", "Set up your first budget"}, countAtLeast(budgets, 1)},
	{Badge{"Fully Budgeted", "Set budgets for 6 categories"}, countAtLeast(budgets, 6)},
	{Badge{"Receipt Scanner", "Added an expense from a scanned receipt"}, countAtLeast(receipts, 1)},
	{Badge{"Paperless", "Added 10 expenses from scanned receipts"}, countAtLeast(receipts, 10)},
	{Badge{"Under Budget", "Every budget is below its limit this month"}, func(s stats) bool { return s.underBudget }},
}

// Evaluate returns every badge h has earned, in a fixed order.
func Evaluate(h History) []Badge {
	s := collect(h)
	earned := []Badge{}
	for _, t := range tiers {
		if t.met(s) {
			earned = append(earned, t.badge)
		}
	}
	return earned
}

func Summary(earned []Badge) string {
	return fmt.Sprintf("Unlocked %d badges", len(earned))
}

func collect(h History) stats {
	s := stats{
		expenseCount: len(h.Expenses),
		incomeCount:  len(h.Incomes),
		budgets:      len(h.Budgets),
	}

	currencySet := make(map[string]struct{})
	categorySet := make(map[models.Category]struct{})
	weekSet := make(map[[2]int]struct{})
	dates := make([]time.Time, 0, len(h.Expenses))
	for _, e := range h.Expenses {
		s.expenseTotal = s.expenseTotal.Add(e.Amount)
		if e.Amount.GreaterThan(s.largestSpend) {
			s.largestSpend = e.Amount
		}
		if e.ReceiptText != "" {
			s.receipts++
		}
		currencySet[e.Currency] = struct{}{}
		categorySet[e.Category] = struct{}{}
		y, w := e.Date.ISOWeek()
		weekSet[[2]int{y, w}] = struct{}{}
		dates = append(dates, e.Date.Time)
	}
	for _, i := range h.Incomes {
		s.incomeTotal = s.incomeTotal.Add(i.Amount)
		if i.Amount.GreaterThan(s.largestIncome) {
			s.largestIncome = i.Amount
		}
		currencySet[i.Currency] = struct{}{}
	}

	s.currencies = len(currencySet)
	s.categories = len(categorySet)
	s.weeksActive = len(weekSet)
	s.streak = LongestStreak(dates)

	s.underBudget = len(h.Budgets) > 0
	for _, b := range h.Budgets {
		if !b.Spent.LessThan(b.MonthlyLimit) {
			s.underBudget = false
		}
	}
	return s
}

// LongestStreak is the longest run of consecutive calendar days in dates.
// Several entries on the same day count once.
func LongestStreak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := models.NewDate(d).Time
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}
