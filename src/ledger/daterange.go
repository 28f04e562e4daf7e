package ledger

import (
	"time"

	"fintrack-server/src/models"
)

// DateRange is an optional inclusive [Start, End] window of calendar dates.
type DateRange struct {
	Start *models.Date
	End   *models.Date
}

func NewDateRange(start, end *models.Date) DateRange {
	return DateRange{Start: start, End: end}
}

// Contains reports whether t falls on or after Start and strictly before End plus one day.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(r.Start.Time) {
		return false
	}
	if r.End != nil && !t.Before(r.End.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func (r DateRange) StartLabel() string {
	if r.Start == nil {
		return "Beginning"
	}
	return r.Start.String()
}

func (r DateRange) EndLabel() string {
	if r.End == nil {
		return "Now"
	}
	return r.End.String()
}

func (r DateRange) Label() string {
	return r.StartLabel() + " to " + r.EndLabel()
}

func FilterExpenses(expenses []models.Expense, r DateRange) []models.Expense {
	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if r.Contains(e.Date.Time) {
			out = append(out, e)
		}
	}
	return out
}

func FilterIncome(incomes []models.Income, r DateRange) []models.Income {
	out := make([]models.Income, 0, len(incomes))
	for _, i := range incomes {
		if r.Contains(i.Date.Time) {
			out = append(out, i)
		}
	}
	return out
}
