package ledger

import (
	"fintrack-server/src/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ContributeToGoal adds amount to the goal's current savings.
func ContributeToGoal(g models.FinancialGoal, amount decimal.Decimal) (models.FinancialGoal, error) {
	if !amount.IsPositive() {
		return g, ErrNonPositiveContribution
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.IsAchieved = true
	}
	return g, nil
}

// GoalProgress is current/target as a percentage capped at 100.
func GoalProgress(g models.FinancialGoal) decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return hundred
	}
	p := percent(g.CurrentAmount, g.TargetAmount)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
