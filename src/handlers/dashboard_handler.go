package handlers

import (
	"context"
	"net/http"

	"fintrack-server/src/badges"
	store "fintrack-server/src/db/sql"
	"fintrack-server/src/dashboard"
	"fintrack-server/src/ledger"
	"fintrack-server/src/middleware"
	"fintrack-server/src/util"
)

const badgesCacheKind = "badges"

type badgeResponse struct {
	Badges  []badges.Badge `json:"badges"`
	Summary string         `json:"summary"`
}

func loadLedger(ctx context.Context, s *store.Store, userID string) (dashboard.Ledger, error) {
	var l dashboard.Ledger
	var err error
	if l.Expenses, err = s.ListExpenses(ctx, userID, store.ListOptions{}); err != nil {
		return l, err
	}
	if l.Incomes, err = s.ListIncome(ctx, userID, store.ListOptions{}); err != nil {
		return l, err
	}
	if l.Bills, err = s.ListBills(ctx, userID); err != nil {
		return l, err
	}
	if l.Debts, err = s.ListDebts(ctx, userID); err != nil {
		return l, err
	}
	if l.Goals, err = s.ListGoals(ctx, userID); err != nil {
		return l, err
	}
	return l, nil
}

// Dashboard serves ?period=today|month|year|life (default month).
func Dashboard(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		period, err := dashboard.ParsePeriod(r.URL.Query().Get("period"))
		if err != nil {
			middleware.WriteInvalid(w, util.Invalid("period", util.ReasonInvalidDate, "%s", err.Error()))
			return
		}
		l, err := loadLedger(r.Context(), env.Store, sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "ledger")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, dashboard.Build(period, l, env.now()))
	}
}

// Badges evaluates achievements, reusing the cached result until the
// user's expenses, income or budgets change.
func Badges(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var version uint64
		if env.Cache != nil {
			version = env.Cache.HistoryVersion(sess.UserID)
			if cached, ok := env.Cache.Get(badgesCacheKind, sess.UserID, version); ok {
				middleware.WriteJSON(w, http.StatusOK, cached)
				return
			}
		}

		expenses, err := env.Store.ListExpenses(r.Context(), sess.UserID, store.ListOptions{})
		if err != nil {
			writeStoreError(w, r, err, "expenses")
			return
		}
		incomes, err := env.Store.ListIncome(r.Context(), sess.UserID, store.ListOptions{})
		if err != nil {
			writeStoreError(w, r, err, "income")
			return
		}
		budgets, err := env.Store.ListBudgets(r.Context(), sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "budgets")
			return
		}

		earned := badges.Evaluate(badges.History{
			Expenses: expenses,
			Incomes:  incomes,
			Budgets:  ledger.BudgetStatuses(budgets, expenses, env.now()),
		})
		resp := badgeResponse{Badges: earned, Summary: badges.Summary(earned)}
		if env.Cache != nil {
			env.Cache.Set(badgesCacheKind, sess.UserID, version, resp)
		}
		middleware.WriteJSON(w, http.StatusOK, resp)
	}
}
