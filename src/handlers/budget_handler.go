package handlers

import (
	"net/http"
	"strings"
	"time"

	store "fintrack-server/src/db/sql"
	"fintrack-server/src/ledger"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"github.com/go-chi/chi/v5"
)

// UpsertBudget creates the category's budget or replaces its monthly limit.
func UpsertBudget(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Category     string `json:"category"`
			MonthlyLimit Amount `json:"monthly_limit"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		category := models.Category(strings.TrimSpace(req.Category))
		if !category.Valid() {
			middleware.WriteInvalid(w, util.Invalid("category", util.ReasonInvalidCategory, "unknown category %q", req.Category))
			return
		}
		limit, res := util.CheckAmount("monthly_limit", string(req.MonthlyLimit))
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		budget, err := env.Store.UpsertBudget(r.Context(), &models.Budget{
			UserID:       sess.UserID,
			Category:     category,
			MonthlyLimit: limit,
		})
		if err != nil {
			writeStoreError(w, r, err, "budget")
			return
		}
		env.ledgerChanged(sess.UserID)

		requestLog(r).Info().Str("budget_id", budget.ID).Str("category", string(category)).Msg("saved budget")
		middleware.WriteJSON(w, http.StatusOK, budget)
	}
}

func parseMonth(r *http.Request, now time.Time) (time.Time, util.Result) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return now, util.Valid()
	}
	m, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, util.Invalid("month", util.ReasonInvalidDate, "month must be YYYY-MM")
	}
	return m, util.Valid()
}

func budgetStatuses(env *Env, w http.ResponseWriter, r *http.Request, userID string) ([]models.BudgetStatus, bool) {
	month, res := parseMonth(r, env.now())
	if !res.OK {
		middleware.WriteInvalid(w, res)
		return nil, false
	}
	budgets, err := env.Store.ListBudgets(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err, "budgets")
		return nil, false
	}
	expenses, err := env.Store.ListExpenses(r.Context(), userID, store.ListOptions{})
	if err != nil {
		writeStoreError(w, r, err, "expenses")
		return nil, false
	}
	return ledger.BudgetStatuses(budgets, expenses, month), true
}

// ListBudgets returns every budget with its status for ?month=YYYY-MM (default current).
func ListBudgets(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		statuses, ok := budgetStatuses(env, w, r, sess.UserID)
		if !ok {
			return
		}
		middleware.WriteJSON(w, http.StatusOK, statuses)
	}
}

func BudgetSummary(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		statuses, ok := budgetStatuses(env, w, r, sess.UserID)
		if !ok {
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string][]string{
			"lines": ledger.BudgetSummaryLines(statuses),
		})
	}
}

func DeleteBudget(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		category := models.Category(chi.URLParam(r, "category"))
		if !category.Valid() {
			middleware.WriteInvalid(w, util.Invalid("category", util.ReasonInvalidCategory, "unknown category %q", category))
			return
		}
		if err := env.Store.DeleteBudget(r.Context(), sess.UserID, category); err != nil {
			writeStoreError(w, r, err, "budget")
			return
		}
		env.ledgerChanged(sess.UserID)

		requestLog(r).Info().Str("category", string(category)).Msg("deleted budget")
		w.WriteHeader(http.StatusNoContent)
	}
}
