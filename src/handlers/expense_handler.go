package handlers

import (
	"net/http"
	"strings"

	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"github.com/go-chi/chi/v5"
)

type expenseRequest struct {
	Amount      Amount `json:"amount"`
	Category    string `json:"category"`
	Note        string `json:"note"`
	Date        string `json:"date"`
	Currency    string `json:"currency"`
	ReceiptText string `json:"receipt_text"`
}

func (req expenseRequest) toExpense(env *Env, userID string) (*models.Expense, util.Result) {
	amount, res := util.CheckAmount("amount", string(req.Amount))
	if !res.OK {
		return nil, res
	}
	category := models.Category(strings.TrimSpace(req.Category))
	if !category.Valid() {
		return nil, util.Invalid("category", util.ReasonInvalidCategory, "unknown category %q", req.Category)
	}
	currency, res := util.NormalizeCurrency(req.Currency, env.BaseCurrency)
	if !res.OK {
		return nil, res
	}
	date, res := checkDate("date", req.Date, models.NewDate(env.now()))
	if !res.OK {
		return nil, res
	}
	return &models.Expense{
		UserID:      userID,
		Amount:      amount,
		Category:    category,
		Note:        strings.TrimSpace(req.Note),
		Date:        date,
		Currency:    currency,
		ReceiptText: strings.TrimSpace(req.ReceiptText),
	}, util.Valid()
}

func CreateExpense(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req expenseRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		expense, res := req.toExpense(env, sess.UserID)
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		created, err := env.Store.CreateExpense(r.Context(), expense)
		if err != nil {
			writeStoreError(w, r, err, "expense")
			return
		}
		env.ledgerChanged(sess.UserID)

		requestLog(r).Info().Str("expense_id", created.ID).Str("category", string(created.Category)).Msg("created expense")
		middleware.WriteJSON(w, http.StatusCreated, created)
	}
}

func ListExpenses(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		writeExpenses(env, w, r, sess.UserID)
	}
}

func writeExpenses(env *Env, w http.ResponseWriter, r *http.Request, ownerID string) {
	opts, res := parseListOptions(r)
	if !res.OK {
		middleware.WriteInvalid(w, res)
		return
	}
	expenses, err := env.Store.ListExpenses(r.Context(), ownerID, opts)
	if err != nil {
		writeStoreError(w, r, err, "expenses")
		return
	}
	if wantBase(r) && env.FX != nil {
		for i := range expenses {
			v := env.FX.Convert(r.Context(), expenses[i].Amount, expenses[i].Currency)
			expenses[i].AmountInBase = &v
		}
	}
	middleware.WriteJSON(w, http.StatusOK, expenses)
}

func DeleteExpense(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		expenseID := chi.URLParam(r, "id")
		if err := env.Store.DeleteExpense(r.Context(), sess.UserID, expenseID); err != nil {
			writeStoreError(w, r, err, "expense")
			return
		}
		env.ledgerChanged(sess.UserID)

		requestLog(r).Info().Str("expense_id", expenseID).Msg("deleted expense")
		w.WriteHeader(http.StatusNoContent)
	}
}
