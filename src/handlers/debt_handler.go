package handlers

import (
	"errors"
	"net/http"
	"strings"

	"fintrack-server/src/ledger"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func CreateDebt(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			CreditorName   string `json:"creditor_name"`
			TotalAmount    Amount `json:"total_amount"`
			InterestRate   Amount `json:"interest_rate"`
			MinimumPayment Amount `json:"minimum_payment"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		debt := &models.Debt{UserID: sess.UserID, CreditorName: strings.TrimSpace(req.CreditorName)}
		res := util.Required("creditor_name", debt.CreditorName)
		if res.OK {
			debt.TotalAmount, res = util.CheckPositiveAmount("total_amount", string(req.TotalAmount))
		}
		if res.OK {
			debt.InterestRate, res = optionalAmount("interest_rate", req.InterestRate)
		}
		if res.OK {
			debt.MinimumPayment, res = optionalAmount("minimum_payment", req.MinimumPayment)
		}
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		created, err := env.Store.CreateDebt(r.Context(), debt)
		if err != nil {
			writeStoreError(w, r, err, "debt")
			return
		}
		requestLog(r).Info().Str("debt_id", created.ID).Msg("created debt")
		middleware.WriteJSON(w, http.StatusCreated, created)
	}
}

// optionalAmount treats a missing value as zero.
func optionalAmount(field string, raw Amount) (decimal.Decimal, util.Result) {
	if strings.TrimSpace(string(raw)) == "" {
		return decimal.Zero, util.Valid()
	}
	return util.CheckAmount(field, string(raw))
}

func ListDebts(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		debts, err := env.Store.ListDebts(r.Context(), sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "debts")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, debts)
	}
}

func PayDebt(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Amount Amount `json:"amount"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		payment, res := util.CheckPositiveAmount("amount", string(req.Amount))
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		debtID := chi.URLParam(r, "id")
		result, err := env.Store.ApplyDebtPayment(r.Context(), sess.UserID, debtID, payment)
		if err != nil {
			if errors.Is(err, ledger.ErrDebtAlreadyPaid) {
				middleware.WriteError(w, http.StatusConflict, err.Error())
				return
			}
			writeStoreError(w, r, err, "debt")
			return
		}

		requestLog(r).Info().Str("debt_id", debtID).Str("payment", payment.String()).Bool("is_paid", result.Debt.IsPaid).Msg("recorded debt payment")
		middleware.WriteJSON(w, http.StatusOK, result)
	}
}

func DeleteDebt(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		debtID := chi.URLParam(r, "id")
		if err := env.Store.DeleteDebt(r.Context(), sess.UserID, debtID); err != nil {
			writeStoreError(w, r, err, "debt")
			return
		}
		requestLog(r).Info().Str("debt_id", debtID).Msg("deleted debt")
		w.WriteHeader(http.StatusNoContent)
	}
}
