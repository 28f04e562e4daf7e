package handlers

import (
	"net/http"
	"strings"

	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"github.com/go-chi/chi/v5"
)

func CreateIncome(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Amount   Amount `json:"amount"`
			Source   string `json:"source"`
			Date     string `json:"date"`
			Currency string `json:"currency"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		amount, res := util.CheckAmount("amount", string(req.Amount))
		source := models.Source(strings.TrimSpace(req.Source))
		if res.OK && !source.Valid() {
			res = util.Invalid("source", util.ReasonInvalidSource, "unknown source %q", req.Source)
		}
		var currency string
		if res.OK {
			currency, res = util.NormalizeCurrency(req.Currency, env.BaseCurrency)
		}
		var date models.Date
		if res.OK {
			date, res = checkDate("date", req.Date, models.NewDate(env.now()))
		}
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		created, err := env.Store.CreateIncome(r.Context(), &models.Income{
			UserID:   sess.UserID,
			Amount:   amount,
			Source:   source,
			Date:     date,
			Currency: currency,
		})
		if err != nil {
			writeStoreError(w, r, err, "income")
			return
		}
		env.ledgerChanged(sess.UserID)

		requestLog(r).Info().Str("income_id", created.ID).Str("source", string(created.Source)).Msg("created income")
		middleware.WriteJSON(w, http.StatusCreated, created)
	}
}

func ListIncome(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		writeIncome(env, w, r, sess.UserID)
	}
}

func writeIncome(env *Env, w http.ResponseWriter, r *http.Request, ownerID string) {
	opts, res := parseListOptions(r)
	if !res.OK {
		middleware.WriteInvalid(w, res)
		return
	}
	incomes, err := env.Store.ListIncome(r.Context(), ownerID, opts)
	if err != nil {
		writeStoreError(w, r, err, "income")
		return
	}
	if wantBase(r) && env.FX != nil {
		for i := range incomes {
			v := env.FX.Convert(r.Context(), incomes[i].Amount, incomes[i].Currency)
			incomes[i].AmountInBase = &v
		}
	}
	middleware.WriteJSON(w, http.StatusOK, incomes)
}

func DeleteIncome(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		incomeID := chi.URLParam(r, "id")
		if err := env.Store.DeleteIncome(r.Context(), sess.UserID, incomeID); err != nil {
			writeStoreError(w, r, err, "income")
			return
		}
		env.ledgerChanged(sess.UserID)

		requestLog(r).Info().Str("income_id", incomeID).Msg("deleted income")
		w.WriteHeader(http.StatusNoContent)
	}
}
