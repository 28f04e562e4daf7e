package handlers

import (
	"net/http"
	"strings"

	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"github.com/go-chi/chi/v5"
)

func CreateBill(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Title    string `json:"title"`
			Amount   Amount `json:"amount"`
			DueDate  string `json:"due_date"`
			Category string `json:"category"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		title := strings.TrimSpace(req.Title)
		bill := &models.BillReminder{UserID: sess.UserID, Title: title, Category: models.CategoryUtilities}
		res := util.Required("title", title)
		if res.OK {
			bill.Amount, res = util.CheckAmount("amount", string(req.Amount))
		}
		if res.OK {
			res = util.Required("due_date", req.DueDate)
		}
		if res.OK {
			bill.DueDate, res = checkDate("due_date", req.DueDate, models.Date{})
		}
		if res.OK && strings.TrimSpace(req.Category) != "" {
			bill.Category = models.Category(strings.TrimSpace(req.Category))
			if !bill.Category.Valid() {
				res = util.Invalid("category", util.ReasonInvalidCategory, "unknown category %q", req.Category)
			}
		}
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		created, err := env.Store.CreateBill(r.Context(), bill)
		if err != nil {
			writeStoreError(w, r, err, "bill")
			return
		}
		requestLog(r).Info().Str("bill_id", created.ID).Msg("created bill")
		middleware.WriteJSON(w, http.StatusCreated, created)
	}
}

func ListBills(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		bills, err := env.Store.ListBills(r.Context(), sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "bills")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, bills)
	}
}

func PayBill(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		billID := chi.URLParam(r, "id")
		bill, err := env.Store.MarkBillPaid(r.Context(), sess.UserID, billID)
		if err != nil {
			writeStoreError(w, r, err, "bill")
			return
		}
		requestLog(r).Info().Str("bill_id", billID).Msg("marked bill paid")
		middleware.WriteJSON(w, http.StatusOK, bill)
	}
}

func DeleteBill(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		billID := chi.URLParam(r, "id")
		if err := env.Store.DeleteBill(r.Context(), sess.UserID, billID); err != nil {
			writeStoreError(w, r, err, "bill")
			return
		}
		requestLog(r).Info().Str("bill_id", billID).Msg("deleted bill")
		w.WriteHeader(http.StatusNoContent)
	}
}
