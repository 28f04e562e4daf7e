package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack-server/src/ledger"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"github.com/go-chi/chi/v5"
)

func CreateGroupExpense(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Description string `json:"description"`
			TotalAmount Amount `json:"total_amount"`
			SplitType   string `json:"split_type"`
			Members     []struct {
				Email string `json:"email"`
				Share Amount `json:"share"`
			} `json:"members"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		description := strings.TrimSpace(req.Description)
		res := util.Required("description", description)
		total, amountRes := util.CheckPositiveAmount("total_amount", string(req.TotalAmount))
		res = util.First(res, amountRes)

		splitType := models.SplitType(strings.ToLower(strings.TrimSpace(req.SplitType)))
		if splitType == "" {
			splitType = models.SplitEqual
		}

		members := make([]models.GroupMember, 0, len(req.Members))
		for _, m := range req.Members {
			if !res.OK {
				break
			}
			email := strings.ToLower(strings.TrimSpace(m.Email))
			res = util.CheckEmail("members.email", email)
			member := models.GroupMember{Email: email}
			if res.OK && splitType == models.SplitCustom {
				member.Share, res = util.CheckAmount("members.share", string(m.Share))
			}
			members = append(members, member)
		}
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		split, err := ledger.SplitGroupExpense(total, splitType, members)
		if err != nil {
			middleware.WriteInvalid(w, util.Invalid("members", util.ReasonInvalidSplit, "%s", err.Error()))
			return
		}

		created, err := env.Store.CreateGroupExpense(r.Context(), &models.GroupExpense{
			UserID:      sess.UserID,
			Description: description,
			TotalAmount: total,
			SplitType:   splitType,
			Members:     split,
		})
		if err != nil {
			writeStoreError(w, r, err, "group expense")
			return
		}
		requestLog(r).Info().Str("group_expense_id", created.ID).Int("members", len(split)).Msg("created group expense")
		middleware.WriteJSON(w, http.StatusCreated, created)
	}
}

func ListGroupExpenses(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		expenses, err := env.Store.ListGroupExpenses(r.Context(), sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "group expenses")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, expenses)
	}
}

// MarkMemberPaid flags a member's share as settled; ?paid=false reverts it.
func MarkMemberPaid(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		paid := true
		if raw := r.URL.Query().Get("paid"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, "paid must be true or false")
				return
			}
			paid = v
		}

		groupID := chi.URLParam(r, "id")
		email, err := url.PathUnescape(chi.URLParam(r, "email"))
		if err != nil {
			middleware.WriteInvalid(w, util.Invalid("email", util.ReasonInvalidEmail, "invalid email format"))
			return
		}

		updated, err := env.Store.SetGroupMemberPaid(r.Context(), sess.UserID, groupID, email, paid)
		if err != nil {
			writeStoreError(w, r, err, "group member")
			return
		}
		requestLog(r).Info().Str("group_expense_id", groupID).Str("member", email).Bool("paid", paid).Msg("updated group member")
		middleware.WriteJSON(w, http.StatusOK, updated)
	}
}

func DeleteGroupExpense(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		groupID := chi.URLParam(r, "id")
		if err := env.Store.DeleteGroupExpense(r.Context(), sess.UserID, groupID); err != nil {
			writeStoreError(w, r, err, "group expense")
			return
		}
		requestLog(r).Info().Str("group_expense_id", groupID).Msg("deleted group expense")
		w.WriteHeader(http.StatusNoContent)
	}
}
