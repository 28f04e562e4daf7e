package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"fintrack-server/src/middleware"
	"fintrack-server/src/util"

	"github.com/go-chi/chi/v5"
)

var errNoShare = errors.New("ledger is not shared with you")

// CreateShare grants another user read access to the caller's expenses and income.
func CreateShare(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			MemberEmail string `json:"member_email"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.MemberEmail))
		res := util.CheckEmail("member_email", email)
		if res.OK && strings.EqualFold(email, sess.Email) {
			res = util.Invalid("member_email", util.ReasonInvalidEmail, "cannot share with yourself")
		}
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		grant, err := env.Store.CreateShare(r.Context(), sess.UserID, email)
		if err != nil {
			writeStoreError(w, r, err, "share")
			return
		}
		requestLog(r).Info().Str("share_id", grant.ID).Str("member", email).Msg("created share")
		middleware.WriteJSON(w, http.StatusCreated, grant)
	}
}

func ListShares(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		grants, err := env.Store.ListShares(r.Context(), sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "shares")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, grants)
	}
}

// ListIncomingShares lists the ledgers other users have shared with the caller.
func ListIncomingShares(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		grants, err := env.Store.ListSharesForMember(r.Context(), sess.Email)
		if err != nil {
			writeStoreError(w, r, err, "shares")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, grants)
	}
}

func DeleteShare(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		email, err := url.PathUnescape(chi.URLParam(r, "email"))
		if err != nil {
			middleware.WriteInvalid(w, util.Invalid("email", util.ReasonInvalidEmail, "invalid email format"))
			return
		}
		if err := env.Store.DeleteShare(r.Context(), sess.UserID, email); err != nil {
			writeStoreError(w, r, err, "share")
			return
		}
		requestLog(r).Info().Str("member", email).Msg("deleted share")
		w.WriteHeader(http.StatusNoContent)
	}
}

// sharedOwner resolves {owner_id} and checks the caller holds a grant for it.
func sharedOwner(env *Env, w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, ok := currentSession(w, r)
	if !ok {
		return "", false
	}
	ownerID := chi.URLParam(r, "owner_id")
	if ownerID == sess.UserID {
		return ownerID, true
	}
	granted, err := env.Store.HasShare(r.Context(), ownerID, sess.Email)
	if err != nil {
		writeStoreError(w, r, err, "share")
		return "", false
	}
	if !granted {
		requestLog(r).Error().Str("owner_id", ownerID).Msg("shared ledger access without grant")
		middleware.WriteError(w, http.StatusForbidden, errNoShare.Error())
		return "", false
	}
	return ownerID, true
}

func SharedExpenses(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := sharedOwner(env, w, r)
		if !ok {
			return
		}
		writeExpenses(env, w, r, ownerID)
	}
}

func SharedIncome(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := sharedOwner(env, w, r)
		if !ok {
			return
		}
		writeIncome(env, w, r, ownerID)
	}
}
