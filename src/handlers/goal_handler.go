package handlers

import (
	"net/http"
	"strings"

	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"github.com/go-chi/chi/v5"
)

func CreateGoal(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Title        string `json:"title"`
			TargetAmount Amount `json:"target_amount"`
			TargetDate   string `json:"target_date"`
			Category     string `json:"category"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		goal := &models.FinancialGoal{
			UserID:   sess.UserID,
			Title:    strings.TrimSpace(req.Title),
			Category: strings.TrimSpace(req.Category),
		}
		res := util.Required("title", goal.Title)
		if res.OK {
			goal.TargetAmount, res = util.CheckPositiveAmount("target_amount", string(req.TargetAmount))
		}
		if res.OK {
			res = util.Required("target_date", req.TargetDate)
		}
		if res.OK {
			goal.TargetDate, res = checkDate("target_date", req.TargetDate, models.Date{})
		}
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		created, err := env.Store.CreateGoal(r.Context(), goal)
		if err != nil {
			writeStoreError(w, r, err, "goal")
			return
		}
		requestLog(r).Info().Str("goal_id", created.ID).Msg("created goal")
		middleware.WriteJSON(w, http.StatusCreated, created)
	}
}

func ListGoals(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		goals, err := env.Store.ListGoals(r.Context(), sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "goals")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, goals)
	}
}

func ContributeToGoal(env *Env) http.HandlerFunc {
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
		amount, res := util.CheckPositiveAmount("amount", string(req.Amount))
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		goalID := chi.URLParam(r, "id")
		goal, err := env.Store.ContributeToGoal(r.Context(), sess.UserID, goalID, amount)
		if err != nil {
			writeStoreError(w, r, err, "goal")
			return
		}

		requestLog(r).Info().Str("goal_id", goalID).Str("amount", amount.String()).Bool("achieved", goal.IsAchieved).Msg("recorded goal contribution")
		middleware.WriteJSON(w, http.StatusOK, goal)
	}
}

func DeleteGoal(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		goalID := chi.URLParam(r, "id")
		if err := env.Store.DeleteGoal(r.Context(), sess.UserID, goalID); err != nil {
			writeStoreError(w, r, err, "goal")
			return
		}
		requestLog(r).Info().Str("goal_id", goalID).Msg("deleted goal")
		w.WriteHeader(http.StatusNoContent)
	}
}
