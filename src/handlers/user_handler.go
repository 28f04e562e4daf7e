package handlers

import (
	"net/http"
	"strings"

	"fintrack-server/src/middleware"
	"fintrack-server/src/util"

	"golang.org/x/crypto/bcrypt"
)

func GetUser(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		user, err := env.Store.GetUserByID(r.Context(), sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "user")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, user)
	}
}

func UpdateUser(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		res := util.First(util.Required("name", req.Name), util.CheckEmail("email", req.Email))
		if res.OK && !util.ValidateUsername(req.Name) {
			res = util.Invalid("name", util.ReasonInvalidUsername, "name must be between 1 and 60 characters")
		}
		if !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		if err := env.Store.UpdateUserProfile(r.Context(), sess.UserID, req.Name, req.Email); err != nil {
			writeStoreError(w, r, err, "user")
			return
		}

		requestLog(r).Info().Msg("user profile updated")
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "profile updated successfully",
		})
	}
}

func ChangePassword(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		log := requestLog(r)
		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		user, err := env.Store.GetUserByID(r.Context(), sess.UserID)
		if err != nil {
			writeStoreError(w, r, err, "user")
			return
		}
		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			log.Error().Msg("password change with wrong current password")
			middleware.WriteError(w, http.StatusUnauthorized, "current password is incorrect")
			return
		}
		if res := util.CheckPassword(req.NewPassword); !res.OK {
			middleware.WriteInvalid(w, res)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Msg("failed to hash new password")
			middleware.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := env.Store.UpdateUserPassword(r.Context(), sess.UserID, hashedPassword); err != nil {
			writeStoreError(w, r, err, "user")
			return
		}

		log.Info().Msg("password changed")
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "password changed successfully",
		})
	}
}

func DeleteUser(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		if err := env.Store.DeleteUser(r.Context(), sess.UserID); err != nil {
			writeStoreError(w, r, err, "user")
			return
		}
		if env.Cache != nil {
			env.Cache.Forget(sess.UserID)
		}
		requestLog(r).Info().Msg("user deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetGeminiKey stores the caller's Gemini API key. An empty key clears it.
func SetGeminiKey(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r)
		if !ok {
			return
		}
		var req struct {
			APIKey string `json:"api_key"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		key := strings.TrimSpace(req.APIKey)
		if err := env.Store.SetGeminiAPIKey(r.Context(), sess.UserID, key); err != nil {
			writeStoreError(w, r, err, "user")
			return
		}
		sess.SetCredential(key)

		requestLog(r).Info().Bool("has_key", key != "").Msg("gemini key updated")
		middleware.WriteJSON(w, http.StatusOK, map[string]bool{"has_gemini_key": key != ""})
	}
}
