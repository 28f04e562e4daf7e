package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	store "fintrack-server/src/db/sql"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"

	"golang.org/x/crypto/bcrypt"
)

func Register(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLog(r)
		var req models.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Name = strings.TrimSpace(req.Name)

		res := util.First(
			util.Required("name", req.Name),
			util.CheckEmail("email", req.Email),
			util.CheckPassword(req.Password),
		)
		if res.OK && !util.ValidateUsername(req.Name) {
			res = util.Invalid("name", util.ReasonInvalidUsername, "name must be between 1 and 60 characters")
		}
		if !res.OK {
			log.Error().Str("email", req.Email).Str("reason", string(res.Reason)).Msg("registration validation failed")
			middleware.WriteInvalid(w, res)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Str("email", req.Email).Msg("failed to hash password")
			middleware.WriteError(w, http.StatusInternalServerError, "internal error")
			return
		}

		user, err := env.Store.CreateUser(r.Context(), req, hashedPassword)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				log.Error().Str("email", req.Email).Msg("registration failed, email already exists")
				middleware.WriteError(w, http.StatusConflict, "email already exists")
				return
			}
			writeStoreError(w, r, err, "user")
			return
		}

		token, err := middleware.NewToken(env.JWTSecret, *user, time.Now())
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("failed to generate token")
			middleware.WriteError(w, http.StatusInternalServerError, "error generating token")
			return
		}

		log.Info().Str("user_id", user.ID).Msg("successful registration")
		middleware.WriteJSON(w, http.StatusCreated, models.TokenResponse{Token: token, User: *user})
	}
}

func Login(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLog(r)
		var credentials models.LoginRequest
		if !decodeJSON(w, r, &credentials) {
			return
		}
		email := strings.ToLower(strings.TrimSpace(credentials.Email))

		user, err := env.Store.GetUserByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Error().Str("email", email).Msg("login for unknown user")
				middleware.WriteError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			writeStoreError(w, r, err, "user")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(credentials.Password)); err != nil {
			log.Error().Str("email", email).Str("remote_addr", r.RemoteAddr).Msg("invalid password attempt")
			middleware.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := middleware.NewToken(env.JWTSecret, *user, time.Now())
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("failed to generate token")
			middleware.WriteError(w, http.StatusInternalServerError, "error generating token")
			return
		}

		log.Info().Str("user_id", user.ID).Msg("successful login")
		middleware.WriteJSON(w, http.StatusOK, models.TokenResponse{Token: token, User: *user})
	}
}
