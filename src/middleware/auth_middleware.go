package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack-server/src/logger"
	"fintrack-server/src/models"
	"fintrack-server/src/session"

	"github.com/golang-jwt/jwt/v5"
)

const TokenLifetime = 168 * time.Hour

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// NewToken signs a bearer token carrying the user's identity.
func NewToken(secret string, user models.User, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"iat":     now.Unix(),
		"exp":     now.Add(TokenLifetime).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseTokenFromRequest extracts and validates the bearer token, returning its claims.
func ParseTokenFromRequest(r *http.Request, secret string) (jwt.MapClaims, error) {
	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ParseTokenFromRequest(r, secret)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			userID, _ := claims["user_id"].(string)
			if userID == "" {
				WriteError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
				return
			}
			email, _ := claims["email"].(string)
			name, _ := claims["name"].(string)

			ctx := r.Context()
			sess := session.New(userID, email, name, RequestIDFromContext(ctx))
			ctx = session.WithSession(ctx, sess)
			log := logger.FromContext(ctx).With().Str("user_id", userID).Logger()
			ctx = logger.WithContext(ctx, log)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
