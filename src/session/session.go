package session

import (
	"context"
	"errors"
	"sync"
)

type contextKey string

const sessionKey contextKey = "session"

var ErrNoSession = errors.New("no session in context")

// CredentialSource loads a user's stored Gemini API key.
type CredentialSource interface {
	GetGeminiAPIKey(ctx context.Context, userID string) (string, error)
}

// Session is the per-request identity of an authenticated caller. It is built
// by the auth middleware and dropped once the response is written.
type Session struct {
	UserID    string
	Email     string
	Name      string
	RequestID string

	mu         sync.Mutex
	resolved   bool
	credential string
}

func New(userID, email, name, requestID string) *Session {
	return &Session{UserID: userID, Email: email, Name: name, RequestID: requestID}
}

// Credential returns the user's Gemini API key, reading it from src at most
// once per session. An empty string means no key is stored.
func (s *Session) Credential(ctx context.Context, src CredentialSource) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return s.credential, nil
	}
	key, err := src.GetGeminiAPIKey(ctx, s.UserID)
	if err != nil {
		return "", err
	}
	s.credential = key
	s.resolved = true
	return key, nil
}

// SetCredential records a key saved during this request.
func (s *Session) SetCredential(key string) {
	s.mu.Lock()
	s.credential = key
	s.resolved = true
	s.mu.Unlock()
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}
