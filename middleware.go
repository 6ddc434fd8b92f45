package identikit

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type userParamNameKey string

// Middleware extracts and validates the bearer token on inbound requests
// and exposes the validated subject id to downstream handlers. Tokens are
// looked for in the session (if a SessionGetter is wired), then the auth
// header, then the access-token cookie.
type Middleware struct {
	AuthTokenHeaderName string
	AuthTokenCookieName string
	UserParamName       string
	SessionGetter       func(r *http.Request, param string) any
	VerifyToken         func(tokenString string) (*TokenClaims, error)
}

// Ensures that config values have reasonable defaults
func (m *Middleware) EnsureReasonableDefaults() {
	if m.UserParamName == "" {
		m.UserParamName = "loggedInUserId"
	}
	if m.AuthTokenHeaderName == "" {
		m.AuthTokenHeaderName = "Authorization"
	}
	if m.AuthTokenCookieName == "" {
		m.AuthTokenCookieName = AccessTokenCookieName
	}
}

// GetLoggedInUserId returns the subject id for the current request, or ""
// when no valid token was presented.
func (m *Middleware) GetLoggedInUserId(r *http.Request) string {
	if v := r.Context().Value(userParamNameKey(m.UserParamName)); v != nil {
		if userID, ok := v.(string); ok && userID != "" {
			return userID
		}
	}

	if m.SessionGetter != nil {
		if v := m.SessionGetter(r, m.UserParamName); v != nil && v != "" {
			if userID, ok := v.(string); ok {
				return userID
			}
		}
	}

	if m.VerifyToken == nil {
		slog.Warn("no token verifier configured")
		return ""
	}

	for _, token := range m.collectTokens(r) {
		claims, err := m.VerifyToken(token)
		if err == nil && claims.SubjectID != "" {
			return claims.SubjectID
		}
	}
	return ""
}

// collectTokens gathers candidate tokens from the auth header and cookies
func (m *Middleware) collectTokens(r *http.Request) []string {
	var tokens []string
	for _, header := range r.Header.Values(m.AuthTokenHeaderName) {
		tokens = append(tokens, strings.TrimPrefix(header, "Bearer "))
	}
	for _, cookie := range r.Cookies() {
		if cookie.Name == m.AuthTokenCookieName && cookie.Value != "" {
			tokens = append(tokens, cookie.Value)
		}
	}
	return tokens
}

// ExtractUser loads the subject id (if any) into the request context.
// It never rejects a request - use EnsureUser for that.
func (m *Middleware) ExtractUser(next http.Handler) http.Handler {
	m.EnsureReasonableDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.GetLoggedInUserId(r)
		next.ServeHTTP(w, m.setLoggedInUserId(userID, r))
	})
}

// EnsureUser rejects requests without a valid token with a 401. The response
// does not distinguish missing, tampered or malformed tokens.
func (m *Middleware) EnsureUser(next http.Handler) http.Handler {
	m.EnsureReasonableDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.GetLoggedInUserId(r)
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "Invalid token", "code": "token_invalid"}`))
			return
		}
		next.ServeHTTP(w, m.setLoggedInUserId(userID, r))
	})
}

func (m *Middleware) setLoggedInUserId(userID string, r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), userParamNameKey(m.UserParamName), userID)
	return r.WithContext(ctx)
}
