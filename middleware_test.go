package identikit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestMiddleware(svc *TokenService) *Middleware {
	m := &Middleware{VerifyToken: svc.Validate}
	m.EnsureReasonableDefaults()
	return m
}

func TestExtractUserFromHeader(t *testing.T) {
	svc := newTestTokenService(15 * time.Minute)
	token, err := svc.Issue("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	m := newTestMiddleware(svc)
	var gotUserID string
	handler := m.ExtractUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = m.GetLoggedInUserId(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUserID != "user-123" {
		t.Errorf("expected user-123, got %q", gotUserID)
	}
}

func TestExtractUserFromCookie(t *testing.T) {
	svc := newTestTokenService(15 * time.Minute)
	token, err := svc.Issue("user-456", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	m := newTestMiddleware(svc)
	var gotUserID string
	handler := m.ExtractUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = m.GetLoggedInUserId(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUserID != "user-456" {
		t.Errorf("expected user-456, got %q", gotUserID)
	}
}

func TestSessionTakesPrecedence(t *testing.T) {
	svc := newTestTokenService(15 * time.Minute)
	m := newTestMiddleware(svc)
	m.SessionGetter = func(r *http.Request, param string) any {
		return "session-user"
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := m.GetLoggedInUserId(req); got != "session-user" {
		t.Errorf("expected session-user, got %q", got)
	}
}

func TestEnsureUser(t *testing.T) {
	svc := newTestTokenService(15 * time.Minute)
	token, err := svc.Issue("user-123", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	m := newTestMiddleware(svc)
	handler := m.EnsureUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"valid token", token, http.StatusOK},
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "not.a.token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}
