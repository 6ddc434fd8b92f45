package identikit

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
)

// AccessTokenCookieName is the cookie carrying the session token
const AccessTokenCookieName = "access_token"

// Server is the thin HTTP boundary over the Authenticator. Handlers parse
// the request, invoke a use case and translate the result: controlled errors
// map to their status code, anything else becomes a generic 500 so internal
// details never leak to clients.
type Server struct {
	Auth       *Authenticator
	Middleware Middleware

	// Session records the logged-in user id server side alongside the cookie
	Session *scs.SessionManager

	// GoogleRedirect starts the browser half of the OAuth flow
	// (oauth2.LoginRedirector). Optional - API-only deployments may POST the
	// code to the callback directly.
	GoogleRedirect http.HandlerFunc

	// CookieTTL should match the token TTL so the cookie and the token
	// expire together
	CookieTTL time.Duration

	// PostLoginURL is where the google callback redirects after success
	PostLoginURL string
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Router builds the auth routes
func (s *Server) Router() *mux.Router {
	s.Middleware.EnsureReasonableDefaults()
	if s.Middleware.VerifyToken == nil {
		s.Middleware.VerifyToken = s.Auth.Tokens.Validate
	}
	if s.Session != nil && s.Middleware.SessionGetter == nil {
		s.Middleware.SessionGetter = func(r *http.Request, param string) any {
			return s.Session.GetString(r.Context(), param)
		}
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	if s.GoogleRedirect != nil {
		r.HandleFunc("/auth/google", s.GoogleRedirect).Methods(http.MethodGet)
	}
	r.HandleFunc("/auth/google/callback", s.handleGoogleCallback).Methods(http.MethodGet)
	r.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	return r
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	userID, err := s.Auth.Register(r.Context(), req.Email, req.Name, req.LastName, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"user_id": userID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	session, err := s.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.setLoggedInUser(session, w, r)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user_id": session.UserID})
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	// The state cookie is set by the login redirector before the provider
	// round trip. States are single use, so clear it regardless of outcome.
	stateCookie, _ := r.Cookie("oauthstate")
	http.SetCookie(w, &http.Cookie{Name: "oauthstate", Value: "", Path: "/", MaxAge: -1})
	if stateCookie == nil || stateCookie.Value == "" || r.FormValue("state") != stateCookie.Value {
		http.Error(w, `{"error": "Invalid oauth state"}`, http.StatusBadRequest)
		return
	}

	session, err := s.Auth.GoogleLogin(r.Context(), r.FormValue("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.setLoggedInUser(session, w, r)
	if s.PostLoginURL != "" {
		http.Redirect(w, r, s.PostLoginURL, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user_id": session.UserID})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	// Validate here rather than in middleware so expired and invalid tokens
	// keep their distinct (but equally coarse) outcomes.
	var claims *TokenClaims
	err := error(ErrTokenInvalid)
	for _, token := range s.Middleware.collectTokens(r) {
		if claims, err = s.Middleware.VerifyToken(token); err == nil {
			break
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.Auth.CurrentUser(r.Context(), claims.SubjectID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":        user.ID,
		"type":      user.Type,
		"email":     user.Email,
		"name":      user.Name,
		"last_name": user.LastName,
	})
}

// handleLogout clears the cookie and server-side session. This is advisory
// only: an already issued token stays cryptographically valid until its
// expiry since there is no revocation store.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.Session != nil {
		if err := s.Session.Clear(r.Context()); err != nil {
			log.Println("error clearing session: ", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now(),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true})
}

// setLoggedInUser sets the access-token cookie and session entry. The cookie
// lives exactly as long as the token it carries.
func (s *Server) setLoggedInUser(session *Session, w http.ResponseWriter, r *http.Request) {
	maxAge := int(s.cookieTTL().Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  time.Now().Add(s.cookieTTL()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	if s.Session != nil {
		s.Session.Put(r.Context(), s.Middleware.UserParamName, session.UserID)
	}
}

func (s *Server) cookieTTL() time.Duration {
	if s.CookieTTL > 0 {
		return s.CookieTTL
	}
	if s.Auth != nil && s.Auth.Tokens != nil {
		return s.Auth.Tokens.TTL
	}
	return 15 * time.Minute
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if authErr, ok := AsAuthError(err); ok {
		w.WriteHeader(authErr.Status)
		json.NewEncoder(w).Encode(map[string]any{"error": authErr.Message, "code": authErr.Code})
		return
	}
	// Unanticipated error - log it, return a generic failure
	log.Println("internal error: ", err)
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]any{"error": "Internal server error"})
}
