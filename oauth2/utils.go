package oauth2

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// StateCookieName holds the CSRF state set before redirecting to the provider
const StateCookieName = "oauthstate"

// SetStateCookie generates a random state value, sets it as a short lived
// cookie and returns it for inclusion in the provider redirect URL.
func SetStateCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		log.Println("error generating oauth state: ", err)
	}
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:    StateCookieName,
		Value:   state,
		Path:    "/",
		Expires: time.Now().Add(10 * time.Minute),
		MaxAge:  600,
	})
	return state
}

// VerifyState compares the state echoed back by the provider with the state
// cookie. The cookie is cleared either way - states are single use.
func VerifyState(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(StateCookieName)
	http.SetCookie(w, &http.Cookie{Name: StateCookieName, Value: "", Path: "/", MaxAge: -1})
	if err != nil || cookie.Value == "" {
		return false
	}
	return r.FormValue("state") == cookie.Value
}

// LoginRedirector returns a handler that starts the browser half of the
// authorization-code flow: set the state cookie and send the user to the
// provider's consent page.
func LoginRedirector(cfg *oauth2.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := SetStateCookie(w)
		http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusFound)
	}
}
