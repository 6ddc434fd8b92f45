package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	ik "github.com/identikit/identikit"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// DefaultTimeout bounds each external provider call. The provider is a
// third party and an unbounded call would stall the serving goroutine.
const DefaultTimeout = 10 * time.Second

// GoogleClient exchanges an authorization code for a federated identity.
// The exchange is two sequential calls: POST the code to the token endpoint,
// then GET the user-info endpoint with the returned bearer token. There is
// no retry logic - authorization codes are single use, so a failed exchange
// is non-recoverable for that request.
type GoogleClient struct {
	Config      oauth2.Config
	UserInfoURL string

	// HTTPClient is used for both provider calls. Defaults to a client
	// bounded by Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewGoogleClient creates an exchange client against Google's endpoints.
// Tests point Config.Endpoint and UserInfoURL at local servers.
func NewGoogleClient(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

func (g *GoogleClient) httpClient() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Exchange runs the authorization-code exchange and returns a provisional
// google-typed identity ready for persistence lookup. Any token endpoint
// failure (including a response without an access token, or a timeout) maps
// to ErrOAuthExchangeFailed; a user-info response missing email, given name
// or family name maps to ErrProfileIncomplete.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (*ik.UserIdentity, error) {
	client := g.httpClient()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	token, err := g.Config.Exchange(ctx, code)
	if err != nil {
		log.Println("code exchange failed: ", err)
		return nil, ik.ErrOAuthExchangeFailed
	}
	if token.AccessToken == "" {
		return nil, ik.ErrOAuthExchangeFailed
	}

	info, err := g.fetchUserInfo(ctx, client, token.AccessToken)
	if err != nil {
		log.Println("user info fetch failed: ", err)
		return nil, ik.ErrOAuthExchangeFailed
	}

	email, _ := info["email"].(string)
	givenName, _ := info["given_name"].(string)
	familyName, _ := info["family_name"].(string)
	if email == "" || givenName == "" || familyName == "" {
		return nil, ik.ErrProfileIncomplete
	}

	return &ik.UserIdentity{
		Type:     ik.UserTypeGoogle,
		Email:    email,
		Name:     givenName,
		LastName: familyName,
	}, nil
}

func (g *GoogleClient) fetchUserInfo(ctx context.Context, client *http.Client, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading user info response: %w", err)
	}

	var info map[string]any
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed decoding user info response: %w", err)
	}
	return info, nil
}
