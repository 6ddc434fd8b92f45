// Package identikit implements a user-identity service: account
// registration, credential and federated (Google) authentication, and
// issuance/validation of bearer session tokens.
//
// # Architecture
//
// UserIdentity: a single tagged-variant account record. Internal accounts
// authenticate with a bcrypt-hashed password; google accounts carry no
// password and are matched by email on every federated login.
//
// TokenService: signs and verifies HS256 session tokens. Tokens are
// stateless - validity is a pure function of the secret key, the payload
// and the clock. There is no revocation store; logout is advisory.
//
// Authenticator: the orchestrator composing a UserStore, the password
// hasher and the token service into the register, login, google-login and
// introspection use cases. All anticipated failures are typed *AuthError
// values carrying a status code and a client-safe message.
//
// # Basic Usage
//
//	cfg, err := identikit.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := stores.NewFSUserStore(cfg.StoragePath)
//	tokens := identikit.NewTokenService(cfg.SecretKey, cfg.TokenIssuer, cfg.TokenTTL)
//	google := oauth2.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
//	auth := identikit.NewAuthenticator(store, tokens, google)
//
//	server := &identikit.Server{
//	    Auth:           auth,
//	    GoogleRedirect: oauth2.LoginRedirector(&google.Config),
//	}
//	http.ListenAndServe(":8080", server.Router())
//
// Swap stores.NewFSUserStore for the gorm or gae store to persist users in
// a relational database or Cloud Datastore.
package identikit
