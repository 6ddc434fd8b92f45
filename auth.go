package identikit

import (
	"context"
	"fmt"
	"log"
)

// Exchanger trades an authorization code for a provisional federated identity
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*UserIdentity, error)
}

// Session is the result of a successful authentication: the persisted user
// id and a bearer token asserting it.
type Session struct {
	UserID string `json:"user_id"`
	Token  string `json:"-"`
}

// Authenticator composes the store, hasher and token service into the
// register / login / federated-login / introspection use cases. All
// collaborators are injected at construction; there are no globals. Every
// method returns a typed *AuthError for anticipated failures - the boundary
// layer maps those to transport status codes.
type Authenticator struct {
	Store     UserStore
	Tokens    *TokenService
	Exchanger Exchanger
}

func NewAuthenticator(store UserStore, tokens *TokenService, exchanger Exchanger) *Authenticator {
	return &Authenticator{Store: store, Tokens: tokens, Exchanger: exchanger}
}

// Register creates a new internal account and returns its assigned id.
// Email uniqueness is a best-effort pre-insert check, not a storage
// constraint, so concurrent registrations of the same email can race.
func (a *Authenticator) Register(ctx context.Context, email, name, lastName, password string) (string, error) {
	existing, err := a.Store.Get(ctx, Filter{Email: email})
	if err != nil {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return "", ErrUserAlreadyExists
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	user := &UserIdentity{
		Type:           UserTypeInternal,
		Email:          email,
		Name:           name,
		LastName:       lastName,
		HashedPassword: hashed,
	}
	id, err := a.Store.Create(ctx, user)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// Login verifies a local credential and issues a session token
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := a.Store.Get(ctx, Filter{Email: email})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !VerifyPassword(password, user.HashedPassword) {
		return nil, ErrIncorrectPassword
	}

	return a.issueSession(user)
}

// GoogleLogin exchanges the authorization code and issues a session token.
// A returning federated user is matched by email and never duplicated; a
// first-time user is persisted as a google account with no password. No
// persistence write happens when the exchange fails.
func (a *Authenticator) GoogleLogin(ctx context.Context, code string) (*Session, error) {
	shell, err := a.Exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	existing, err := a.Store.Get(ctx, Filter{Email: shell.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return a.issueSession(existing)
	}

	id, err := a.Store.Create(ctx, shell)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	shell.ID = id
	log.Printf("created google user for %s", shell.Email)
	return a.issueSession(shell)
}

// CurrentUser resolves the subject id of a validated token to its account
func (a *Authenticator) CurrentUser(ctx context.Context, subjectID string) (*UserIdentity, error) {
	user, err := a.Store.Get(ctx, Filter{ID: subjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (a *Authenticator) issueSession(user *UserIdentity) (*Session, error) {
	token, err := a.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Token: token}, nil
}
