package identikit

import (
	"context"
	"time"
)

// UserType discriminates how an account authenticates
type UserType string

const (
	UserTypeInternal UserType = "internal" // local email/password account
	UserTypeGoogle   UserType = "google"   // federated Google account
)

// UserIdentity is a single user account. Google accounts never carry a
// password hash; internal accounts always do. ID is assigned by the store
// and is empty until the record has been persisted.
type UserIdentity struct {
	ID             string    `json:"id"`
	Type           UserType  `json:"type"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	LastName       string    `json:"last_name"`
	HashedPassword string    `json:"hashed_password,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Filter selects a single user record. Exactly one field should be set.
type Filter struct {
	ID    string
	Email string
}

// UserStore is the persistence collaborator: a generic single-document
// handler keyed by field filters. Implementations must return (nil, nil)
// from Get when no record matches - absence is not an error here, the
// orchestrator decides whether a missing record is a failure.
//
// Email uniqueness is enforced by the orchestrator with a pre-insert
// existence check, not by the store, so it is best-effort under concurrent
// registration.
type UserStore interface {
	// Create persists a new user and returns its assigned id
	Create(ctx context.Context, user *UserIdentity) (string, error)

	// Get returns the first user matching the filter, or nil if none does
	Get(ctx context.Context, filter Filter) (*UserIdentity, error)

	// Update overwrites the user matching the filter
	Update(ctx context.Context, filter Filter, user *UserIdentity) error

	// Delete removes the user matching the filter
	Delete(ctx context.Context, filter Filter) error
}
