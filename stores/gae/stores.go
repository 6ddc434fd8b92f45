//go:build !wasm
// +build !wasm

package gae

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/iterator"

	ik "github.com/identikit/identikit"
)

// KindUser is the Datastore kind for user identities
const KindUser = "UserIdentity"

// UserEntity is the Datastore entity for user identities
type UserEntity struct {
	Key            *datastore.Key `datastore:"__key__"`
	Type           string         `datastore:"type"`
	Email          string         `datastore:"email"`
	Name           string         `datastore:"name,noindex"`
	LastName       string         `datastore:"last_name,noindex"`
	HashedPassword string         `datastore:"hashed_password,noindex"`
	CreatedAt      time.Time      `datastore:"created_at"`
	UpdatedAt      time.Time      `datastore:"updated_at"`
}

func (e *UserEntity) ToUser() *ik.UserIdentity {
	return &ik.UserIdentity{
		ID:             e.Key.Name,
		Type:           ik.UserType(e.Type),
		Email:          e.Email,
		Name:           e.Name,
		LastName:       e.LastName,
		HashedPassword: e.HashedPassword,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// UserStore implements ik.UserStore using Google Cloud Datastore
type UserStore struct {
	client    *datastore.Client
	namespace string
}

// NewUserStore creates a new Datastore-backed UserStore
func NewUserStore(client *datastore.Client, namespace string) *UserStore {
	return &UserStore{client: client, namespace: namespace}
}

func (s *UserStore) namespacedKey(name string) *datastore.Key {
	key := datastore.NameKey(KindUser, name, nil)
	key.Namespace = s.namespace
	return key
}

func (s *UserStore) Create(ctx context.Context, user *ik.UserIdentity) (string, error) {
	userID := generateUserID()
	key := s.namespacedKey(userID)
	now := time.Now()

	entity := &UserEntity{
		Key:            key,
		Type:           string(user.Type),
		Email:          user.Email,
		Name:           user.Name,
		LastName:       user.LastName,
		HashedPassword: user.HashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.client.Put(ctx, key, entity); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *UserStore) Get(ctx context.Context, filter ik.Filter) (*ik.UserIdentity, error) {
	if filter.ID != "" {
		var entity UserEntity
		if err := s.client.Get(ctx, s.namespacedKey(filter.ID), &entity); err != nil {
			if err == datastore.ErrNoSuchEntity {
				return nil, nil
			}
			return nil, err
		}
		return entity.ToUser(), nil
	}
	if filter.Email != "" {
		return s.getByEmail(ctx, filter.Email)
	}
	return nil, fmt.Errorf("empty filter")
}

func (s *UserStore) getByEmail(ctx context.Context, email string) (*ik.UserIdentity, error) {
	query := datastore.NewQuery(KindUser).
		Namespace(s.namespace).
		FilterField("email", "=", email).
		Limit(1)

	it := s.client.Run(ctx, query)
	var entity UserEntity
	_, err := it.Next(&entity)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity.ToUser(), nil
}

func (s *UserStore) Update(ctx context.Context, filter ik.Filter, user *ik.UserIdentity) error {
	existing, err := s.Get(ctx, filter)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("user not found")
	}

	key := s.namespacedKey(existing.ID)
	entity := &UserEntity{
		Key:            key,
		Type:           string(user.Type),
		Email:          user.Email,
		Name:           user.Name,
		LastName:       user.LastName,
		HashedPassword: user.HashedPassword,
		CreatedAt:      existing.CreatedAt,
		UpdatedAt:      time.Now(),
	}
	_, err = s.client.Put(ctx, key, entity)
	return err
}

func (s *UserStore) Delete(ctx context.Context, filter ik.Filter) error {
	existing, err := s.Get(ctx, filter)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("user not found")
	}
	return s.client.Delete(ctx, s.namespacedKey(existing.ID))
}

func generateUserID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
