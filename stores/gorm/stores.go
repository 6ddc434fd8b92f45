//go:build !wasm
// +build !wasm

package gorm

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"

	ik "github.com/identikit/identikit"
)

// AutoMigrate runs database migrations for the identikit tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{})
}

// UserStore implements ik.UserStore using GORM
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *ik.UserIdentity) (string, error) {
	model := UserToModel(user)
	model.ID = generateUserID()
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

func (s *UserStore) Get(ctx context.Context, filter ik.Filter) (*ik.UserIdentity, error) {
	query, args, err := filterClause(filter)
	if err != nil {
		return nil, err
	}

	var model UserModel
	if err := s.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) Update(ctx context.Context, filter ik.Filter, user *ik.UserIdentity) error {
	existing, err := s.Get(ctx, filter)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("user not found")
	}

	model := UserToModel(user)
	model.ID = existing.ID
	model.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(model).Error
}

func (s *UserStore) Delete(ctx context.Context, filter ik.Filter) error {
	query, args, err := filterClause(filter)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where(query, args...).Delete(&UserModel{}).Error
}

func filterClause(filter ik.Filter) (string, []any, error) {
	switch {
	case filter.ID != "":
		return "id = ?", []any{filter.ID}, nil
	case filter.Email != "":
		return "email = ?", []any{filter.Email}, nil
	default:
		return "", nil, fmt.Errorf("empty filter")
	}
}

func generateUserID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
