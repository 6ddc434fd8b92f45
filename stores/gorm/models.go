//go:build !wasm
// +build !wasm

package gorm

import (
	"time"

	ik "github.com/identikit/identikit"
)

// UserModel is the GORM model for user identities
type UserModel struct {
	ID             string    `gorm:"primaryKey;size:64"`
	Type           string    `gorm:"size:16"`
	Email          string    `gorm:"size:255;index"`
	Name           string    `gorm:"size:255"`
	LastName       string    `gorm:"size:255"`
	HashedPassword string    `gorm:"size:128"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToUser() *ik.UserIdentity {
	return &ik.UserIdentity{
		ID:             m.ID,
		Type:           ik.UserType(m.Type),
		Email:          m.Email,
		Name:           m.Name,
		LastName:       m.LastName,
		HashedPassword: m.HashedPassword,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func UserToModel(u *ik.UserIdentity) *UserModel {
	return &UserModel{
		ID:             u.ID,
		Type:           string(u.Type),
		Email:          u.Email,
		Name:           u.Name,
		LastName:       u.LastName,
		HashedPassword: u.HashedPassword,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
