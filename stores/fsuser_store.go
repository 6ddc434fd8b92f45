package stores

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ik "github.com/identikit/identikit"
)

// FSUserStore stores user records as JSON files, with a per-email index
// file so lookups by email stay O(1).
type FSUserStore struct {
	StoragePath string
}

func NewFSUserStore(storagePath string) *FSUserStore {
	return &FSUserStore{StoragePath: storagePath}
}

type emailIndexEntry struct {
	UserID string `json:"user_id"`
}

func (s *FSUserStore) userPath(userID string) string {
	return filepath.Join(s.StoragePath, "users", filepath.Base(userID)+".json")
}

func (s *FSUserStore) emailPath(email string) string {
	// filepath.Base prevents path traversal via crafted emails
	return filepath.Join(s.StoragePath, "emails", filepath.Base(email)+".json")
}

// Create persists a new user and returns its assigned id
func (s *FSUserStore) Create(ctx context.Context, user *ik.UserIdentity) (string, error) {
	stored := *user
	stored.ID = generateUserID()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if err := s.writeUser(&stored); err != nil {
		return "", err
	}
	if err := s.writeEmailIndex(stored.Email, stored.ID); err != nil {
		return "", err
	}
	return stored.ID, nil
}

// Get returns the matching user, or nil if no record matches the filter
func (s *FSUserStore) Get(ctx context.Context, filter ik.Filter) (*ik.UserIdentity, error) {
	userID := filter.ID
	if userID == "" && filter.Email != "" {
		entry, err := s.readEmailIndex(filter.Email)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, nil
		}
		userID = entry.UserID
	}
	if userID == "" {
		return nil, fmt.Errorf("empty filter")
	}

	data, err := os.ReadFile(s.userPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var user ik.UserIdentity
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update overwrites the user matching the filter
func (s *FSUserStore) Update(ctx context.Context, filter ik.Filter, user *ik.UserIdentity) error {
	existing, err := s.Get(ctx, filter)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("user not found")
	}

	updated := *user
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	if err := s.writeUser(&updated); err != nil {
		return err
	}
	if updated.Email != existing.Email {
		os.Remove(s.emailPath(existing.Email))
		return s.writeEmailIndex(updated.Email, updated.ID)
	}
	return nil
}

// Delete removes the user matching the filter
func (s *FSUserStore) Delete(ctx context.Context, filter ik.Filter) error {
	existing, err := s.Get(ctx, filter)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("user not found")
	}
	os.Remove(s.emailPath(existing.Email))
	return os.Remove(s.userPath(existing.ID))
}

func (s *FSUserStore) writeUser(user *ik.UserIdentity) error {
	path := s.userPath(user.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

func (s *FSUserStore) writeEmailIndex(email, userID string) error {
	path := s.emailPath(email)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(emailIndexEntry{UserID: userID})
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

func (s *FSUserStore) readEmailIndex(email string) (*emailIndexEntry, error) {
	data, err := os.ReadFile(s.emailPath(email))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entry emailIndexEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// generateUserID generates a cryptographically secure user ID
func generateUserID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
