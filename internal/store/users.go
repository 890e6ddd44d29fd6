package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/malawibank/analyzer/internal/domain"
)

const (
	usersKey   = "malawi_bank_users"
	sessionKey = "malawi_bank_session"
)

// StoredUser is a user record as persisted: the public fields plus the
// bcrypt hash of the secret. The hash never leaves this package's callers
// except through the auth layer.
type StoredUser struct {
	domain.User
	Secret string `json:"secret"`
}

// UserRepo persists the users table under one key as a JSON array.
type UserRepo struct {
	kv KV
}

// NewUserRepo wraps a KV.
func NewUserRepo(kv KV) *UserRepo {
	return &UserRepo{kv: kv}
}

// All returns every stored user record.
func (r *UserRepo) All() ([]StoredUser, error) {
	b, ok, err := r.kv.Get(usersKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []StoredUser{}, nil
	}
	var users []StoredUser
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, fmt.Errorf("store.UserRepo.All: %w", err)
	}
	return users, nil
}

// SaveAll replaces the whole users table.
func (r *UserRepo) SaveAll(users []StoredUser) error {
	b, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("store.UserRepo.SaveAll: %w", err)
	}
	return r.kv.Put(usersKey, b)
}

// FindByEmail looks a record up case-insensitively.
func (r *UserRepo) FindByEmail(email string) (*StoredUser, bool, error) {
	users, err := r.All()
	if err != nil {
		return nil, false, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], true, nil
		}
	}
	return nil, false, nil
}

// FindByID looks a record up by id.
func (r *UserRepo) FindByID(id string) (*StoredUser, bool, error) {
	users, err := r.All()
	if err != nil {
		return nil, false, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], true, nil
		}
	}
	return nil, false, nil
}

// SessionRepo persists the single active session record.
type SessionRepo struct {
	kv KV
}

// NewSessionRepo wraps a KV.
func NewSessionRepo(kv KV) *SessionRepo {
	return &SessionRepo{kv: kv}
}

// Get returns the session user, if any.
func (r *SessionRepo) Get() (*domain.User, bool, error) {
	b, ok, err := r.kv.Get(sessionKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var u domain.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, false, fmt.Errorf("store.SessionRepo.Get: %w", err)
	}
	return &u, true, nil
}

// Put replaces the session record. Only public fields are stored, never the
// secret hash.
func (r *SessionRepo) Put(u *domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("store.SessionRepo.Put: %w", err)
	}
	return r.kv.Put(sessionKey, b)
}

// Clear removes the session record; user records persist.
func (r *SessionRepo) Clear() error {
	return r.kv.Delete(sessionKey)
}
