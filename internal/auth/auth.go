// Package auth is the mock identity provider: registration, sign-in,
// password reset and plan upgrades over the process-local store. It stands
// in for a real identity service and is consumed only through the Provider
// interface.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/malawibank/analyzer/internal/domain"
	"github.com/malawibank/analyzer/internal/store"
)

var (
	// ErrEmailTaken is returned by SignUp for an already-registered email
	// (case-insensitive).
	ErrEmailTaken = errors.New("this email is already registered")

	// ErrInvalidCredentials covers both unknown email and wrong secret, so
	// sign-in never reveals which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidEmail is returned by ResetPassword for malformed addresses.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrUserNotFound is returned by UpgradePlan for an unknown user id.
	ErrUserNotFound = errors.New("user not found")
)

// subscriptionPeriod is the billing cycle attached on upgrade.
const subscriptionPeriod = 30 * 24 * time.Hour

// Provider is the pluggable identity capability. Callers never touch
// storage mechanics directly.
type Provider interface {
	// CurrentUser returns the session user, or nil when signed out.
	CurrentUser(ctx context.Context) (*domain.User, error)
	SignUp(ctx context.Context, email, secret, name string) (*domain.User, error)
	SignIn(ctx context.Context, email, secret string) (*domain.User, error)
	SignOut(ctx context.Context) error
	// ResetPassword fails only on malformed email syntax; it deliberately
	// does not disclose whether the account exists.
	ResetPassword(ctx context.Context, email string) error
	UpgradePlan(ctx context.Context, userID string, method domain.PaymentMethod) (*domain.User, error)
}

// Service is the store-backed Provider.
type Service struct {
	users    *store.UserRepo
	sessions *store.SessionRepo

	// latency simulates the round trip of a remote identity service on
	// session restore; zero in tests.
	latency  time.Duration
	now      func() time.Time
	hashCost int
}

// New creates a Service over the given repositories.
func New(users *store.UserRepo, sessions *store.SessionRepo, latency time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		latency:  latency,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// CurrentUser implements Provider.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}
	u, ok, err := s.sessions.Get()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return u, nil
}

// SignUp implements Provider. New users start on the FREE plan with an
// established session.
func (s *Service) SignUp(ctx context.Context, email, secret, name string) (*domain.User, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	if _, exists, err := s.users.FindByEmail(email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("auth.SignUp: hash secret: %w", err)
	}

	user := domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Plan:  domain.PlanFree,
	}

	users, err := s.users.All()
	if err != nil {
		return nil, err
	}
	users = append(users, store.StoredUser{User: user, Secret: string(hash)})
	if err := s.users.SaveAll(users); err != nil {
		return nil, err
	}

	if err := s.sessions.Put(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignIn implements Provider. Any mismatch, unknown email or wrong secret,
// yields the same ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, secret string) (*domain.User, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	rec, ok, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.Secret), []byte(secret)) != nil {
		return nil, ErrInvalidCredentials
	}

	user := rec.User
	if err := s.sessions.Put(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut implements Provider. Only the session is cleared; the user record
// persists.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.sleep(ctx); err != nil {
		return err
	}
	return s.sessions.Clear()
}

// ResetPassword implements Provider.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	if err := s.sleep(ctx); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	// A real provider would send a reset email here. Success is reported
	// whether or not the account exists.
	return nil
}

// UpgradePlan implements Provider. The target user moves to PRO with an
// active subscription billing 30 days out; every other record is untouched.
// When the active session belongs to the target, the session copy is
// refreshed too.
func (s *Service) UpgradePlan(ctx context.Context, userID string, method domain.PaymentMethod) (*domain.User, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	users, err := s.users.All()
	if err != nil {
		return nil, err
	}

	var updated *domain.User
	for i := range users {
		if users[i].ID != userID {
			continue
		}
		users[i].Plan = domain.PlanPro
		users[i].Subscription = &domain.Subscription{
			Method:          method,
			Status:          domain.SubscriptionActive,
			NextBillingDate: s.now().Add(subscriptionPeriod),
		}
		u := users[i].User
		updated = &u
		break
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}

	if err := s.users.SaveAll(users); err != nil {
		return nil, err
	}

	if sess, ok, err := s.sessions.Get(); err != nil {
		return nil, err
	} else if ok && sess.ID == userID {
		if err := s.sessions.Put(updated); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// sleep waits out the simulated latency, honoring cancellation.
func (s *Service) sleep(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Provider = (*Service)(nil)
