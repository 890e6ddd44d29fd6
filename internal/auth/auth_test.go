package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/malawibank/analyzer/internal/domain"
	"github.com/malawibank/analyzer/internal/store"
)

func newTestService() (*Service, *store.UserRepo) {
	kv := store.NewMemKV()
	users := store.NewUserRepo(kv)
	svc := New(users, store.NewSessionRepo(kv), 0)
	svc.hashCost = bcrypt.MinCost
	return svc, users
}

func TestSignUpEstablishesSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "chimwemwe@example.com", "secret123", "Chimwemwe")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.Plan != domain.PlanFree {
		t.Errorf("Plan = %q, want FREE", u.Plan)
	}
	if u.ID == "" {
		t.Error("ID not assigned")
	}

	sess, err := svc.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if sess == nil || sess.ID != u.ID {
		t.Errorf("session user = %+v, want %q", sess, u.ID)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "dalitso@example.com", "pw", "Dalitso"); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}

	before, _ := users.All()

	_, err := svc.SignUp(ctx, "DALITSO@example.com", "other", "Impostor")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("second SignUp error = %v, want ErrEmailTaken", err)
	}

	after, _ := users.All()
	if len(after) != len(before) {
		t.Errorf("users table mutated by failed signup: %d -> %d", len(before), len(after))
	}
}

func TestSignIn(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "mphatso@example.com", "correct-horse", "Mphatso"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	tests := []struct {
		name    string
		email   string
		secret  string
		wantErr bool
	}{
		{"valid", "mphatso@example.com", "correct-horse", false},
		{"valid different email case", "MPHATSO@example.com", "correct-horse", false},
		{"wrong secret", "mphatso@example.com", "wrong", true},
		{"unknown email", "ghost@example.com", "correct-horse", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignIn(ctx, tt.email, tt.secret)
			if tt.wantErr {
				// Unknown email and wrong secret must be indistinguishable.
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("SignIn error = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil {
				t.Errorf("SignIn error = %v", err)
			}
		})
	}
}

func TestSignOutKeepsRecords(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "limbani@example.com", "pw", "Limbani"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	if u, err := svc.CurrentUser(ctx); err != nil || u != nil {
		t.Errorf("CurrentUser after SignOut = %v, %v; want nil, nil", u, err)
	}
	all, _ := users.All()
	if len(all) != 1 {
		t.Errorf("user records = %d, want 1", len(all))
	}
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "known@example.com", "pw", "Known"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	// Succeeds for existing and unknown accounts alike.
	if err := svc.ResetPassword(ctx, "known@example.com"); err != nil {
		t.Errorf("ResetPassword(known) = %v", err)
	}
	if err := svc.ResetPassword(ctx, "unknown@example.com"); err != nil {
		t.Errorf("ResetPassword(unknown) = %v", err)
	}

	if err := svc.ResetPassword(ctx, "not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("ResetPassword(malformed) = %v, want ErrInvalidEmail", err)
	}
}

func TestUpgradePlan(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	target, err := svc.SignUp(ctx, "upgrade@example.com", "pw", "Target")
	if err != nil {
		t.Fatalf("SignUp target: %v", err)
	}
	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	bystander, err := svc.SignUp(ctx, "bystander@example.com", "pw", "Bystander")
	if err != nil {
		t.Fatalf("SignUp bystander: %v", err)
	}

	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	updated, err := svc.UpgradePlan(ctx, target.ID, domain.PaymentAirtel)
	if err != nil {
		t.Fatalf("UpgradePlan: %v", err)
	}

	if updated.Plan != domain.PlanPro {
		t.Errorf("Plan = %q, want PRO", updated.Plan)
	}
	if updated.Subscription == nil {
		t.Fatal("Subscription not attached")
	}
	if updated.Subscription.Method != domain.PaymentAirtel {
		t.Errorf("Method = %q", updated.Subscription.Method)
	}
	if updated.Subscription.Status != domain.SubscriptionActive {
		t.Errorf("Status = %q", updated.Subscription.Status)
	}

	wantBilling := fixed.Add(30 * 24 * time.Hour)
	diff := updated.Subscription.NextBillingDate.Sub(wantBilling)
	if diff < -time.Second || diff > time.Second {
		t.Errorf("NextBillingDate = %v, want %v (±1s)", updated.Subscription.NextBillingDate, wantBilling)
	}

	// Non-target records are untouched.
	rec, ok, _ := users.FindByID(bystander.ID)
	if !ok || rec.Plan != domain.PlanFree || rec.Subscription != nil {
		t.Errorf("bystander mutated: %+v", rec)
	}

	// The active session belongs to the bystander, so it must not change.
	sess, _ := svc.CurrentUser(ctx)
	if sess == nil || sess.Plan != domain.PlanFree {
		t.Errorf("session = %+v, want untouched bystander", sess)
	}
}

func TestUpgradePlanRefreshesOwnSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "self@example.com", "pw", "Self")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := svc.UpgradePlan(ctx, u.ID, domain.PaymentVisa); err != nil {
		t.Fatalf("UpgradePlan: %v", err)
	}

	sess, _ := svc.CurrentUser(ctx)
	if sess == nil || sess.Plan != domain.PlanPro || sess.Subscription == nil {
		t.Errorf("session not refreshed: %+v", sess)
	}
}

func TestUpgradePlanUnknownUser(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.UpgradePlan(context.Background(), "nope", domain.PaymentPaypal); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpgradePlan(unknown) = %v, want ErrUserNotFound", err)
	}
}
