package authpw

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"inkwell/api/internal/store"
)

type memoryUserStore struct {
	users      map[string]store.User // key: user ID
	resets     map[string]string     // token -> user ID
	usedResets map[string]bool
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		users:      make(map[string]store.User),
		resets:     make(map[string]string),
		usedResets: make(map[string]bool),
	}
}

func (m *memoryUserStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return store.User{}, sql.ErrNoRows
}

func (m *memoryUserStore) GetUserByID(_ context.Context, id string) (store.User, error) {
	user, ok := m.users[id]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (m *memoryUserStore) CreateUser(_ context.Context, user store.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserStore) UpdateUserVerificationToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	user := m.users[userID]
	user.VerificationToken = token
	user.VerificationExpiresAt = &expiresAt
	m.users[userID] = user
	return nil
}

func (m *memoryUserStore) VerifyUserEmail(_ context.Context, token string) error {
	for id, user := range m.users {
		if user.VerificationToken == token {
			user.IsEmailVerified = true
			user.VerificationToken = ""
			m.users[id] = user
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memoryUserStore) UpdateUserPassword(_ context.Context, userID, passwordHash string) error {
	user := m.users[userID]
	user.PasswordHash = passwordHash
	m.users[userID] = user
	return nil
}

func (m *memoryUserStore) CreatePasswordReset(_ context.Context, userID, token string, _ time.Time) error {
	m.resets[token] = userID
	return nil
}

func (m *memoryUserStore) GetPasswordReset(_ context.Context, token string) (string, error) {
	if m.usedResets[token] {
		return "", sql.ErrNoRows
	}
	userID, ok := m.resets[token]
	if !ok {
		return "", sql.ErrNoRows
	}
	return userID, nil
}

func (m *memoryUserStore) MarkPasswordResetUsed(_ context.Context, token string) error {
	m.usedResets[token] = true
	return nil
}

func TestSignUpThenVerifyThenSignIn(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserStore())

	resp, err := svc.SignUp(ctx, SignUpRequest{Email: "avery@example.com", Password: "long-enough", DisplayName: "Avery"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if !resp.RequiresEmailVerify || resp.VerificationToken == "" {
		t.Fatalf("unexpected sign-up response: %+v", resp)
	}

	// signing in before verification reports the pending state
	pending, err := svc.SignIn(ctx, SignInRequest{Email: "avery@example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("SignIn() before verify error = %v", err)
	}
	if !pending.RequiresVerify {
		t.Fatal("expected RequiresVerify before email verification")
	}

	if err := svc.VerifyEmail(ctx, resp.VerificationToken); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}

	signedIn, err := svc.SignIn(ctx, SignInRequest{Email: "avery@example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if signedIn.RequiresVerify || signedIn.User.Email != "avery@example.com" {
		t.Fatalf("unexpected sign-in response: %+v", signedIn)
	}
}

func TestSignUpRejectsWeakOrDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserStore())

	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "a@b.c", Password: "short", DisplayName: "A"}); err == nil {
		t.Fatal("expected error for short password")
	}
	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "", Password: "long-enough", DisplayName: "A"}); err == nil {
		t.Fatal("expected error for missing email")
	}

	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "a@b.c", Password: "long-enough", DisplayName: "A"}); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "a@b.c", Password: "long-enough", DisplayName: "B"}); err == nil {
		t.Fatal("expected error for duplicate email")
	}
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserStore())

	resp, err := svc.SignUp(ctx, SignUpRequest{Email: "a@b.c", Password: "long-enough", DisplayName: "A"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if err := svc.VerifyEmail(ctx, resp.VerificationToken); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}

	if _, err := svc.SignIn(ctx, SignInRequest{Email: "a@b.c", Password: "wrong-password"}); err == nil {
		t.Fatal("expected error for wrong password")
	}
	if _, err := svc.SignIn(ctx, SignInRequest{Email: "nobody@b.c", Password: "long-enough"}); err == nil {
		t.Fatal("expected error for unknown email")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	storeImpl := newMemoryUserStore()
	svc := NewService(storeImpl)

	resp, err := svc.SignUp(ctx, SignUpRequest{Email: "a@b.c", Password: "long-enough", DisplayName: "A"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if err := svc.VerifyEmail(ctx, resp.VerificationToken); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}

	token, err := svc.RequestPasswordReset(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected reset token")
	}

	// unknown emails yield no token and no error
	if token2, err := svc.RequestPasswordReset(ctx, "nobody@b.c"); err != nil || token2 != "" {
		t.Fatalf("unknown email: token=%q err=%v", token2, err)
	}

	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"}); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	if _, err := svc.SignIn(ctx, SignInRequest{Email: "a@b.c", Password: "brand-new-pass"}); err != nil {
		t.Fatalf("SignIn() with new password error = %v", err)
	}

	// token is single use
	if err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "another-pass"}); err == nil {
		t.Fatal("expected error reusing reset token")
	}
}
