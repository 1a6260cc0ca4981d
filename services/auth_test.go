package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestAuth(t *testing.T, maxAttempts int) *AuthService {
	t.Helper()
	return NewAuthService(newTestStore(t), NewMemoryLimiter(maxAttempts, time.Minute), "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestAuth(t, 5)
	ctx := context.Background()

	token, user, err := s.Register(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if token == "" || user.ID == 0 {
		t.Fatalf("got token %q user %+v", token, user)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in clear text")
	}

	caller, err := s.VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT failed: %v", err)
	}
	if caller.ID != user.ID || caller.Username != "alice" {
		t.Errorf("got caller %+v", caller)
	}

	if _, _, err := s.Register(ctx, "ALICE", "another-pass"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	if _, _, err := s.Login(ctx, "alice", "correct-horse", "alice|ip"); err != nil {
		t.Errorf("Login failed: %v", err)
	}
	if _, _, err := s.Login(ctx, "alice", "wrong-password", "alice|ip"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := s.Login(ctx, "nobody", "whatever1", "nobody|ip"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestAuth(t, 5)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "al", "long-enough"},
		{"bad characters", "al ice", "long-enough"},
		{"short password", "alice", "short"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := s.Register(ctx, tc.username, tc.password); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestAuth(t, 2)
	ctx := context.Background()
	if _, _, err := s.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		s.Login(ctx, "alice", "nope-nope", "alice|ip")
	}
	if _, _, err := s.Login(ctx, "alice", "correct-horse", "alice|ip"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if _, _, err := s.Login(ctx, "alice", "correct-horse", "alice|other-ip"); err != nil {
		t.Errorf("other key should not be limited: %v", err)
	}
}

func TestVerifyJWTRejects(t *testing.T) {
	s := newTestAuth(t, 5)
	ctx := context.Background()
	issued := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	token, _, err := s.Register(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	other := NewAuthService(nil, nil, "different-secret")
	other.now = s.now
	if _, err := other.VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: expected ErrInvalidToken, got %v", err)
	}

	if _, err := s.VerifyJWT("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: expected ErrInvalidToken, got %v", err)
	}

	s.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	if _, err := s.VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: expected ErrInvalidToken, got %v", err)
	}
}
