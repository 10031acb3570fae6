package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shebloom/shebloom/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(testConfig(), NewMemoryRepository())
	ctx := context.Background()

	acc, err := svc.Register(ctx, Credentials{Email: "Ada@Example.com", Password: "sup3rsecret", Name: "Ada"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acc.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %s", acc.Email)
	}

	logged, pair, err := svc.Login(ctx, Credentials{Email: "ada@example.com", Password: "sup3rsecret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != acc.ID {
		t.Fatalf("expected account %s, got %s", acc.ID, logged.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	sub, ver, err := svc.Verify(pair.AccessToken, testConfig().JWTSecret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != acc.ID || ver != 0 {
		t.Fatalf("unexpected claims: sub=%s ver=%d", sub, ver)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(testConfig(), NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, Credentials{Email: "a@b.co", Password: "password1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(ctx, Credentials{Email: "a@b.co", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(testConfig(), NewMemoryRepository())

	if _, err := svc.Register(context.Background(), Credentials{Email: "a@b.co", Password: "short"}); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	svc := NewService(testConfig(), NewMemoryRepository())
	ctx := context.Background()

	acc, err := svc.Register(ctx, Credentials{Email: "a@b.co", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, Credentials{Email: "a@b.co", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh before logout: %v", err)
	}

	if err := svc.Logout(ctx, acc.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after logout, got %v", err)
	}
}
