package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/xe"
	"go.uber.org/zap"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(zap.NewNop(), newTestDB(t), &config.Config{})
}

func TestGetCurrentUserVanishedUserIsInvalidToken(t *testing.T) {
	s := newTestAuthService(t)

	_, err := s.GetCurrentUser(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if !errors.Is(err, xe.ErrInvalidToken) {
		t.Fatalf("err = %v, want invalid-token for a missing user row", err)
	}
}

func TestChangePasswordVanishedUserIsInvalidToken(t *testing.T) {
	s := newTestAuthService(t)

	err := s.ChangePassword(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV", "old", "newpassword")
	if !errors.Is(err, xe.ErrInvalidToken) {
		t.Fatalf("err = %v, want invalid-token for a missing user row", err)
	}
}

func TestRegisterThenGetCurrentUser(t *testing.T) {
	s := newTestAuthService(t)

	created, err := s.Register(context.Background(), RegisterRequest{
		Username: "trader",
		Email:    "trader@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := s.GetCurrentUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get current user: %v", err)
	}
	if got.Username != "trader" || got.Email != "trader@example.com" {
		t.Errorf("got %+v", got)
	}
	if got.Preferences.Theme != "light" {
		t.Errorf("Preferences = %+v, want defaults", got.Preferences)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestAuthService(t)

	req := RegisterRequest{
		Username: "trader",
		Email:    "trader@example.com",
		Password: "secret123",
	}
	if _, err := s.Register(context.Background(), req); err != nil {
		t.Fatalf("register: %v", err)
	}

	req.Email = "other@example.com"
	if _, err := s.Register(context.Background(), req); !errors.Is(err, xe.ErrAccountAlreadyUsed) {
		t.Fatalf("err = %v, want account-already-used", err)
	}
}
