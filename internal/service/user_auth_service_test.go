package service

import (
	"errors"
	"testing"

	"github.com/sveneberth/viur-shop/internal/config"
)

func TestValidatePassword(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireNumber: true, RequireSpecial: true}
	cases := []struct {
		password string
		key      string
	}{
		{password: "Ab1!", key: "error.password_min_length"},
		{password: "abcdefg1!", key: "error.password_require_upper"},
		{password: "Abcdefgh!", key: "error.password_require_number"},
		{password: "Abcdefgh1", key: "error.password_require_special"},
		{password: "Abcdefg1!", key: ""},
	}
	for _, tc := range cases {
		err := validatePassword(policy, tc.password)
		if tc.key == "" {
			if err != nil {
				t.Fatalf("password %q should pass, got %v", tc.password, err)
			}
			continue
		}
		var policyErr *PasswordPolicyError
		if !errors.As(err, &policyErr) || policyErr.Key() != tc.key {
			t.Fatalf("password %q: want %s, got %v", tc.password, tc.key, err)
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("policy errors must match ErrWeakPassword")
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupShopTest(t)

	if _, _, _, err := env.users.Register("kunde@example.com", "short", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("want ErrWeakPassword, got %v", err)
	}
	if _, _, _, err := env.users.Register("not-an-email", "geheim123", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for bad email, got %v", err)
	}

	user, token, _, err := env.users.Register(" Kunde@Example.com ", "geheim123", "Kunde")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "kunde@example.com" || token == "" {
		t.Fatalf("unexpected registration result: %+v", user)
	}
	if _, _, _, err := env.users.Register("kunde@example.com", "geheim123", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("duplicate email should be rejected, got %v", err)
	}

	claims, err := env.users.ParseUserJWT(token)
	if err != nil || claims.UserID != user.ID {
		t.Fatalf("parse token failed: %+v (%v)", claims, err)
	}

	if _, _, _, err := env.users.Login("kunde@example.com", "falsch123", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	logged, _, expiresAt, err := env.users.Login("KUNDE@example.com", "geheim123", true)
	if err != nil || logged.ID != user.ID || logged.LastLoginAt == nil {
		t.Fatalf("login failed: %+v (%v)", logged, err)
	}
	if expiresAt.IsZero() {
		t.Fatalf("expected expiry")
	}
}

func TestLoggedInCustomerKeepsBasketAcrossSessions(t *testing.T) {
	env := setupShopTest(t)
	user, _, _, err := env.users.Register("stamm@example.com", "geheim123", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	desktop := env.session("desktop").WithUser(user.ID)
	first := env.basket(t, desktop)

	phone := env.session("phone").WithUser(user.ID)
	second := env.basket(t, phone)
	if first.ID != second.ID {
		t.Fatalf("customer basket should follow the account, got %d and %d", first.ID, second.ID)
	}
}
