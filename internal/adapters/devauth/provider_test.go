package devauth

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/ports"
)

func TestAuthenticator_DefaultRole(t *testing.T) {
	a, err := NewAuthenticator(Config{DefaultRole: domainauth.RoleSubmanager})
	if err != nil {
		t.Fatalf("NewAuthenticator error: %v", err)
	}
	id, err := a.Authenticate(context.Background(), ports.Credentials{Email: "pat@dev.local", Password: "x"})
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if id.Role != domainauth.RoleSubmanager || id.Email != "pat@dev.local" || id.FirstName != "Pat" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if time.Until(id.ExpiresAt) < 7*time.Hour {
		t.Fatalf("expected default 8h expiry, got %v", id.ExpiresAt)
	}
}

func TestAuthenticator_RoleFromLocalPart(t *testing.T) {
	a, _ := NewAuthenticator(Config{})
	id, err := a.Authenticate(context.Background(), ports.Credentials{Email: "manager@dev.local", Password: "x"})
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if id.Role != domainauth.RoleManager {
		t.Fatalf("expected manager, got %q", id.Role)
	}
}

func TestAuthenticator_Rejects(t *testing.T) {
	a, _ := NewAuthenticator(Config{Password: "letmein"})
	cases := []ports.Credentials{
		{Email: "", Password: "letmein"},
		{Email: "no-at-sign", Password: "letmein"},
		{Email: "a@b.c", Password: ""},
		{Email: "a@b.c", Password: "wrong"},
	}
	for _, c := range cases {
		if _, err := a.Authenticate(context.Background(), c); !errors.Is(err, ports.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials for %+v, got %v", c, err)
		}
	}
}

func TestNewAuthenticator_InvalidRole(t *testing.T) {
	if _, err := NewAuthenticator(Config{DefaultRole: domainauth.RoleGuest}); err == nil {
		t.Fatal("expected error for guest default role")
	}
}
