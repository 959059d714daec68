package auth

import (
	"errors"
	"testing"
	"time"

	"dochub/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	m, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	token, err := m.Issue("user-123", "manager")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-123" || claims.Role != "manager" {
		t.Errorf("claims = (%s, %s), want (user-123, manager)", claims.Subject, claims.Role)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	m, _ := NewTokenManager("test-secret", time.Hour)
	other, _ := NewTokenManager("different-secret", time.Hour)

	token, err := other.Issue("user-123", "admin")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if _, err := m.Verify("not.a.token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("garbage err = %v, want unauthorized", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m, _ := NewTokenManager("test-secret", -time.Minute)

	token, err := m.Issue("user-123", "user")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestEmptySecretRefused(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("empty secret accepted")
	}
}
