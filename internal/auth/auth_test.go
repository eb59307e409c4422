package auth

import (
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("OldPass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "OldPass123" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword(hash, "OldPass123") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "NewPass456") {
		t.Error("expected wrong password to fail")
	}

	other, _ := HashPassword("OldPass123")
	if other == hash {
		t.Error("expected a fresh salt per hash")
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); err != ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ola.Nordmann@Example.NO "); got != "ola.nordmann@example.no" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
