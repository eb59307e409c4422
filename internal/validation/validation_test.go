package validation

import (
	"testing"
)

func TestRequiredAndEmail(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	Email("email", "not-an-email", v)
	MinLength("password", "abc", 8, v)

	if v.Empty() {
		t.Fatal("expected violations")
	}
	want := map[string]string{"name": "required", "email": "invalid_email", "password": "too_short"}
	for f, rule := range want {
		if v[f] != rule {
			t.Errorf("%s = %q, want %q", f, v[f], rule)
		}
	}
	if got := v.Error(); got != "invalid input (email: invalid_email, name: required, password: too_short)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestEmailKeepsRequired(t *testing.T) {
	v := Violations{}
	Required("email", "", v)
	Email("email", "", v)
	if v["email"] != "required" {
		t.Errorf("email = %q, want required", v["email"])
	}
}

func TestValidInput(t *testing.T) {
	v := Violations{}
	Required("name", "Kari", v)
	Email("email", "kari@example.no", v)
	MinLength("password", "Langt-passord1", 8, v)
	if err := v.Err(); err != nil {
		t.Fatalf("unexpected violations: %v", err)
	}
}

func TestEmailRejectsDisplayName(t *testing.T) {
	v := Violations{}
	Email("email", "Kari <kari@example.no>", v)
	if v["email"] != "invalid_email" {
		t.Error("expected a bare address to be required")
	}
}
