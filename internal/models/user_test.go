package models

import "testing"

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity("  Sari ", " Sari@Example.COM ")
	if err != nil {
		t.Fatalf("NewIdentity failed: %v", err)
	}
	if id.Name != "Sari" || id.Email != "sari@example.com" {
		t.Errorf("identity not normalised: %+v", id)
	}

	invalid := []struct{ name, email string }{
		{"", "sari@example.com"},
		{"Sari", ""},
		{"Sari", "not-an-email"},
	}
	for _, in := range invalid {
		if _, err := NewIdentity(in.name, in.email); err == nil {
			t.Errorf("NewIdentity(%q, %q) expected error", in.name, in.email)
		}
	}
}
