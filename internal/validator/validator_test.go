package validator

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+c@sub.example.co.in"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("%q: unexpected error: %v", email, err)
		}
	}
	invalid := []string{"", "alice", "alice@", "@example.com", "alice@example", "a b@example.com"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("%q: expected rejection", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"alice", "alice_01", "alice@example.com", "a-b.c"}
	for _, username := range valid {
		if err := ValidateUsername(username); err != nil {
			t.Errorf("%q: unexpected error: %v", username, err)
		}
	}
	invalid := []string{"", "ab", "has space", "semi;colon"}
	for _, username := range invalid {
		if err := ValidateUsername(username); err == nil {
			t.Errorf("%q: expected rejection", username)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Fatal("expected rejection")
	}
}
