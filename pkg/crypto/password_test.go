package crypto

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "secret123!" {
		t.Fatal("expected hash to differ from plaintext")
	}

	if !VerifyPassword(hash, "secret123!") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "incorrect") {
		t.Fatal("expected mismatched password to fail verification")
	}
}
