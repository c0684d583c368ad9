package crypto

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher error: %v", err)
	}
	return h
}

func TestBcryptHasher_HashIsSalted(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if first == second {
		t.Error("expected two hashes of the same password to differ")
	}
	if strings.Contains(first, "secret1") {
		t.Error("hash must not contain the plaintext")
	}
}

func TestBcryptHasher_VerifyRoundTrip(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := h.Verify("secret1", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Error("expected verification to succeed")
	}
}

func TestBcryptHasher_VerifyWrongPassword(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := h.Verify("secret2", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Error("expected verification to fail")
	}
}

func TestBcryptHasher_VerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t)

	ok, err := h.Verify("secret1", "not-a-bcrypt-hash")
	if err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if !errors.Is(err, ErrMalformedHash) {
		t.Errorf("expected ErrMalformedHash, got %v", err)
	}
	if ok {
		t.Error("expected verification to fail")
	}
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	h := newTestHasher(t)

	if _, err := h.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("expected error for password longer than 72 bytes")
	}
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	if _, err := NewBcryptHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("expected error for cost above max")
	}
}

func TestUUIDGenerator_Unique(t *testing.T) {
	g := NewUUIDGenerator()
	a, err := g.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	b, err := g.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	if a == b {
		t.Error("expected distinct ids")
	}
}
