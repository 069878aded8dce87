package security

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/actu/newsroom/internal/core/domain"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}
	if err := h.Verify(hash, "s3cret"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := h.Verify(hash, "wrong"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if err := h.Verify("", "s3cret"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for a malformed hash, got %v", err)
	}
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}
