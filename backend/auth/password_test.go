package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// RED: For any password P, Verify(P, Hash(P)) holds and Hash(P) != P
func TestBcryptHasher_HashVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, pw := range []string{"pw123456", "Password1!", "ünïcødé-pässwörd", " "} {
		digest, err := h.Hash(pw)
		if err != nil {
			t.Fatalf("Hash(%q) failed: %v", pw, err)
		}
		if digest == pw {
			t.Errorf("Hash(%q) returned the plaintext", pw)
		}
		if !h.Verify(pw, digest) {
			t.Errorf("Verify(%q, Hash(%q)) should be true", pw, pw)
		}
		if h.Verify(pw+"x", digest) {
			t.Errorf("Verify should reject a different password for %q", pw)
		}
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, _ := h.Hash("pw123456")
	b, _ := h.Hash("pw123456")
	if a == b {
		t.Error("Two hashes of the same password should differ by salt")
	}
}

func TestBcryptHasher_EmptyDigest(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	if h.Verify("", "") {
		t.Error("An empty digest must never verify")
	}
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	if got := NewBcryptHasher(0).Cost; got != bcrypt.DefaultCost {
		t.Errorf("Expected default cost %d, got %d", bcrypt.DefaultCost, got)
	}
}
