package identity

import (
	"errors"
	"strings"
	"testing"

	"credwallet/go-core/internal/platform/cryptoerr"
	"credwallet/go-core/internal/securestore"
)

func TestEncryptDecryptSeed(t *testing.T) {
	words := repeatWord("abandon", 12, "about")
	env, err := EncryptSeed(words, "strong-password")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	got, err := DecryptSeed(env, "strong-password")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if strings.Join(got, " ") != strings.Join(words, " ") {
		t.Fatal("decrypted mnemonic mismatch")
	}
	if _, err := DecryptSeed(env, "wrong"); !errors.Is(err, cryptoerr.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestDecryptSeedRejectsMalformedEnvelope(t *testing.T) {
	env, err := EncryptSeed(repeatWord("abandon", 12, "about"), "password")
	if err != nil {
		t.Fatalf("encrypt seed failed: %v", err)
	}

	malformed := *env
	malformed.Nonce = []byte{1, 2, 3}
	if _, err := DecryptSeed(&malformed, "password"); err == nil {
		t.Fatal("expected error for malformed nonce")
	}
}

func TestDecryptSeedRejectsKDFDowngrade(t *testing.T) {
	env, err := EncryptSeed(repeatWord("abandon", 12, "about"), "password")
	if err != nil {
		t.Fatalf("encrypt seed failed: %v", err)
	}

	downgraded := *env
	downgraded.KDFMemoryKB = 8 * 1024
	if _, err := DecryptSeed(&downgraded, "password"); !errors.Is(err, securestore.ErrWeakKDF) {
		t.Fatalf("expected ErrWeakKDF for downgraded kdf policy, got %v", err)
	}
}
