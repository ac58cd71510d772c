package identity

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"credwallet/go-core/internal/platform/cryptoerr"
)

func repeatWord(word string, n int, last string) []string {
	out := make([]string, 0, n)
	for i := 0; i < n-1; i++ {
		out = append(out, word)
	}
	return append(out, last)
}

func TestGenerateMnemonicAllEntropySizes(t *testing.T) {
	wantWords := map[int]int{128: 12, 160: 15, 192: 18, 224: 21, 256: 24}
	for bits, count := range wantWords {
		words, err := GenerateMnemonic(bits)
		if err != nil {
			t.Fatalf("generate %d bits: %v", bits, err)
		}
		if len(words) != count {
			t.Fatalf("%d bits: expected %d words, got %d", bits, count, len(words))
		}
		if !ValidateMnemonic(words) {
			t.Fatalf("%d bits: generated mnemonic must validate", bits)
		}
	}
}

func TestGenerateMnemonicRejectsUnsupportedSize(t *testing.T) {
	for _, bits := range []int{0, 64, 127, 129, 288} {
		if _, err := GenerateMnemonic(bits); !errors.Is(err, cryptoerr.ErrInvalidInput) {
			t.Fatalf("bits=%d: expected ErrInvalidInput, got %v", bits, err)
		}
	}
}

func TestValidateMnemonicRejectsMalformed(t *testing.T) {
	cases := map[string][]string{
		"empty":        nil,
		"wrong length": repeatWord("abandon", 11, "about"),
		"unknown word": repeatWord("abandon", 11, "notaword"),
		"bad checksum": repeatWord("abandon", 12, "abandon"),
		// all-zero 128-bit entropy checksums to "about", not "art"
		"art on twelve": repeatWord("abandon", 12, "art"),
	}
	for name, words := range cases {
		if ValidateMnemonic(words) {
			t.Fatalf("%s: expected mnemonic to be rejected", name)
		}
	}
}

func TestSeedFromMnemonicVectors(t *testing.T) {
	cases := []struct {
		words      []string
		passphrase string
		seed       string
	}{
		{
			words: repeatWord("abandon", 12, "about"),
			seed:  "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4",
		},
		{
			words:      repeatWord("abandon", 12, "about"),
			passphrase: "TREZOR",
			seed:       "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04",
		},
		{
			words:      repeatWord("abandon", 24, "art"),
			passphrase: "TREZOR",
			seed:       "bda85446c68413707090a52022edd26a1c9462295029f2e60cd7c4f2bbd3097170af7a4d73245cafa9c3cca8d561a7c3de6f5d4a10be8ed2a5e608d68f92fcc8",
		},
	}
	for _, tc := range cases {
		seed, err := SeedFromMnemonic(tc.words, tc.passphrase)
		if err != nil {
			t.Fatalf("seed from %d words: %v", len(tc.words), err)
		}
		if len(seed) != SeedSize {
			t.Fatalf("expected %d-byte seed, got %d", SeedSize, len(seed))
		}
		if got := hex.EncodeToString(seed); got != tc.seed {
			t.Fatalf("seed mismatch for %q/%q:\n got %s\nwant %s", tc.words[len(tc.words)-1], tc.passphrase, got, tc.seed)
		}
	}
}

func TestSeedFromMnemonicDeterministic(t *testing.T) {
	words, err := GenerateMnemonic(160)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	a, err := SeedFromMnemonic(words, "pass")
	if err != nil {
		t.Fatalf("seed 1: %v", err)
	}
	b, err := SeedFromMnemonic(words, "pass")
	if err != nil {
		t.Fatalf("seed 2: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same words and passphrase must produce identical seeds")
	}
	c, err := SeedFromMnemonic(words, "other")
	if err != nil {
		t.Fatalf("seed 3: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Fatal("passphrase must change the seed")
	}
}

func TestSeedFromMnemonicNormalizesPassphrase(t *testing.T) {
	words := repeatWord("abandon", 12, "about")
	composed, err := SeedFromMnemonic(words, "caf\u00e9")
	if err != nil {
		t.Fatalf("composed: %v", err)
	}
	decomposed, err := SeedFromMnemonic(words, "cafe\u0301")
	if err != nil {
		t.Fatalf("decomposed: %v", err)
	}
	if !bytes.Equal(composed, decomposed) {
		t.Fatal("NFC and NFD passphrases must yield the same seed")
	}
}

func TestSeedFromMnemonicRejectsInvalid(t *testing.T) {
	if _, err := SeedFromMnemonic(repeatWord("abandon", 12, "abandon"), ""); !errors.Is(err, cryptoerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseMnemonic(t *testing.T) {
	words := ParseMnemonic("  abandon   ability\table \n")
	if strings.Join(words, ",") != "abandon,ability,able" {
		t.Fatalf("unexpected words: %v", words)
	}
}
