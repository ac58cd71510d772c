package identity

import (
	"fmt"
	"strings"

	"credwallet/go-core/internal/platform/cryptoerr"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

// SeedSize is the PBKDF2-HMAC-SHA512 output length.
const SeedSize = 64

var allowedEntropyBits = map[int]struct{}{128: {}, 160: {}, 192: {}, 224: {}, 256: {}}

var allowedWordCounts = map[int]struct{}{12: {}, 15: {}, 18: {}, 21: {}, 24: {}}

// GenerateMnemonic draws bits/8 random bytes and maps entropy plus checksum onto the
// English wordlist. bits must be one of 128, 160, 192, 224 or 256.
func GenerateMnemonic(bits int) ([]string, error) {
	if _, ok := allowedEntropyBits[bits]; !ok {
		return nil, fmt.Errorf("%w: entropy size %d bits", cryptoerr.ErrInvalidInput, bits)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return nil, err
	}
	defer cryptoerr.Zero(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Fields(mnemonic), nil
}

// ValidateMnemonic reports whether words form a checksum-valid mnemonic.
func ValidateMnemonic(words []string) bool {
	return checkWords(words) == nil && bip39.IsMnemonicValid(strings.Join(words, " "))
}

// SeedFromMnemonic derives the 64-byte seed:
// PBKDF2-HMAC-SHA512(NFKD(words joined by space), NFKD("mnemonic"+passphrase), 2048).
// The caller owns the returned slice and must zero it.
func SeedFromMnemonic(words []string, passphrase string) ([]byte, error) {
	if err := checkWords(words); err != nil {
		return nil, err
	}
	phrase := norm.NFKD.String(strings.Join(words, " "))
	if !bip39.IsMnemonicValid(phrase) {
		return nil, fmt.Errorf("%w: mnemonic checksum mismatch", cryptoerr.ErrInvalidInput)
	}
	// bip39 prefixes "mnemonic" itself; the prefix is ASCII so NFKD of the
	// concatenation equals the prefix plus NFKD(passphrase).
	return bip39.NewSeed(phrase, norm.NFKD.String(passphrase)), nil
}

// ParseMnemonic splits a space separated phrase into words.
func ParseMnemonic(phrase string) []string {
	return strings.Fields(strings.ToLower(phrase))
}

func checkWords(words []string) error {
	if _, ok := allowedWordCounts[len(words)]; !ok {
		return fmt.Errorf("%w: mnemonic has %d words", cryptoerr.ErrInvalidInput, len(words))
	}
	for i, w := range words {
		if _, ok := bip39.GetWordIndex(w); !ok {
			return fmt.Errorf("%w: word %d is not in the dictionary", cryptoerr.ErrInvalidInput, i+1)
		}
	}
	return nil
}
