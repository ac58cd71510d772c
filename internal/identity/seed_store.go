package identity

import (
	"strings"

	"credwallet/go-core/internal/platform/cryptoerr"
	"credwallet/go-core/internal/securestore"
)

// EncryptedSeedEnvelope is the password-protected mnemonic backup.
type EncryptedSeedEnvelope = securestore.Envelope

// EncryptSeed seals the mnemonic phrase under password. The joined phrase buffer is
// zeroed before returning.
func EncryptSeed(words []string, password string) (*EncryptedSeedEnvelope, error) {
	phrase := []byte(strings.Join(words, " "))
	defer cryptoerr.Zero(phrase)
	return securestore.EncryptEnvelope(password, phrase)
}

// DecryptSeed opens a backup and returns the mnemonic words.
func DecryptSeed(env *EncryptedSeedEnvelope, password string) ([]string, error) {
	plaintext, err := securestore.DecryptEnvelope(password, env)
	if err != nil {
		return nil, err
	}
	defer cryptoerr.Zero(plaintext)
	return strings.Fields(string(plaintext)), nil
}
