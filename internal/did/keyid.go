package did

import (
	"credwallet/go-core/internal/keyformat"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"
)

const keyIDPrefix = "cwk1"

// KeyID fingerprints a public key: "cwk1" + base58(blake2b-256(uncompressed point)).
// Compressed and uncompressed forms of one key share a KeyID.
func KeyID(pub []byte) (string, error) {
	full, err := keyformat.DecompressPublicKey(pub)
	if err != nil {
		return "", err
	}
	h := blake2b.Sum256(full)
	return keyIDPrefix + base58.Encode(h[:]), nil
}

func VerifyKeyID(keyID string, pub []byte) (bool, error) {
	expected, err := KeyID(pub)
	if err != nil {
		return false, err
	}
	return keyID == expected, nil
}
