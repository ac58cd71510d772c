package keyformat

import (
	"fmt"

	"credwallet/go-core/internal/platform/cryptoerr"
)

var (
	// OBJECT IDENTIFIER 1.2.840.10045.2.1 (id-ecPublicKey)
	oidECPublicKey = []byte{0x06, 0x07, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01}
	// OBJECT IDENTIFIER 1.2.840.10045.3.1.7 (prime256v1)
	oidP256 = []byte{0x06, 0x08, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07}

	// SEQUENCE { INTEGER 0, SEQUENCE { oidECPublicKey, oidP256 }, OCTET STRING { SEQUENCE { INTEGER 1, OCTET STRING(32)
	pkcs8Header = concat(
		[]byte{0x30, 0x81, 0x87},
		[]byte{0x02, 0x01, 0x00},
		[]byte{0x30, 0x13}, oidECPublicKey, oidP256,
		[]byte{0x04, 0x6d},
		[]byte{0x30, 0x6b},
		[]byte{0x02, 0x01, 0x01},
		[]byte{0x04, 0x20},
	)
	// [1] { BIT STRING(66) { 0 unused bits, uncompressed point } } } } }
	pkcs8PublicKeyTag = []byte{0xa1, 0x44, 0x03, 0x42, 0x00}
)

// PKCS8Size is the exact length of a P-256 PKCS8 container built by MarshalPKCS8.
var PKCS8Size = len(pkcs8Header) + PrivateKeySize + len(pkcs8PublicKeyTag) + UncompressedPublicKeySize

// MarshalPKCS8 wraps a raw scalar in a PKCS8 PrivateKeyInfo that also carries the
// derived public key. The result contains the secret; callers zero it after use.
func MarshalPKCS8(priv []byte) ([]byte, error) {
	if len(priv) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key is %d bytes, want %d", cryptoerr.ErrInvalidInput, len(priv), PrivateKeySize)
	}
	pub, err := PublicKeyFromPrivate(priv)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, PKCS8Size)
	out = append(out, pkcs8Header...)
	out = append(out, priv...)
	out = append(out, pkcs8PublicKeyTag...)
	out = append(out, pub...)
	return out, nil
}

func concat(parts ...[]byte) []byte {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
