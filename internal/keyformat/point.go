// Package keyformat builds the binary key containers handed to a cryptographic provider
// (PKCS8 for private keys, SPKI/PEM for public keys) and defines the opaque signing
// handle returned by that provider. All keys are NIST P-256.
package keyformat

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	"credwallet/go-core/internal/platform/cryptoerr"
)

const (
	PrivateKeySize            = 32
	CompressedPublicKeySize   = 33
	UncompressedPublicKeySize = 65
)

// PublicKeyFromPrivate returns the uncompressed public point of a raw scalar.
func PublicKeyFromPrivate(priv []byte) ([]byte, error) {
	if len(priv) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key is %d bytes, want %d", cryptoerr.ErrInvalidInput, len(priv), PrivateKeySize)
	}
	key, err := ecdh.P256().NewPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrInvalidInput, err)
	}
	return key.PublicKey().Bytes(), nil
}

// DecompressPublicKey returns the 65-byte form of a compressed or uncompressed point,
// checking that it lies on the curve.
func DecompressPublicKey(pub []byte) ([]byte, error) {
	switch len(pub) {
	case UncompressedPublicKeySize:
		if pub[0] != 0x04 {
			return nil, fmt.Errorf("%w: uncompressed key prefix 0x%02x", cryptoerr.ErrInvalidInput, pub[0])
		}
		if _, err := ecdh.P256().NewPublicKey(pub); err != nil {
			return nil, fmt.Errorf("%w: %v", cryptoerr.ErrInvalidInput, err)
		}
		return append([]byte(nil), pub...), nil
	case CompressedPublicKeySize:
		if pub[0] != 0x02 && pub[0] != 0x03 {
			return nil, fmt.Errorf("%w: compressed key prefix 0x%02x", cryptoerr.ErrInvalidInput, pub[0])
		}
		x, y := elliptic.UnmarshalCompressed(elliptic.P256(), pub)
		if x == nil {
			return nil, fmt.Errorf("%w: point is not on P-256", cryptoerr.ErrInvalidInput)
		}
		out := make([]byte, UncompressedPublicKeySize)
		out[0] = 0x04
		x.FillBytes(out[1:33])
		y.FillBytes(out[33:])
		return out, nil
	default:
		return nil, fmt.Errorf("%w: public key is %d bytes", cryptoerr.ErrInvalidInput, len(pub))
	}
}

// CompressPublicKey returns the 33-byte SEC1 compressed form.
func CompressPublicKey(pub []byte) ([]byte, error) {
	full, err := DecompressPublicKey(pub)
	if err != nil {
		return nil, err
	}
	out := make([]byte, CompressedPublicKeySize)
	out[0] = 0x02 | (full[64] & 1)
	copy(out[1:], full[1:33])
	return out, nil
}

// ECDSAPublicKey parses a compressed or uncompressed point.
func ECDSAPublicKey(pub []byte) (*ecdsa.PublicKey, error) {
	full, err := DecompressPublicKey(pub)
	if err != nil {
		return nil, err
	}
	key, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), full)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrInvalidInput, err)
	}
	return key, nil
}
