// Package ecies implements the wallet's hybrid envelope:
//
//	base64url( ephemeral P-256 point (65) || IV (16) || AES-256-CTR ciphertext || HMAC-SHA256 tag (32) )
//
// Keys come from SHA-512 over the ECDH shared x-coordinate: the first half encrypts,
// the second half authenticates ephemeral||IV||ciphertext.
package ecies

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/internal/platform/cryptoerr"
)

const (
	ephemeralSize = keyformat.UncompressedPublicKeySize
	ivSize        = aes.BlockSize
	tagSize       = sha256.Size
	// MinEnvelopeSize is an envelope with an empty ciphertext.
	MinEnvelopeSize = ephemeralSize + ivSize + tagSize
)

// Encrypt JSON-serializes plaintext and seals it to recipient, a compressed or
// uncompressed P-256 point.
func Encrypt(plaintext any, recipient []byte) (string, error) {
	msg, err := json.Marshal(plaintext)
	if err != nil {
		return "", fmt.Errorf("%w: plaintext: %v", cryptoerr.ErrInvalidInput, err)
	}
	defer cryptoerr.Zero(msg)
	return EncryptBytes(msg, recipient)
}

func EncryptBytes(msg, recipient []byte) (string, error) {
	full, err := keyformat.DecompressPublicKey(recipient)
	if err != nil {
		return "", err
	}
	recipientKey, err := ecdh.P256().NewPublicKey(full)
	if err != nil {
		return "", fmt.Errorf("%w: recipient: %v", cryptoerr.ErrInvalidInput, err)
	}
	ephemeral, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return "", err
	}
	shared, err := ephemeral.ECDH(recipientKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", cryptoerr.ErrInvalidInput, err)
	}
	encKey, macKey := deriveKeys(shared)
	defer cryptoerr.Zero(encKey)
	defer cryptoerr.Zero(macKey)

	out := make([]byte, 0, MinEnvelopeSize+len(msg))
	out = append(out, ephemeral.PublicKey().Bytes()...)
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}
	out = append(out, iv...)

	ct := make([]byte, len(msg))
	block, err := aes.NewCipher(encKey)
	if err != nil {
		return "", err
	}
	cipher.NewCTR(block, iv).XORKeyStream(ct, msg)
	out = append(out, ct...)
	out = append(out, tag(macKey, out)...)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt opens envelope with a raw 32-byte recipient key and unmarshals the JSON
// plaintext into out. The caller still owns and zeroes priv.
func Decrypt(envelope string, priv []byte, out any) error {
	if len(priv) != keyformat.PrivateKeySize {
		return fmt.Errorf("%w: private key is %d bytes", cryptoerr.ErrInvalidInput, len(priv))
	}
	key, err := ecdh.P256().NewPrivateKey(priv)
	if err != nil {
		return fmt.Errorf("%w: %v", cryptoerr.ErrInvalidInput, err)
	}
	return Open(context.Background(), envelope, rawAgreer{key}, out)
}

// Open is Decrypt for an imported key handle.
func Open(ctx context.Context, envelope string, key keyformat.KeyAgreer, out any) error {
	msg, err := OpenBytes(ctx, envelope, key)
	if err != nil {
		return err
	}
	defer cryptoerr.Zero(msg)
	if err := json.Unmarshal(msg, out); err != nil {
		return fmt.Errorf("%w: plaintext is not JSON: %v", cryptoerr.ErrInvalidInput, err)
	}
	return nil
}

// OpenBytes authenticates the envelope before decrypting; a tag mismatch returns
// ErrAuthentication and no plaintext.
func OpenBytes(ctx context.Context, envelope string, key keyformat.KeyAgreer) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: no recipient key", cryptoerr.ErrInvalidInput)
	}
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(envelope), "="))
	if err != nil {
		return nil, fmt.Errorf("%w: envelope encoding: %v", cryptoerr.ErrInvalidInput, err)
	}
	if len(data) < MinEnvelopeSize {
		return nil, fmt.Errorf("%w: envelope is %d bytes, minimum %d", cryptoerr.ErrInvalidInput, len(data), MinEnvelopeSize)
	}
	ephemeral := data[:ephemeralSize]
	iv := data[ephemeralSize : ephemeralSize+ivSize]
	body := data[:len(data)-tagSize]
	ct := data[ephemeralSize+ivSize : len(data)-tagSize]
	gotTag := data[len(data)-tagSize:]

	shared, err := key.SharedSecret(ctx, ephemeral)
	if err != nil {
		return nil, err
	}
	encKey, macKey := deriveKeys(shared)
	defer cryptoerr.Zero(encKey)
	defer cryptoerr.Zero(macKey)

	if !hmac.Equal(tag(macKey, body), gotTag) {
		return nil, fmt.Errorf("%w: envelope tag mismatch", cryptoerr.ErrAuthentication)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	msg := make([]byte, len(ct))
	cipher.NewCTR(block, iv).XORKeyStream(msg, ct)
	return msg, nil
}

// ParseRecipientKey accepts a hex public key, with or without a 0x prefix, in
// compressed or uncompressed form.
func ParseRecipientKey(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: recipient key is not hex: %v", cryptoerr.ErrInvalidInput, err)
	}
	if _, err := keyformat.DecompressPublicKey(b); err != nil {
		return nil, err
	}
	return b, nil
}

// deriveKeys splits SHA-512(shared) into encryption and MAC keys and zeroes shared.
func deriveKeys(shared []byte) (encKey, macKey []byte) {
	sum := sha512.Sum512(shared)
	cryptoerr.Zero(shared)
	encKey = append([]byte(nil), sum[:32]...)
	macKey = append([]byte(nil), sum[32:]...)
	cryptoerr.Zero(sum[:])
	return encKey, macKey
}

func tag(macKey, body []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(body)
	return mac.Sum(nil)
}

type rawAgreer struct {
	key *ecdh.PrivateKey
}

func (r rawAgreer) SharedSecret(_ context.Context, peer []byte) ([]byte, error) {
	pub, err := ecdh.P256().NewPublicKey(peer)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", cryptoerr.ErrInvalidInput, err)
	}
	return r.key.ECDH(pub)
}
