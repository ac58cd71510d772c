package keyformat

import (
	"context"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"errors"
	"fmt"

	"credwallet/go-core/internal/platform/cryptoerr"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SignatureSize is the raw r||s length of a P-256 signature.
const SignatureSize = 64

// Signer is an opaque signing capability. Once a key is behind a Signer nothing in
// this module reads the scalar back out.
type Signer interface {
	// Sign returns the raw 64-byte r||s ECDSA/SHA-256 signature over data.
	Sign(ctx context.Context, data []byte) ([]byte, error)
	// PublicKey returns the uncompressed point.
	PublicKey() []byte
}

// KeyAgreer computes the ECDH shared x-coordinate with a peer point.
type KeyAgreer interface {
	SharedSecret(ctx context.Context, peer []byte) ([]byte, error)
}

// Handle is what a Provider returns for an imported private key.
type Handle interface {
	Signer
	KeyAgreer
}

type ImportOptions struct {
	Extractable bool
}

// Provider turns a PKCS8 container into a Handle. Platform keystores implement it;
// SoftwareProvider is the in-process fallback.
type Provider interface {
	ImportPKCS8(ctx context.Context, der []byte, opts ImportOptions) (Handle, error)
}

// ImportPrivateKey wraps rawKey in PKCS8 and imports it as a non-extractable key.
// rawKey and the intermediate container are zeroed on every path, including errors.
func ImportPrivateKey(ctx context.Context, p Provider, rawKey []byte) (Handle, error) {
	defer cryptoerr.Zero(rawKey)
	if len(rawKey) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key is %d bytes, want %d", cryptoerr.ErrInvalidInput, len(rawKey), PrivateKeySize)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: no provider", cryptoerr.ErrImport)
	}
	der, err := MarshalPKCS8(rawKey)
	if err != nil {
		return nil, err
	}
	defer cryptoerr.Zero(der)

	h, err := p.ImportPKCS8(ctx, der, ImportOptions{Extractable: false})
	if err != nil {
		if errors.Is(err, cryptoerr.ErrImport) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrImport, err)
	}
	return h, nil
}

// Verify checks a raw r||s signature over data against a compressed or uncompressed
// public key. Malformed keys and signatures verify as false.
func Verify(pub, data, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	key, err := ECDSAPublicKey(pub)
	if err != nil {
		return false
	}
	return gojwt.SigningMethodES256.Verify(string(data), sig, key) == nil
}

type SoftwareProvider struct{}

func NewSoftwareProvider() *SoftwareProvider {
	return &SoftwareProvider{}
}

func (p *SoftwareProvider) ImportPKCS8(ctx context.Context, der []byte, opts ImportOptions) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Extractable {
		return nil, fmt.Errorf("%w: extractable keys are not supported", cryptoerr.ErrImport)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrImport, err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok || key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: container is not a P-256 key", cryptoerr.ErrImport)
	}
	agree, err := key.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrImport, err)
	}
	return &softwareKey{
		sign:  key,
		agree: agree,
		pub:   agree.PublicKey().Bytes(),
	}, nil
}

type softwareKey struct {
	sign  *ecdsa.PrivateKey
	agree *ecdh.PrivateKey
	pub   []byte
}

func (k *softwareKey) PublicKey() []byte {
	return append([]byte(nil), k.pub...)
}

func (k *softwareKey) Sign(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return gojwt.SigningMethodES256.Sign(string(data), k.sign)
}

func (k *softwareKey) SharedSecret(ctx context.Context, peer []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := DecompressPublicKey(peer)
	if err != nil {
		return nil, err
	}
	peerKey, err := ecdh.P256().NewPublicKey(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrInvalidInput, err)
	}
	return k.agree.ECDH(peerKey)
}
