// Package jwt issues and checks compact ES256 tokens. Signatures travel DER-encoded
// and are verified as raw r||s; both forms are accepted on input.
package jwt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/internal/platform/cryptoerr"
	"credwallet/go-core/internal/sigcodec"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const (
	TokenType = "JWT"
	// DefaultClockSkew is how far in the future iat may be before it is reported.
	DefaultClockSkew = 60 * time.Second
)

var ErrMalformedToken = errors.New("malformed token")

type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
	Kid string `json:"kid,omitempty"`
}

// Token is a decoded, unverified JWT.
type Token struct {
	Header       Header
	Claims       gojwt.MapClaims
	Signature    []byte // as transmitted, DER or raw
	SigningInput string
}

type Engine struct {
	provider  keyformat.Provider
	clockSkew time.Duration
	now       func() time.Time
}

func NewEngine(provider keyformat.Provider, clockSkew time.Duration) *Engine {
	if provider == nil {
		provider = keyformat.NewSoftwareProvider()
	}
	if clockSkew <= 0 {
		clockSkew = DefaultClockSkew
	}
	return &Engine{provider: provider, clockSkew: clockSkew, now: time.Now}
}

// Sign serializes claims, signs header.payload with key and appends the DER signature.
func (e *Engine) Sign(ctx context.Context, claims any, key keyformat.Signer, kid string) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: no signing key", cryptoerr.ErrInvalidInput)
	}
	headerJSON, err := marshalJSON(Header{Alg: gojwt.SigningMethodES256.Alg(), Typ: TokenType, Kid: kid})
	if err != nil {
		return "", err
	}
	payloadJSON, err := marshalJSON(claims)
	if err != nil {
		return "", fmt.Errorf("%w: payload: %v", cryptoerr.ErrInvalidInput, err)
	}
	signingInput := encodeSegment(headerJSON) + "." + encodeSegment(payloadJSON)

	raw, err := key.Sign(ctx, []byte(signingInput))
	if err != nil {
		return "", err
	}
	der, err := sigcodec.RawToDER(raw)
	if err != nil {
		return "", err
	}
	return signingInput + "." + encodeSegment(der), nil
}

// SignWithRawKey imports rawKey through the engine's provider, signs, and drops the
// handle. rawKey is zeroed whether or not signing succeeds.
func (e *Engine) SignWithRawKey(ctx context.Context, claims any, rawKey []byte, kid string) (string, error) {
	handle, err := keyformat.ImportPrivateKey(ctx, e.provider, rawKey)
	if err != nil {
		return "", err
	}
	return e.Sign(ctx, claims, handle, kid)
}

// Verify reports whether token carries a valid ES256 signature by pub. Any
// structural problem verifies as false.
func Verify(token string, pub []byte) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	var header Header
	if err := decodeSegmentJSON(parts[0], &header); err != nil {
		return false
	}
	if header.Alg != gojwt.SigningMethodES256.Alg() {
		return false
	}
	sig, err := decodeSegment(parts[2])
	if err != nil {
		return false
	}
	raw, err := sigcodec.Normalize(sig)
	if err != nil {
		return false
	}
	return keyformat.Verify(pub, []byte(parts[0]+"."+parts[1]), raw)
}

// Decode parses a token without checking its signature. Never trust the claims of a
// token that has not passed Verify.
func Decode(token string) (*Token, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	var header Header
	if err := decodeSegmentJSON(parts[0], &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	claims := gojwt.MapClaims{}
	if err := decodeSegmentJSON(parts[1], &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedToken, err)
	}
	sig, err := decodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrMalformedToken, err)
	}
	return &Token{
		Header:       header,
		Claims:       claims,
		Signature:    sig,
		SigningInput: parts[0] + "." + parts[1],
	}, nil
}

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeSegment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

func decodeSegmentJSON(s string, v any) error {
	b, err := decodeSegment(s)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
