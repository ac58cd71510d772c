// Package did mints and parses the wallet's decentralized identifiers:
//
//	did:<method>:<entity><base64url(public key)>
//
// where entity is 'u' for users and 'i' for institutions.
package did

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/internal/platform/cryptoerr"
)

type Entity string

const (
	EntityUser        Entity = "u"
	EntityInstitution Entity = "i"
)

const DefaultMethod = "cwallet"


var (
	methodPattern = regexp.MustCompile(`^[a-z0-9]+$`)
	// The separator between entity and key is optional; Encode never emits it.
	didPattern = regexp.MustCompile(`^did:([a-z0-9]+):([ui]):?([A-Za-z0-9_-]+)$`)
)

func (e Entity) Valid() bool {
	return e == EntityUser || e == EntityInstitution
}

// ParseEntity accepts the tag letter or its long name.
func ParseEntity(v string) (Entity, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "u", "user":
		return EntityUser, nil
	case "i", "institution":
		return EntityInstitution, nil
	default:
		return "", fmt.Errorf("%w: unknown entity %q", cryptoerr.ErrInvalidInput, v)
	}
}

type Codec struct {
	method string
}

func NewCodec(method string) (*Codec, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		method = DefaultMethod
	}
	if !methodPattern.MatchString(method) {
		return nil, fmt.Errorf("%w: did method %q", cryptoerr.ErrInvalidInput, method)
	}
	return &Codec{method: method}, nil
}

func (c *Codec) Method() string {
	return c.method
}

// Encode mints the DID for a compressed or uncompressed P-256 public key. The key
// bytes are encoded as given.
func (c *Codec) Encode(pub []byte, entity Entity) (string, error) {
	if !entity.Valid() {
		return "", fmt.Errorf("%w: entity %q", cryptoerr.ErrInvalidInput, entity)
	}
	if _, err := keyformat.DecompressPublicKey(pub); err != nil {
		return "", err
	}
	return "did:" + c.method + ":" + string(entity) + base64.RawURLEncoding.EncodeToString(pub), nil
}

// Parsed is a decoded DID. PublicKey is nil when the identifier is not valid base64url.
type Parsed struct {
	Method     string
	Entity     Entity
	Identifier string
	PublicKey  []byte
}

// Decode parses any method's DID. ok is false when s is not a DID at all.
func Decode(s string) (Parsed, bool) {
	m := didPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Parsed{}, false
	}
	p := Parsed{Method: m[1], Entity: Entity(m[2]), Identifier: m[3]}
	if pub, err := base64.RawURLEncoding.DecodeString(m[3]); err == nil {
		p.PublicKey = pub
	}
	return p, true
}

// Matches reports whether s is this codec's DID for pub, comparing points rather
// than encodings so compressed and uncompressed forms agree.
func (c *Codec) Matches(s string, pub []byte) bool {
	p, ok := Decode(s)
	if !ok || p.Method != c.method || p.PublicKey == nil {
		return false
	}
	got, err := keyformat.DecompressPublicKey(p.PublicKey)
	if err != nil {
		return false
	}
	want, err := keyformat.DecompressPublicKey(pub)
	if err != nil {
		return false
	}
	return bytes.Equal(got, want)
}

// VerificationMethod is the proof verificationMethod / JWT kid: the DID with the
// signing key's KeyID as fragment. The DID itself encodes the DID key, so the
// fragment is what names the key that actually signs.
func VerificationMethod(did, keyID string) string {
	return did + "#" + keyID
}

// KeyIDOf returns the fragment of a verification method, or "" when it has none.
func KeyIDOf(verificationMethod string) string {
	if i := strings.IndexByte(verificationMethod, '#'); i >= 0 {
		return verificationMethod[i+1:]
	}
	return ""
}

// ControllerOf strips the fragment from a verification method.
func ControllerOf(verificationMethod string) string {
	if i := strings.IndexByte(verificationMethod, '#'); i >= 0 {
		return verificationMethod[:i]
	}
	return verificationMethod
}
