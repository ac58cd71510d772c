// Package cryptoerr holds the failure classes shared by the wallet crypto packages.
// Packages wrap these with detail (fmt.Errorf("%w: ...")) so callers can branch with errors.Is.
// Signature mismatches are not errors: verifiers report them as false or as claim violations.
package cryptoerr

import "errors"

var (
	// ErrInvalidInput covers bad entropy sizes, malformed mnemonics and wrong key/signature lengths.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDerivation is a zero or out-of-range derived scalar. Never substituted silently.
	ErrDerivation = errors.New("key derivation failed")
	// ErrImport is a key container the provider refused.
	ErrImport = errors.New("key import failed")
	// ErrSignatureFormat is an unparseable DER signature.
	ErrSignatureFormat = errors.New("malformed signature")
	// ErrAuthentication is an envelope whose MAC did not match.
	ErrAuthentication = errors.New("authentication failed")
)

// Zero overwrites b in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
