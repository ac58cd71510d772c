// Package sigcodec converts ECDSA P-256 signatures between the raw r||s form produced
// by signing primitives and the ASN.1 DER form expected by backends.
package sigcodec

import (
	"fmt"

	"credwallet/go-core/internal/platform/cryptoerr"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

const (
	RawSize    = 64
	scalarSize = 32
)

// RawToDER encodes r||s as SEQUENCE { INTEGER r, INTEGER s } with minimal,
// non-negative integers.
func RawToDER(raw []byte) ([]byte, error) {
	if len(raw) != RawSize {
		return nil, fmt.Errorf("%w: raw signature is %d bytes, want %d", cryptoerr.ErrInvalidInput, len(raw), RawSize)
	}
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		addUnsigned(seq, raw[:scalarSize])
		addUnsigned(seq, raw[scalarSize:])
	})
	return b.Bytes()
}

func addUnsigned(b *cryptobyte.Builder, v []byte) {
	i := 0
	for i < len(v)-1 && v[i] == 0 {
		i++
	}
	v = v[i:]
	b.AddASN1(asn1.INTEGER, func(c *cryptobyte.Builder) {
		if v[0]&0x80 != 0 {
			c.AddUint8(0)
		}
		c.AddBytes(v)
	})
}

// DERToRaw decodes a DER signature into r||s, each left-padded to 32 bytes.
// A 64-byte input that is not a strict DER encoding is taken to be raw already and
// returned unchanged. RawToDER emits exactly 64 bytes when both integers are 29
// bytes long, so a 64-byte input is parsed before it is passed through.
func DERToRaw(sig []byte) ([]byte, error) {
	r, s, ok := parseDER(sig)
	if !ok {
		if len(sig) == RawSize {
			return append([]byte(nil), sig...), nil
		}
		return nil, fmt.Errorf("%w: not a DER ECDSA signature", cryptoerr.ErrSignatureFormat)
	}
	out := make([]byte, RawSize)
	putScalar(out[:scalarSize], r)
	putScalar(out[scalarSize:], s)
	return out, nil
}

// parseDER reads SEQUENCE { INTEGER r, INTEGER s } with minimal, non-negative
// integers no wider than a P-256 scalar and nothing trailing.
func parseDER(sig []byte) (r, s []byte, ok bool) {
	var inner cryptobyte.String
	input := cryptobyte.String(sig)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(&r) || !inner.ReadASN1Integer(&s) || !inner.Empty() {
		return nil, nil, false
	}
	r, s = trimZeros(r), trimZeros(s)
	if len(r) > scalarSize || len(s) > scalarSize {
		return nil, nil, false
	}
	return r, s, true
}

func trimZeros(v []byte) []byte {
	for len(v) > 0 && v[0] == 0 {
		v = v[1:]
	}
	return v
}

func putScalar(dst, v []byte) {
	copy(dst[len(dst)-len(v):], v)
}

// IsDER reports whether sig is a strict DER signature rather than raw r||s.
func IsDER(sig []byte) bool {
	_, _, ok := parseDER(sig)
	return ok
}

// Normalize returns the raw form of a raw or DER signature. DER is tried first,
// so a 64-byte DER encoding is not mistaken for r||s.
func Normalize(sig []byte) ([]byte, error) {
	if IsDER(sig) || len(sig) == RawSize {
		return DERToRaw(sig)
	}
	return nil, fmt.Errorf("%w: %d-byte signature is neither raw nor DER", cryptoerr.ErrSignatureFormat, len(sig))
}
