package keyformat

import (
	"encoding/pem"
)

// SEQUENCE { SEQUENCE { oidECPublicKey, oidP256 }, BIT STRING(66) { 0 unused bits, ...
var spkiHeader = concat(
	[]byte{0x30, 0x59},
	[]byte{0x30, 0x13}, oidECPublicKey, oidP256,
	[]byte{0x03, 0x42, 0x00},
)

const pemPublicKeyType = "PUBLIC KEY"

// MarshalSPKI wraps a public point in a SubjectPublicKeyInfo. Compressed points are
// decompressed first.
func MarshalSPKI(pub []byte) ([]byte, error) {
	full, err := DecompressPublicKey(pub)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(spkiHeader)+UncompressedPublicKeySize)
	out = append(out, spkiHeader...)
	return append(out, full...), nil
}

// ExportPublicKeyPEM returns the SPKI container as a PEM block with 64-character lines.
func ExportPublicKeyPEM(pub []byte) (string, error) {
	der, err := MarshalSPKI(pub)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: pemPublicKeyType, Bytes: der})), nil
}
