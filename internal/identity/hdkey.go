package identity

import (
	"bytes"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"credwallet/go-core/internal/platform/cryptoerr"
)

// HardenedOffset is the first hardened child index (2^31).
const HardenedOffset uint32 = 1 << 31

var masterHMACKey = []byte("Bitcoin seed")

// curveOrder is the P-256 group order n, big-endian, 32 bytes.
var curveOrder = elliptic.P256().Params().N.FillBytes(make([]byte, 32))

// MasterKey splits HMAC-SHA512("Bitcoin seed", seed) into the master scalar and chain code.
func MasterKey(seed []byte) (*ExtendedKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, fmt.Errorf("%w: seed length %d", cryptoerr.ErrInvalidInput, len(seed))
	}
	mac := hmac.New(sha512.New, masterHMACKey)
	mac.Write(seed)
	sum := mac.Sum(nil)
	defer cryptoerr.Zero(sum)

	key := &ExtendedKey{
		Key:       append([]byte(nil), sum[:32]...),
		ChainCode: append([]byte(nil), sum[32:]...),
	}
	if err := checkScalar(key.Key); err != nil {
		key.Wipe()
		return nil, fmt.Errorf("master key: %w", err)
	}
	return key, nil
}

// HardenedChild derives the child at index, which must be >= HardenedOffset:
// HMAC-SHA512(parent chain code, 0x00 || parent key || ser32(index)).
// A zero or out-of-range candidate is reported as ErrDerivation; the caller may pick
// another index but nothing is retried here.
func HardenedChild(parent *ExtendedKey, index uint32) (*ExtendedKey, error) {
	if index < HardenedOffset {
		return nil, fmt.Errorf("%w: index %d is not hardened", cryptoerr.ErrInvalidInput, index)
	}
	if parent == nil || len(parent.Key) != 32 || len(parent.ChainCode) != 32 {
		return nil, fmt.Errorf("%w: malformed parent key", cryptoerr.ErrInvalidInput)
	}

	data := make([]byte, 0, 37)
	data = append(data, 0x00)
	data = append(data, parent.Key...)
	data = binary.BigEndian.AppendUint32(data, index)
	defer cryptoerr.Zero(data)

	mac := hmac.New(sha512.New, parent.ChainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	defer cryptoerr.Zero(sum)

	child := &ExtendedKey{
		Key:       append([]byte(nil), sum[:32]...),
		ChainCode: append([]byte(nil), sum[32:]...),
		Depth:     parent.Depth + 1,
		Index:     index,
	}
	if err := checkScalar(child.Key); err != nil {
		child.Wipe()
		return nil, fmt.Errorf("child %d: %w", index-HardenedOffset, err)
	}
	return child, nil
}

// DerivePath walks hardened indices from the master key. Intermediate keys are wiped
// as soon as their child exists; the caller wipes the result.
func DerivePath(seed []byte, path []uint32) (*ExtendedKey, error) {
	current, err := MasterKey(seed)
	if err != nil {
		return nil, err
	}
	for _, index := range path {
		next, err := HardenedChild(current, index)
		current.Wipe()
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func checkScalar(k []byte) error {
	if isZero(k) {
		return fmt.Errorf("%w: zero scalar", cryptoerr.ErrDerivation)
	}
	if bytes.Compare(k, curveOrder) >= 0 {
		return fmt.Errorf("%w: scalar not below the curve order", cryptoerr.ErrDerivation)
	}
	return nil
}

func isZero(b []byte) bool {
	var acc byte
	for _, v := range b {
		acc |= v
	}
	return acc == 0
}
