package identity

import (
	"fmt"

	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/internal/platform/cryptoerr"
)

// Path holds the hardened derivation constants. Signing keys live at
// purpose'/coinType'/account'/signingChange'/addressIndex' and the DID key at
// purpose'/coinType'/account'/didChange'/didIndex'.
type Path struct {
	Purpose       uint32 `yaml:"purpose"`
	CoinType      uint32 `yaml:"coinType"`
	Account       uint32 `yaml:"account"`
	SigningChange uint32 `yaml:"signingChange"`
	DIDChange     uint32 `yaml:"didChange"`
	DIDIndex      uint32 `yaml:"didIndex"`
}

func DefaultPath() Path {
	return Path{
		Purpose:       44,
		CoinType:      1,
		Account:       0,
		SigningChange: 0,
		DIDChange:     1,
		DIDIndex:      0,
	}
}

// Validate rejects paths that would make the signing and DID branches overlap
// or that cannot be hardened.
func (p Path) Validate() error {
	for _, v := range []uint32{p.Purpose, p.CoinType, p.Account, p.SigningChange, p.DIDChange, p.DIDIndex} {
		if v >= HardenedOffset {
			return fmt.Errorf("%w: path component %d already hardened", cryptoerr.ErrInvalidInput, v)
		}
	}
	if p.SigningChange == p.DIDChange {
		return fmt.Errorf("%w: signing and DID branches share change %d", cryptoerr.ErrInvalidInput, p.DIDChange)
	}
	return nil
}

func (p Path) SigningPath(addressIndex uint32) ([]uint32, error) {
	if addressIndex >= HardenedOffset {
		return nil, fmt.Errorf("%w: address index %d out of range", cryptoerr.ErrInvalidInput, addressIndex)
	}
	return p.hardened(p.SigningChange, addressIndex), nil
}

func (p Path) DIDPath() []uint32 {
	return p.hardened(p.DIDChange, p.DIDIndex)
}

func (p Path) hardened(change, index uint32) []uint32 {
	return []uint32{
		p.Purpose + HardenedOffset,
		p.CoinType + HardenedOffset,
		p.Account + HardenedOffset,
		change + HardenedOffset,
		index + HardenedOffset,
	}
}

// DeriveSigningKey derives the signing key pair at addressIndex.
func (p Path) DeriveSigningKey(seed []byte, addressIndex uint32) (*KeyPair, error) {
	path, err := p.SigningPath(addressIndex)
	if err != nil {
		return nil, err
	}
	return derivePair(seed, path)
}

// DeriveDIDKey derives the key pair that mints the identifier. It does not depend
// on the signing address index, so the DID survives signing-key rotation.
func (p Path) DeriveDIDKey(seed []byte) (*KeyPair, error) {
	return derivePair(seed, p.DIDPath())
}

// DeriveKeys derives both pairs of one identity.
func (p Path) DeriveKeys(seed []byte, addressIndex uint32) (*DerivedKeys, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	signing, err := p.DeriveSigningKey(seed, addressIndex)
	if err != nil {
		return nil, err
	}
	didKey, err := p.DeriveDIDKey(seed)
	if err != nil {
		signing.Wipe()
		return nil, err
	}
	return &DerivedKeys{Signing: signing, DID: didKey}, nil
}

func DeriveSigningKey(seed []byte, addressIndex uint32) (*KeyPair, error) {
	return DefaultPath().DeriveSigningKey(seed, addressIndex)
}

func DeriveDIDKey(seed []byte) (*KeyPair, error) {
	return DefaultPath().DeriveDIDKey(seed)
}

func derivePair(seed []byte, path []uint32) (*KeyPair, error) {
	ext, err := DerivePath(seed, path)
	if err != nil {
		return nil, err
	}
	defer ext.Wipe()

	pub, err := keyformat.PublicKeyFromPrivate(ext.Key)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		PrivateKey: append([]byte(nil), ext.Key...),
		PublicKey:  pub,
	}, nil
}
