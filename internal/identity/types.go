package identity

import "credwallet/go-core/internal/platform/cryptoerr"

// ExtendedKey is a private scalar paired with its chain code.
type ExtendedKey struct {
	Key       []byte // 32-byte P-256 scalar
	ChainCode []byte // 32 bytes
	Depth     uint8
	Index     uint32
}

// Wipe zeroes the key material. Safe on nil.
func (k *ExtendedKey) Wipe() {
	if k == nil {
		return
	}
	cryptoerr.Zero(k.Key)
	cryptoerr.Zero(k.ChainCode)
}

type KeyPair struct {
	PrivateKey []byte // 32-byte scalar
	PublicKey  []byte // 65-byte uncompressed point, leading 0x04
}

func (kp *KeyPair) Wipe() {
	if kp == nil {
		return
	}
	cryptoerr.Zero(kp.PrivateKey)
}

// DerivedKeys are the two independent key pairs of one identity.
type DerivedKeys struct {
	Signing *KeyPair
	DID     *KeyPair
}

func (d *DerivedKeys) Wipe() {
	if d == nil {
		return
	}
	d.Signing.Wipe()
	d.DID.Wipe()
}
