package wallet

import (
	"time"

	"credwallet/go-core/internal/did"
	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/pkg/models"
)

// Identity is the active identity a caller passes to every signing or decrypting
// operation. It holds the imported signing handle, never raw key bytes.
type Identity struct {
	DID                string
	Entity             did.Entity
	KeyID              string
	VerificationMethod string
	SigningPublicKey   []byte // uncompressed
	DIDPublicKey       []byte // compressed, as encoded in DID
	AddressIndex       uint32
	CreatedAt          time.Time

	handle keyformat.Handle
}

func (i *Identity) Signer() keyformat.Signer {
	return i.handle
}

func (i *Identity) Public() models.Identity {
	return models.Identity{
		DID:                i.DID,
		Entity:             string(i.Entity),
		KeyID:              i.KeyID,
		VerificationMethod: i.VerificationMethod,
		SigningPublicKey:   append([]byte(nil), i.SigningPublicKey...),
		DIDPublicKey:       append([]byte(nil), i.DIDPublicKey...),
		AddressIndex:       i.AddressIndex,
		CreatedAt:          i.CreatedAt,
	}
}
