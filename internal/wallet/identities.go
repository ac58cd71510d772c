package wallet

import (
	"context"
	"fmt"

	"credwallet/go-core/internal/did"
	"credwallet/go-core/internal/identity"
	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/internal/platform/cryptoerr"
)

type CreateRequest struct {
	Bits       int
	Passphrase string
	// BackupPassword, when set, keeps an encrypted copy of the mnemonic in the
	// core's seed manager.
	BackupPassword string
	Entity         did.Entity
	AddressIndex   uint32
}

// CreateIdentity draws a new mnemonic and derives its identity. The words are
// returned once for the user to write down.
func (c *Core) CreateIdentity(ctx context.Context, req CreateRequest) (*Identity, []string, error) {
	done := c.track("identity.create")
	words, err := identity.GenerateMnemonic(req.Bits)
	if err != nil {
		done(err)
		return nil, nil, err
	}
	id, err := c.deriveIdentity(ctx, words, req.Passphrase, req.Entity, req.AddressIndex)
	if err == nil && req.BackupPassword != "" {
		err = c.seeds.Import(words, req.BackupPassword)
	}
	done(err)
	if err != nil {
		return nil, nil, err
	}
	return id, words, nil
}

// ImportIdentity re-derives the identity of an existing mnemonic.
func (c *Core) ImportIdentity(ctx context.Context, words []string, passphrase string, entity did.Entity, addressIndex uint32) (*Identity, error) {
	done := c.track("identity.import")
	id, err := c.deriveIdentity(ctx, words, passphrase, entity, addressIndex)
	done(err)
	return id, err
}

// RestoreIdentity decrypts the stored mnemonic backup and derives from it.
func (c *Core) RestoreIdentity(ctx context.Context, backupPassword, passphrase string, entity did.Entity, addressIndex uint32) (*Identity, error) {
	done := c.track("identity.restore")
	words, err := c.seeds.Export(backupPassword)
	if err != nil {
		done(err)
		return nil, err
	}
	id, err := c.deriveIdentity(ctx, words, passphrase, entity, addressIndex)
	done(err)
	return id, err
}

func (c *Core) Seeds() *identity.SeedManager {
	return c.seeds
}

func (c *Core) deriveIdentity(ctx context.Context, words []string, passphrase string, entity did.Entity, addressIndex uint32) (*Identity, error) {
	if entity == "" {
		entity = c.entity
	}
	if !entity.Valid() {
		return nil, fmt.Errorf("%w: entity %q", cryptoerr.ErrInvalidInput, entity)
	}
	seed, err := identity.SeedFromMnemonic(words, passphrase)
	if err != nil {
		return nil, err
	}
	defer cryptoerr.Zero(seed)

	keys, err := c.path.DeriveKeys(seed, addressIndex)
	if err != nil {
		return nil, err
	}
	defer keys.Wipe()

	didPub, err := keyformat.CompressPublicKey(keys.DID.PublicKey)
	if err != nil {
		return nil, err
	}
	didString, err := c.codec.Encode(didPub, entity)
	if err != nil {
		return nil, err
	}
	kid, err := did.KeyID(keys.Signing.PublicKey)
	if err != nil {
		return nil, err
	}
	// ImportPrivateKey zeroes the signing scalar; Wipe covers the DID scalar.
	handle, err := keyformat.ImportPrivateKey(ctx, c.provider, keys.Signing.PrivateKey)
	if err != nil {
		return nil, err
	}

	id := &Identity{
		DID:                didString,
		Entity:             entity,
		KeyID:              kid,
		VerificationMethod: did.VerificationMethod(didString, kid),
		SigningPublicKey:   append([]byte(nil), keys.Signing.PublicKey...),
		DIDPublicKey:       didPub,
		AddressIndex:       addressIndex,
		CreatedAt:          c.now().UTC(),
		handle:             handle,
	}
	c.logger.Debug("identity derived", "did", id.DID, "kid", id.KeyID, "address_index", addressIndex)
	return id, nil
}

// ExportPublicKeyPEM returns the identity's signing key as an SPKI PEM block.
func (c *Core) ExportPublicKeyPEM(id *Identity) (string, error) {
	if id == nil {
		return "", ErrNoIdentity
	}
	return keyformat.ExportPublicKeyPEM(id.SigningPublicKey)
}
