package wallet

import (
	"context"

	"credwallet/go-core/internal/ecies"
)

// Encrypt seals plaintext to recipient, a compressed or uncompressed public key.
func (c *Core) Encrypt(plaintext any, recipient []byte) (string, error) {
	done := c.track("ecies.encrypt")
	env, err := ecies.Encrypt(plaintext, recipient)
	done(err)
	return env, err
}

// Decrypt opens an envelope addressed to the identity's signing key.
func (c *Core) Decrypt(ctx context.Context, id *Identity, envelope string, out any) error {
	done := c.track("ecies.decrypt")
	if err := c.take(id); err != nil {
		done(err)
		return err
	}
	err := ecies.Open(ctx, envelope, id.handle, out)
	if err != nil {
		c.logger.Warn("envelope rejected", "recipient", id.DID, "error", err)
	}
	done(err)
	return err
}
