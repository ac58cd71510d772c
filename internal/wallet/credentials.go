package wallet

import (
	"context"
	"fmt"

	"credwallet/go-core/internal/credential"
	"credwallet/go-core/internal/platform/cryptoerr"

	"github.com/google/uuid"
)

// IssueCredential fills id, issuer and issuanceDate when absent and attaches a
// proof by the identity's signing key.
func (c *Core) IssueCredential(ctx context.Context, id *Identity, cred credential.Credential) (credential.Credential, error) {
	started := c.now()
	done := c.track("vc.sign")
	if err := c.take(id); err != nil {
		done(err)
		return nil, err
	}
	if cred == nil {
		err := fmt.Errorf("%w: empty credential", cryptoerr.ErrInvalidInput)
		done(err)
		return nil, err
	}
	doc := cred.Without()
	if _, ok := doc["id"]; !ok {
		doc["id"] = "urn:uuid:" + uuid.NewString()
	}
	if _, ok := doc["issuer"]; !ok {
		doc["issuer"] = id.DID
	}
	if _, ok := doc["issuanceDate"]; !ok {
		doc["issuanceDate"] = started.UTC().Format(credential.CreatedLayout)
	}
	signed, err := credential.CreateProof(ctx, doc, id.handle, id.VerificationMethod, started)
	done(err)
	if err == nil {
		c.logger.Debug("credential issued", "issuer", id.DID, "credential_id", doc["id"])
	}
	return signed, err
}

func (c *Core) VerifyCredential(cred credential.Credential, pub []byte) bool {
	started := c.now()
	ok := credential.VerifyProof(cred, pub)
	c.observeVerify("vc.verify", ok, started)
	return ok
}

// HashCredential digests cred without the stamped and configured storage-only
// fields, the same set the cache keys with.
func (c *Core) HashCredential(cred credential.Credential) (string, error) {
	done := c.track("vc.hash")
	h, err := credential.HashExcluding(cred, c.storageOnly)
	done(err)
	return h, err
}

// CacheCredential stores cred in the local cache and returns its key.
func (c *Core) CacheCredential(cred credential.Credential) (string, error) {
	if c.store == nil {
		return "", ErrNoStore
	}
	done := c.track("vc.cache")
	key, err := c.store.Save(cred)
	done(err)
	return key, err
}

func (c *Core) CachedCredential(hash string) (credential.Credential, bool, error) {
	if c.store == nil {
		return nil, false, ErrNoStore
	}
	return c.store.Get(hash)
}

func (c *Core) CachedCredentials() ([]credential.Credential, error) {
	if c.store == nil {
		return nil, ErrNoStore
	}
	return c.store.All()
}
