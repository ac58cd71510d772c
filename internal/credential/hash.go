package credential

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageOnlyFields are stamped onto cached credentials after signing. A verifying
// backend never sees them, so Hash leaves them out.
var StorageOnlyFields = []string{
	"_storedAt",
	"_localId",
	"_syncStatus",
	"_schemaMetadata",
}

// Hash is the hex SHA-256 of the canonical credential, proof included, without
// StorageOnlyFields.
func Hash(cred Credential) (string, error) {
	return HashExcluding(cred, StorageOnlyFields)
}

func HashExcluding(cred Credential, exclude []string) (string, error) {
	payload, err := Canonicalize(cred.Without(exclude...))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
