package credential

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/internal/platform/cryptoerr"
	"credwallet/go-core/internal/sigcodec"
)

// multibase "z" marks the base64url proof value.
const multibasePrefix = "z"

// CreatedLayout matches the millisecond ISO-8601 timestamps other verifiers emit.
const CreatedLayout = "2006-01-02T15:04:05.000Z07:00"

// CreateProof signs the canonical form of cred without its proof and returns a copy
// with the new proof attached. Any existing proof is replaced.
func CreateProof(ctx context.Context, cred Credential, key keyformat.Signer, verificationMethod string, created time.Time) (Credential, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: no signing key", cryptoerr.ErrInvalidInput)
	}
	if strings.TrimSpace(verificationMethod) == "" {
		return nil, fmt.Errorf("%w: verification method is required", cryptoerr.ErrInvalidInput)
	}
	unsigned := cred.Without(ProofField)
	payload, err := Canonicalize(unsigned)
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(ctx, payload)
	if err != nil {
		return nil, err
	}
	proof := Proof{
		Type:               ProofType,
		Cryptosuite:        Cryptosuite,
		Created:            created.UTC().Format(CreatedLayout),
		VerificationMethod: verificationMethod,
		ProofPurpose:       ProofPurpose,
		ProofValue:         multibasePrefix + base64.RawURLEncoding.EncodeToString(sig),
	}
	unsigned[ProofField] = proofMap(proof)
	return unsigned, nil
}

// VerifyProof reports whether cred carries a valid proof by pub. Missing or
// malformed proofs verify as false.
func VerifyProof(cred Credential, pub []byte) bool {
	proof, err := cred.Proof()
	if err != nil || proof.Type != ProofType {
		return false
	}
	sig, err := decodeProofValue(proof.ProofValue)
	if err != nil {
		return false
	}
	payload, err := Canonicalize(cred.Without(ProofField))
	if err != nil {
		return false
	}
	return keyformat.Verify(pub, payload, sig)
}

func decodeProofValue(v string) ([]byte, error) {
	if !strings.HasPrefix(v, multibasePrefix) {
		return nil, fmt.Errorf("%w: proof value is not multibase z", cryptoerr.ErrSignatureFormat)
	}
	body := strings.TrimRight(v[len(multibasePrefix):], "=")
	b, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: proof value: %v", cryptoerr.ErrSignatureFormat, err)
	}
	return sigcodec.Normalize(b)
}
