// Package credential signs, verifies and fingerprints W3C-style verifiable credentials
// using detached Data Integrity proofs over a canonical JSON serialization.
package credential

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"credwallet/go-core/internal/platform/cryptoerr"
)

const (
	ProofField   = "proof"
	ProofType    = "DataIntegrityProof"
	Cryptosuite  = "ecdsa-rdfc-2019"
	ProofPurpose = "assertionMethod"
)

var ErrNoProof = errors.New("credential has no proof")

// Credential is a JSON object document. Numbers parsed by Parse are json.Number so
// they re-serialize exactly.
type Credential map[string]any

type Proof struct {
	Type               string `json:"type"`
	Cryptosuite        string `json:"cryptosuite"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue"`
}

func Parse(data []byte) (Credential, error) {
	var c Credential
	if err := decodeJSON(data, &c); err != nil {
		return nil, fmt.Errorf("%w: credential: %v", cryptoerr.ErrInvalidInput, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: credential is not a JSON object", cryptoerr.ErrInvalidInput)
	}
	return c, nil
}

// Without returns a shallow copy lacking the named top-level fields.
func (c Credential) Without(fields ...string) Credential {
	out := make(Credential, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, f := range fields {
		delete(out, f)
	}
	return out
}

// Proof returns the attached proof.
func (c Credential) Proof() (*Proof, error) {
	raw, ok := c[ProofField]
	if !ok || raw == nil {
		return nil, ErrNoProof
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: proof: %v", cryptoerr.ErrInvalidInput, err)
	}
	var p Proof
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: proof: %v", cryptoerr.ErrInvalidInput, err)
	}
	return &p, nil
}

func (c Credential) Marshal() ([]byte, error) {
	return marshalJSON(c)
}

// Canonicalize serializes doc with object keys sorted, at every depth, and without
// HTML escaping. Equal documents always produce identical bytes.
func Canonicalize(doc any) ([]byte, error) {
	b, err := marshalJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: canonicalize: %v", cryptoerr.ErrInvalidInput, err)
	}
	// Round-trip through generic values so struct field order cannot leak through.
	var generic any
	if err := decodeJSON(b, &generic); err != nil {
		return nil, fmt.Errorf("%w: canonicalize: %v", cryptoerr.ErrInvalidInput, err)
	}
	return marshalJSON(generic)
}

func proofMap(p Proof) map[string]any {
	return map[string]any{
		"type":               p.Type,
		"cryptosuite":        p.Cryptosuite,
		"created":            p.Created,
		"verificationMethod": p.VerificationMethod,
		"proofPurpose":       p.ProofPurpose,
		"proofValue":         p.ProofValue,
	}
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
