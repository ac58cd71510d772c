package models

import (
	"strings"
	"time"
)

// Identity is the public view of a derived wallet identity. It never carries
// private material.
type Identity struct {
	DID                string    `json:"did"`
	Entity             string    `json:"entity"`
	KeyID              string    `json:"kid"`
	VerificationMethod string    `json:"verification_method"`
	SigningPublicKey   []byte    `json:"signing_public_key"`
	DIDPublicKey       []byte    `json:"did_public_key"`
	AddressIndex       uint32    `json:"address_index"`
	CreatedAt          time.Time `json:"created_at"`
}

type KeyInfo struct {
	KeyID     string `json:"kid"`
	PublicKey []byte `json:"public_key"`
	PEM       string `json:"pem,omitempty"`
	Curve     string `json:"curve"`
}

const (
	ClaimViolationExpired        = "expired"
	ClaimViolationNotYetValid    = "not_yet_valid"
	ClaimViolationIssuedInFuture = "issued_in_future"
	ClaimViolationMalformed      = "malformed"
)

// ClaimViolation is one failed time check on a token. Callers decide severity.
type ClaimViolation struct {
	Claim   string `json:"claim"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClaimViolationSeverity maps a violation to "error" or "warning". Clock skew on
// iat is only a warning.
func ClaimViolationSeverity(v ClaimViolation) string {
	switch strings.TrimSpace(v.Code) {
	case ClaimViolationIssuedInFuture:
		return "warning"
	default:
		return "error"
	}
}

type VerificationResult struct {
	Valid      bool             `json:"valid"`
	Violations []ClaimViolation `json:"violations,omitempty"`
}

type MetricsSnapshot struct {
	OperationStats map[string]OperationMetric `json:"operation_stats"`
	LastUpdatedAt  time.Time                  `json:"last_updated_at"`
}

type OperationMetric struct {
	Count         int   `json:"count"`
	Errors        int   `json:"errors"`
	AvgLatencyMs  int64 `json:"avg_latency_ms"`
	MaxLatencyMs  int64 `json:"max_latency_ms"`
	LastLatencyMs int64 `json:"last_latency_ms"`
}
