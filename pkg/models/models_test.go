package models

import "testing"

func TestClaimViolationSeverity(t *testing.T) {
	if got := ClaimViolationSeverity(ClaimViolation{Code: ClaimViolationIssuedInFuture}); got != "warning" {
		t.Fatalf("expected warning for clock skew, got %q", got)
	}
	if got := ClaimViolationSeverity(ClaimViolation{Code: ClaimViolationExpired}); got != "error" {
		t.Fatalf("expected error for expiry, got %q", got)
	}
	if got := ClaimViolationSeverity(ClaimViolation{Code: "unknown"}); got != "error" {
		t.Fatalf("unknown codes must default to error, got %q", got)
	}
}
