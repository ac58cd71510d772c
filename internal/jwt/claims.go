package jwt

import (
	"time"

	"credwallet/go-core/pkg/models"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NewClaims fills the registered claims of a freshly issued token. A zero ttl
// leaves exp unset. Times are float64 seconds, the shape MapClaims reads back.
func (e *Engine) NewClaims(issuer, subject string, ttl time.Duration) gojwt.MapClaims {
	now := e.now()
	claims := gojwt.MapClaims{
		"iat": float64(now.Unix()),
		"jti": uuid.NewString(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	if subject != "" {
		claims["sub"] = subject
	}
	if ttl > 0 {
		claims["exp"] = float64(now.Add(ttl).Unix())
	}
	return claims
}

// ValidateClaims checks exp, nbf and iat against the engine clock and returns every
// violation found. An empty result means the time claims are acceptable.
func (e *Engine) ValidateClaims(claims gojwt.MapClaims) []models.ClaimViolation {
	now := e.now()
	var out []models.ClaimViolation

	exp, err := claims.GetExpirationTime()
	switch {
	case err != nil:
		out = append(out, malformed("exp", err))
	case exp != nil && exp.Before(now):
		out = append(out, models.ClaimViolation{
			Claim:   "exp",
			Code:    models.ClaimViolationExpired,
			Message: "token expired at " + exp.UTC().Format(time.RFC3339),
		})
	}

	nbf, err := claims.GetNotBefore()
	switch {
	case err != nil:
		out = append(out, malformed("nbf", err))
	case nbf != nil && nbf.After(now):
		out = append(out, models.ClaimViolation{
			Claim:   "nbf",
			Code:    models.ClaimViolationNotYetValid,
			Message: "token not valid before " + nbf.UTC().Format(time.RFC3339),
		})
	}

	iat, err := claims.GetIssuedAt()
	switch {
	case err != nil:
		out = append(out, malformed("iat", err))
	case iat != nil && iat.After(now.Add(e.clockSkew)):
		out = append(out, models.ClaimViolation{
			Claim:   "iat",
			Code:    models.ClaimViolationIssuedInFuture,
			Message: "token issued at " + iat.UTC().Format(time.RFC3339) + ", beyond allowed clock skew",
		})
	}
	return out
}

// Check verifies the signature and, when it holds, the time claims.
func (e *Engine) Check(token string, pub []byte) models.VerificationResult {
	if !Verify(token, pub) {
		return models.VerificationResult{}
	}
	decoded, err := Decode(token)
	if err != nil {
		return models.VerificationResult{}
	}
	violations := e.ValidateClaims(decoded.Claims)
	return models.VerificationResult{Valid: len(violations) == 0, Violations: violations}
}

func malformed(claim string, err error) models.ClaimViolation {
	return models.ClaimViolation{Claim: claim, Code: models.ClaimViolationMalformed, Message: err.Error()}
}
