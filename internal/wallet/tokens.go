package wallet

import (
	"context"

	"credwallet/go-core/internal/jwt"
	"credwallet/go-core/pkg/models"
)

// SignJWT signs claims with the identity's key. iss defaults to the DID and the
// header kid is the verification method.
func (c *Core) SignJWT(ctx context.Context, id *Identity, claims map[string]any) (string, error) {
	done := c.track("jwt.sign")
	if err := c.take(id); err != nil {
		done(err)
		return "", err
	}
	payload := make(map[string]any, len(claims)+1)
	for k, v := range claims {
		payload[k] = v
	}
	if _, ok := payload["iss"]; !ok {
		payload["iss"] = id.DID
	}
	token, err := c.tokens.Sign(ctx, payload, id.handle, id.VerificationMethod)
	done(err)
	return token, err
}

// IssueToken signs a fresh token for subject with iat, exp and jti set. extra
// claims are added on top.
func (c *Core) IssueToken(ctx context.Context, id *Identity, subject string, extra map[string]any) (string, error) {
	if id == nil {
		return "", ErrNoIdentity
	}
	claims := c.tokens.NewClaims(id.DID, subject, c.tokenTTL)
	for k, v := range extra {
		claims[k] = v
	}
	return c.SignJWT(ctx, id, claims)
}

// VerifyJWT checks the signature by pub and, when it holds, the time claims.
func (c *Core) VerifyJWT(token string, pub []byte) models.VerificationResult {
	started := c.now()
	res := c.tokens.Check(token, pub)
	c.observeVerify("jwt.verify", res.Valid, started, "violations", len(res.Violations))
	return res
}

// DecodeJWT parses a token for inspection only.
func (c *Core) DecodeJWT(token string) (*jwt.Token, error) {
	return jwt.Decode(token)
}
