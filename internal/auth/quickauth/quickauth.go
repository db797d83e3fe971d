// Package quickauth verifies Farcaster Quick Auth session tokens.
//
// A Quick Auth token is an ES256 JWT issued by the Farcaster auth server and
// bound to the domain of the mini-app it was issued for. Verification resolves
// the signing key from the auth server's JWKS endpoint and checks the token's
// issuer, expiry, and domain binding before trusting its subject (the fid).
package quickauth

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Awarix/Farc-mini-app-auth/platform/config"
	"github.com/Awarix/Farc-mini-app-auth/platform/logger"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken indicates an empty or absent token.
	ErrMissingToken = errors.New("token not provided")
	// ErrInvalidToken indicates the token's signature, structure, or claims
	// failed cryptographic validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrVerificationFailed covers every other failure: key retrieval,
	// malformed payload, non-numeric subject.
	ErrVerificationFailed = errors.New("token verification failed")
)

// Subject is the identity extracted from a verified token.
type Subject struct {
	Fid int64
	// Address is the wallet address claim Quick Auth embeds, empty when the
	// token carries none.
	Address string
}

// Verifier validates Quick Auth tokens against the configured app domain.
// Safe for concurrent use; the JWKS cache behind the keyfunc is shared.
type Verifier struct {
	domain string
	parser *jwt.Parser
	keys   *keySet
	log    *logger.Logger
}

// NewVerifier constructs a Verifier bound to the configured app domain.
// The domain is resolved once at config load; a fallback domain means APP_URL
// was unset or malformed and domain binding is effectively disabled.
func NewVerifier(cfg config.QuickAuthConfig, log *logger.Logger) *Verifier {
	if cfg.IsAppDomainFallback() {
		log.Warn("APP_URL is not set or malformed; token domain verification falls back to localhost and is insecure",
			"domain", cfg.GetAppDomain())
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"ES256"}),
		jwt.WithIssuer(cfg.GetQuickAuthURL()),
		jwt.WithAudience(cfg.GetAppDomain()),
		jwt.WithExpirationRequired(),
	)

	return &Verifier{
		domain: cfg.GetAppDomain(),
		parser: parser,
		keys:   newKeySet(cfg.GetQuickAuthURL(), cfg.GetQuickAuthTimeout()),
		log:    log,
	}
}

// Domain returns the hostname tokens must be bound to.
func (v *Verifier) Domain() string {
	return v.domain
}

// Verify validates the token and extracts its subject.
func (v *Verifier) Verify(ctx context.Context, token string) (Subject, error) {
	if token == "" {
		return Subject{}, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, v.keys.keyfunc(ctx))
	if err != nil {
		// Keyfunc failures (JWKS unreachable, unknown kid) surface as
		// unverifiable rather than invalid: the token itself may be fine.
		if errors.Is(err, jwt.ErrTokenUnverifiable) {
			return Subject{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
		}
		return Subject{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	fid, err := subjectFid(claims)
	if err != nil {
		return Subject{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	address, _ := claims["address"].(string)

	return Subject{Fid: fid, Address: address}, nil
}

// subjectFid extracts the fid from the sub claim. Quick Auth encodes the fid
// as a JSON number; anything else is an unexpected payload.
func subjectFid(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims["sub"]
	if !ok {
		return 0, errors.New("payload has no subject")
	}

	num, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("subject claim is not numeric (%T)", raw)
	}
	if num < 0 || num != math.Trunc(num) {
		return 0, fmt.Errorf("subject claim is not a non-negative integer (%v)", num)
	}

	return int64(num), nil
}
