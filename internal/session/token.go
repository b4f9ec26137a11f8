package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer identifies tokens minted by this gateway.
const tokenIssuer = "go-trip-gateway"

// ErrBadToken is returned when a cookie token fails signature or claim
// validation. Callers treat it exactly like a missing cookie.
var ErrBadToken = errors.New("invalid session token")

// Codec signs the opaque session id into the cookie value and verifies it on
// the way back in. The client never sees the raw id unsigned, so a tampered
// cookie is rejected before the store is consulted.
//
// The wire format is a compact HS256 JWT whose subject is the session id and
// whose expiry mirrors the session record's own.
type Codec struct {
	secret []byte
}

// NewCodec builds a Codec keyed with the session secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign wraps a session id into a signed cookie token expiring at expiresAt.
func (c *Codec) Sign(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify validates signature, issuer, and expiry against now, returning the
// embedded session id. Any failure collapses to ErrBadToken; the caller has
// no use for the distinction, and the client gets a fresh session either way.
func (c *Codec) Verify(token string, now time.Time) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || claims.Subject == "" {
		return "", ErrBadToken
	}
	return claims.Subject, nil
}
