// Package token issues and verifies the two classes of signed bearer
// credentials used by the dashboard: short-lived access tokens presented on
// every API call and long-lived refresh tokens exchanged only at the refresh
// endpoint.  Each class is signed with its own HS256 secret and carries a
// type claim; both the secret and the claim are checked on verification so
// a token of one class never validates as the other.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates the two token classes.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

// ErrInvalidToken is returned for every verification failure: bad signature,
// expiry, wrong type, wrong issuer or audience.  Callers never learn which
// check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload signed into every token: the registered claims plus
// the type discriminator.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// Signed pairs a serialized token with its expiry so callers can set cookie
// lifetimes without re-parsing.
type Signed struct {
	Token     string
	ExpiresAt time.Time
}

// Issuer mints and verifies tokens.  It is immutable after construction and
// safe for concurrent use.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// Option adjusts an Issuer at construction time.
type Option func(*Issuer)

// WithClock replaces the issuer's time source.  Tests use this to exercise
// expiry without sleeping.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer builds an Issuer from the two signing secrets, the deployment
// tags and the per-class lifetimes.
func NewIssuer(accessSecret, refreshSecret, issuer, audience string, accessTTL, refreshTTL time.Duration, opts ...Option) *Issuer {
	i := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		audience:      audience,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// IssueAccess signs a short-lived access token for the subject.
func (i *Issuer) IssueAccess(subject string) (Signed, error) {
	return i.issue(subject, Access, i.accessSecret, i.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the subject.
func (i *Issuer) IssueRefresh(subject string) (Signed, error) {
	return i.issue(subject, Refresh, i.refreshSecret, i.refreshTTL)
}

func (i *Issuer) issue(subject string, kind Kind, secret []byte, ttl time.Duration) (Signed, error) {
	now := i.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Type: string(kind),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return Signed{}, err
	}
	return Signed{Token: signed, ExpiresAt: exp}, nil
}

// Verify checks the raw token under the secret of the expected kind and
// returns the subject.  Signature, expiry, issuer, audience and the type
// claim must all match; any mismatch yields ErrInvalidToken.  The type claim
// is the primary discriminator and is enforced even though the per-class
// secrets would already reject cross-class tokens.
func (i *Issuer) Verify(raw string, kind Kind) (string, error) {
	secret := i.accessSecret
	if kind == Refresh {
		secret = i.refreshSecret
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	if claims.Type != string(kind) || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
