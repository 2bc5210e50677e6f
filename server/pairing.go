package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultPairingTTL = 10 * time.Minute
	pairingSecretLen  = 32
)

var (
	ErrTokenExpired = errors.New("pairing token expired")
	ErrTokenInvalid = errors.New("pairing token invalid")
)

type pairClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Pairer issues and checks the short-lived tokens a phone uses to attach
// to a run as its controller
type Pairer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewPairer creates a Pairer. An empty secret generates a random one, so
// tokens do not survive a restart.
func NewPairer(secret string, ttl time.Duration) (*Pairer, error) {
	key := []byte(secret)
	if secret == "" {
		key = make([]byte, pairingSecretLen)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating pairing secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = defaultPairingTTL
	}
	return &Pairer{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for session sid
func (p *Pairer) Issue(sid string) (string, error) {
	now := p.now()
	claims := pairClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("signing pairing token: %w", err)
	}
	return signed, nil
}

// Verify checks a token and returns the session it pairs with. Errors wrap
// ErrTokenExpired or ErrTokenInvalid.
func (p *Pairer) Verify(tokenStr string) (string, error) {
	var claims pairClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (interface{}, error) {
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	case claims.SID == "":
		return "", fmt.Errorf("%w: missing sid", ErrTokenInvalid)
	}
	return claims.SID, nil
}

// PairURL returns the link a phone opens to become the controller
func PairURL(base, token string) string {
	return strings.TrimRight(base, "/") + "/?pair=" + url.QueryEscape(token)
}
