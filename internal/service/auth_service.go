package service

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const bearerPrefix = "Bearer "

// TokenAuthenticator checks bearer credentials against the single configured token.
type TokenAuthenticator struct {
	digest     [blake2b.Size256]byte
	configured bool
}

// NewTokenAuthenticator keeps only a digest of token. An empty token rejects every request.
func NewTokenAuthenticator(token string) *TokenAuthenticator {
	a := &TokenAuthenticator{configured: token != ""}
	if a.configured {
		a.digest = blake2b.Sum256([]byte(token))
	}
	return a
}

// Authenticate accepts exactly "Bearer <token>". Comparing fixed-size digests in
// constant time keeps both the value and the length of the secret out of timing.
func (a *TokenAuthenticator) Authenticate(header string) error {
	if !a.configured || !strings.HasPrefix(header, bearerPrefix) {
		return ErrUnauthorized
	}
	presented := header[len(bearerPrefix):]
	if presented == "" {
		return ErrUnauthorized
	}
	d := blake2b.Sum256([]byte(presented))
	if subtle.ConstantTimeCompare(d[:], a.digest[:]) != 1 {
		return ErrUnauthorized
	}
	return nil
}
