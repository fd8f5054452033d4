package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Handshake failure taxonomy. Each terminates the connection attempt before
// any session is created.
var (
	// ErrMissingCredential is returned when no credential was supplied.
	ErrMissingCredential = errors.New("auth: missing credential")
	// ErrInvalidCredential is returned when the credential cannot be
	// authenticated (bad signature, expired, malformed, wrong algorithm).
	ErrInvalidCredential = errors.New("auth: invalid credential")
	// ErrUnknownIdentity is returned when the credential authenticates but
	// the referenced user no longer exists.
	ErrUnknownIdentity = errors.New("auth: unknown identity")
)

// Claims is the expected token payload: an HMAC-signed JWT carrying the
// user ID under the "userId" claim.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier validates bearer credentials presented at connection time and
// resolves them against a Directory. It has no side effects.
type Verifier struct {
	secret    []byte
	directory Directory
}

// NewVerifier creates a Verifier using the given HMAC secret and directory.
func NewVerifier(secret []byte, directory Directory) *Verifier {
	return &Verifier{secret: secret, directory: directory}
}

// Verify authenticates the credential and resolves the identity it names.
func (v *Verifier) Verify(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrMissingCredential
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return Identity{}, ErrInvalidCredential
	}

	identity, ok, err := v.directory.Lookup(ctx, claims.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("auth: directory lookup: %w", err)
	}
	if !ok {
		return Identity{}, ErrUnknownIdentity
	}
	return identity, nil
}
