// Package auth verifies connection credentials and resolves them to user
// identities. Verification happens exactly once per connection, before any
// session exists; everything after the handshake trusts the resolved identity.
package auth

import "context"

// Identity describes a verified user. It is resolved once at handshake time
// and never mutated afterwards.
type Identity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Directory resolves user IDs to identities. The real user store lives
// outside this service; this interface is the boundary to it.
type Directory interface {
	// Lookup returns the identity for the given user ID. The boolean is
	// false when no such user exists.
	Lookup(ctx context.Context, userID string) (Identity, bool, error)
}
