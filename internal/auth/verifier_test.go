package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func validClaims(userID string) Claims {
	return Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

// TestVerifyMissingCredential verifies that an absent credential is its own
// failure mode, distinct from an invalid one.
func TestVerifyMissingCredential(t *testing.T) {
	verifier := NewVerifier(testSecret, NewStaticDirectory())

	_, err := verifier.Verify(context.Background(), "")
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("Expected ErrMissingCredential, got %v", err)
	}
}

// TestVerifyInvalidCredential covers the credential shapes that must fail
// authentication: malformed tokens, wrong signing secret, expired tokens,
// and tokens without a user ID claim.
func TestVerifyInvalidCredential(t *testing.T) {
	directory := NewStaticDirectory(Identity{ID: "u1", Username: "alice"})
	verifier := NewVerifier(testSecret, directory)

	expired := validClaims("u1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := map[string]string{
		"malformed":    "not-a-jwt",
		"wrong secret": signToken(t, []byte("other-secret"), validClaims("u1")),
		"expired":      signToken(t, testSecret, expired),
		"no user id":   signToken(t, testSecret, validClaims("")),
	}

	for name, credential := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := verifier.Verify(context.Background(), credential); !errors.Is(err, ErrInvalidCredential) {
				t.Errorf("Expected ErrInvalidCredential, got %v", err)
			}
		})
	}
}

// TestVerifyUnknownIdentity verifies that a token which authenticates but
// references a user missing from the directory is rejected.
func TestVerifyUnknownIdentity(t *testing.T) {
	verifier := NewVerifier(testSecret, NewStaticDirectory())

	token := signToken(t, testSecret, validClaims("ghost"))
	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("Expected ErrUnknownIdentity, got %v", err)
	}
}

// TestVerifyResolvesIdentity verifies the happy path: a valid token for a
// known user resolves to that user's full identity.
func TestVerifyResolvesIdentity(t *testing.T) {
	alice := Identity{ID: "u1", Username: "alice", FirstName: "Alice", LastName: "Anderson", Email: "alice@example.com"}
	verifier := NewVerifier(testSecret, NewStaticDirectory(alice))

	identity, err := verifier.Verify(context.Background(), signToken(t, testSecret, validClaims("u1")))
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if identity != alice {
		t.Errorf("Expected identity %+v, got %+v", alice, identity)
	}
}

// TestVerifyRemovedUser verifies that a previously valid credential stops
// resolving once the user is removed from the directory.
func TestVerifyRemovedUser(t *testing.T) {
	directory := NewStaticDirectory(Identity{ID: "u1", Username: "alice"})
	verifier := NewVerifier(testSecret, directory)
	token := signToken(t, testSecret, validClaims("u1"))

	if _, err := verifier.Verify(context.Background(), token); err != nil {
		t.Fatalf("Verify failed before removal: %v", err)
	}

	directory.Remove("u1")
	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("Expected ErrUnknownIdentity after removal, got %v", err)
	}
}

type failingDirectory struct{}

func (failingDirectory) Lookup(context.Context, string) (Identity, bool, error) {
	return Identity{}, false, errors.New("store unavailable")
}

// TestVerifyDirectoryError verifies that a directory failure is surfaced as
// a wrapped error rather than being folded into the auth taxonomy.
func TestVerifyDirectoryError(t *testing.T) {
	verifier := NewVerifier(testSecret, failingDirectory{})

	_, err := verifier.Verify(context.Background(), signToken(t, testSecret, validClaims("u1")))
	if err == nil {
		t.Fatal("Expected an error from a failing directory")
	}
	if errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("Directory failure should not map to an auth error, got %v", err)
	}
}
