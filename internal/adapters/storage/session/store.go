// Package session persists logged-in sessions behind an opaque cookie token.
// Three backends share the Store contract: in-memory, SQLite and Redis.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	domain "flipfit/internal/domain/session"
)

// Store defines session persistence.
type Store interface {
	// Create stores sess and returns the token for the cookie.
	// PRE: sess.Validate() == nil
	// POST: Get(token) returns sess until it expires or is deleted
	Create(ctx context.Context, sess domain.Session) (string, error)

	// Get returns the session for token. Unknown and expired tokens report false, not an error.
	Get(ctx context.Context, token string) (domain.Session, bool, error)

	// Delete removes the session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// newToken returns 32 random bytes, hex encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashToken derives the at-rest key for a token so a leaked table or keyspace
// cannot be replayed as cookies.
func hashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
