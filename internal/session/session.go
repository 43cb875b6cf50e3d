// Package session maps opaque tokens to user ids.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Store owns sessions. A destroyed token is invalid immediately and forever.
type Store interface {
	CreateSession(ctx context.Context, userID uint) (string, error)

	// ResolveSession reports ok=false for unknown, destroyed or expired tokens.
	ResolveSession(ctx context.Context, token string) (userID uint, ok bool, err error)

	DestroySession(ctx context.Context, token string) error
}

// NewToken returns 32 random bytes, base64url encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
