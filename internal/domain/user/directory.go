package user

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

// Directory resolves seeded identities. Lookups return nil, nil when the
// user does not exist.
type Directory interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)

	// EnsureUser inserts u when its username is unknown and returns the
	// stored record either way. Provisioning only.
	EnsureUser(ctx context.Context, u *models.User) (*models.User, error)
}

// CheckCredential compares a login attempt with the stored credential.
// Bcrypt hashes are verified as such; any other value is a plaintext
// credential compared in constant time.
func CheckCredential(stored, attempt string) bool {
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(attempt)) == 1
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}
