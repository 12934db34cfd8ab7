package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by SecretStore operations when
// CLASSFEED_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set CLASSFEED_SECRET_KEY")

// SecretStore defines the driven port for encrypted secret persistence.
// The adapter layer is responsible for encryption/decryption; this interface
// operates on plaintext values at the domain boundary.
type SecretStore interface {
	// Set stores or replaces the secret with the given name. Returns
	// ErrEncryptionKeyNotSet if the adapter was constructed without an encryption key.
	Set(ctx context.Context, name, plaintext string) error

	// Get retrieves the plaintext secret with the given name.
	// Returns ("", nil) if no such secret exists.
	// Returns ErrEncryptionKeyNotSet if the adapter was constructed without an encryption key.
	Get(ctx context.Context, name string) (string, error)

	// Delete removes the secret with the given name. Deleting a missing
	// secret is not an error.
	Delete(ctx context.Context, name string) error
}
