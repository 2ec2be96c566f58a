// Package identity verifies email/password credentials.
package identity

import (
	"context"
	"errors"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Provider checks a sign-in attempt. It returns ErrInvalidCredentials for a
// wrong email or password and any other error for transport failures.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) error
}
