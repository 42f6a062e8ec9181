package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Identity is the self-reported user of the application.
//
// It is not verified anywhere. The email only partitions local drafts and
// remote records between people sharing a device or a server.
type Identity struct {
	// Name is the display name of the user.
	Name string `json:"name" toml:"name" validate:"required,max=80"`

	// Email is the user's email address and the ownership key of all records.
	Email string `json:"email" toml:"email" validate:"required,email"`
}

// NewIdentity trims and normalises the fields and validates the result.
func NewIdentity(name, email string) (Identity, error) {
	id := Identity{
		Name:  strings.TrimSpace(name),
		Email: NormalizeEmail(email),
	}
	if err := id.Validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Validate checks the identity shape (non-empty name, well-formed email).
func (i Identity) Validate() error {
	if err := validate.Struct(i); err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}
	return nil
}

// IsZero reports whether no identity has been set up.
func (i Identity) IsZero() bool {
	return i.Email == ""
}

// NormalizeEmail lowercases and trims an email so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is the remote record of an identity.
type User struct {
	Email string

	// Name is the last display name reported for this email.
	Name string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}
