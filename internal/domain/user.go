package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Identity is the normalized result of a provider login. It is produced
// by the identity resolver only and never persisted.
type Identity struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// User represents a registered account. One row per Google subject id;
// email, name and avatar follow the provider on every login.
type User struct {
	ID        uuid.UUID `json:"id"`
	GoogleID  string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	// Upsert creates the user on first login and refreshes the mutable
	// profile fields on repeat logins, keyed by google_id. It reports
	// whether a new row was created.
	Upsert(ctx context.Context, identity Identity) (*User, bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)
	CreateTables(ctx context.Context) error
}
