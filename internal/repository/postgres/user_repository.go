package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/domain"
)

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Upsert creates the user on first login and refreshes email, name and
// avatar on repeat logins. The google_id unique constraint is the
// concurrency guard: a create-create race resolves to one row with both
// callers seeing the same id. The (xmax = 0) expression reports whether
// this statement inserted the row.
func (r *userRepository) Upsert(ctx context.Context, identity domain.Identity) (*domain.User, bool, error) {
	query := `
		INSERT INTO users (id, google_id, email, name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (google_id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    avatar_url = EXCLUDED.avatar_url,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, google_id, email, name, avatar_url, created_at, updated_at, (xmax = 0)
	`

	now := time.Now()

	var user domain.User
	var created bool
	err := r.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		identity.GoogleID,
		identity.Email,
		identity.Name,
		identity.AvatarURL,
		now,
	).Scan(
		&user.ID,
		&user.GoogleID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
		&created,
	)

	if err != nil {
		if isUniqueViolation(err) {
			// google_id conflicts resolve in-statement, so only the email
			// constraint can fire: another account already owns this email.
			return nil, false, apperrors.Conflict("email already registered to another account")
		}
		return nil, false, err
	}

	return &user, created, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, google_id, email, name, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(ctx, query, id)
}

func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	query := `
		SELECT id, google_id, email, name, avatar_url, created_at, updated_at
		FROM users
		WHERE google_id = $1
	`

	return r.scanUser(ctx, query, googleID)
}

func (r *userRepository) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.GoogleID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}

	return &user, nil
}

// CreateTables creates the necessary database tables
func (r *userRepository) CreateTables(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			google_id VARCHAR(255) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_google_id ON users(google_id);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`

	_, err := r.db.Exec(ctx, query)
	return err
}
