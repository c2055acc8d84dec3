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

type tripRepository struct {
	db DB
}

func NewTripRepository(db DB) domain.TripRepository {
	return &tripRepository{db: db}
}

// Create inserts the trip and the owner membership row in a single
// transaction so an aborted request never leaves an ownerless trip.
func (r *tripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	trip.CreatedAt = now
	trip.UpdatedAt = now
	if trip.Status == "" {
		trip.Status = domain.TripStatusPlanning
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trips (id, name, description, owner_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, trip.ID, trip.Name, trip.Description, trip.OwnerID, trip.Status, trip.CreatedAt, trip.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trip_members (trip_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, trip.ID, trip.OwnerID, domain.TripRoleOwner, now)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *tripRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	query := `
		SELECT id, name, description, owner_id, status, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	var trip domain.Trip
	err := r.db.QueryRow(ctx, query, id).Scan(
		&trip.ID,
		&trip.Name,
		&trip.Description,
		&trip.OwnerID,
		&trip.Status,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("trip")
		}
		return nil, err
	}

	return &trip, nil
}

func (r *tripRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	query := `
		SELECT t.id, t.name, t.description, t.owner_id, t.status, t.created_at, t.updated_at
		FROM trips t
		JOIN trip_members m ON m.trip_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		var trip domain.Trip
		if err := rows.Scan(
			&trip.ID,
			&trip.Name,
			&trip.Description,
			&trip.OwnerID,
			&trip.Status,
			&trip.CreatedAt,
			&trip.UpdatedAt,
		); err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

func (r *tripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound("trip")
	}

	return nil
}

func (r *tripRepository) IsMember(ctx context.Context, tripID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM trip_members WHERE trip_id = $1 AND user_id = $2
		)
	`

	var isMember bool
	if err := r.db.QueryRow(ctx, query, tripID, userID).Scan(&isMember); err != nil {
		return false, err
	}

	return isMember, nil
}

func (r *tripRepository) ListMembers(ctx context.Context, tripID uuid.UUID) ([]domain.TripMember, error) {
	query := `
		SELECT trip_id, user_id, role, created_at
		FROM trip_members
		WHERE trip_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []domain.TripMember{}
	for rows.Next() {
		var member domain.TripMember
		if err := rows.Scan(&member.TripID, &member.UserID, &member.Role, &member.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *tripRepository) CreateInvite(ctx context.Context, invite *domain.InviteLink) error {
	invite.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO invite_links (id, trip_id, token, created_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, invite.ID, invite.TripID, invite.Token, invite.CreatedBy, invite.ExpiresAt, invite.CreatedAt)

	return err
}

// CreateTables creates the necessary database tables
func (r *tripRepository) CreateTables(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS trips (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner_id UUID NOT NULL REFERENCES users(id),
			status VARCHAR(50) NOT NULL DEFAULT 'planning',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS trip_members (
			trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id),
			role VARCHAR(50) NOT NULL DEFAULT 'member',
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (trip_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS invite_links (
			id UUID PRIMARY KEY,
			trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			token UUID UNIQUE NOT NULL,
			created_by UUID NOT NULL REFERENCES users(id),
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_trips_owner_id ON trips(owner_id);
		CREATE INDEX IF NOT EXISTS idx_trip_members_user_id ON trip_members(user_id);
	`

	_, err := r.db.Exec(ctx, query)
	return err
}
