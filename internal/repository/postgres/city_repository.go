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

type cityRepository struct {
	db DB
}

func NewCityRepository(db DB) domain.CityRepository {
	return &cityRepository{db: db}
}

func (r *cityRepository) Create(ctx context.Context, city *domain.City) error {
	city.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO cities (id, trip_id, place_id, name, country, description, added_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, city.ID, city.TripID, city.PlaceID, city.Name, city.Country, city.Description, city.AddedBy, city.CreatedAt)

	if err != nil && isUniqueViolation(err) {
		return apperrors.Conflict("city already added to this trip")
	}
	return err
}

func (r *cityRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.City, error) {
	query := `
		SELECT id, trip_id, place_id, name, country, description, added_by, created_at
		FROM cities
		WHERE id = $1
	`

	var city domain.City
	err := r.db.QueryRow(ctx, query, id).Scan(
		&city.ID,
		&city.TripID,
		&city.PlaceID,
		&city.Name,
		&city.Country,
		&city.Description,
		&city.AddedBy,
		&city.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("city")
		}
		return nil, err
	}

	return &city, nil
}

func (r *cityRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.City, error) {
	query := `
		SELECT id, trip_id, place_id, name, country, description, added_by, created_at
		FROM cities
		WHERE trip_id = $1
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := []domain.City{}
	for rows.Next() {
		var city domain.City
		if err := rows.Scan(
			&city.ID,
			&city.TripID,
			&city.PlaceID,
			&city.Name,
			&city.Country,
			&city.Description,
			&city.AddedBy,
			&city.CreatedAt,
		); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}

	return cities, rows.Err()
}

func (r *cityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound("city")
	}

	return nil
}

// UpsertVote records the vote or replaces an earlier one by the same
// member, keyed on (city_id, user_id).
func (r *cityRepository) UpsertVote(ctx context.Context, vote *domain.CityVote) error {
	now := time.Now()
	vote.CreatedAt = now
	vote.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO city_votes (id, trip_id, city_id, user_id, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (city_id, user_id) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, vote.ID, vote.TripID, vote.CityID, vote.UserID, vote.Value, now)

	return err
}

func (r *cityRepository) TallyByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.VoteTally, error) {
	query := `
		SELECT city_id, COALESCE(SUM(value), 0), COUNT(*)
		FROM city_votes
		WHERE trip_id = $1
		GROUP BY city_id
	`

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tallies := []domain.VoteTally{}
	for rows.Next() {
		var tally domain.VoteTally
		if err := rows.Scan(&tally.CityID, &tally.Score, &tally.Count); err != nil {
			return nil, err
		}
		tallies = append(tallies, tally)
	}

	return tallies, rows.Err()
}

// CreateTables creates the necessary database tables
func (r *cityRepository) CreateTables(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS cities (
			id UUID PRIMARY KEY,
			trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			place_id VARCHAR(255) NOT NULL DEFAULT '',
			name VARCHAR(255) NOT NULL,
			country VARCHAR(255) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			added_by UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL,
			UNIQUE (trip_id, name)
		);

		CREATE TABLE IF NOT EXISTS city_votes (
			id UUID PRIMARY KEY,
			trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			city_id UUID NOT NULL REFERENCES cities(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id),
			value SMALLINT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (city_id, user_id)
		);

		CREATE INDEX IF NOT EXISTS idx_cities_trip_id ON cities(trip_id);
		CREATE INDEX IF NOT EXISTS idx_city_votes_trip_id ON city_votes(trip_id);
	`

	_, err := r.db.Exec(ctx, query)
	return err
}
