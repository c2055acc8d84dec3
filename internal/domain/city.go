package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// City is a candidate destination attached to a trip.
type City struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	PlaceID     string    `json:"place_id,omitempty"`
	Name        string    `json:"name"`
	Country     string    `json:"country,omitempty"`
	Description string    `json:"description,omitempty"`
	AddedBy     uuid.UUID `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// CityVote is one member's vote on a candidate city. Re-voting replaces
// the previous value.
type CityVote struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	CityID    uuid.UUID `json:"city_id"`
	UserID    uuid.UUID `json:"user_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoteTally aggregates votes for one city.
type VoteTally struct {
	CityID uuid.UUID `json:"city_id"`
	Score  int       `json:"score"`
	Count  int       `json:"count"`
}

// CityRepository defines the interface for city and vote persistence
type CityRepository interface {
	Create(ctx context.Context, city *City) error
	FindByID(ctx context.Context, id uuid.UUID) (*City, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]City, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// UpsertVote records or replaces the user's vote on a city.
	UpsertVote(ctx context.Context, vote *CityVote) error
	TallyByTrip(ctx context.Context, tripID uuid.UUID) ([]VoteTally, error)
	CreateTables(ctx context.Context) error
}
