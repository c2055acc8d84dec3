package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Trip statuses.
const (
	TripStatusPlanning = "planning"
	TripStatusDecided  = "decided"
	TripStatusArchived = "archived"
)

// Trip member roles.
const (
	TripRoleOwner  = "owner"
	TripRoleMember = "member"
)

// Trip is a planning session owned by one user and shared with members.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TripMember links a user to a trip with a role.
type TripMember struct {
	TripID    uuid.UUID `json:"trip_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteLink is a shareable token granting trip membership.
type InviteLink struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Token     uuid.UUID `json:"token"`
	CreatedBy uuid.UUID `json:"created_by"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TripRepository defines the interface for trip persistence operations
type TripRepository interface {
	// Create inserts the trip and its owner membership in one transaction.
	Create(ctx context.Context, trip *Trip) error
	FindByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IsMember(ctx context.Context, tripID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, tripID uuid.UUID) ([]TripMember, error)
	CreateInvite(ctx context.Context, invite *InviteLink) error
	CreateTables(ctx context.Context) error
}
