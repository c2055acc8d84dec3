package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/domain"
)

// inviteLifetime is how long a trip invite link stays redeemable.
const inviteLifetime = 7 * 24 * time.Hour

// TripEventPublisher is implemented by the kafka trip events producer.
type TripEventPublisher interface {
	ProduceInviteCreated(invite *domain.InviteLink) (int64, error)
}

// TripService covers trip CRUD, membership checks, candidate cities and
// voting. Every operation that touches a trip verifies membership first.
type TripService struct {
	tripRepo domain.TripRepository
	cityRepo domain.CityRepository
	events   TripEventPublisher
	logger   *slog.Logger
}

func NewTripService(
	tripRepo domain.TripRepository,
	cityRepo domain.CityRepository,
	events TripEventPublisher,
	logger *slog.Logger,
) *TripService {
	return &TripService{
		tripRepo: tripRepo,
		cityRepo: cityRepo,
		events:   events,
		logger:   logger,
	}
}

func (s *TripService) ListTrips(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return s.tripRepo.ListByMember(ctx, userID)
}

func (s *TripService) CreateTrip(ctx context.Context, ownerID uuid.UUID, name, description string) (*domain.Trip, error) {
	if name == "" {
		return nil, apperrors.Validation("trip name required")
	}

	trip := &domain.Trip{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		Status:      domain.TripStatusPlanning,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

func (s *TripService) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*domain.Trip, error) {
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.tripRepo.FindByID(ctx, tripID)
}

func (s *TripService) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	trip, err := s.tripRepo.FindByID(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.OwnerID != userID {
		return apperrors.Forbidden("only the trip owner can delete it")
	}
	return s.tripRepo.Delete(ctx, tripID)
}

func (s *TripService) ListMembers(ctx context.Context, userID, tripID uuid.UUID) ([]domain.TripMember, error) {
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.tripRepo.ListMembers(ctx, tripID)
}

// CreateInvite mints a shareable invite link and announces it so the mail
// pipeline can deliver it. The announcement is best effort.
func (s *TripService) CreateInvite(ctx context.Context, userID, tripID uuid.UUID) (*domain.InviteLink, error) {
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}

	invite := &domain.InviteLink{
		ID:        uuid.New(),
		TripID:    tripID,
		Token:     uuid.New(),
		CreatedBy: userID,
		ExpiresAt: time.Now().Add(inviteLifetime),
	}

	if err := s.tripRepo.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}

	if s.events != nil {
		if _, err := s.events.ProduceInviteCreated(invite); err != nil {
			s.logger.Error("failed to publish trip.invite_created event",
				slog.String("trip_id", tripID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return invite, nil
}

func (s *TripService) AddCity(ctx context.Context, userID, tripID uuid.UUID, placeID, name, country, description string) (*domain.City, error) {
	if name == "" {
		return nil, apperrors.Validation("city name required")
	}
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}

	city := &domain.City{
		ID:          uuid.New(),
		TripID:      tripID,
		PlaceID:     placeID,
		Name:        name,
		Country:     country,
		Description: description,
		AddedBy:     userID,
	}

	if err := s.cityRepo.Create(ctx, city); err != nil {
		return nil, err
	}

	return city, nil
}

func (s *TripService) ListCities(ctx context.Context, userID, tripID uuid.UUID) ([]domain.City, error) {
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.cityRepo.ListByTrip(ctx, tripID)
}

func (s *TripService) RemoveCity(ctx context.Context, userID, tripID, cityID uuid.UUID) error {
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return err
	}

	city, err := s.cityRepo.FindByID(ctx, cityID)
	if err != nil {
		return err
	}
	if city.TripID != tripID {
		return apperrors.NotFound("city")
	}

	return s.cityRepo.Delete(ctx, cityID)
}

// CastVote records or replaces the member's vote on a candidate city.
func (s *TripService) CastVote(ctx context.Context, userID, tripID, cityID uuid.UUID, value int) error {
	if value < -1 || value > 1 {
		return apperrors.Validation("vote value must be -1, 0 or 1")
	}
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return err
	}

	city, err := s.cityRepo.FindByID(ctx, cityID)
	if err != nil {
		return err
	}
	if city.TripID != tripID {
		return apperrors.NotFound("city")
	}

	return s.cityRepo.UpsertVote(ctx, &domain.CityVote{
		ID:     uuid.New(),
		TripID: tripID,
		CityID: cityID,
		UserID: userID,
		Value:  value,
	})
}

func (s *TripService) GetVotes(ctx context.Context, userID, tripID uuid.UUID) ([]domain.VoteTally, error) {
	if err := s.requireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.cityRepo.TallyByTrip(ctx, tripID)
}

func (s *TripService) requireMember(ctx context.Context, tripID, userID uuid.UUID) error {
	isMember, err := s.tripRepo.IsMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperrors.Forbidden("not a member of this trip")
	}
	return nil
}
