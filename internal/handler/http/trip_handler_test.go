package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/auth"
	"github.com/tripcrew/backend/internal/domain"
	"github.com/tripcrew/backend/internal/service"
)

type memTripRepo struct {
	mu      sync.Mutex
	trips   map[uuid.UUID]*domain.Trip
	members map[uuid.UUID][]domain.TripMember
}

func newMemTripRepo() *memTripRepo {
	return &memTripRepo{
		trips:   map[uuid.UUID]*domain.Trip{},
		members: map[uuid.UUID][]domain.TripMember{},
	}
}

func (r *memTripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	copied := *trip
	r.trips[trip.ID] = &copied
	r.members[trip.ID] = append(r.members[trip.ID], domain.TripMember{
		TripID: trip.ID, UserID: trip.OwnerID, Role: domain.TripRoleOwner,
	})
	return nil
}

func (r *memTripRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if trip, ok := r.trips[id]; ok {
		copied := *trip
		return &copied, nil
	}
	return nil, apperrors.NotFound("trip")
}

func (r *memTripRepo) ListByMember(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	trips := []domain.Trip{}
	for tripID, members := range r.members {
		for _, m := range members {
			if m.UserID == userID {
				trips = append(trips, *r.trips[tripID])
			}
		}
	}
	return trips, nil
}

func (r *memTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[id]; !ok {
		return apperrors.NotFound("trip")
	}
	delete(r.trips, id)
	delete(r.members, id)
	return nil
}

func (r *memTripRepo) IsMember(ctx context.Context, tripID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[tripID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTripRepo) ListMembers(ctx context.Context, tripID uuid.UUID) ([]domain.TripMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TripMember{}, r.members[tripID]...), nil
}

func (r *memTripRepo) CreateInvite(ctx context.Context, invite *domain.InviteLink) error {
	invite.CreatedAt = time.Now()
	return nil
}

func (r *memTripRepo) CreateTables(ctx context.Context) error { return nil }

type memCityRepo struct {
	mu     sync.Mutex
	cities map[uuid.UUID]*domain.City
	votes  map[uuid.UUID]map[uuid.UUID]int
}

func newMemCityRepo() *memCityRepo {
	return &memCityRepo{
		cities: map[uuid.UUID]*domain.City{},
		votes:  map[uuid.UUID]map[uuid.UUID]int{},
	}
}

func (r *memCityRepo) Create(ctx context.Context, city *domain.City) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Same uniqueness rule as the cities table: one name per trip.
	for _, c := range r.cities {
		if c.TripID == city.TripID && c.Name == city.Name {
			return apperrors.Conflict("city already added to this trip")
		}
	}
	city.CreatedAt = time.Now()
	copied := *city
	r.cities[city.ID] = &copied
	return nil
}

func (r *memCityRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if city, ok := r.cities[id]; ok {
		copied := *city
		return &copied, nil
	}
	return nil, apperrors.NotFound("city")
}

func (r *memCityRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cities := []domain.City{}
	for _, c := range r.cities {
		if c.TripID == tripID {
			cities = append(cities, *c)
		}
	}
	return cities, nil
}

func (r *memCityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cities[id]; !ok {
		return apperrors.NotFound("city")
	}
	delete(r.cities, id)
	return nil
}

func (r *memCityRepo) UpsertVote(ctx context.Context, vote *domain.CityVote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.votes[vote.CityID] == nil {
		r.votes[vote.CityID] = map[uuid.UUID]int{}
	}
	r.votes[vote.CityID][vote.UserID] = vote.Value
	return nil
}

func (r *memCityRepo) TallyByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.VoteTally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tallies := []domain.VoteTally{}
	for _, c := range r.cities {
		if c.TripID != tripID {
			continue
		}
		tally := domain.VoteTally{CityID: c.ID}
		for _, v := range r.votes[c.ID] {
			tally.Score += v
			tally.Count++
		}
		tallies = append(tallies, tally)
	}
	return tallies, nil
}

func (r *memCityRepo) CreateTables(ctx context.Context) error { return nil }

type tripFixture struct {
	router *mux.Router
	jwtSvc auth.JWTService
	userID uuid.UUID
	token  string
}

func newTripFixture(t *testing.T) *tripFixture {
	t.Helper()
	jwtSvc := auth.NewJWTService(auth.JWTConfig{Secret: "handler-test-secret", Expiration: time.Hour})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tripSvc := service.NewTripService(newMemTripRepo(), newMemCityRepo(), nil, logger)

	router := mux.NewRouter()
	NewTripHandler(tripSvc, jwtSvc).RegisterRoutes(router)

	userID := uuid.New()
	token, err := jwtSvc.GenerateToken(userID, "alice@example.com")
	require.NoError(t, err)

	return &tripFixture{router: router, jwtSvc: jwtSvc, userID: userID, token: token}
}

func (f *tripFixture) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *tripFixture) createTrip(t *testing.T, name string) domain.Trip {
	t.Helper()
	rec := f.request(t, http.MethodPost, "/trips", `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var trip domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trip))
	return trip
}

func (f *tripFixture) addCity(t *testing.T, tripID uuid.UUID, name string) domain.City {
	t.Helper()
	rec := f.request(t, http.MethodPost, "/trips/"+tripID.String()+"/cities", `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var city domain.City
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &city))
	return city
}

func TestTripRoutes_RequireAuth(t *testing.T) {
	f := newTripFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndListTrips(t *testing.T) {
	f := newTripFixture(t)

	created := f.createTrip(t, "Summer 2026")
	assert.Equal(t, f.userID, created.OwnerID)
	assert.Equal(t, domain.TripStatusPlanning, created.Status)

	rec := f.request(t, http.MethodGet, "/trips", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var trips []domain.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trips))
	require.Len(t, trips, 1)
	assert.Equal(t, created.ID, trips[0].ID)
}

func TestCreateTrip_EmptyNameRejected(t *testing.T) {
	f := newTripFixture(t)

	rec := f.request(t, http.MethodPost, "/trips", `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestGetTrip_InvalidID(t *testing.T) {
	f := newTripFixture(t)

	rec := f.request(t, http.MethodGet, "/trips/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestGetTrip_NonMember(t *testing.T) {
	f := newTripFixture(t)
	trip := f.createTrip(t, "Summer 2026")

	outsiderToken, err := f.jwtSvc.GenerateToken(uuid.New(), "eve@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/trips/"+trip.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+outsiderToken)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "PERMISSION_DENIED", decodeError(t, rec).Code)
}

func TestDeleteTrip(t *testing.T) {
	f := newTripFixture(t)
	trip := f.createTrip(t, "Summer 2026")

	rec := f.request(t, http.MethodDelete, "/trips/"+trip.ID.String(), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.request(t, http.MethodGet, "/trips/"+trip.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "membership rows go with the trip")
}

func TestCreateInvite(t *testing.T) {
	f := newTripFixture(t)
	trip := f.createTrip(t, "Summer 2026")

	rec := f.request(t, http.MethodPost, "/trips/"+trip.ID.String()+"/invite", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var invite InviteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invite))
	assert.NotEmpty(t, invite.Token)

	expires, err := time.Parse(time.RFC3339, invite.ExpiresAt)
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))
}

func TestCityLifecycle(t *testing.T) {
	f := newTripFixture(t)
	trip := f.createTrip(t, "Summer 2026")

	city := f.addCity(t, trip.ID, "Lisbon")
	assert.Equal(t, f.userID, city.AddedBy)

	rec := f.request(t, http.MethodGet, "/trips/"+trip.ID.String()+"/cities", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cities []domain.City
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cities))
	require.Len(t, cities, 1)

	rec = f.request(t, http.MethodDelete, "/trips/"+trip.ID.String()+"/cities/"+city.ID.String(), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.request(t, http.MethodGet, "/trips/"+trip.ID.String()+"/cities", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cities))
	assert.Empty(t, cities)
}

func TestAddCity_DuplicateRejected(t *testing.T) {
	f := newTripFixture(t)
	trip := f.createTrip(t, "Summer 2026")
	f.addCity(t, trip.ID, "Lisbon")

	rec := f.request(t, http.MethodPost, "/trips/"+trip.ID.String()+"/cities", `{"name":"Lisbon"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decodeError(t, rec).Code)

	rec = f.request(t, http.MethodGet, "/trips/"+trip.ID.String()+"/cities", "")
	var cities []domain.City
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cities))
	assert.Len(t, cities, 1)
}

func TestVoteLifecycle(t *testing.T) {
	f := newTripFixture(t)
	trip := f.createTrip(t, "Summer 2026")
	city := f.addCity(t, trip.ID, "Lisbon")

	votePath := "/trips/" + trip.ID.String() + "/cities/" + city.ID.String() + "/vote"

	rec := f.request(t, http.MethodPut, votePath, `{"value":1}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.request(t, http.MethodGet, "/trips/"+trip.ID.String()+"/votes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tallies []domain.VoteTally
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tallies))
	require.Len(t, tallies, 1)
	assert.Equal(t, 1, tallies[0].Score)

	// Replacing the vote keeps the count at one.
	rec = f.request(t, http.MethodPut, votePath, `{"value":-1}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.request(t, http.MethodGet, "/trips/"+trip.ID.String()+"/votes", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tallies))
	require.Len(t, tallies, 1)
	assert.Equal(t, -1, tallies[0].Score)
	assert.Equal(t, 1, tallies[0].Count)
}

func TestVote_InvalidValue(t *testing.T) {
	f := newTripFixture(t)
	trip := f.createTrip(t, "Summer 2026")
	city := f.addCity(t, trip.ID, "Lisbon")

	rec := f.request(t, http.MethodPut, "/trips/"+trip.ID.String()+"/cities/"+city.ID.String()+"/vote", `{"value":5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestListMembers(t *testing.T) {
	f := newTripFixture(t)
	trip := f.createTrip(t, "Summer 2026")

	rec := f.request(t, http.MethodGet, "/trips/"+trip.ID.String()+"/members", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var members []domain.TripMember
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	require.Len(t, members, 1)
	assert.Equal(t, f.userID, members[0].UserID)
	assert.Equal(t, domain.TripRoleOwner, members[0].Role)
}
