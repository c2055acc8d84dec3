package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcrew/backend/internal/apperrors"
	"github.com/tripcrew/backend/internal/domain"
)

func newCityTestFixture(t *testing.T) (domain.CityRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewCityRepository(mock), mock
}

func sampleCity() *domain.City {
	return &domain.City{
		ID:      uuid.New(),
		TripID:  uuid.New(),
		PlaceID: "place-1",
		Name:    "Lisbon",
		Country: "Portugal",
		AddedBy: uuid.New(),
	}
}

func TestCityRepository_Create(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	city := sampleCity()

	mock.ExpectExec("INSERT INTO cities").
		WithArgs(city.ID, city.TripID, city.PlaceID, city.Name, city.Country, city.Description, city.AddedBy, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), city)
	require.NoError(t, err)
	assert.False(t, city.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_Create_DuplicateConflict(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	city := sampleCity()

	mock.ExpectExec("INSERT INTO cities").
		WithArgs(city.ID, city.TripID, city.PlaceID, city.Name, city.Country, city.Description, city.AddedBy, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), city)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_CreateTables_PerTripUniqueness(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	// The duplicate branch in Create relies on this constraint existing.
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS cities .+UNIQUE \(trip_id, name\)`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	err := repo.CreateTables(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT .+ FROM cities.+WHERE id =").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_ListByTrip(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	tripID := uuid.New()
	addedBy := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	columns := []string{"id", "trip_id", "place_id", "name", "country", "description", "added_by", "created_at"}

	mock.ExpectQuery("SELECT .+ FROM cities.+WHERE trip_id =").
		WithArgs(tripID).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(uuid.New(), tripID, "", "Lisbon", "Portugal", "", addedBy, now).
			AddRow(uuid.New(), tripID, "", "Oslo", "Norway", "", addedBy, now))

	cities, err := repo.ListByTrip(context.Background(), tripID)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Lisbon", cities[0].Name)
	assert.Equal(t, "Oslo", cities[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("DELETE FROM cities WHERE id =").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_UpsertVote(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	vote := &domain.CityVote{
		ID:     uuid.New(),
		TripID: uuid.New(),
		CityID: uuid.New(),
		UserID: uuid.New(),
		Value:  1,
	}

	mock.ExpectExec("INSERT INTO city_votes").
		WithArgs(vote.ID, vote.TripID, vote.CityID, vote.UserID, vote.Value, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.UpsertVote(context.Background(), vote)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_TallyByTrip(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	tripID := uuid.New()
	cityA, cityB := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT city_id, COALESCE").
		WithArgs(tripID).
		WillReturnRows(pgxmock.NewRows([]string{"city_id", "score", "count"}).
			AddRow(cityA, 2, 3).
			AddRow(cityB, -1, 1))

	tallies, err := repo.TallyByTrip(context.Background(), tripID)
	require.NoError(t, err)
	require.Len(t, tallies, 2)
	assert.Equal(t, cityA, tallies[0].CityID)
	assert.Equal(t, 2, tallies[0].Score)
	assert.Equal(t, 3, tallies[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRepository_TallyByTrip_NoVotes(t *testing.T) {
	repo, mock := newCityTestFixture(t)
	defer mock.Close()

	tripID := uuid.New()
	mock.ExpectQuery("SELECT city_id, COALESCE").
		WithArgs(tripID).
		WillReturnRows(pgxmock.NewRows([]string{"city_id", "score", "count"}))

	tallies, err := repo.TallyByTrip(context.Background(), tripID)
	require.NoError(t, err)
	assert.NotNil(t, tallies)
	assert.Empty(t, tallies)
	assert.NoError(t, mock.ExpectationsWereMet())
}
