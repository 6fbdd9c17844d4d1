package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzobus/guzo-backend/internal/models"
)

func seedTrip(t *testing.T, store *MemoryStore) *models.Trip {
	t.Helper()
	ctx := context.Background()

	company := &models.Company{Name: "Selam Bus", Rating: 4.5}
	require.NoError(t, store.CreateCompany(ctx, company))

	trip := &models.Trip{
		CompanyID:      company.ID,
		Origin:         "Addis Ababa",
		Destination:    "Bahir Dar",
		ServiceDate:    "2030-01-15",
		DepartureTime:  "06:30",
		Price:          850,
		TotalSeats:     4,
		AvailableSeats: 4,
		Seats:          models.MaterializeSeats(4, 4),
		Status:         models.TripStatusActive,
	}
	require.NoError(t, store.CreateTrip(ctx, trip))
	return trip
}

func TestMemoryStoreTripRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	trip := seedTrip(t, store)

	got, err := store.TripByID(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.Origin, got.Origin)
	require.NotNil(t, got.Company)
	assert.Equal(t, "Selam Bus", got.Company.Name)

	_, err = store.TripByID(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrTripNotFound)
}

func TestMemoryStoreSaveTripVersionCheck(t *testing.T) {
	store := NewMemoryStore()
	trip := seedTrip(t, store)
	ctx := context.Background()

	first, err := store.TripByID(ctx, trip.ID)
	require.NoError(t, err)
	second, err := store.TripByID(ctx, trip.ID)
	require.NoError(t, err)

	first.AvailableSeats = 3
	require.NoError(t, store.SaveTrip(ctx, first))

	// Second copy still carries the old version
	second.AvailableSeats = 2
	assert.ErrorIs(t, store.SaveTrip(ctx, second), ErrConflict)

	got, err := store.TripByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AvailableSeats)
}

func TestMemoryStoreTxRollback(t *testing.T) {
	store := NewMemoryStore()
	trip := seedTrip(t, store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.InTx(ctx, func(tx TxStore) error {
		inner, err := tx.TripByID(ctx, trip.ID)
		if err != nil {
			return err
		}
		inner.AvailableSeats = 0
		if err := tx.SaveTrip(ctx, inner); err != nil {
			return err
		}
		if err := tx.CreateBooking(ctx, &models.Booking{ID: "b1", UserID: 1, TripID: trip.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.TripByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.AvailableSeats)

	_, err = store.BookingByID(ctx, "b1")
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}

func TestMemoryStoreTxCommit(t *testing.T) {
	store := NewMemoryStore()
	trip := seedTrip(t, store)
	ctx := context.Background()

	err := store.InTx(ctx, func(tx TxStore) error {
		inner, err := tx.TripByID(ctx, trip.ID)
		if err != nil {
			return err
		}
		inner.AvailableSeats = 2
		if err := tx.SaveTrip(ctx, inner); err != nil {
			return err
		}
		return tx.CreateBooking(ctx, &models.Booking{ID: "b2", UserID: 7, TripID: trip.ID, Seats: []string{"1A", "1B"}})
	})
	require.NoError(t, err)

	got, err := store.TripByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSeats)

	booking, err := store.BookingByID(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, uint(7), booking.UserID)
	require.NotNil(t, booking.Trip)
	assert.Equal(t, "Bahir Dar", booking.Trip.Destination)
}

func TestMemoryStoreListTripsFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	company := &models.Company{Name: "Abay Bus", Rating: 3.9}
	require.NoError(t, store.CreateCompany(ctx, company))

	mk := func(origin, dest, date string, price float64) {
		require.NoError(t, store.CreateTrip(ctx, &models.Trip{
			CompanyID: company.ID, Origin: origin, Destination: dest,
			ServiceDate: date, DepartureTime: "08:00", Price: price,
			TotalSeats: 10, AvailableSeats: 10, Status: models.TripStatusActive,
		}))
	}
	mk("Addis Ababa", "Bahir Dar", "2030-01-15", 850)
	mk("Addis Ababa", "Gondar", "2030-01-15", 1200)
	mk("Addis Ababa", "Bahir Dar", "2030-01-16", 900)
	mk("Hawassa", "Bahir Dar", "2030-01-15", 700)

	trips, err := store.ListTrips(ctx, TripFilter{Origin: "Addis Ababa", Destination: "Bahir Dar"})
	require.NoError(t, err)
	assert.Len(t, trips, 2)

	trips, err = store.ListTrips(ctx, TripFilter{Date: "2030-01-15"})
	require.NoError(t, err)
	assert.Len(t, trips, 3)

	trips, err = store.ListTrips(ctx, TripFilter{NotBefore: "2030-01-16"})
	require.NoError(t, err)
	assert.Len(t, trips, 1)
	assert.Equal(t, "2030-01-16", trips[0].ServiceDate)

	trips, err = store.ListTrips(ctx, TripFilter{SortBy: SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, trips, 4)
	assert.Equal(t, 700.0, trips[0].Price)
	assert.Equal(t, 1200.0, trips[3].Price)
}

func TestMemoryStoreBookingsByUserNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	trip := seedTrip(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateBooking(ctx, &models.Booking{ID: "first", UserID: 3, TripID: trip.ID}))
	require.NoError(t, store.CreateBooking(ctx, &models.Booking{ID: "second", UserID: 3, TripID: trip.ID}))
	require.NoError(t, store.CreateBooking(ctx, &models.Booking{ID: "other", UserID: 9, TripID: trip.ID}))

	bookings, err := store.BookingsByUser(ctx, 3)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "second", bookings[0].ID)
	assert.Equal(t, "first", bookings[1].ID)
}

func TestMemoryStoreBookingByClientRef(t *testing.T) {
	store := NewMemoryStore()
	trip := seedTrip(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateBooking(ctx, &models.Booking{ID: "b1", UserID: 3, TripID: trip.ID, ClientRef: "ref-1"}))

	found, err := store.BookingByClientRef(ctx, "ref-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "b1", found.ID)

	missing, err := store.BookingByClientRef(ctx, "ref-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
