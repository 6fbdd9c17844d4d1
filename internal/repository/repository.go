package repository

import (
	"context"
	"errors"

	"github.com/guzobus/guzo-backend/internal/models"
)

// ErrConflict is returned by SaveTrip when the trip row changed since it
// was read. The reservation engine retries the whole transaction on it;
// the error never escapes the services layer.
var ErrConflict = errors.New("concurrent update detected")

// Sort keys accepted by ListTrips.
const (
	SortPriceAsc      = "price_asc"
	SortPriceDesc     = "price_desc"
	SortDepartureAsc  = "departure_asc"
	SortDepartureDesc = "departure_desc"
	SortRatingDesc    = "rating_desc"
)

// TripFilter narrows ListTrips results. Empty fields match everything.
// Origin, Destination, Date and Status are exact matches; NotBefore
// excludes trips whose service date is strictly earlier.
type TripFilter struct {
	Origin      string
	Destination string
	Date        string
	Status      models.TripStatus
	NotBefore   string
	SortBy      string
}

// TxStore is the view of the store available inside a transaction. Trip
// reads reflect the current committed state, never a stale client
// snapshot, and SaveTrip is conditional on the version the trip carried
// when it was read.
type TxStore interface {
	TripByID(ctx context.Context, id uint) (*models.Trip, error)
	SaveTrip(ctx context.Context, trip *models.Trip) error
	CreateBooking(ctx context.Context, booking *models.Booking) error
	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	SaveBooking(ctx context.Context, booking *models.Booking) error
}

// Store is the persistence backend for trips, bookings and companies.
// InTx runs fn atomically: either every write made through the TxStore
// persists, or none does. BookingByClientRef returns (nil, nil) when no
// booking carries the ref.
type Store interface {
	TxStore

	ListTrips(ctx context.Context, filter TripFilter) ([]models.Trip, error)
	CreateTrip(ctx context.Context, trip *models.Trip) error

	BookingsByUser(ctx context.Context, userID uint) ([]models.Booking, error)
	BookingByClientRef(ctx context.Context, ref string) (*models.Booking, error)

	CreateCompany(ctx context.Context, company *models.Company) error
	CompanyByID(ctx context.Context, id uint) (*models.Company, error)
	SaveCompany(ctx context.Context, company *models.Company) error

	InTx(ctx context.Context, fn func(tx TxStore) error) error
}
