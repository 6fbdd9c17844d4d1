package repository

import (
	"context"
	"errors"

	"github.com/guzobus/guzo-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists trips, bookings and companies in PostgreSQL.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewGormStore returns a Store backed by the given gorm database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

// InTx runs fn inside a database transaction. Trip reads made through the
// transactional store take a row lock so the read-check-write sequence is
// serialized per trip.
func (s *GormStore) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) TripByID(ctx context.Context, id uint) (*models.Trip, error) {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	} else {
		q = q.Preload("Company")
	}

	var trip models.Trip
	if err := q.First(&trip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrTripNotFound
		}
		return nil, err
	}
	return &trip, nil
}

// SaveTrip writes the trip's mutable booking state. The update is
// conditional on the version the trip was read at; zero rows affected
// means another writer got there first and the caller must retry.
func (s *GormStore) SaveTrip(ctx context.Context, trip *models.Trip) error {
	readVersion := trip.Version
	trip.Version = readVersion + 1

	res := s.db.WithContext(ctx).Model(&models.Trip{}).
		Where("id = ? AND version = ?", trip.ID, readVersion).
		Select("AvailableSeats", "Seats", "Status", "Version").
		Updates(trip)
	if res.Error != nil {
		trip.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		trip.Version = readVersion
		return ErrConflict
	}
	return nil
}

func (s *GormStore) ListTrips(ctx context.Context, filter TripFilter) ([]models.Trip, error) {
	q := s.db.WithContext(ctx).Model(&models.Trip{}).Preload("Company")

	if filter.Origin != "" {
		q = q.Where("origin = ?", filter.Origin)
	}
	if filter.Destination != "" {
		q = q.Where("destination = ?", filter.Destination)
	}
	if filter.Date != "" {
		q = q.Where("service_date = ?", filter.Date)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.NotBefore != "" {
		q = q.Where("service_date >= ?", filter.NotBefore)
	}

	switch filter.SortBy {
	case SortPriceAsc:
		q = q.Order("price ASC")
	case SortPriceDesc:
		q = q.Order("price DESC")
	case SortDepartureAsc:
		q = q.Order("departure_time ASC")
	case SortDepartureDesc:
		q = q.Order("departure_time DESC")
	case SortRatingDesc:
		q = q.Joins("JOIN companies ON companies.id = trips.company_id").
			Order("companies.rating DESC")
	}

	var trips []models.Trip
	if err := q.Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (s *GormStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	return s.db.WithContext(ctx).Create(trip).Error
}

func (s *GormStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Create(booking).Error
}

func (s *GormStore) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	q := s.db.WithContext(ctx)
	if !s.inTx {
		q = q.Preload("Trip").Preload("Trip.Company")
	}

	var booking models.Booking
	if err := q.First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormStore) SaveBooking(ctx context.Context, booking *models.Booking) error {
	return s.db.WithContext(ctx).Save(booking).Error
}

func (s *GormStore) BookingsByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Trip").
		Preload("Trip.Company").
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *GormStore) BookingByClientRef(ctx context.Context, ref string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Trip").
		First(&booking, "client_ref = ?", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormStore) CreateCompany(ctx context.Context, company *models.Company) error {
	return s.db.WithContext(ctx).Create(company).Error
}

func (s *GormStore) CompanyByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCompanyNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (s *GormStore) SaveCompany(ctx context.Context, company *models.Company) error {
	return s.db.WithContext(ctx).Save(company).Error
}
