package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/guzobus/guzo-backend/internal/models"
	"github.com/guzobus/guzo-backend/internal/repository"
)

// SearchFilter narrows a trip search. Empty fields match everything.
// Past trips are excluded unless IncludeHistorical is set.
type SearchFilter struct {
	Origin            string
	Destination       string
	Date              string
	Status            models.TripStatus
	SortBy            string
	IncludeHistorical bool
}

// CreateTripInput is the operator-facing trip definition.
type CreateTripInput struct {
	CompanyID         uint     `json:"companyId" binding:"required"`
	Origin            string   `json:"origin" binding:"required"`
	Destination       string   `json:"destination" binding:"required"`
	Date              string   `json:"date" binding:"required"`
	DepartureTime     string   `json:"departureTime" binding:"required"`
	ArrivalTime       string   `json:"arrivalTime"`
	DepartureTerminal string   `json:"departureTerminal"`
	BusType           string   `json:"busType"`
	Amenities         []string `json:"amenities"`
	Price             float64  `json:"price" binding:"required"`
	TotalSeats        int      `json:"totalSeats"`
}

// TripService serves trip reads and operator-side trip management.
type TripService struct {
	store repository.Store
}

// NewTripService returns a service backed by the given store.
func NewTripService(store repository.Store) *TripService {
	return &TripService{store: store}
}

var validSortKeys = map[string]bool{
	repository.SortPriceAsc:      true,
	repository.SortPriceDesc:     true,
	repository.SortDepartureAsc:  true,
	repository.SortDepartureDesc: true,
	repository.SortRatingDesc:    true,
}

// Search lists trips matching the filter.
func (s *TripService) Search(ctx context.Context, filter SearchFilter) ([]models.Trip, error) {
	if filter.SortBy != "" && !validSortKeys[filter.SortBy] {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown sort key %q", filter.SortBy)}
	}
	if filter.Date != "" {
		if _, err := time.Parse(models.ServiceDateLayout, filter.Date); err != nil {
			return nil, &ValidationError{Reason: "date must be formatted YYYY-MM-DD"}
		}
	}

	repoFilter := repository.TripFilter{
		Origin:      filter.Origin,
		Destination: filter.Destination,
		Date:        filter.Date,
		Status:      filter.Status,
		SortBy:      filter.SortBy,
	}
	if !filter.IncludeHistorical {
		repoFilter.NotBefore = models.Today()
	}

	trips, err := s.store.ListTrips(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	for i := range trips {
		trips[i].Seats = trips[i].SeatSnapshot()
	}
	return trips, nil
}

// Get returns a single trip with its full seat map, serving from the
// Redis cache when possible.
func (s *TripService) Get(ctx context.Context, tripID uint) (*models.Trip, error) {
	if RedisEnabled() {
		cached, err := GetCachedTrip(ctx, tripID)
		if err != nil {
			log.Printf("Trip cache read failed for trip %d: %v", tripID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	trip, err := s.store.TripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip.Seats = trip.SeatSnapshot()

	if RedisEnabled() {
		if err := CacheTrip(ctx, trip); err != nil {
			log.Printf("Trip cache write failed for trip %d: %v", tripID, err)
		}
	}
	return trip, nil
}

// Create registers a new trip with a fully available seat map.
func (s *TripService) Create(ctx context.Context, in CreateTripInput) (*models.Trip, error) {
	if strings.TrimSpace(in.Origin) == "" || strings.TrimSpace(in.Destination) == "" {
		return nil, &ValidationError{Reason: "origin and destination are required"}
	}
	if _, err := time.Parse(models.ServiceDateLayout, in.Date); err != nil {
		return nil, &ValidationError{Reason: "date must be formatted YYYY-MM-DD"}
	}
	if _, err := time.Parse("15:04", in.DepartureTime); err != nil {
		return nil, &ValidationError{Reason: "departureTime must be formatted HH:MM"}
	}
	if in.ArrivalTime != "" {
		if _, err := time.Parse("15:04", in.ArrivalTime); err != nil {
			return nil, &ValidationError{Reason: "arrivalTime must be formatted HH:MM"}
		}
	}
	if in.Price <= 0 {
		return nil, &ValidationError{Reason: "price must be positive"}
	}
	if in.TotalSeats < 0 {
		return nil, &ValidationError{Reason: "totalSeats must not be negative"}
	}

	if _, err := s.store.CompanyByID(ctx, in.CompanyID); err != nil {
		return nil, err
	}

	seats := models.MaterializeSeats(in.TotalSeats, in.TotalSeats)
	trip := &models.Trip{
		CompanyID:         in.CompanyID,
		Origin:            in.Origin,
		Destination:       in.Destination,
		ServiceDate:       in.Date,
		DepartureTime:     in.DepartureTime,
		ArrivalTime:       in.ArrivalTime,
		DepartureTerminal: in.DepartureTerminal,
		BusType:           in.BusType,
		Amenities:         in.Amenities,
		Price:             in.Price,
		TotalSeats:        len(seats),
		AvailableSeats:    len(seats),
		Seats:             seats,
		Status:            models.TripStatusActive,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// UpdateStatus moves a trip between active, cancelled and completed.
// Existing bookings are untouched; a cancelled trip simply stops
// accepting new reservations.
func (s *TripService) UpdateStatus(ctx context.Context, tripID uint, status models.TripStatus) (*models.Trip, error) {
	switch status {
	case models.TripStatusActive, models.TripStatusCancelled, models.TripStatusCompleted:
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown trip status %q", status)}
	}

	var updated *models.Trip
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		err := s.store.InTx(ctx, func(tx repository.TxStore) error {
			trip, err := tx.TripByID(ctx, tripID)
			if err != nil {
				return err
			}
			trip.Status = status
			updated = trip
			return tx.SaveTrip(ctx, trip)
		})
		if err == nil {
			if RedisEnabled() {
				if cacheErr := InvalidateTripCache(ctx, tripID); cacheErr != nil {
					log.Printf("Failed to invalidate trip %d cache: %v", tripID, cacheErr)
				}
			}
			return updated, nil
		}
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		return nil, err
	}
	return nil, models.ErrReservationConflict
}
