package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guzobus/guzo-backend/internal/models"
	"github.com/guzobus/guzo-backend/internal/repository"
)

const (
	// maxReserveAttempts bounds the optimistic retry loop before giving up
	// with ErrReservationConflict.
	maxReserveAttempts = 3

	// amountTolerance absorbs float rounding when comparing the client's
	// total against seats * price.
	amountTolerance = 0.01

	// commitCheckTimeout bounds the post-timeout lookup that resolves an
	// ambiguous commit.
	commitCheckTimeout = 5 * time.Second
)

// ValidationError reports a malformed reservation request. Validation runs
// entirely before any storage access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ReserveParams carries everything needed to reserve seats on a trip.
// ClientRef is an optional caller-chosen idempotency key: a repeated
// request with the same ref returns the original booking instead of
// reserving twice.
type ReserveParams struct {
	UserID      uint
	TripID      uint
	SeatIDs     []string
	Passengers  []models.Passenger
	TotalAmount float64
	ClientRef   string
}

// BookingPartition labels a booking relative to today for list views.
type BookingPartition string

const (
	PartitionUpcoming  BookingPartition = "upcoming"
	PartitionPast      BookingPartition = "past"
	PartitionCancelled BookingPartition = "cancelled"
)

// ReservationService owns the booking lifecycle: reserving seats, reading
// bookings back, and cancelling. All seat state changes on trips go
// through it.
type ReservationService struct {
	store repository.Store
}

// NewReservationService returns a service backed by the given store.
func NewReservationService(store repository.Store) *ReservationService {
	return &ReservationService{store: store}
}

// Reserve books the requested seats atomically. Either the trip's seat
// state, its counter, and the new booking all commit together, or nothing
// does. Concurrent winners are decided by the store's version check; this
// loop retries a bounded number of times before reporting a conflict.
func (s *ReservationService) Reserve(ctx context.Context, p ReserveParams) (*models.Booking, error) {
	if err := validateReserveParams(p); err != nil {
		return nil, err
	}

	if p.ClientRef != "" {
		existing, err := s.store.BookingByClientRef(ctx, p.ClientRef)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	// The id exists before the transaction commits, so if the commit
	// outcome is lost to a timeout we can check whether it landed.
	bookingID := uuid.NewString()

	var booking *models.Booking
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		b, err := s.tryReserve(ctx, bookingID, p)
		if err == nil {
			booking = b
			break
		}
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return s.resolveAmbiguousCommit(bookingID, err)
		}
		return nil, err
	}
	if booking == nil {
		return nil, models.ErrReservationConflict
	}

	s.afterSeatChange(ctx, booking.TripID)
	return booking, nil
}

func (s *ReservationService) tryReserve(ctx context.Context, bookingID string, p ReserveParams) (*models.Booking, error) {
	var booking *models.Booking

	err := s.store.InTx(ctx, func(tx repository.TxStore) error {
		trip, err := tx.TripByID(ctx, p.TripID)
		if err != nil {
			return err
		}
		if !trip.Bookable(models.Today()) {
			return models.ErrTripNotBookable
		}
		if trip.AvailableSeats < len(p.SeatIDs) {
			return models.ErrInsufficientAvailability
		}

		expected := float64(len(p.SeatIDs)) * trip.Price
		if math.Abs(p.TotalAmount-expected) > amountTolerance {
			return models.ErrInvalidAmount
		}

		seats := trip.SeatSnapshot()
		index := make(map[string]int, len(seats))
		for i, seat := range seats {
			index[seat.ID] = i
		}

		for _, seatID := range p.SeatIDs {
			i, ok := index[seatID]
			if !ok || seats[i].Status != models.SeatStatusAvailable {
				return &models.SeatUnavailableError{SeatID: seatID}
			}
			seats[i].Status = models.SeatStatusBooked
		}

		trip.Seats = seats
		trip.AvailableSeats -= len(p.SeatIDs)
		if err := tx.SaveTrip(ctx, trip); err != nil {
			return err
		}

		booking = &models.Booking{
			ID:            bookingID,
			UserID:        p.UserID,
			TripID:        trip.ID,
			Seats:         append([]string(nil), p.SeatIDs...),
			Passengers:    append([]models.Passenger(nil), p.Passengers...),
			TotalAmount:   p.TotalAmount,
			Status:        models.BookingStatusConfirmed,
			PaymentStatus: models.PaymentStatusPending,
			ClientRef:     p.ClientRef,
		}
		return tx.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// resolveAmbiguousCommit handles a reservation whose commit outcome was
// lost to a context timeout or cancellation. The booking id was chosen
// before the transaction, so its presence tells us whether the commit
// landed. The lookup uses a fresh context; the caller's is already dead.
func (s *ReservationService) resolveAmbiguousCommit(bookingID string, cause error) (*models.Booking, error) {
	checkCtx, cancel := context.WithTimeout(context.Background(), commitCheckTimeout)
	defer cancel()

	booking, err := s.store.BookingByID(checkCtx, bookingID)
	if err == nil {
		log.Printf("Reservation %s committed despite %v", bookingID, cause)
		s.afterSeatChange(checkCtx, booking.TripID)
		return booking, nil
	}
	if errors.Is(err, models.ErrBookingNotFound) {
		return nil, cause
	}
	return nil, fmt.Errorf("reservation outcome unknown after %v: %w", cause, err)
}

// GetBooking returns a booking, restricted to its owner.
func (s *ReservationService) GetBooking(ctx context.Context, userID uint, bookingID string) (*models.Booking, error) {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, models.ErrNotBookingOwner
	}
	return booking, nil
}

// ListUserBookings returns the user's bookings newest-first, optionally
// narrowed to one partition. A booking for today's trip still counts as
// upcoming.
func (s *ReservationService) ListUserBookings(ctx context.Context, userID uint, partition BookingPartition) ([]models.Booking, error) {
	bookings, err := s.store.BookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if partition == "" {
		return bookings, nil
	}

	today := models.Today()
	filtered := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if partitionOf(&b, today) == partition {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func partitionOf(b *models.Booking, today string) BookingPartition {
	if b.Status == models.BookingStatusCancelled {
		return PartitionCancelled
	}
	if b.Trip != nil && b.Trip.ServiceDate < today {
		return PartitionPast
	}
	return PartitionUpcoming
}

// Cancel releases a booking's seats back to the trip and marks the
// booking cancelled. A paid booking moves to refunded, an unpaid one to
// cancelled. Cancelling twice fails with ErrAlreadyCancelled.
func (s *ReservationService) Cancel(ctx context.Context, userID uint, bookingID string) (*models.Booking, error) {
	var cancelled *models.Booking

	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		err := s.store.InTx(ctx, func(tx repository.TxStore) error {
			booking, err := tx.BookingByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if booking.UserID != userID {
				return models.ErrNotBookingOwner
			}
			if booking.Status == models.BookingStatusCancelled {
				return models.ErrAlreadyCancelled
			}

			trip, err := tx.TripByID(ctx, booking.TripID)
			if err != nil {
				return err
			}

			release := make(map[string]bool, len(booking.Seats))
			for _, seatID := range booking.Seats {
				release[seatID] = true
			}

			seats := trip.SeatSnapshot()
			released := 0
			for i := range seats {
				if release[seats[i].ID] && seats[i].Status == models.SeatStatusBooked {
					seats[i].Status = models.SeatStatusAvailable
					released++
				}
			}

			trip.Seats = seats
			trip.AvailableSeats += released
			if trip.AvailableSeats > trip.TotalSeats {
				trip.AvailableSeats = trip.TotalSeats
			}
			if err := tx.SaveTrip(ctx, trip); err != nil {
				return err
			}

			booking.Status = models.BookingStatusCancelled
			if booking.PaymentStatus == models.PaymentStatusPaid {
				booking.PaymentStatus = models.PaymentStatusRefunded
			} else {
				booking.PaymentStatus = models.PaymentStatusCancelled
			}
			cancelled = booking
			return tx.SaveBooking(ctx, booking)
		})
		if err == nil {
			s.afterSeatChange(ctx, cancelled.TripID)
			return cancelled, nil
		}
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		return nil, err
	}
	return nil, models.ErrReservationConflict
}

// afterSeatChange refreshes the cache and notifies watchers after a
// committed seat mutation. Best effort; the booking already committed.
func (s *ReservationService) afterSeatChange(ctx context.Context, tripID uint) {
	if !RedisEnabled() {
		return
	}
	if err := InvalidateTripCache(ctx, tripID); err != nil {
		log.Printf("Failed to invalidate trip %d cache: %v", tripID, err)
	}
	trip, err := s.store.TripByID(ctx, tripID)
	if err != nil {
		log.Printf("Failed to load trip %d for seat update: %v", tripID, err)
		return
	}
	if err := PublishSeatUpdate(ctx, trip); err != nil {
		log.Printf("Failed to publish seat update for trip %d: %v", tripID, err)
	}
}

func validateReserveParams(p ReserveParams) error {
	if p.TripID == 0 {
		return &ValidationError{Reason: "tripId is required"}
	}
	if len(p.SeatIDs) == 0 {
		return &ValidationError{Reason: "at least one seat must be selected"}
	}

	seen := make(map[string]bool, len(p.SeatIDs))
	for _, seatID := range p.SeatIDs {
		if strings.TrimSpace(seatID) == "" {
			return &ValidationError{Reason: "seat ids must not be empty"}
		}
		if seen[seatID] {
			return &ValidationError{Reason: fmt.Sprintf("seat %s requested more than once", seatID)}
		}
		seen[seatID] = true
	}

	if len(p.Passengers) != len(p.SeatIDs) {
		return &ValidationError{Reason: "each seat needs exactly one passenger"}
	}
	assigned := make(map[string]bool, len(p.Passengers))
	for _, passenger := range p.Passengers {
		if !seen[passenger.SeatID] {
			return &ValidationError{Reason: fmt.Sprintf("passenger assigned to unselected seat %s", passenger.SeatID)}
		}
		if assigned[passenger.SeatID] {
			return &ValidationError{Reason: fmt.Sprintf("seat %s has more than one passenger", passenger.SeatID)}
		}
		assigned[passenger.SeatID] = true

		if strings.TrimSpace(passenger.FullName) == "" {
			return &ValidationError{Reason: "passenger full name is required"}
		}
		if strings.TrimSpace(passenger.Phone) == "" {
			return &ValidationError{Reason: "passenger phone is required"}
		}
		if strings.TrimSpace(passenger.Email) == "" && strings.TrimSpace(passenger.IDNumber) == "" {
			return &ValidationError{Reason: "passenger needs an email or an id number"}
		}
	}

	if p.TotalAmount <= 0 {
		return &ValidationError{Reason: "totalAmount must be positive"}
	}
	return nil
}
