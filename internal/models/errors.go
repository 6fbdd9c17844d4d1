package models

import (
	"errors"
	"fmt"
)

// Failures surfaced to callers as typed results. No partial state is ever
// persisted alongside any of these.
var (
	ErrTripNotFound             = errors.New("trip not found")
	ErrBookingNotFound          = errors.New("booking not found")
	ErrCompanyNotFound          = errors.New("company not found")
	ErrInsufficientAvailability = errors.New("not enough available seats")
	ErrInvalidAmount            = errors.New("total amount does not match seat count and trip price")
	ErrReservationConflict      = errors.New("reservation conflict, please retry")
	ErrAlreadyCancelled         = errors.New("booking is already cancelled")
	ErrTripNotBookable          = errors.New("trip is not open for booking")
	ErrNotBookingOwner          = errors.New("booking belongs to another user")
)

// SeatUnavailableError reports a requested seat that does not exist on the
// trip or was already booked when the reservation transaction read it.
// Distinct from ErrReservationConflict: the seat is gone, pick another.
type SeatUnavailableError struct {
	SeatID string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seat %s is not available", e.SeatID)
}
