package models

import (
	"time"

	"gorm.io/gorm"
)

type TripStatus string

const (
	TripStatusActive    TripStatus = "active"
	TripStatusCancelled TripStatus = "cancelled"
	TripStatusCompleted TripStatus = "completed"
)

// ServiceDateLayout is the calendar-date format used for trips. Comparing
// dates in this layout lexicographically matches chronological order.
const ServiceDateLayout = "2006-01-02"

// Today returns the current service date.
func Today() string {
	return time.Now().Format(ServiceDateLayout)
}

// Trip represents a single scheduled journey with a fixed date, price and
// seat capacity. Seat state and availableSeats are mutated only through the
// reservation engine; Version guards those writes with optimistic
// concurrency. Trips are soft-invalidated via Status, never deleted while
// bookings reference them.
type Trip struct {
	gorm.Model
	CompanyID         uint       `json:"companyId" gorm:"not null"`
	Company           *Company   `json:"company,omitempty"`
	Origin            string     `json:"origin" gorm:"not null"`
	Destination       string     `json:"destination" gorm:"not null"`
	ServiceDate       string     `json:"date" gorm:"not null;index"`
	DepartureTime     string     `json:"departureTime" gorm:"not null"`
	ArrivalTime       string     `json:"arrivalTime"`
	DepartureTerminal string     `json:"departureTerminal"`
	BusType           string     `json:"busType"`
	Amenities         []string   `json:"amenities" gorm:"serializer:json"`
	Price             float64    `json:"price" gorm:"not null"`
	TotalSeats        int        `json:"totalSeats" gorm:"not null"`
	AvailableSeats    int        `json:"availableSeats" gorm:"not null"`
	Seats             []Seat     `json:"seats,omitempty" gorm:"serializer:json"`
	Status            TripStatus `json:"status" gorm:"not null;default:'active'"`
	Version           uint       `json:"-" gorm:"not null;default:0"`
}

// TableName specifies the table name
func (Trip) TableName() string {
	return "trips"
}

// SeatSnapshot returns a copy of the trip's seat map. Trips without an
// explicit seat list get one materialized from the counters. Callers may
// mutate the returned slice freely.
func (t *Trip) SeatSnapshot() []Seat {
	if len(t.Seats) == 0 {
		return MaterializeSeats(t.TotalSeats, t.AvailableSeats)
	}
	seats := make([]Seat, len(t.Seats))
	copy(seats, t.Seats)
	return seats
}

// Bookable reports whether the trip accepts new reservations: it must be
// active and its service date must not be in the past.
func (t *Trip) Bookable(today string) bool {
	return t.Status == TripStatusActive && t.ServiceDate >= today
}
