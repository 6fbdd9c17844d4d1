package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus is tracked separately from the booking status; a booking
// can be confirmed while its payment is still pending.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Passenger travels on exactly one reserved seat of a booking. Passengers
// do not exist outside a booking. At least one of email or idNumber must be
// present; the reservation engine enforces this, not the storage layer.
type Passenger struct {
	SeatID   string `json:"seatId"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	IDNumber string `json:"idNumber,omitempty"`
}

// Booking is the durable record of seats reserved by one user on one trip.
// The id is generated before the reservation transaction commits and is
// never reused, so an ambiguous commit can be resolved by looking it up.
type Booking struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"userId" gorm:"not null;index"`
	TripID        uint          `json:"tripId" gorm:"not null;index"`
	Trip          *Trip         `json:"trip,omitempty"`
	Seats         []string      `json:"seats" gorm:"serializer:json"`
	Passengers    []Passenger   `json:"passengers" gorm:"serializer:json"`
	TotalAmount   float64       `json:"totalAmount" gorm:"not null"`
	Status        BookingStatus `json:"status" gorm:"not null;default:'pending'"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"not null;default:'pending'"`
	ClientRef     string        `json:"clientRef,omitempty" gorm:"index"`
	CreatedAt     time.Time     `json:"bookingDate"`
	UpdatedAt     time.Time     `json:"-"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
