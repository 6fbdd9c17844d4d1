package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatID(t *testing.T) {
	assert.Equal(t, "1A", SeatID(0))
	assert.Equal(t, "1D", SeatID(3))
	assert.Equal(t, "2A", SeatID(4))
	assert.Equal(t, "15D", SeatID(59))
}

func TestMaterializeSeats(t *testing.T) {
	seats := MaterializeSeats(8, 5)
	assert.Len(t, seats, 8)

	available := 0
	for _, seat := range seats {
		if seat.Status == SeatStatusAvailable {
			available++
		}
	}
	assert.Equal(t, 5, available)

	// First seats are the booked ones
	assert.Equal(t, SeatStatusBooked, seats[0].Status)
	assert.Equal(t, SeatStatusBooked, seats[2].Status)
	assert.Equal(t, SeatStatusAvailable, seats[3].Status)
}

func TestMaterializeSeatsIsDeterministic(t *testing.T) {
	first := MaterializeSeats(40, 17)
	second := MaterializeSeats(40, 17)
	assert.Equal(t, first, second)
}

func TestMaterializeSeatsDefaultsToSixty(t *testing.T) {
	seats := MaterializeSeats(0, 0)
	assert.Len(t, seats, 60)
	for _, seat := range seats {
		assert.Equal(t, SeatStatusAvailable, seat.Status)
	}
}

func TestMaterializeSeatsClampsAvailability(t *testing.T) {
	seats := MaterializeSeats(10, 25)
	assert.Len(t, seats, 10)
	for _, seat := range seats {
		assert.Equal(t, SeatStatusAvailable, seat.Status)
	}

	seats = MaterializeSeats(10, -3)
	for _, seat := range seats {
		assert.Equal(t, SeatStatusBooked, seat.Status)
	}
}

func TestSeatSnapshotAgreesWithCounter(t *testing.T) {
	trip := Trip{TotalSeats: 12, AvailableSeats: 7}
	seats := trip.SeatSnapshot()
	assert.Len(t, seats, 12)

	available := 0
	for _, seat := range seats {
		if seat.Status == SeatStatusAvailable {
			available++
		}
	}
	assert.Equal(t, trip.AvailableSeats, available)
}

func TestBookable(t *testing.T) {
	trip := Trip{Status: TripStatusActive, ServiceDate: "2026-06-10"}
	assert.True(t, trip.Bookable("2026-06-10"))
	assert.True(t, trip.Bookable("2026-06-09"))
	assert.False(t, trip.Bookable("2026-06-11"))

	trip.Status = TripStatusCancelled
	assert.False(t, trip.Bookable("2026-06-09"))
}
