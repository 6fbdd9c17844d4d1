package models

import "fmt"

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusBooked    SeatStatus = "booked"
)

// Seat is one bookable unit of capacity on a trip. Seat ids are row-column
// codes ("1A", "1B", ...) with four seats per row. Selection is a transient
// client-side state and is never persisted.
type Seat struct {
	ID     string     `json:"id"`
	Status SeatStatus `json:"status"`
}

const (
	seatColumns      = 4
	defaultSeatCount = 60
)

// SeatID returns the row-column code for a zero-based seat index.
func SeatID(index int) string {
	row := index/seatColumns + 1
	col := rune('A' + index%seatColumns)
	return fmt.Sprintf("%d%c", row, col)
}

// MaterializeSeats deterministically generates a seat list from the trip
// counters: the first (total - available) seats are booked, the rest
// available. Regenerating always agrees with the availableSeats counter.
// A missing capacity falls back to 60 seats, all available.
func MaterializeSeats(totalSeats, availableSeats int) []Seat {
	if totalSeats <= 0 {
		totalSeats = defaultSeatCount
		availableSeats = defaultSeatCount
	}
	if availableSeats < 0 {
		availableSeats = 0
	}
	if availableSeats > totalSeats {
		availableSeats = totalSeats
	}

	booked := totalSeats - availableSeats
	seats := make([]Seat, totalSeats)
	for i := range seats {
		status := SeatStatusAvailable
		if i < booked {
			status = SeatStatusBooked
		}
		seats[i] = Seat{ID: SeatID(i), Status: status}
	}
	return seats
}
