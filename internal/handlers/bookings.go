package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/guzobus/guzo-backend/internal/models"
	"github.com/guzobus/guzo-backend/internal/services"
)

// ReserveSeats handles the creation of a new seat reservation
func ReserveSeats(reservations *services.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		var input struct {
			TripID      uint               `json:"tripId" binding:"required"`
			Seats       []string           `json:"seats" binding:"required"`
			Passengers  []models.Passenger `json:"passengers" binding:"required"`
			TotalAmount float64            `json:"totalAmount" binding:"required"`
			ClientRef   string             `json:"clientRef"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := reservations.Reserve(c.Request.Context(), services.ReserveParams{
			UserID:      userId,
			TripID:      input.TripID,
			SeatIDs:     input.Seats,
			Passengers:  input.Passengers,
			TotalAmount: input.TotalAmount,
			ClientRef:   input.ClientRef,
		})
		if err != nil {
			respondBookingError(c, err)
			return
		}

		c.JSON(201, booking)
	}
}

// GetBooking retrieves a single booking for its owner
func GetBooking(reservations *services.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId := c.Param("id")

		booking, err := reservations.GetBooking(c.Request.Context(), userId, bookingId)
		if err != nil {
			respondBookingError(c, err)
			return
		}

		c.JSON(200, booking)
	}
}

// GetMyBookings retrieves the authenticated user's bookings, optionally
// narrowed to the upcoming, past or cancelled partition
func GetMyBookings(reservations *services.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		partition := services.BookingPartition(c.Query("partition"))
		switch partition {
		case "", services.PartitionUpcoming, services.PartitionPast, services.PartitionCancelled:
		default:
			c.JSON(400, gin.H{"error": "partition must be upcoming, past or cancelled"})
			return
		}

		bookings, err := reservations.ListUserBookings(c.Request.Context(), userId, partition)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, bookings)
	}
}

// CancelBooking cancels a booking and releases its seats
func CancelBooking(reservations *services.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId := c.Param("id")

		booking, err := reservations.Cancel(c.Request.Context(), userId, bookingId)
		if err != nil {
			respondBookingError(c, err)
			return
		}

		c.JSON(200, booking)
	}
}

// respondBookingError maps reservation failures to HTTP responses
func respondBookingError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var seatErr *models.SeatUnavailableError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(400, gin.H{"error": validationErr.Reason})
	case errors.Is(err, models.ErrInvalidAmount):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrTripNotFound),
		errors.Is(err, models.ErrBookingNotFound),
		errors.Is(err, models.ErrCompanyNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotBookingOwner):
		c.JSON(403, gin.H{"error": "Unauthorized"})
	case errors.As(err, &seatErr):
		c.JSON(409, gin.H{"error": seatErr.Error(), "seatId": seatErr.SeatID})
	case errors.Is(err, models.ErrInsufficientAvailability),
		errors.Is(err, models.ErrReservationConflict),
		errors.Is(err, models.ErrAlreadyCancelled),
		errors.Is(err, models.ErrTripNotBookable):
		c.JSON(409, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Something went wrong, please try again"})
	}
}
