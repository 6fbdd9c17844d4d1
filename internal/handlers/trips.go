package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guzobus/guzo-backend/internal/models"
	"github.com/guzobus/guzo-backend/internal/services"
)

// SearchTrips lists trips matching the query filters
func SearchTrips(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.SearchFilter{
			Origin:            c.Query("from"),
			Destination:       c.Query("to"),
			Date:              c.Query("date"),
			Status:            models.TripStatus(c.Query("status")),
			SortBy:            c.Query("sort"),
			IncludeHistorical: c.Query("includeHistorical") == "true",
		}

		results, err := trips.Search(c.Request.Context(), filter)
		if err != nil {
			respondTripError(c, err)
			return
		}

		c.JSON(200, results)
	}
}

// GetTrip retrieves a single trip with its seat map
func GetTrip(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid trip id"})
			return
		}

		trip, err := trips.Get(c.Request.Context(), uint(tripId))
		if err != nil {
			respondTripError(c, err)
			return
		}

		c.JSON(200, trip)
	}
}

// CreateTrip registers a new trip (operator only)
func CreateTrip(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreateTripInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		trip, err := trips.Create(c.Request.Context(), input)
		if err != nil {
			respondTripError(c, err)
			return
		}

		c.JSON(201, trip)
	}
}

// UpdateTripStatus moves a trip between active, cancelled and completed
// (operator only)
func UpdateTripStatus(trips *services.TripService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid trip id"})
			return
		}

		var input struct {
			Status models.TripStatus `json:"status" binding:"required,oneof=active cancelled completed"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		trip, err := trips.UpdateStatus(c.Request.Context(), uint(tripId), input.Status)
		if err != nil {
			respondTripError(c, err)
			return
		}

		c.JSON(200, trip)
	}
}

func respondTripError(c *gin.Context, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(400, gin.H{"error": validationErr.Reason})
	case errors.Is(err, models.ErrTripNotFound), errors.Is(err, models.ErrCompanyNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrReservationConflict):
		c.JSON(409, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Something went wrong, please try again"})
	}
}
