package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzobus/guzo-backend/internal/models"
	"github.com/guzobus/guzo-backend/internal/repository"
	"github.com/guzobus/guzo-backend/internal/services"
)

func testAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("userType", "client")
		c.Next()
	}
}

func newTestRouter(store repository.Store, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reservations := services.NewReservationService(store)
	trips := services.NewTripService(store)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/trips", SearchTrips(trips))
	api.GET("/trips/:id", GetTrip(trips))

	protected := api.Group("/", testAuth(userID))
	protected.POST("/bookings", ReserveSeats(reservations))
	protected.GET("/bookings", GetMyBookings(reservations))
	protected.GET("/bookings/:id", GetBooking(reservations))
	protected.POST("/bookings/:id/cancel", CancelBooking(reservations))
	return r
}

func seedStore(t *testing.T) (*repository.MemoryStore, *models.Trip) {
	t.Helper()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	company := &models.Company{Name: "Selam Bus", Rating: 4.5}
	require.NoError(t, store.CreateCompany(ctx, company))

	trip := &models.Trip{
		CompanyID:      company.ID,
		Origin:         "Addis Ababa",
		Destination:    "Bahir Dar",
		ServiceDate:    "2030-01-15",
		DepartureTime:  "06:30",
		Price:          850,
		TotalSeats:     4,
		AvailableSeats: 4,
		Seats:          models.MaterializeSeats(4, 4),
		Status:         models.TripStatusActive,
	}
	require.NoError(t, store.CreateTrip(ctx, trip))
	return store, trip
}

func reserveBody(tripID uint, seats []string, amount float64) []byte {
	passengers := make([]map[string]string, len(seats))
	for i, seat := range seats {
		passengers[i] = map[string]string{
			"seatId":   seat,
			"fullName": "Passenger " + seat,
			"phone":    "+251911000000",
			"email":    "p@example.com",
		}
	}
	body, _ := json.Marshal(gin.H{
		"tripId":      tripID,
		"seats":       seats,
		"passengers":  passengers,
		"totalAmount": amount,
	})
	return body
}

func doJSON(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReserveSeatsEndpoint(t *testing.T) {
	store, trip := seedStore(t)
	r := newTestRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/api/bookings", reserveBody(trip.ID, []string{"1A", "1B"}, 1700))
	require.Equal(t, 201, w.Code)

	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.ElementsMatch(t, []string{"1A", "1B"}, booking.Seats)
}

func TestReserveSeatsEndpointConflict(t *testing.T) {
	store, trip := seedStore(t)
	r := newTestRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/api/bookings", reserveBody(trip.ID, []string{"1A"}, 850))
	require.Equal(t, 201, w.Code)

	w = doJSON(r, http.MethodPost, "/api/bookings", reserveBody(trip.ID, []string{"1A"}, 850))
	require.Equal(t, 409, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1A", resp["seatId"])
}

func TestReserveSeatsEndpointBadAmount(t *testing.T) {
	store, trip := seedStore(t)
	r := newTestRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/api/bookings", reserveBody(trip.ID, []string{"1A"}, 10))
	assert.Equal(t, 400, w.Code)
}

func TestReserveSeatsEndpointUnknownTrip(t *testing.T) {
	store, _ := seedStore(t)
	r := newTestRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/api/bookings", reserveBody(999, []string{"1A"}, 850))
	assert.Equal(t, 404, w.Code)
}

func TestGetBookingEndpointOwnership(t *testing.T) {
	store, trip := seedStore(t)
	owner := newTestRouter(store, 1)

	w := doJSON(owner, http.MethodPost, "/api/bookings", reserveBody(trip.ID, []string{"1A"}, 850))
	require.Equal(t, 201, w.Code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = doJSON(owner, http.MethodGet, "/api/bookings/"+booking.ID, nil)
	assert.Equal(t, 200, w.Code)

	stranger := newTestRouter(store, 2)
	w = doJSON(stranger, http.MethodGet, "/api/bookings/"+booking.ID, nil)
	assert.Equal(t, 403, w.Code)

	w = doJSON(owner, http.MethodGet, "/api/bookings/does-not-exist", nil)
	assert.Equal(t, 404, w.Code)
}

func TestCancelBookingEndpoint(t *testing.T) {
	store, trip := seedStore(t)
	r := newTestRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/api/bookings", reserveBody(trip.ID, []string{"1A"}, 850))
	require.Equal(t, 201, w.Code)
	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = doJSON(r, http.MethodPost, "/api/bookings/"+booking.ID+"/cancel", nil)
	require.Equal(t, 200, w.Code)

	var cancelled models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// Cancelling again conflicts
	w = doJSON(r, http.MethodPost, "/api/bookings/"+booking.ID+"/cancel", nil)
	assert.Equal(t, 409, w.Code)
}

func TestGetMyBookingsEndpoint(t *testing.T) {
	store, trip := seedStore(t)
	r := newTestRouter(store, 1)

	w := doJSON(r, http.MethodPost, "/api/bookings", reserveBody(trip.ID, []string{"1A"}, 850))
	require.Equal(t, 201, w.Code)

	w = doJSON(r, http.MethodGet, "/api/bookings", nil)
	require.Equal(t, 200, w.Code)
	var bookings []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 1)

	w = doJSON(r, http.MethodGet, "/api/bookings?partition=cancelled", nil)
	require.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	assert.Len(t, bookings, 0)

	w = doJSON(r, http.MethodGet, "/api/bookings?partition=sometime", nil)
	assert.Equal(t, 400, w.Code)
}

func TestTripEndpoints(t *testing.T) {
	store, trip := seedStore(t)
	r := newTestRouter(store, 1)

	w := doJSON(r, http.MethodGet, "/api/trips?from=Addis+Ababa&to=Bahir+Dar", nil)
	require.Equal(t, 200, w.Code)
	var trips []models.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trips))
	require.Len(t, trips, 1)
	assert.Equal(t, trip.ID, trips[0].ID)

	w = doJSON(r, http.MethodGet, "/api/trips?from=Nowhere", nil)
	require.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trips))
	assert.Len(t, trips, 0)

	w = doJSON(r, http.MethodGet, "/api/trips/999", nil)
	assert.Equal(t, 404, w.Code)

	w = doJSON(r, http.MethodGet, "/api/trips/abc", nil)
	assert.Equal(t, 400, w.Code)
}
