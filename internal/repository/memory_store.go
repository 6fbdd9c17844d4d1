package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/guzobus/guzo-backend/internal/models"
)

// MemoryStore keeps all state in process behind a single mutex. It honors
// the same version discipline as GormStore and backs the test suite and
// local development without PostgreSQL. Transactions run against a shadow
// copy of the state that is swapped in on commit, so a failed transaction
// leaves nothing behind.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	trips         map[uint]*models.Trip
	bookings      map[string]*models.Booking
	bookingOrder  []string
	companies     map[uint]*models.Company
	nextTripID    uint
	nextCompanyID uint
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		trips:         make(map[uint]*models.Trip),
		bookings:      make(map[string]*models.Booking),
		companies:     make(map[uint]*models.Company),
		nextTripID:    1,
		nextCompanyID: 1,
	}}
}

var _ Store = (*MemoryStore)(nil)

// InTx serializes transactions behind the store mutex and applies fn to a
// shadow copy of the state. Commit is the pointer swap at the end; an
// error discards the copy untouched.
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shadow := s.state.clone()
	if err := fn(&memTx{state: shadow}); err != nil {
		return err
	}
	s.state = shadow
	return nil
}

func (s *MemoryStore) TripByID(ctx context.Context, id uint) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.tripByID(id)
}

func (s *MemoryStore) SaveTrip(ctx context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.saveTrip(trip)
}

func (s *MemoryStore) ListTrips(ctx context.Context, filter TripFilter) ([]models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint, 0, len(s.state.trips))
	for id := range s.state.trips {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	trips := make([]models.Trip, 0, len(ids))
	for _, id := range ids {
		t := s.state.trips[id]
		if filter.Origin != "" && t.Origin != filter.Origin {
			continue
		}
		if filter.Destination != "" && t.Destination != filter.Destination {
			continue
		}
		if filter.Date != "" && t.ServiceDate != filter.Date {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.NotBefore != "" && t.ServiceDate < filter.NotBefore {
			continue
		}
		trips = append(trips, *s.state.attachCompany(cloneTrip(t)))
	}

	switch filter.SortBy {
	case SortPriceAsc:
		sort.SliceStable(trips, func(i, j int) bool { return trips[i].Price < trips[j].Price })
	case SortPriceDesc:
		sort.SliceStable(trips, func(i, j int) bool { return trips[i].Price > trips[j].Price })
	case SortDepartureAsc:
		sort.SliceStable(trips, func(i, j int) bool { return trips[i].DepartureTime < trips[j].DepartureTime })
	case SortDepartureDesc:
		sort.SliceStable(trips, func(i, j int) bool { return trips[i].DepartureTime > trips[j].DepartureTime })
	case SortRatingDesc:
		sort.SliceStable(trips, func(i, j int) bool { return companyRating(&trips[i]) > companyRating(&trips[j]) })
	}
	return trips, nil
}

func (s *MemoryStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if trip.ID == 0 {
		trip.ID = s.state.nextTripID
		s.state.nextTripID++
	} else if trip.ID >= s.state.nextTripID {
		s.state.nextTripID = trip.ID + 1
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now()
	}
	s.state.trips[trip.ID] = cloneTrip(trip)
	return nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createBooking(booking)
}

func (s *MemoryStore) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.state.bookingByID(id)
	if err != nil {
		return nil, err
	}
	return s.state.attachTrip(b), nil
}

func (s *MemoryStore) SaveBooking(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.saveBooking(booking)
}

func (s *MemoryStore) BookingsByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings := make([]models.Booking, 0)
	// bookingOrder is insertion order; walk it backwards for newest-first.
	for i := len(s.state.bookingOrder) - 1; i >= 0; i-- {
		b := s.state.bookings[s.state.bookingOrder[i]]
		if b == nil || b.UserID != userID {
			continue
		}
		bookings = append(bookings, *s.state.attachTrip(cloneBooking(b)))
	}
	return bookings, nil
}

func (s *MemoryStore) BookingByClientRef(ctx context.Context, ref string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.state.bookingOrder {
		b := s.state.bookings[id]
		if b != nil && b.ClientRef == ref {
			return s.state.attachTrip(cloneBooking(b)), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateCompany(ctx context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if company.ID == 0 {
		company.ID = s.state.nextCompanyID
		s.state.nextCompanyID++
	} else if company.ID >= s.state.nextCompanyID {
		s.state.nextCompanyID = company.ID + 1
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now()
	}
	copied := *company
	s.state.companies[company.ID] = &copied
	return nil
}

func (s *MemoryStore) CompanyByID(ctx context.Context, id uint) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.state.companies[id]
	if !ok {
		return nil, models.ErrCompanyNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *MemoryStore) SaveCompany(ctx context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.companies[company.ID]; !ok {
		return models.ErrCompanyNotFound
	}
	copied := *company
	s.state.companies[company.ID] = &copied
	return nil
}

// memTx is the transactional view over a shadow state. The store mutex is
// held for the whole transaction, so no further locking is needed here.
type memTx struct {
	state *memState
}

var _ TxStore = (*memTx)(nil)

func (t *memTx) TripByID(ctx context.Context, id uint) (*models.Trip, error) {
	return t.state.tripByID(id)
}

func (t *memTx) SaveTrip(ctx context.Context, trip *models.Trip) error {
	return t.state.saveTrip(trip)
}

func (t *memTx) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return t.state.createBooking(booking)
}

func (t *memTx) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	return t.state.bookingByID(id)
}

func (t *memTx) SaveBooking(ctx context.Context, booking *models.Booking) error {
	return t.state.saveBooking(booking)
}

func (st *memState) tripByID(id uint) (*models.Trip, error) {
	t, ok := st.trips[id]
	if !ok {
		return nil, models.ErrTripNotFound
	}
	return st.attachCompany(cloneTrip(t)), nil
}

func (st *memState) saveTrip(trip *models.Trip) error {
	current, ok := st.trips[trip.ID]
	if !ok {
		return models.ErrTripNotFound
	}
	if current.Version != trip.Version {
		return ErrConflict
	}
	trip.Version++
	st.trips[trip.ID] = cloneTrip(trip)
	return nil
}

func (st *memState) createBooking(booking *models.Booking) error {
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	if _, exists := st.bookings[booking.ID]; !exists {
		st.bookingOrder = append(st.bookingOrder, booking.ID)
	}
	st.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (st *memState) bookingByID(id string) (*models.Booking, error) {
	b, ok := st.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (st *memState) saveBooking(booking *models.Booking) error {
	if _, ok := st.bookings[booking.ID]; !ok {
		return models.ErrBookingNotFound
	}
	booking.UpdatedAt = time.Now()
	st.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (st *memState) attachCompany(trip *models.Trip) *models.Trip {
	if c, ok := st.companies[trip.CompanyID]; ok {
		copied := *c
		trip.Company = &copied
	}
	return trip
}

func (st *memState) attachTrip(booking *models.Booking) *models.Booking {
	if t, ok := st.trips[booking.TripID]; ok {
		booking.Trip = st.attachCompany(cloneTrip(t))
	}
	return booking
}

func (st *memState) clone() *memState {
	next := &memState{
		trips:         make(map[uint]*models.Trip, len(st.trips)),
		bookings:      make(map[string]*models.Booking, len(st.bookings)),
		bookingOrder:  append([]string(nil), st.bookingOrder...),
		companies:     make(map[uint]*models.Company, len(st.companies)),
		nextTripID:    st.nextTripID,
		nextCompanyID: st.nextCompanyID,
	}
	for id, t := range st.trips {
		next.trips[id] = cloneTrip(t)
	}
	for id, b := range st.bookings {
		next.bookings[id] = cloneBooking(b)
	}
	for id, c := range st.companies {
		copied := *c
		next.companies[id] = &copied
	}
	return next
}

func cloneTrip(t *models.Trip) *models.Trip {
	copied := *t
	copied.Company = nil
	copied.Amenities = append([]string(nil), t.Amenities...)
	copied.Seats = append([]models.Seat(nil), t.Seats...)
	return &copied
}

func cloneBooking(b *models.Booking) *models.Booking {
	copied := *b
	copied.Trip = nil
	copied.Seats = append([]string(nil), b.Seats...)
	copied.Passengers = append([]models.Passenger(nil), b.Passengers...)
	return &copied
}

func companyRating(t *models.Trip) float64 {
	if t.Company == nil {
		return 0
	}
	return t.Company.Rating
}
