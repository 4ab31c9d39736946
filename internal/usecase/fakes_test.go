package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	theaterA = uuid.MustParse("6f2a1c1e-0d8e-4b7a-9a51-1d3f0f6c9a01")
	theaterB = uuid.MustParse("6f2a1c1e-0d8e-4b7a-9a51-1d3f0f6c9a02")
	theaterC = uuid.MustParse("6f2a1c1e-0d8e-4b7a-9a51-1d3f0f6c9a03")
)

var errBoom = errors.New("boom")

// memStore is an in-memory stand-in for Postgres. One mutex serialises every
// operation the way a row lock serialises the real ledger.
type memStore struct {
	mu           sync.Mutex
	movies       map[string]*entity.Movie
	movieInserts int
	theaters     map[uuid.UUID]*entity.Theater
	shows        map[uuid.UUID]*entity.Show
	bookings     map[uuid.UUID]*entity.Booking
	failBatch    bool
}

func newMemStore() *memStore {
	s := &memStore{
		movies:   make(map[string]*entity.Movie),
		theaters: make(map[uuid.UUID]*entity.Theater),
		shows:    make(map[uuid.UUID]*entity.Show),
		bookings: make(map[uuid.UUID]*entity.Booking),
	}
	for i, id := range []uuid.UUID{theaterA, theaterB, theaterC} {
		s.theaters[id] = &entity.Theater{ID: id, Name: "Theater", ScreenCount: i + 1}
	}
	return s
}

func newTestRepo(s *memStore) *repository.Repository {
	return &repository.Repository{
		Movie:      memMovies{s},
		MovieCache: newMemCache(),
		Theater:    memTheaters{s},
		Show:       memShows{s},
		Ledger:     memLedger{s},
		Booking:    memBookings{s},
	}
}

func (s *memStore) addShow(startsAt time.Time, price float64) *entity.Show {
	s.mu.Lock()
	defer s.mu.Unlock()

	show := &entity.Show{
		ID:            uuid.New(),
		MovieID:       "550",
		TheaterID:     theaterA,
		StartsAt:      startsAt,
		Price:         price,
		OccupiedSeats: map[string]string{},
	}
	s.shows[show.ID] = show
	return cloneShow(show)
}

func (s *memStore) addBooking(b *entity.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings[b.ID] = cloneBooking(b)
	if b.Status == entity.BookingStatusReleased {
		return
	}
	if show, ok := s.shows[b.ShowID]; ok {
		for _, seat := range b.Seats {
			show.OccupiedSeats[seat] = b.ID.String()
		}
	}
}

func (s *memStore) occupied(showID uuid.UUID) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneShow(s.shows[showID]).OccupiedSeats
}

func (s *memStore) booking(id uuid.UUID) *entity.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		return cloneBooking(b)
	}
	return nil
}

func cloneShow(s *entity.Show) *entity.Show {
	c := *s
	c.OccupiedSeats = make(map[string]string, len(s.OccupiedSeats))
	for k, v := range s.OccupiedSeats {
		c.OccupiedSeats[k] = v
	}
	return &c
}

func cloneBooking(b *entity.Booking) *entity.Booking {
	c := *b
	c.Seats = append([]string(nil), b.Seats...)
	return &c
}

type memMovies struct{ s *memStore }

func (m memMovies) FindByID(ctx context.Context, id string) (*entity.Movie, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if movie, ok := m.s.movies[id]; ok {
		c := *movie
		return &c, nil
	}
	return nil, nil
}

func (m memMovies) Insert(ctx context.Context, movie *entity.Movie) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.movies[movie.ID]; ok {
		return false, nil
	}
	c := *movie
	m.s.movies[movie.ID] = &c
	m.s.movieInserts++
	return true, nil
}

type memCache struct {
	mu     sync.Mutex
	movies map[string]entity.Movie
}

func newMemCache() *memCache {
	return &memCache{movies: make(map[string]entity.Movie)}
}

func (c *memCache) Get(ctx context.Context, id string) (*entity.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.movies[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (c *memCache) Set(ctx context.Context, movie *entity.Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.movies[movie.ID] = *movie
	return nil
}

type memTheaters struct{ s *memStore }

func (m memTheaters) FindByID(ctx context.Context, id uuid.UUID) (*entity.Theater, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.theaters[id], nil
}

func (m memTheaters) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Theater, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Theater
	for _, id := range ids {
		if t, ok := m.s.theaters[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type memShows struct{ s *memStore }

func (m memShows) Create(ctx context.Context, show *entity.Show) error {
	return m.CreateBatch(ctx, []*entity.Show{show})
}

func (m memShows) CreateBatch(ctx context.Context, shows []*entity.Show) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failBatch {
		return errBoom
	}
	for _, show := range shows {
		m.s.shows[show.ID] = cloneShow(show)
	}
	return nil
}

func (m memShows) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if show, ok := m.s.shows[id]; ok {
		return cloneShow(show), nil
	}
	return nil, nil
}

func (m memShows) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Show, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Show
	for _, show := range m.s.shows {
		if !show.StartsAt.Before(from) && show.StartsAt.Before(to) {
			out = append(out, cloneShow(show))
		}
	}
	return out, nil
}

type memLedger struct{ s *memStore }

func (m memLedger) Reserve(ctx context.Context, booking *entity.Booking) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	show, ok := m.s.shows[booking.ShowID]
	if !ok {
		return repository.ErrShowNotFound
	}

	var taken []string
	for _, seat := range booking.Seats {
		if _, held := show.OccupiedSeats[seat]; held {
			taken = append(taken, seat)
		}
	}
	if len(taken) > 0 {
		sort.Strings(taken)
		return &repository.SeatsTakenError{Seats: taken}
	}

	for _, seat := range booking.Seats {
		show.OccupiedSeats[seat] = booking.ID.String()
	}
	m.s.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (m memLedger) Release(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	b, ok := m.s.bookings[bookingID]
	if !ok || b.Status != entity.BookingStatusPending {
		return false, nil
	}
	b.Status = entity.BookingStatusReleased

	if show, ok := m.s.shows[b.ShowID]; ok {
		for seat, holder := range show.OccupiedSeats {
			if holder == bookingID.String() {
				delete(show.OccupiedSeats, seat)
			}
		}
	}
	return true, nil
}

type memBookings struct{ s *memStore }

func (m memBookings) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return m.s.booking(id), nil
}

func (m memBookings) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bookings[id]
	if !ok || b.Status != entity.BookingStatusPending {
		return false, nil
	}
	b.Status = entity.BookingStatusPaid
	b.PaymentLink = nil
	return true, nil
}

func (m memBookings) SetPaymentLink(ctx context.Context, id uuid.UUID, link string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bookings[id]
	if !ok || b.Status != entity.BookingStatusPending {
		return false, nil
	}
	b.PaymentLink = &link
	return true, nil
}

func (m memBookings) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.bookings[id]; !ok {
		return false, nil
	}
	delete(m.s.bookings, id)
	return true, nil
}

func (m memBookings) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range m.s.bookings {
		if b.Status == entity.BookingStatusPending && b.CreatedAt.Before(cutoff) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memBookings) FindPaidByShowIDs(ctx context.Context, showIDs []uuid.UUID) ([]*entity.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(showIDs))
	for _, id := range showIDs {
		want[id] = true
	}
	var out []*entity.Booking
	for _, b := range m.s.bookings {
		if b.Status == entity.BookingStatusPaid && want[b.ShowID] {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// fakeSource serves movies and counts upstream calls.
type fakeSource struct {
	calls  atomic.Int32
	delay  time.Duration
	failOn map[string]bool
}

func (f *fakeSource) FetchMovie(ctx context.Context, id string) (*entity.Movie, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failOn[id] {
		return nil, errors.New("tmdb: status 503")
	}
	return &entity.Movie{ID: id, Title: "Movie " + id, Rating: 7.5, Genres: []string{"Drama"}}, nil
}

type scheduledRelease struct {
	BookingID uuid.UUID
	FireAt    time.Time
}

// recordingPublisher captures everything the services publish.
type recordingPublisher struct {
	mu            sync.Mutex
	err           error
	releases      []scheduledRelease
	showsAdded    []ShowAddedEvent
	confirmed     []BookingConfirmedEvent
	notifications []NotificationRequest
}

func (p *recordingPublisher) ScheduleRelease(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.releases = append(p.releases, scheduledRelease{BookingID: bookingID, FireAt: fireAt})
	return nil
}

func (p *recordingPublisher) PublishShowAdded(ctx context.Context, evt ShowAddedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.showsAdded = append(p.showsAdded, evt)
	return nil
}

func (p *recordingPublisher) PublishBookingConfirmed(ctx context.Context, evt BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.confirmed = append(p.confirmed, evt)
	return nil
}

func (p *recordingPublisher) EnqueueNotification(ctx context.Context, n NotificationRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.notifications = append(p.notifications, n)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
