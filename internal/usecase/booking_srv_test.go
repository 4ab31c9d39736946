package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinema-showtime/internal/dto/request"
	"cinema-showtime/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func testPolicy() BookingPolicy {
	return NewBookingPolicy(utils.BookingConfig{HoldWindow: 30 * time.Minute, MaxSeats: 5})
}

func newBookingService(store *memStore, pub *recordingPublisher) *bookingService {
	svc := NewBookingService(newTestRepo(store), pub, testPolicy(), nopLogger()).(*bookingService)
	svc.now = fixedClock(testNow)
	return svc
}

func bookSeats(showID string, seats ...string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{ShowID: showID, Seats: seats}
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("holds seats and arms the timeout", func(t *testing.T) {
		store := newMemStore()
		show := store.addShow(testNow.Add(24*time.Hour), 12.5)
		pub := &recordingPublisher{}
		svc := newBookingService(store, pub)

		booking, err := svc.CreateBooking(ctx, "user-1", bookSeats(show.ID.String(), "a1", "A2"))

		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "A2"}, booking.Seats)
		assert.Equal(t, 25.0, booking.Amount)
		assert.EqualValues(t, "pending", booking.Status)
		require.NotNil(t, booking.ExpiresAt)
		assert.Equal(t, testNow.Add(30*time.Minute), *booking.ExpiresAt)

		occupied := store.occupied(show.ID)
		assert.Equal(t, booking.ID, occupied["A1"])
		assert.Equal(t, booking.ID, occupied["A2"])

		require.Len(t, pub.releases, 1)
		assert.Equal(t, booking.ID, pub.releases[0].BookingID.String())
		assert.Equal(t, testNow.Add(30*time.Minute), pub.releases[0].FireAt)
	})

	t.Run("overlapping request conflicts", func(t *testing.T) {
		store := newMemStore()
		show := store.addShow(testNow.Add(24*time.Hour), 10)
		svc := newBookingService(store, &recordingPublisher{})

		_, err := svc.CreateBooking(ctx, "user-1", bookSeats(show.ID.String(), "A1", "A2"))
		require.NoError(t, err)

		_, err = svc.CreateBooking(ctx, "user-2", bookSeats(show.ID.String(), "A1"))

		var conflict *SeatConflictError
		require.ErrorAs(t, err, &conflict)
		assert.ErrorIs(t, err, ErrSeatConflict)
		assert.Equal(t, []string{"A1"}, conflict.Seats)
	})

	t.Run("all or nothing", func(t *testing.T) {
		store := newMemStore()
		show := store.addShow(testNow.Add(24*time.Hour), 10)
		svc := newBookingService(store, &recordingPublisher{})

		_, err := svc.CreateBooking(ctx, "user-1", bookSeats(show.ID.String(), "B5"))
		require.NoError(t, err)

		_, err = svc.CreateBooking(ctx, "user-2", bookSeats(show.ID.String(), "B4", "B5", "B6"))
		require.ErrorIs(t, err, ErrSeatConflict)

		occupied := store.occupied(show.ID)
		assert.Len(t, occupied, 1)
		assert.NotContains(t, occupied, "B4")
		assert.NotContains(t, occupied, "B6")
	})

	t.Run("schedule failure keeps the booking", func(t *testing.T) {
		store := newMemStore()
		show := store.addShow(testNow.Add(24*time.Hour), 10)
		svc := newBookingService(store, &recordingPublisher{err: errBoom})

		booking, err := svc.CreateBooking(ctx, "user-1", bookSeats(show.ID.String(), "C1"))

		require.NoError(t, err)
		assert.Equal(t, "C1", booking.Seats[0])
	})

	invalid := []struct {
		name  string
		req   func(showID string) *request.CreateBookingRequest
		user  string
		start time.Duration
		want  error
	}{
		{
			name: "no seats",
			req:  func(id string) *request.CreateBookingRequest { return bookSeats(id) },
			user: "user-1", start: time.Hour, want: ErrValidation,
		},
		{
			name: "more than five seats",
			req: func(id string) *request.CreateBookingRequest {
				return bookSeats(id, "A1", "A2", "A3", "A4", "A5", "A6")
			},
			user: "user-1", start: time.Hour, want: ErrValidation,
		},
		{
			name: "duplicate seats",
			req:  func(id string) *request.CreateBookingRequest { return bookSeats(id, "A1", "a1") },
			user: "user-1", start: time.Hour, want: ErrValidation,
		},
		{
			name: "seat outside the layout",
			req:  func(id string) *request.CreateBookingRequest { return bookSeats(id, "Z1") },
			user: "user-1", start: time.Hour, want: ErrValidation,
		},
		{
			name: "missing holder",
			req:  func(id string) *request.CreateBookingRequest { return bookSeats(id, "A1") },
			user: "", start: time.Hour, want: ErrValidation,
		},
		{
			name: "show already started",
			req:  func(id string) *request.CreateBookingRequest { return bookSeats(id, "A1") },
			user: "user-1", start: -time.Minute, want: ErrValidation,
		},
		{
			name: "unknown show",
			req: func(string) *request.CreateBookingRequest {
				return bookSeats("0b8f0c3e-7f1b-4c55-9d7a-3a3b2c1d0e9f", "A1")
			},
			user: "user-1", start: time.Hour, want: ErrNotFound,
		},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			show := store.addShow(testNow.Add(tt.start), 10)
			svc := newBookingService(store, &recordingPublisher{})

			_, err := svc.CreateBooking(ctx, tt.user, tt.req(show.ID.String()))

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.occupied(show.ID))
		})
	}
}

func TestNewBookingPolicy_CapsSeats(t *testing.T) {
	policy := NewBookingPolicy(utils.BookingConfig{HoldWindow: 30 * time.Minute, MaxSeats: 12})
	assert.Equal(t, 5, policy.MaxSeats)

	store := newMemStore()
	show := store.addShow(testNow.Add(time.Hour), 10)
	svc := NewBookingService(newTestRepo(store), &recordingPublisher{}, policy, nopLogger()).(*bookingService)
	svc.now = fixedClock(testNow)

	_, err := svc.CreateBooking(context.Background(), "user-1", bookSeats(show.ID.String(), "B1", "B2", "B3", "B4", "B5", "B6"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.occupied(show.ID))
}

func TestBookingService_NoDoubleBooking(t *testing.T) {
	store := newMemStore()
	show := store.addShow(testNow.Add(24*time.Hour), 10)
	svc := newBookingService(store, &recordingPublisher{})

	const holders = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < holders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), "user", bookSeats(show.ID.String(), "D4", "D5"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, ErrSeatConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, holders-1, conflicts)

	occupied := store.occupied(show.ID)
	require.Len(t, occupied, 2)
	assert.Equal(t, occupied["D4"], occupied["D5"])
}

func TestBookingService_GetBooking(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	show := store.addShow(testNow.Add(24*time.Hour), 10)
	svc := newBookingService(store, &recordingPublisher{})

	created, err := svc.CreateBooking(ctx, "user-1", bookSeats(show.ID.String(), "E1"))
	require.NoError(t, err)

	got, err := svc.GetBooking(ctx, "user-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetBooking(ctx, "user-2", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetBooking(ctx, "user-1", "not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)
}
