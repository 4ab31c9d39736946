package repository

import (
	"context"
	"testing"
	"time"

	"cinema-showtime/internal/data/entity"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegexPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var bookingRowColumns = []string{
	"id", "show_id", "user_id", "seats", "amount", "status",
	"contact_email", "payment_link", "created_at", "updated_at",
}

func TestBookingRepository_MarkPaid(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "pending becomes paid", affected: 1, want: true},
		{name: "not pending", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newRegexPool(t)
			repo := NewBookingRepository(mock, zap.NewNop())
			id := uuid.New()

			mock.ExpectExec(`UPDATE bookings\s+SET status = 'paid', payment_link = NULL`).
				WithArgs(id).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			paid, err := repo.MarkPaid(context.Background(), id)

			require.NoError(t, err)
			assert.Equal(t, tt.want, paid)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock := newRegexPool(t)
		repo := NewBookingRepository(mock, zap.NewNop())
		id, showID := uuid.New(), uuid.New()
		email := "holder@example.com"
		created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT id, show_id, .* FROM bookings WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(mock.NewRows(bookingRowColumns).
				AddRow(id.String(), showID.String(), "user-1", []string{"A1"}, 10.0, "pending", &email, (*string)(nil), created, created))

		b, err := repo.FindByID(ctx, id)

		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, entity.BookingStatusPending, b.Status)
		assert.Equal(t, []string{"A1"}, b.Seats)
		assert.Equal(t, email, *b.ContactEmail)
		assert.Nil(t, b.PaymentLink)
	})

	t.Run("missing returns nil", func(t *testing.T) {
		mock := newRegexPool(t)
		repo := NewBookingRepository(mock, zap.NewNop())
		id := uuid.New()

		mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(mock.NewRows(bookingRowColumns))

		b, err := repo.FindByID(ctx, id)

		require.NoError(t, err)
		assert.Nil(t, b)
	})
}

func TestBookingRepository_Delete(t *testing.T) {
	mock := newRegexPool(t)
	repo := NewBookingRepository(mock, zap.NewNop())
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM bookings WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := repo.Delete(context.Background(), id)

	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
