package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// MarkPaid moves a pending booking to paid and clears its payment link.
	// It reports false when the booking was missing or not pending.
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	// SetPaymentLink records the checkout link on a pending booking.
	SetPaymentLink(ctx context.Context, id uuid.UUID, link string) (bool, error)
	// Delete removes a booking; deleting a missing row is not an error.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error)
	FindPaidByShowIDs(ctx context.Context, showIDs []uuid.UUID) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, show_id, user_id, seats, amount, status, contact_email, payment_link, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	var status string
	err := row.Scan(
		&booking.ID,
		&booking.ShowID,
		&booking.UserID,
		&booking.Seats,
		&booking.Amount,
		&status,
		&booking.ContactEmail,
		&booking.PaymentLink,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Status = entity.BookingStatus(status)
	return &booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'paid', payment_link = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark booking paid",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("mark booking %s paid: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) SetPaymentLink(ctx context.Context, id uuid.UUID, link string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_link = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, id, link)
	if err != nil {
		r.log.Error("Failed to set payment link",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("set payment link of booking %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	deleted := result.RowsAffected() > 0
	if deleted {
		r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	}
	return deleted, nil
}

func (r *bookingRepository) FindPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND created_at <= $1
		ORDER BY created_at
		LIMIT $2`

	return r.queryBookings(ctx, "find stale pending bookings", query, cutoff, limit)
}

func (r *bookingRepository) FindPaidByShowIDs(ctx context.Context, showIDs []uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE show_id = ANY($1) AND status = 'paid'
		ORDER BY show_id, created_at`

	return r.queryBookings(ctx, "find paid bookings by shows", query, showIDs)
}

func (r *bookingRepository) queryBookings(ctx context.Context, op, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to "+op, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
