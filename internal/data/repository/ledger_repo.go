package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cinema-showtime/internal/data/entity"
	"cinema-showtime/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// LedgerRepository is the only writer of shows.occupied_seats.
type LedgerRepository interface {
	// Reserve claims booking.Seats on booking.ShowID and inserts the pending
	// booking in the same transaction. It fails with *SeatsTakenError when
	// any seat is held and with ErrShowNotFound when the show is missing.
	Reserve(ctx context.Context, booking *entity.Booking) error
	// Release moves a pending booking to released and frees its seats.
	// It reports false when the booking was not pending.
	Release(ctx context.Context, bookingID uuid.UUID) (bool, error)
}

type ledgerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewLedgerRepository(db database.PgxIface, log *zap.Logger) LedgerRepository {
	return &ledgerRepository{
		db:  db,
		log: log.With(zap.String("repository", "ledger")),
	}
}

const (
	claimSeatsQuery = `
		UPDATE shows
		SET occupied_seats = occupied_seats || $2::jsonb, updated_at = NOW()
		WHERE id = $1 AND NOT (occupied_seats ?| $3::text[])
	`

	insertBookingQuery = `
		INSERT INTO bookings (id, show_id, user_id, seats, amount, status, contact_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	occupiedSeatsQuery = `SELECT occupied_seats FROM shows WHERE id = $1`

	releaseBookingQuery = `
		UPDATE bookings
		SET status = 'released', payment_link = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING show_id
	`

	freeSeatsQuery = `
		UPDATE shows
		SET occupied_seats = COALESCE(
		        (SELECT jsonb_object_agg(seat.key, seat.value)
		           FROM jsonb_each_text(occupied_seats) AS seat
		          WHERE seat.value <> $2),
		        '{}'::jsonb),
		    updated_at = NOW()
		WHERE id = $1
	`
)

func (r *ledgerRepository) Reserve(ctx context.Context, booking *entity.Booking) (err error) {
	claims := make(map[string]string, len(booking.Seats))
	for _, seat := range booking.Seats {
		claims[seat] = booking.ID.String()
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("encode seat claims: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, claimSeatsQuery, booking.ShowID, string(payload), booking.Seats)
	if err != nil {
		r.log.Error("Failed to claim seats",
			zap.Error(err),
			zap.String("show_id", booking.ShowID.String()),
			zap.Strings("seats", booking.Seats),
		)
		return fmt.Errorf("claim seats on show %s: %w", booking.ShowID.String(), err)
	}

	if tag.RowsAffected() == 0 {
		return r.explainRejectedClaim(ctx, tx, booking)
	}

	_, err = tx.Exec(ctx, insertBookingQuery,
		booking.ID,
		booking.ShowID,
		booking.UserID,
		booking.Seats,
		booking.Amount,
		string(booking.Status),
		booking.ContactEmail,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("insert booking %s: %w", booking.ID.String(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reserve tx: %w", err)
	}

	r.log.Info("Seats reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("show_id", booking.ShowID.String()),
		zap.Strings("seats", booking.Seats),
	)
	return nil
}

// explainRejectedClaim tells a missing show apart from held seats after the
// conditional update matched no row.
func (r *ledgerRepository) explainRejectedClaim(ctx context.Context, tx pgx.Tx, booking *entity.Booking) error {
	var raw []byte
	err := tx.QueryRow(ctx, occupiedSeatsQuery, booking.ShowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrShowNotFound
	}
	if err != nil {
		return fmt.Errorf("read seat ledger of show %s: %w", booking.ShowID.String(), err)
	}

	occupied := map[string]string{}
	if err := json.Unmarshal(raw, &occupied); err != nil {
		return fmt.Errorf("decode seat ledger of show %s: %w", booking.ShowID.String(), err)
	}

	var taken []string
	for _, seat := range booking.Seats {
		if _, ok := occupied[seat]; ok {
			taken = append(taken, seat)
		}
	}
	if len(taken) == 0 {
		taken = booking.Seats
	}
	return &SeatsTakenError{Seats: taken}
}

func (r *ledgerRepository) Release(ctx context.Context, bookingID uuid.UUID) (released bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin release tx: %w", err)
	}
	defer func() {
		if err != nil || !released {
			_ = tx.Rollback(ctx)
		}
	}()

	var showID uuid.UUID
	err = tx.QueryRow(ctx, releaseBookingQuery, bookingID).Scan(&showID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to release booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("release booking %s: %w", bookingID.String(), err)
	}

	if _, err = tx.Exec(ctx, freeSeatsQuery, showID, bookingID.String()); err != nil {
		r.log.Error("Failed to free seats",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("show_id", showID.String()),
		)
		return false, fmt.Errorf("free seats of booking %s: %w", bookingID.String(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit release tx: %w", err)
	}

	r.log.Info("Booking released",
		zap.String("booking_id", bookingID.String()),
		zap.String("show_id", showID.String()),
	)
	return true, nil
}
