package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roombot/internal/models"
	"roombot/internal/schedule"
)

// Dates and times are persisted in their fixed storage forms ("05 Mar 2025",
// "0900"). The zero-padded HHMM form compares lexicographically in time
// order, which the overlap query below relies on.

func scanBooking(scan func(dest ...any) error) (*models.Booking, error) {
	var b models.Booking
	var dateStr, startStr, endStr string
	if err := scan(&b.ID, &dateStr, &startStr, &endStr, &b.Owner, &b.Details, &b.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if b.Date, err = schedule.ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("stored booking %d: %w", b.ID, err)
	}
	if b.Start, err = schedule.ParseClock(startStr); err != nil {
		return nil, fmt.Errorf("stored booking %d: %w", b.ID, err)
	}
	if b.End, err = schedule.ParseClock(endStr); err != nil {
		return nil, fmt.Errorf("stored booking %d: %w", b.ID, err)
	}
	return &b, nil
}

const bookingColumns = `id, date, start_time, end_time, owner, details, created_at`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (date, start_time, end_time, owner, details, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.Date.String(),
		booking.Start.String(),
		booking.End.String(),
		booking.Owner,
		booking.Details,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	return nil
}

// CreateBookingChecked inserts the booking only if no committed booking on
// the same date overlaps its [start, end) interval. The conflict check and
// the insert run in one transaction, so two sessions that both validated
// against the same stale read cannot both commit.
func (db *DB) CreateBookingChecked(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Half-open overlap: existing [s, e) collides with new [ns, ne)
	// iff s < ne AND e > ns. Boundary-adjacent rows do not match.
	var conflicts int
	queryCount := `SELECT COUNT(*) FROM bookings
                   WHERE date = ? AND start_time < ? AND end_time > ?`
	err = tx.QueryRowContext(ctx, queryCount,
		booking.Date.String(),
		booking.End.String(),
		booking.Start.String(),
	).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check conflicts in tx: %w", err)
	}

	if conflicts > 0 {
		return ErrSlotTaken
	}

	queryInsert := `INSERT INTO bookings (date, start_time, end_time, owner, details, created_at)
                    VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.Date.String(),
		booking.Start.String(),
		booking.End.String(),
		booking.Owner,
		booking.Details,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	row := db.QueryRowContext(ctx, query, id)
	booking, err := scanBooking(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) GetBookingsByDate(ctx context.Context, date schedule.Date) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE date = ? ORDER BY start_time ASC`
	return db.queryBookings(ctx, query, date.String())
}

func (db *DB) GetBookingsByOwner(ctx context.Context, owner string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE owner = ? ORDER BY id ASC`
	return db.queryBookings(ctx, query, owner)
}

// GetAllBookings returns every stored booking. The date string key does not
// sort chronologically, so callers order by parsed date as needed.
func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY id ASC`
	return db.queryBookings(ctx, query)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}
