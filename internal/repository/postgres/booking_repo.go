package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventbookingsystem/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

// Create inserts the booking. The uq_user_event_booking unique constraint on
// (user_id, event_id) is the authoritative duplicate check: a violation maps
// to domain.ErrAlreadyBooked even when the service's fast-path check passed.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (user_id, event_id, booking_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, b.UserID, b.EventID, b.BookingTime, b.CreatedAt, b.UpdatedAt).
		Scan(&b.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyBooked
		}
		return err
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, user_id, event_id, booking_time, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	b := &domain.Booking{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&b.ID, &b.UserID, &b.EventID, &b.BookingTime, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ExistsByUserAndEvent(ctx context.Context, userID, eventID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings WHERE user_id = $1 AND event_id = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, eventID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *bookingRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Booking, error) {
	query := `
		SELECT id, user_id, event_id, booking_time, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY booking_time DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b := &domain.Booking{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.EventID, &b.BookingTime, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, nil
}

func (r *bookingRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE event_id = $1`, eventID).
		Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE event_id = $1`, eventID)
	return err
}
