package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventbookingsystem/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var bookingColumnNames = []string{"id", "user_id", "event_id", "booking_time", "created_at", "updated_at"}

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO bookings \(user_id, event_id, booking_time, created_at, updated_at\)`).
					WithArgs("user-1", "ev-1", now, now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("bk-uuid-1"))
			},
			wantID: "bk-uuid-1",
		},
		{
			name: "unique constraint violation maps to already booked",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO bookings`).
					WithArgs("user-1", "ev-1", now, now, now).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_user_event_booking"})
			},
			wantErr: domain.ErrAlreadyBooked,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO bookings`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewBookingRepository(db)
			booking := domain.NewBooking("user-1", "ev-1", now, now, now)
			err = repo.Create(ctx, booking)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, booking.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, user_id, event_id, booking_time, created_at, updated_at`).
			WithArgs("bk-1").
			WillReturnRows(sqlmock.NewRows(bookingColumnNames).
				AddRow("bk-1", "user-1", "ev-1", now, now, now))

		repo := NewBookingRepository(db)
		got, err := repo.GetByID(ctx, "bk-1")
		require.NoError(t, err)
		require.Equal(t, "bk-1", got.ID)
		require.Equal(t, "user-1", got.UserID)
		require.Equal(t, "ev-1", got.EventID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, user_id, event_id`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewBookingRepository(db)
		_, err = repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingRepository_ExistsByUserAndEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		exists bool
	}{
		{name: "booking exists", exists: true},
		{name: "no booking", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs("user-1", "ev-1").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			repo := NewBookingRepository(db)
			got, err := repo.ExistsByUserAndEvent(ctx, "user-1", "ev-1")
			require.NoError(t, err)
			require.Equal(t, tt.exists, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBookingRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns bookings ordered by booking time", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, user_id, event_id, booking_time, created_at, updated_at`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows(bookingColumnNames).
				AddRow("bk-2", "user-1", "ev-2", now, now, now).
				AddRow("bk-1", "user-1", "ev-1", now.Add(-time.Hour), now, now))

		repo := NewBookingRepository(db)
		got, err := repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "bk-2", got[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no bookings returns empty slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, user_id, event_id`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows(bookingColumnNames))

		repo := NewBookingRepository(db)
		got, err := repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	})
}

func TestBookingRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM bookings WHERE id = \$1`).
			WithArgs("bk-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewBookingRepository(db)
		require.NoError(t, repo.Delete(ctx, "bk-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewBookingRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)
	})
}

func TestBookingRepository_DeleteByEventID(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM bookings WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewBookingRepository(db)
	require.NoError(t, repo.DeleteByEventID(ctx, "ev-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
