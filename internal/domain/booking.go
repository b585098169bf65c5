package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for booking admission control.
var (
	// ErrAlreadyBooked is returned when the user already holds a live booking
	// for the event. The store's unique constraint on (user_id, event_id) is
	// the authoritative source of this error.
	ErrAlreadyBooked = errors.New("you have already booked this event")
	// ErrEventPassed is returned when the event's start time is in the past.
	ErrEventPassed = errors.New("cannot book an event that has already passed")
	// ErrEventFull is returned when the event has no capacity left. It is
	// terminal: the admission controller reports it instead of retrying.
	ErrEventFull = errors.New("event is fully booked, no more tickets available")
	// ErrContention is returned after the bounded optimistic retry is
	// exhausted. Callers may safely retry the whole operation.
	ErrContention = errors.New("failed due to high contention, please try again")
	// ErrVersionMismatch is returned by the event store when a conditional
	// write targets a stale version. Only the admission controller retries it.
	ErrVersionMismatch = errors.New("event was modified concurrently")
)

// Booking represents one user's reservation of one seat at an event.
// The (UserID, EventID) pair is unique across live bookings.
// swagger:model Booking
type Booking struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	BookingTime time.Time `json:"booking_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBooking returns a new Booking with the given fields. ID is typically set by the repository on create.
func NewBooking(userID, eventID string, bookingTime, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		UserID:      userID,
		EventID:     eventID,
		BookingTime: bookingTime,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// BookingWithEvent bundles a booking with its related event for list responses.
type BookingWithEvent struct {
	Booking *Booking `json:"booking"`
	Event   *Event   `json:"event"`
}

// BookingRepository defines storage operations for bookings.
// Create returns ErrAlreadyBooked when the (user_id, event_id) unique
// constraint rejects the insert.
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ExistsByUserAndEvent(ctx context.Context, userID, eventID string) (bool, error)
	ListByUserID(ctx context.Context, userID string) ([]*Booking, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteByEventID(ctx context.Context, eventID string) error
}

// BookingService is the admission controller plus the booking read paths.
type BookingService interface {
	// CreateBooking admits the user to the event, incrementing the event's
	// reserved count behind a bounded optimistic retry. Errors: ErrNotFound,
	// ErrEventPassed, ErrAlreadyBooked, ErrEventFull, ErrContention.
	CreateBooking(ctx context.Context, eventID, userID string) (*Booking, error)
	// CancelBooking frees the user's seat. Only the booking owner or an
	// administrator may cancel. Errors: ErrNotFound, ErrForbidden, ErrContention.
	CancelBooking(ctx context.Context, bookingID, userID string, isAdmin bool) error
	GetUserBookings(ctx context.Context, userID string) ([]*BookingWithEvent, error)
	GetBookingByID(ctx context.Context, bookingID, userID string, isAdmin bool) (*Booking, error)
}
