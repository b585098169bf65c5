package domain

import (
	"context"
	"time"
)

// Event represents a bookable event. Capacity is nil for unlimited events.
// ReservedCount and Version are mutated only through the conditional update
// in EventRepository; the descriptive fields belong to the catalog.
// swagger:model Event
type Event struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Venue         string    `json:"venue"`
	Price         float64   `json:"price"`
	ImageURL      string    `json:"image_url,omitempty"`
	StartTime     time.Time `json:"start_time"`
	Capacity      *int      `json:"capacity"`
	ReservedCount int       `json:"reserved_count"`
	OwnerID       string    `json:"owner_id"`
	Version       int64     `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name, description, category, venue string, price float64, imageURL string, startTime time.Time, capacity *int, ownerID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:        name,
		Description: description,
		Category:    category,
		Venue:       venue,
		Price:       price,
		ImageURL:    imageURL,
		StartTime:   startTime,
		Capacity:    capacity,
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// HasCapacityLeft reports whether the event can admit one more booking.
func (e *Event) HasCapacityLeft() bool {
	if e.Capacity == nil {
		return true
	}
	return e.ReservedCount < *e.Capacity
}

// EventUpdate carries the mutable catalog fields for an event update.
// Nil fields are left unchanged; ClearCapacity makes the event unlimited.
type EventUpdate struct {
	Name          *string
	Description   *string
	Category      *string
	Venue         *string
	Price         *float64
	ImageURL      *string
	StartTime     *time.Time
	Capacity      *int
	ClearCapacity bool
}

// EventRepository defines the interface for event storage.
// UpdateReservedCount must be a single conditional UPDATE keyed on the
// version the caller just read; it returns ErrVersionMismatch when the row
// was modified concurrently. The store layer never retries.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams, category string) ([]*Event, int, error)
	Update(ctx context.Context, eventID string, update EventUpdate) (*Event, error)
	UpdateReservedCount(ctx context.Context, eventID string, reservedCount int, version int64) error
	Delete(ctx context.Context, id string) error
}

// EventService defines catalog operations. Create, Update, and Delete are
// admin-only; reads are public.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, isAdmin bool) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams, category string) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID string, update EventUpdate, isAdmin bool) (*Event, error)
	DeleteEvent(ctx context.Context, eventID string, isAdmin bool) error
}
