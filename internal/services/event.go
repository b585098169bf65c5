package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventbookingsystem/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	bookingRepo    domain.BookingRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(
	eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		bookingRepo:    bookingRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, isAdmin bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !isAdmin {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(event.Name) == "" || strings.TrimSpace(event.Venue) == "" {
		return domain.ErrInvalidInput
	}
	if event.StartTime.Before(time.Now()) {
		return domain.ErrInvalidInput
	}
	if event.Capacity != nil && *event.Capacity < 1 {
		return domain.ErrInvalidInput
	}
	if event.Price < 0 {
		return domain.ErrInvalidInput
	}

	event.ReservedCount = 0
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ListEvents returns a page of the catalog, optionally filtered to one
// category. A blank category means no filter.
func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams, category string) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params, strings.TrimSpace(category))
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, update domain.EventUpdate, isAdmin bool) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !isAdmin {
		return nil, domain.ErrForbidden
	}

	current, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if update.Capacity != nil && !update.ClearCapacity {
		// Shrinking below the already reserved seats would break the
		// reserved_count <= capacity invariant for existing bookings.
		if *update.Capacity < 1 || *update.Capacity < current.ReservedCount {
			return nil, domain.ErrInvalidInput
		}
	}
	if update.Price != nil && *update.Price < 0 {
		return nil, domain.ErrInvalidInput
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.eventRepo.Update(ctx, eventID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes the event and all bookings referencing it. The booking
// delete runs first so no booking is ever left pointing at a missing event;
// the schema's ON DELETE CASCADE backs this up.
func (s *eventService) DeleteEvent(ctx context.Context, eventID string, isAdmin bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !isAdmin {
		return domain.ErrForbidden
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if err := s.bookingRepo.DeleteByEventID(ctx, eventID); err != nil {
		return fmt.Errorf("delete bookings for event: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
