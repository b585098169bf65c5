package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eventbookingsystem/internal/domain"
)

// Bounded optimistic retry parameters for the admission path. The fixed
// delay de-correlates writers racing on the same event row.
const (
	maxAdmissionAttempts = 3
	admissionRetryDelay  = 50 * time.Millisecond
)

type bookingService struct {
	eventRepo      domain.EventRepository
	bookingRepo    domain.BookingRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	contextTimeout time.Duration
	retryDelay     time.Duration
}

// NewBookingService creates the booking admission controller. emailService
// may be nil, in which case no confirmation emails are sent.
func NewBookingService(
	eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		eventRepo:      eventRepo,
		bookingRepo:    bookingRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		contextTimeout: timeout,
		retryDelay:     admissionRetryDelay,
	}
}

// CreateBooking admits the user to the event. Preconditions are checked once
// against a fresh read; the capacity check and counter increment then run
// inside a bounded compare-and-swap retry loop. All exclusion comes from the
// store's version column; no in-process lock is held across attempts.
func (s *bookingService) CreateBooking(ctx context.Context, eventID, userID string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if event.StartTime.Before(time.Now()) {
		return nil, domain.ErrEventPassed
	}

	// Fast-path duplicate check. The unique constraint on (user_id, event_id)
	// remains the authoritative backstop when two requests race past here.
	exists, err := s.bookingRepo.ExistsByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check existing booking: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyBooked
	}

	for attempt := 0; attempt < maxAdmissionAttempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx); err != nil {
				return nil, err
			}
		}

		// Fresh read each attempt; a stale snapshot must never be reused.
		current, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get event: %w", err)
		}

		// A full event is a steady-state condition, not a transient
		// conflict: report it instead of burning the remaining attempts.
		if !current.HasCapacityLeft() {
			return nil, domain.ErrEventFull
		}

		err = s.eventRepo.UpdateReservedCount(ctx, eventID, current.ReservedCount+1, current.Version)
		if err != nil {
			if errors.Is(err, domain.ErrVersionMismatch) {
				continue
			}
			return nil, fmt.Errorf("increment reserved count: %w", err)
		}

		now := time.Now()
		booking := domain.NewBooking(userID, eventID, now, now, now)
		if err := s.bookingRepo.Create(ctx, booking); err != nil {
			// The counter was already incremented for this booking; the
			// increment must not outlive the failed insert.
			if relErr := s.releaseSeatPersistent(ctx, eventID); relErr != nil {
				log.Printf("[BOOKING] failed to release seat for event %s after insert failure: %v", eventID, relErr)
			}
			if errors.Is(err, domain.ErrAlreadyBooked) {
				return nil, domain.ErrAlreadyBooked
			}
			return nil, fmt.Errorf("create booking: %w", err)
		}

		s.sendConfirmation(ctx, booking, current)
		return booking, nil
	}

	return nil, domain.ErrContention
}

// CancelBooking frees the user's seat and deletes the booking. The counter
// decrement runs first so that retry exhaustion leaves no partial state.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, userID string, isAdmin bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get booking: %w", err)
	}
	if booking.UserID != userID && !isAdmin {
		return domain.ErrForbidden
	}

	if err := s.releaseSeat(ctx, booking.EventID); err != nil {
		return err
	}

	if err := s.bookingRepo.Delete(ctx, booking.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		// The booking row survived; take the freed slot back so the counter
		// keeps matching the rows.
		if reErr := s.reacquireSeat(ctx, booking.EventID); reErr != nil {
			log.Printf("[BOOKING] failed to reacquire seat for event %s after delete failure: %v", booking.EventID, reErr)
		}
		return fmt.Errorf("delete booking: %w", err)
	}

	s.sendCancellation(ctx, booking)
	return nil
}

// releaseSeat decrements the event's reserved count behind the same bounded
// CAS retry as admission. The counter floors at zero and is never written
// negative. A missing event means the catalog already cascaded the delete.
func (s *bookingService) releaseSeat(ctx context.Context, eventID string) error {
	for attempt := 0; attempt < maxAdmissionAttempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx); err != nil {
				return err
			}
		}

		current, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get event: %w", err)
		}
		if current.ReservedCount == 0 {
			return nil
		}

		err = s.eventRepo.UpdateReservedCount(ctx, eventID, current.ReservedCount-1, current.Version)
		if err != nil {
			if errors.Is(err, domain.ErrVersionMismatch) {
				continue
			}
			return fmt.Errorf("decrement reserved count: %w", err)
		}
		return nil
	}
	return domain.ErrContention
}

// releaseSeatPersistent retries releaseSeat past the bounded attempt budget
// until the context expires. Compensation paths use it: giving up there would
// leak a reserved seat.
func (s *bookingService) releaseSeatPersistent(ctx context.Context, eventID string) error {
	for {
		err := s.releaseSeat(ctx, eventID)
		if !errors.Is(err, domain.ErrContention) {
			return err
		}
		if err := s.sleep(ctx); err != nil {
			return err
		}
	}
}

// reacquireSeat restores a counter slot that was freed moments ago. The
// increment skips the capacity check since it undoes this call's own
// decrement, and it retries until the context expires. A missing event means
// the catalog deleted it in the meantime.
func (s *bookingService) reacquireSeat(ctx context.Context, eventID string) error {
	for {
		current, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get event: %w", err)
		}

		err = s.eventRepo.UpdateReservedCount(ctx, eventID, current.ReservedCount+1, current.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrVersionMismatch) {
			return fmt.Errorf("increment reserved count: %w", err)
		}
		if err := s.sleep(ctx); err != nil {
			return err
		}
	}
}

func (s *bookingService) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.retryDelay):
		return nil
	}
}

// sendConfirmation emails the user about the new booking. Best effort: a
// failure is logged and never fails the admission.
func (s *bookingService) sendConfirmation(ctx context.Context, booking *domain.Booking, event *domain.Event) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		log.Printf("[BOOKING] get user for confirmation email: %v", err)
		return
	}
	data := &domain.BookingConfirmationEmailData{
		Email:     user.Email,
		UserName:  user.Name,
		EventName: event.Name,
		Venue:     event.Venue,
		StartTime: event.StartTime.Format(time.RFC1123),
		BookingID: booking.ID,
	}
	if err := s.emailService.SendBookingConfirmation(ctx, data); err != nil {
		log.Printf("[BOOKING] send confirmation email to %s: %v", user.Email, err)
	}
}

// sendCancellation emails the booking's owner that the seat was freed.
// Best effort, same as sendConfirmation.
func (s *bookingService) sendCancellation(ctx context.Context, booking *domain.Booking) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		log.Printf("[BOOKING] get user for cancellation email: %v", err)
		return
	}
	eventName := booking.EventID
	if event, err := s.eventRepo.GetByID(ctx, booking.EventID); err == nil {
		eventName = event.Name
	}
	data := &domain.BookingCancelledEmailData{
		Email:     user.Email,
		UserName:  user.Name,
		EventName: eventName,
	}
	if err := s.emailService.SendBookingCancelled(ctx, data); err != nil {
		log.Printf("[BOOKING] send cancellation email to %s: %v", user.Email, err)
	}
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	bookings, err := s.bookingRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.BookingWithEvent, 0, len(bookings))
	for _, b := range bookings {
		ev, ok := eventsByID[b.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, b.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Event deleted but the booking row remains; skip it.
					continue
				}
				return nil, fmt.Errorf("get event for booking: %w", err)
			}
			eventsByID[b.EventID] = ev
		}
		result = append(result, &domain.BookingWithEvent{
			Booking: b,
			Event:   ev,
		})
	}
	return result, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID, userID string, isAdmin bool) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking.UserID != userID && !isAdmin {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}
