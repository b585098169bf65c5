package services

import (
	"context"
	"testing"
	"time"

	"eventbookingsystem/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventService(eventRepo *fakeEventRepo, bookingRepo *fakeBookingRepo) domain.EventService {
	return NewEventService(eventRepo, bookingRepo, 5*time.Second)
}

func TestEventService_CreateEvent(t *testing.T) {
	valid := func() *domain.Event {
		return &domain.Event{
			Name:      "GopherCon",
			Venue:     "Convention Center",
			Price:     49.90,
			StartTime: time.Now().Add(30 * 24 * time.Hour),
			Capacity:  intPtr(300),
			OwnerID:   "admin-1",
		}
	}

	tests := []struct {
		name    string
		mutate  func(e *domain.Event)
		isAdmin bool
		wantErr error
	}{
		{name: "admin creates a valid event", mutate: func(e *domain.Event) {}, isAdmin: true},
		{name: "non-admin is rejected", mutate: func(e *domain.Event) {}, isAdmin: false, wantErr: domain.ErrForbidden},
		{name: "blank name", mutate: func(e *domain.Event) { e.Name = "   " }, isAdmin: true, wantErr: domain.ErrInvalidInput},
		{name: "blank venue", mutate: func(e *domain.Event) { e.Venue = "" }, isAdmin: true, wantErr: domain.ErrInvalidInput},
		{name: "start time in the past", mutate: func(e *domain.Event) { e.StartTime = time.Now().Add(-time.Hour) }, isAdmin: true, wantErr: domain.ErrInvalidInput},
		{name: "zero capacity", mutate: func(e *domain.Event) { e.Capacity = intPtr(0) }, isAdmin: true, wantErr: domain.ErrInvalidInput},
		{name: "negative price", mutate: func(e *domain.Event) { e.Price = -1 }, isAdmin: true, wantErr: domain.ErrInvalidInput},
		{name: "nil capacity is unlimited", mutate: func(e *domain.Event) { e.Capacity = nil }, isAdmin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := newFakeEventRepo()
			svc := newTestEventService(eventRepo, newFakeBookingRepo())
			event := valid()
			tt.mutate(event)
			event.ReservedCount = 7 // must be reset by the service

			err := svc.CreateEvent(context.Background(), event, tt.isAdmin)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, eventRepo.byID)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, event.ID)
			assert.Equal(t, 0, event.ReservedCount)
			assert.False(t, event.CreatedAt.IsZero())
			assert.False(t, event.UpdatedAt.IsZero())
		})
	}
}

func TestEventService_GetEventByID(t *testing.T) {
	eventRepo := newFakeEventRepo()
	event := eventRepo.add(futureEvent(intPtr(10)))
	svc := newTestEventService(eventRepo, newFakeBookingRepo())

	got, err := svc.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	_, err = svc.GetEventByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListEvents(t *testing.T) {
	eventRepo := newFakeEventRepo()
	eventRepo.add(futureEvent(intPtr(10)))
	eventRepo.add(futureEvent(nil))
	svc := newTestEventService(eventRepo, newFakeBookingRepo())

	events, total, err := svc.ListEvents(context.Background(), domain.PaginationParams{Page: 1, PageSize: 20}, "")

	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, 2, total)
}

func TestEventService_ListEvents_ByCategory(t *testing.T) {
	eventRepo := newFakeEventRepo()
	concert := futureEvent(intPtr(10))
	concert.Category = "music"
	eventRepo.add(concert)
	talk := futureEvent(nil)
	talk.Category = "conference"
	eventRepo.add(talk)
	svc := newTestEventService(eventRepo, newFakeBookingRepo())

	events, total, err := svc.ListEvents(context.Background(), domain.PaginationParams{Page: 1, PageSize: 20}, " music ")

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "music", events[0].Category)
}

func TestEventService_ListEvents_EmptyIsNotNil(t *testing.T) {
	svc := newTestEventService(newFakeEventRepo(), newFakeBookingRepo())

	events, total, err := svc.ListEvents(context.Background(), domain.PaginationParams{Page: 1, PageSize: 20}, "")

	require.NoError(t, err)
	require.NotNil(t, events)
	assert.Empty(t, events)
	assert.Zero(t, total)
}

func TestEventService_UpdateEvent(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	floatPtr := func(f float64) *float64 { return &f }

	setup := func() (*fakeEventRepo, domain.EventService, *domain.Event) {
		eventRepo := newFakeEventRepo()
		event := futureEvent(intPtr(10))
		event.ReservedCount = 4
		eventRepo.add(event)
		return eventRepo, newTestEventService(eventRepo, newFakeBookingRepo()), event
	}

	t.Run("updates catalog fields", func(t *testing.T) {
		_, svc, event := setup()

		updated, err := svc.UpdateEvent(context.Background(), event.ID, domain.EventUpdate{
			Name:  strPtr("Renamed"),
			Price: floatPtr(12.50),
		}, true)

		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, 12.50, updated.Price)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, svc, event := setup()

		_, err := svc.UpdateEvent(context.Background(), event.ID, domain.EventUpdate{Name: strPtr("x")}, false)

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, svc, _ := setup()

		_, err := svc.UpdateEvent(context.Background(), "missing", domain.EventUpdate{Name: strPtr("x")}, true)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("capacity cannot shrink below reserved seats", func(t *testing.T) {
		_, svc, event := setup()

		_, err := svc.UpdateEvent(context.Background(), event.ID, domain.EventUpdate{Capacity: intPtr(3)}, true)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("capacity may shrink down to reserved seats", func(t *testing.T) {
		_, svc, event := setup()

		updated, err := svc.UpdateEvent(context.Background(), event.ID, domain.EventUpdate{Capacity: intPtr(4)}, true)

		require.NoError(t, err)
		require.NotNil(t, updated.Capacity)
		assert.Equal(t, 4, *updated.Capacity)
	})

	t.Run("clearing capacity makes the event unlimited", func(t *testing.T) {
		_, svc, event := setup()

		updated, err := svc.UpdateEvent(context.Background(), event.ID, domain.EventUpdate{ClearCapacity: true}, true)

		require.NoError(t, err)
		assert.Nil(t, updated.Capacity)
	})

	t.Run("blank name", func(t *testing.T) {
		_, svc, event := setup()

		_, err := svc.UpdateEvent(context.Background(), event.ID, domain.EventUpdate{Name: strPtr("  ")}, true)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("negative price", func(t *testing.T) {
		_, svc, event := setup()

		_, err := svc.UpdateEvent(context.Background(), event.ID, domain.EventUpdate{Price: floatPtr(-5)}, true)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	t.Run("deletes the event and its bookings", func(t *testing.T) {
		eventRepo := newFakeEventRepo()
		event := eventRepo.add(futureEvent(intPtr(10)))
		bookingRepo := newFakeBookingRepo()
		bookingRepo.add(&domain.Booking{UserID: "u-1", EventID: event.ID})
		bookingRepo.add(&domain.Booking{UserID: "u-2", EventID: event.ID})
		bookingRepo.add(&domain.Booking{UserID: "u-1", EventID: "other"})
		svc := newTestEventService(eventRepo, bookingRepo)

		err := svc.DeleteEvent(context.Background(), event.ID, true)

		require.NoError(t, err)
		assert.Empty(t, eventRepo.byID)
		// Only bookings for the deleted event are removed.
		assert.Equal(t, 1, bookingRepo.count())
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		eventRepo := newFakeEventRepo()
		event := eventRepo.add(futureEvent(intPtr(10)))
		svc := newTestEventService(eventRepo, newFakeBookingRepo())

		err := svc.DeleteEvent(context.Background(), event.ID, false)

		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Len(t, eventRepo.byID, 1)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := newTestEventService(newFakeEventRepo(), newFakeBookingRepo())

		err := svc.DeleteEvent(context.Background(), "missing", true)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
