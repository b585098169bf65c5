package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventbookingsystem/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createErr    error
	getErr       error
	listErr      error
	updateErr    error
	deleteErr    error
	event        *domain.Event
	events       []*domain.Event
	total        int
	lastCreated  *domain.Event
	lastUpdate   domain.EventUpdate
	lastAdmin    bool
	lastDeleted  string
	lastCategory string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event, isAdmin bool) error {
	f.lastCreated = event
	f.lastAdmin = isAdmin
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = eventUUID
	return nil
}

func (f *fakeEventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.event, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams, category string) ([]*domain.Event, int, error) {
	f.lastCategory = category
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.events, f.total, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID string, update domain.EventUpdate, isAdmin bool) (*domain.Event, error) {
	f.lastUpdate = update
	f.lastAdmin = isAdmin
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.event, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID string, isAdmin bool) error {
	f.lastDeleted = eventID
	f.lastAdmin = isAdmin
	return f.deleteErr
}

func TestEventController_CreateEvent(t *testing.T) {
	validBody := `{
		"name": "Go Conf",
		"venue": "Main Hall",
		"price": 25,
		"start_time": "2026-10-01T19:00:00Z",
		"capacity": 100
	}`

	tests := []struct {
		name       string
		body       string
		authed     bool
		isAdmin    bool
		svc        *fakeEventService
		wantStatus int
	}{
		{name: "created", body: validBody, authed: true, isAdmin: true, svc: &fakeEventService{}, wantStatus: http.StatusCreated},
		{name: "malformed json", body: `{"name":`, authed: true, isAdmin: true, svc: &fakeEventService{}, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"name":"x","venue":"y","start_time":"2026-10-01T19:00:00Z","seats":5}`, authed: true, isAdmin: true, svc: &fakeEventService{}, wantStatus: http.StatusBadRequest},
		{name: "missing name", body: `{"venue":"Main Hall","start_time":"2026-10-01T19:00:00Z"}`, authed: true, isAdmin: true, svc: &fakeEventService{}, wantStatus: http.StatusBadRequest},
		{name: "bad start time", body: `{"name":"x","venue":"y","start_time":"tomorrow"}`, authed: true, isAdmin: true, svc: &fakeEventService{}, wantStatus: http.StatusBadRequest},
		{name: "unauthenticated", body: validBody, authed: false, svc: &fakeEventService{}, wantStatus: http.StatusUnauthorized},
		{name: "non-admin", body: validBody, authed: true, isAdmin: false, svc: &fakeEventService{createErr: domain.ErrForbidden}, wantStatus: http.StatusForbidden},
		{name: "service rejects input", body: validBody, authed: true, isAdmin: true, svc: &fakeEventService{createErr: domain.ErrInvalidInput}, wantStatus: http.StatusBadRequest},
		{name: "internal error", body: validBody, authed: true, isAdmin: true, svc: &fakeEventService{createErr: errors.New("boom")}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewEventController(testLogger, tt.svc)

			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.authed {
				req = authedRequest(req, "admin-1", tt.isAdmin)
			}
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusCreated {
				return
			}
			require.NotNil(t, tt.svc.lastCreated)
			assert.Equal(t, "Go Conf", tt.svc.lastCreated.Name)
			assert.Equal(t, "admin-1", tt.svc.lastCreated.OwnerID)
			require.NotNil(t, tt.svc.lastCreated.Capacity)
			assert.Equal(t, 100, *tt.svc.lastCreated.Capacity)
			assert.True(t, tt.svc.lastAdmin)
		})
	}
}

func TestEventController_ListEvents(t *testing.T) {
	svc := &fakeEventService{
		events: []*domain.Event{
			{ID: eventUUID, Name: "Go Conf"},
		},
		total: 41,
	}
	ctrl := NewEventController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "/events?page=2&page_size=20", nil)
	rr := httptest.NewRecorder()

	ctrl.ListEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr.Body)
	data, ok := env["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	meta, ok := env["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(41), meta["total"])
	assert.Equal(t, float64(2), meta["page"])
}

func TestEventController_ListEvents_CategoryFilter(t *testing.T) {
	svc := &fakeEventService{events: []*domain.Event{}}
	ctrl := NewEventController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "/events?category=music", nil)
	rr := httptest.NewRecorder()

	ctrl.ListEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "music", svc.lastCategory)
}

func TestEventController_GetEventByID(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		svc        *fakeEventService
		wantStatus int
	}{
		{name: "found", eventID: eventUUID, svc: &fakeEventService{event: &domain.Event{ID: eventUUID, Name: "Go Conf"}}, wantStatus: http.StatusOK},
		{name: "invalid id", eventID: "nope", svc: &fakeEventService{}, wantStatus: http.StatusBadRequest},
		{name: "not found", eventID: eventUUID, svc: &fakeEventService{getErr: domain.ErrNotFound}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewEventController(testLogger, tt.svc)

			req := httptest.NewRequest(http.MethodGet, "/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.GetEventByID(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestEventController_UpdateEvent(t *testing.T) {
	t.Run("updates fields", func(t *testing.T) {
		svc := &fakeEventService{event: &domain.Event{ID: eventUUID, Name: "Renamed"}}
		ctrl := NewEventController(testLogger, svc)

		req := httptest.NewRequest(http.MethodPut, "/events/"+eventUUID, bytes.NewBufferString(`{"name":"Renamed","capacity":50}`))
		req.SetPathValue("eventID", eventUUID)
		req = authedRequest(req, "admin-1", true)
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, svc.lastUpdate.Name)
		assert.Equal(t, "Renamed", *svc.lastUpdate.Name)
		require.NotNil(t, svc.lastUpdate.Capacity)
		assert.Equal(t, 50, *svc.lastUpdate.Capacity)
	})

	t.Run("blank name rejected before the service", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		req := httptest.NewRequest(http.MethodPut, "/events/"+eventUUID, bytes.NewBufferString(`{"name":"  "}`))
		req.SetPathValue("eventID", eventUUID)
		req = authedRequest(req, "admin-1", true)
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("capacity below reserved seats", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{updateErr: domain.ErrInvalidInput})

		req := httptest.NewRequest(http.MethodPut, "/events/"+eventUUID, bytes.NewBufferString(`{"capacity":1}`))
		req.SetPathValue("eventID", eventUUID)
		req = authedRequest(req, "admin-1", true)
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "bad_request", errorCode(t, rr.Body))
	})

	t.Run("non-admin", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{updateErr: domain.ErrForbidden})

		req := httptest.NewRequest(http.MethodPut, "/events/"+eventUUID, bytes.NewBufferString(`{"name":"x"}`))
		req.SetPathValue("eventID", eventUUID)
		req = authedRequest(req, "u-1", false)
		rr := httptest.NewRecorder()

		ctrl.UpdateEvent(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestEventController_DeleteEvent(t *testing.T) {
	tests := []struct {
		name       string
		svc        *fakeEventService
		isAdmin    bool
		wantStatus int
	}{
		{name: "deleted", svc: &fakeEventService{}, isAdmin: true, wantStatus: http.StatusNoContent},
		{name: "non-admin", svc: &fakeEventService{deleteErr: domain.ErrForbidden}, wantStatus: http.StatusForbidden},
		{name: "not found", svc: &fakeEventService{deleteErr: domain.ErrNotFound}, isAdmin: true, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewEventController(testLogger, tt.svc)

			req := httptest.NewRequest(http.MethodDelete, "/events/"+eventUUID, nil)
			req.SetPathValue("eventID", eventUUID)
			req = authedRequest(req, "u-1", tt.isAdmin)
			rr := httptest.NewRecorder()

			ctrl.DeleteEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, eventUUID, tt.svc.lastDeleted)
				assert.True(t, tt.svc.lastAdmin)
			}
		})
	}
}
