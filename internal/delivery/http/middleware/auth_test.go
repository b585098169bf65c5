package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventbookingsystem/internal/delivery/http/helpers"
	"eventbookingsystem/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	userID  string
	isAdmin bool
	err     error
}

func (f *fakeTokenVerifier) Verify(_ string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	return f.userID, f.isAdmin, nil
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		verifier      domain.TokenVerifier
		wantStatus    int
		nextCalled    bool
		wantContextID string
		wantIsAdmin   bool
	}{
		{
			name:          "valid token sets identity and calls next",
			authHeader:    "Bearer valid-token",
			verifier:      &fakeTokenVerifier{userID: "user-123"},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "user-123",
		},
		{
			name:          "admin token sets admin flag",
			authHeader:    "Bearer admin-token",
			verifier:      &fakeTokenVerifier{userID: "admin-1", isAdmin: true},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "admin-1",
			wantIsAdmin:   true,
		},
		{
			name:       "missing header",
			authHeader: "",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic abc",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty token",
			authHeader: "Bearer ",
			verifier:   &fakeTokenVerifier{userID: "user-123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verifier rejects token",
			authHeader: "Bearer bad-token",
			verifier:   &fakeTokenVerifier{err: errors.New("invalid")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var gotUserID string
			var gotIsAdmin bool
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotUserID, _ = UserIDFromContext(r.Context())
				gotIsAdmin = IsAdminFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}

			handler := RequireAuth(tt.verifier)(next)
			req := httptest.NewRequest(http.MethodGet, "/users/me/bookings", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.nextCalled, nextCalled)
			if tt.nextCalled {
				assert.Equal(t, tt.wantContextID, gotUserID)
				assert.Equal(t, tt.wantIsAdmin, gotIsAdmin)
			} else {
				var resp helpers.APIResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, helpers.ErrCodeUnauthorized, resp.Error.Code)
			}
		})
	}
}
