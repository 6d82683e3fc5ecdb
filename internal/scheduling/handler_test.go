package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberhub/pkg/logger"
	"memberhub/pkg/middleware"
	"memberhub/pkg/tenants"
)

type stubStore struct {
	gotTenant string
	gotHost   string
	sessions  []Session
	err       error
}

func (s *stubStore) ListActive(ctx context.Context, tenantID, hostID string) ([]Session, error) {
	s.gotTenant = tenantID
	s.gotHost = hostID
	return s.sessions, s.err
}

func postConflicts(t *testing.T, store SessionStore, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/conflicts", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithTenant(req.Context(), tenants.Tenant{ID: "t-1"}))
	rr := httptest.NewRecorder()
	ConflictHandler(store, logger.Nop())(rr, req)
	return rr
}

func TestConflictHandler_ReportsOverlap(t *testing.T) {
	start := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	store := &stubStore{sessions: []Session{
		{ID: "s1", Label: "Yoga", HostID: "coach-a", StartTime: start, DurationMinutes: 60},
	}}

	rr := postConflicts(t, store, `{"start_time":"2026-03-09T10:30:00Z","duration_minutes":60,"host_id":"coach-a"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.HasConflicts)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "s1", res.Conflicts[0].ID)
	assert.Equal(t, "t-1", store.gotTenant)
	assert.Equal(t, "coach-a", store.gotHost)
}

func TestConflictHandler_NoConflictOnTouchingBoundary(t *testing.T) {
	start := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	store := &stubStore{sessions: []Session{
		{ID: "s1", StartTime: start, DurationMinutes: 60},
	}}

	rr := postConflicts(t, store, `{"start_time":"2026-03-09T11:00:00Z","duration_minutes":60}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.False(t, res.HasConflicts)
}

func TestConflictHandler_ValidatesInput(t *testing.T) {
	rr := postConflicts(t, &stubStore{}, `{"duration_minutes":0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = postConflicts(t, &stubStore{}, `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestConflictHandler_StoreErrorIs500(t *testing.T) {
	rr := postConflicts(t, &stubStore{err: assert.AnError}, `{"start_time":"2026-03-09T10:00:00Z","duration_minutes":60}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
