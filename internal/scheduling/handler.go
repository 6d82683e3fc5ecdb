package scheduling

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"memberhub/pkg/middleware"
)

type conflictRequest struct {
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	HostID          string    `json:"host_id"`
	ExcludeID       string    `json:"exclude_id"`
}

// ConflictHandler serves POST /v1/sessions/conflicts.
func ConflictHandler(store SessionStore, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body conflictRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if body.StartTime.IsZero() || body.DurationMinutes <= 0 {
			http.Error(w, "start_time and duration_minutes are required", http.StatusBadRequest)
			return
		}
		tenant := middleware.TenantFrom(r.Context())
		existing, err := store.ListActive(r.Context(), tenant.ID, body.HostID)
		if err != nil {
			log.Errorw("session list failed", "tenant", tenant.ID, "err", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		res := FindConflicts(Candidate{
			Start:           body.StartTime,
			DurationMinutes: body.DurationMinutes,
			HostID:          body.HostID,
			ExcludeID:       body.ExcludeID,
		}, existing)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}
