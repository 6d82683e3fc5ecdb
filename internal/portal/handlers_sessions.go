package portal

import (
	"net/http"

	"memberhub/internal/scheduling"
)

// checkSessionConflicts serves POST /v1/sessions/conflicts.
func (a *App) checkSessionConflicts(w http.ResponseWriter, r *http.Request) {
	scheduling.ConflictHandler(a.sessions, a.log)(w, r)
}
