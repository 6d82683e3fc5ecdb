package portal

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"memberhub/internal/cascade"
)

// deleteEntity serves DELETE /v1/{kind}/{id}. Kinds with dependents cascade
// through the orchestrator; the rest are plain allowlisted deletes.
func (a *App) deleteEntity(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")
	err := a.deleter.Delete(r.Context(), kind, id)
	switch {
	case err == nil:
		writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
	case errors.Is(err, cascade.ErrUnknownKind):
		http.Error(w, "unknown entity kind", http.StatusNotFound)
	case errors.Is(err, cascade.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		a.log.Errorw("delete failed", "kind", kind, "id", id, "err", err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
	}
}
