package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the portal endpoints. Middleware (tenant, auth, tracing) is
// applied by main around the whole router.
func (a *App) Routes(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	r.Route("/v1", func(vr chi.Router) {
		vr.Post("/sessions/conflicts", a.checkSessionConflicts)
		vr.Get("/integrations/{kind}/events", a.listUpstreamEvents)
		vr.Get("/{collection}", a.listCollection)
		vr.Delete("/{kind}/{id}", a.deleteEntity)
	})

	r.Route("/admin", func(ar chi.Router) {
		ar.Post("/tenant-cache/clear", a.clearTenantCache)
	})
}
