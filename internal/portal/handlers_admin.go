package portal

import (
	"encoding/json"
	"net/http"

	"memberhub/pkg/middleware"
)

// adminScopes gates the /admin surface.
var adminScopes = []string{"portal:admin"}

// clearTenantCache serves POST /admin/tenant-cache/clear. An empty or absent
// host clears every entry. The clear is broadcast to peer instances.
func (a *App) clearTenantCache(w http.ResponseWriter, r *http.Request) {
	if !middleware.HasAnyScope(r.Context(), adminScopes) {
		http.Error(w, "insufficient_scope", http.StatusForbidden)
		return
	}
	var body struct {
		Host string `json:"host"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	a.invalidator.Clear(r.Context(), body.Host)
	a.log.Infow("tenant cache cleared", "host", body.Host)
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
