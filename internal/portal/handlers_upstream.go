package portal

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"memberhub/pkg/credentials"
	"memberhub/pkg/integrations"
)

// listUpstreamEvents serves GET /v1/integrations/{kind}/events by obtaining
// a valid bearer for the provider and proxying its events listing.
func (a *App) listUpstreamEvents(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	integ, ok := a.integs[kind]
	if !ok {
		http.Error(w, "unknown integration", http.StatusNotFound)
		return
	}
	src, ok := a.sources[kind]
	if !ok {
		http.Error(w, "integration not configured", http.StatusNotFound)
		return
	}
	tok, err := src.Token(r.Context())
	if err != nil {
		if errors.Is(err, credentials.ErrUpstreamAuth) {
			a.log.Errorw("upstream auth unavailable", "integration", kind, "err", err)
			http.Error(w, "upstream authentication unavailable", http.StatusBadGateway)
			return
		}
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}
	resp, err := integrations.Get(r.Context(), nil, integ.BaseURL, "/events", tok.Value)
	if err != nil {
		a.log.Errorw("upstream call failed", "integration", kind, "err", err)
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
