package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"memberhub/pkg/middleware"
	"memberhub/pkg/query"
)

// listCollection serves GET /v1/{collection} with declarative filter, sort
// and paging compiled by pkg/query. Results are always tenant-scoped: the
// tenant guard takes $1, so compiled placeholders start at $2.
func (a *App) listCollection(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	table, ok := collections[collection]
	if !ok {
		http.Error(w, "unknown collection", http.StatusNotFound)
		return
	}
	q, err := query.FromValues(r.URL.Query(), 1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tenant := middleware.TenantFrom(r.Context())
	sql := `SELECT * FROM ` + table + ` WHERE tenant_id=$1`
	if q.Where != "" {
		sql += ` AND ` + q.Where
		q.Where = ""
	}
	sql += q.Clause()
	args := append([]any{tenant.ID}, q.Args...)

	rows, err := a.db.Query(r.Context(), sql, args...)
	if err != nil {
		a.log.Errorw("list query failed", "collection", collection, "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	items := []map[string]any{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		item := make(map[string]any, len(fields))
		for i, f := range fields {
			item[string(f.Name)] = vals[i]
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"items": items}, http.StatusOK)
}
