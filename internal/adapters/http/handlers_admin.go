package web

import (
	"net/http"
	"strconv"
	"time"

	auditStore "flipfit/internal/adapters/storage/audit"
	"flipfit/internal/application/listutil"
	"flipfit/internal/application/projections"
	auditDomain "flipfit/internal/domain/audit"
	"flipfit/internal/domain/session"
)

// handleActivity renders the audit trail (GET /dashboard/admin/activity)
// PRE: User must be authenticated as admin
// POST: Renders one page of events with optional kind, outcome, role and actor filters
func (a *app) handleActivity(w http.ResponseWriter, r *http.Request) {
	if a.Audit == nil {
		http.Error(w, "audit trail is disabled", http.StatusNotFound)
		return
	}
	q := r.URL.Query()

	filter := auditStore.Filter{
		Kind:    auditDomain.Kind(q.Get("kind")),
		Outcome: auditDomain.Outcome(q.Get("outcome")),
	}
	if role, ok := session.RoleFromSlug(q.Get("role")); ok {
		filter.Role = role
	} else if role, err := session.ParseRole(q.Get("role")); err == nil {
		filter.Role = role
	}
	if id, err := strconv.Atoi(q.Get("actor_id")); err == nil && id > 0 {
		filter.ActorID = id
	}

	res, err := projections.QueryGetActivity(r.Context(), projections.GetActivityQuery{
		Filter: filter,
		Page:   listutil.ParsePage(q),
		Query:  listutil.Filters(q, "kind", "outcome", "role", "actor_id"),
	}, projections.GetActivityDeps{AuditStore: a.Audit})
	if err != nil {
		internalError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, res.Events)
		return
	}
	renderTemplate(w, r, http.StatusOK, "activity.html", map[string]any{
		"Table":   res.Table,
		"Filter":  filter,
		"Page":    res.Page,
		"PerPage": listutil.PerPageOptions,
	})
}

// handlePerf renders request, query and backend timings (GET /dashboard/admin/perf)
// PRE: User must be authenticated as admin
func (a *app) handlePerf(w http.ResponseWriter, r *http.Request) {
	if a.Collector == nil {
		http.Error(w, "performance data is disabled", http.StatusNotFound)
		return
	}
	window := time.Hour
	if mins, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && mins > 0 {
		window = time.Duration(mins) * time.Minute
	}
	snap := a.Collector.Snapshot(a.now().Add(-window), 10)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	renderTemplate(w, r, http.StatusOK, "perf.html", map[string]any{
		"Snapshot": snap,
		"Window":   window.String(),
	})
}
