package web

import (
	"errors"
	"net/http"

	"flipfit/internal/adapters/http/middleware"
	"flipfit/internal/application/orchestrators"
	"flipfit/internal/application/projections"
	"flipfit/internal/application/render"
	"flipfit/internal/domain/action"
	"flipfit/internal/domain/session"
)

// actionResponse is the JSON form of an action result.
type actionResponse struct {
	Action  action.ID      `json:"action"`
	Outcome render.Outcome `json:"outcome"`
}

// handleDashboard renders the role dashboard (GET /dashboard/{role})
// PRE: RequireRole admitted the session
func (a *app) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	dash := projections.QueryGetDashboard(projections.GetDashboardQuery{Session: sess})

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, dash)
		return
	}
	renderTemplate(w, r, http.StatusOK, "dashboard.html", map[string]any{
		"Dashboard": dash,
		"Flash":     a.takeFlash(w, r),
	})
}

// handleActionPage handles GET /dashboard/{role}/action/{id}.
// Read-only actions run immediately; the rest show their input form.
func (a *app) handleActionPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	spec, err := action.Lookup(sess.Role, action.ID(r.PathValue("id")))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if spec.IsReadOnly() {
		a.dispatch(w, r, sess, spec.ID, nil, false)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, projections.NewActionView(spec, nil))
		return
	}
	view := projections.NewActionView(spec, nil)
	renderTemplate(w, r, http.StatusOK, "dashboard.html", map[string]any{
		"Dashboard": projections.QueryGetDashboard(projections.GetDashboardQuery{Session: sess}),
		"Active":    &view,
	})
}

// handleAction handles POST /dashboard/{role}/action/{id} with the action's inputs as form values.
// A "cancel" field abandons the action without calling the backend.
func (a *app) handleAction(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	spec, err := action.Lookup(sess.Role, action.ID(r.PathValue("id")))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	cancelled := r.PostForm.Get("cancel") != ""
	values := action.Values{}
	if !cancelled {
		for _, p := range spec.Params {
			values[p.Name] = r.PostForm.Get(p.Name)
		}
	}
	a.dispatch(w, r, sess, spec.ID, values, cancelled)
}

func (a *app) dispatch(w http.ResponseWriter, r *http.Request, sess session.Session, id action.ID, values action.Values, cancelled bool) {
	ctx := r.Context()
	res, err := orchestrators.ExecuteDispatchAction(ctx, orchestrators.DispatchActionInput{
		Session:   sess,
		ActionID:  id,
		Values:    values,
		RequestID: middleware.RequestIDFrom(ctx),
		Cancelled: cancelled,
	}, orchestrators.DispatchActionDeps{
		Backend: a.Backend,
		Audit:   a.Audit,
		Mailer:  a.Mailer,
		Now:     a.Now,
	})
	if errors.Is(err, action.ErrUnknownAction) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, actionResponse{Action: res.Spec.ID, Outcome: res.Outcome})
		return
	}
	renderTemplate(w, r, http.StatusOK, "dashboard.html", map[string]any{
		"Dashboard": projections.QueryGetDashboard(projections.GetDashboardQuery{Session: sess}),
		"ActionID":  res.Spec.ID,
		"Outcome":   &res.Outcome,
	})
}
