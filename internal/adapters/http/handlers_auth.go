package web

import (
	"errors"
	"net/http"

	"flipfit/internal/adapters/http/middleware"
	"flipfit/internal/application/orchestrators"
	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// invalidRoleMessage is shown when the backend returns a role the frontend has no dashboard for.
const invalidRoleMessage = "Invalid user role."

// handleRoot sends signed-in users to their dashboard and everyone else to the login page.
func (a *app) handleRoot(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFrom(r.Context()); ok {
		http.Redirect(w, r, sess.DashboardPath(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *app) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "login.html", map[string]any{
		"Message": "",
		"Error":   "",
		"Email":   "",
	})
}

// handleLogin handles POST /login
// PRE: form carries email and password
// POST: On success a session cookie is set and the user is redirected to their dashboard
func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := r.FormValue("email")

	res, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{
		Email:     email,
		Password:  r.FormValue("password"),
		RequestID: middleware.RequestIDFrom(ctx),
	}, orchestrators.LoginDeps{
		Backend:  a.Backend,
		Sessions: a.Sessions,
		Audit:    a.Audit,
		Now:      a.Now,
	})
	if err != nil {
		msg, status, ok := loginFailure(err)
		if !ok {
			internalError(w, r, err)
			return
		}
		renderTemplate(w, r, status, "login.html", map[string]any{
			"Message": "",
			"Error":   msg,
			"Email":   email,
		})
		return
	}

	middleware.SetSessionCookie(w, res.Token, a.cookies)
	a.setFlash(w, res.Welcome)
	http.Redirect(w, r, res.Session.DashboardPath(), http.StatusSeeOther)
}

// loginFailure maps a login error to the message shown on the form.
// ok is false for faults of the frontend itself.
func loginFailure(err error) (msg string, status int, ok bool) {
	switch {
	case errors.Is(err, session.ErrInvalidRole):
		return invalidRoleMessage, http.StatusUnauthorized, true
	case errors.Is(err, orchestrators.ErrInvalidCredentials), errors.Is(err, orchestrators.ErrMalformedLogin):
		return "Login failed: " + err.Error(), http.StatusUnauthorized, true
	}
	if re, isReq := backend.AsRequestError(err); isReq {
		return "Login failed: " + re.Error(), http.StatusUnauthorized, true
	}
	return "", 0, false
}

func (a *app) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	kind, ok := orchestrators.ParseRegisterKind(r.URL.Query().Get("type"))
	if !ok {
		kind = orchestrators.RegisterCustomer
	}
	renderTemplate(w, r, http.StatusOK, "register.html", registerPageData(kind, nil, ""))
}

// handleRegister handles POST /register
// PRE: form carries type (customer|owner) and that type's fields
// POST: On success the login page shows the backend's confirmation
func (a *app) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := orchestrators.ParseRegisterKind(r.FormValue("type"))
	if !ok {
		http.Error(w, "unknown registration type", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	for _, f := range orchestrators.RegistrationFields(kind) {
		fields[f.Name] = r.FormValue(f.Name)
	}

	res, err := orchestrators.ExecuteRegister(ctx, orchestrators.RegisterInput{
		Kind:      kind,
		Fields:    fields,
		RequestID: middleware.RequestIDFrom(ctx),
	}, orchestrators.RegisterDeps{
		Backend: a.Backend,
		Audit:   a.Audit,
		Mailer:  a.Mailer,
		Now:     a.Now,
	})
	if err != nil {
		_, isReq := backend.AsRequestError(err)
		if !isReq && !errors.Is(err, orchestrators.ErrIncompleteRegistration) {
			internalError(w, r, err)
			return
		}
		delete(fields, "password")
		renderTemplate(w, r, http.StatusBadRequest, "register.html", registerPageData(kind, fields, "Registration failed: "+err.Error()))
		return
	}

	renderTemplate(w, r, http.StatusOK, "login.html", map[string]any{
		"Message": res.Message,
		"Error":   "",
		"Email":   fields["email"],
	})
}

func registerPageData(kind orchestrators.RegisterKind, values map[string]string, errMsg string) map[string]any {
	return map[string]any{
		"Kind":   string(kind),
		"Fields": orchestrators.RegistrationFields(kind),
		"Values": values,
		"Error":  errMsg,
	}
}

// handleLogout handles POST /logout
// POST: The session is gone and the cookie cleared, whether or not the backend answered
func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := middleware.SessionFrom(ctx)
	token, _ := middleware.TokenFrom(ctx)

	if token != "" {
		err := orchestrators.ExecuteLogout(ctx, orchestrators.LogoutInput{
			Token:     token,
			Session:   sess,
			RequestID: middleware.RequestIDFrom(ctx),
		}, orchestrators.LogoutDeps{
			Backend:  a.Backend,
			Sessions: a.Sessions,
			Audit:    a.Audit,
			Now:      a.Now,
		})
		if err != nil {
			internalError(w, r, err)
			return
		}
	}

	middleware.ClearSessionCookie(w, a.cookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
