package session_test

import (
	"testing"
	"time"

	"flipfit/internal/domain/session"
)

// TestParseRole tests role parsing from backend values.
func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    session.Role
		wantErr bool
	}{
		{"ADMIN", session.RoleAdmin, false},
		{"CUSTOMER", session.RoleCustomer, false},
		{"OWNER", session.RoleOwner, false},
		{" owner ", session.RoleOwner, false},
		{"GYM_OWNER", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := session.ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestSession_Validate tests validation of Session.
func TestSession_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sess    session.Session
		wantErr bool
	}{
		{"valid customer", session.Session{UserID: 3, Role: session.RoleCustomer}, false},
		{"zero user id", session.Session{Role: session.RoleAdmin}, true},
		{"unknown role", session.Session{UserID: 1, Role: "GUEST"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sess.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestDashboardPath verifies each role lands on its own dashboard.
func TestDashboardPath(t *testing.T) {
	cases := map[session.Role]string{
		session.RoleAdmin:    "/dashboard/admin",
		session.RoleCustomer: "/dashboard/customer",
		session.RoleOwner:    "/dashboard/owner",
		"OTHER":              "/login",
	}
	for role, want := range cases {
		if got := (session.Session{Role: role}).DashboardPath(); got != want {
			t.Errorf("DashboardPath(%s) = %q, want %q", role, got, want)
		}
	}
}

// TestRoleSlugRoundTrip verifies Slug and RoleFromSlug agree.
func TestRoleSlugRoundTrip(t *testing.T) {
	for _, r := range session.ValidRoles {
		got, ok := session.RoleFromSlug(r.Slug())
		if !ok || got != r {
			t.Errorf("RoleFromSlug(%q) = %q, %v", r.Slug(), got, ok)
		}
	}
	if _, ok := session.RoleFromSlug("guest"); ok {
		t.Error("RoleFromSlug(guest) should fail")
	}
}

// TestSession_IsExpired tests TTL handling.
func TestSession_IsExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s := session.Session{UserID: 1, Role: session.RoleAdmin, CreatedAt: now.Add(-25 * time.Hour)}
	if !s.IsExpired(now, 24*time.Hour) {
		t.Error("25h old session should be expired with 24h TTL")
	}
	if s.IsExpired(now, 0) {
		t.Error("zero TTL means no expiry")
	}
	fresh := session.Session{UserID: 1, Role: session.RoleAdmin, CreatedAt: now.Add(-time.Hour)}
	if fresh.IsExpired(now, 24*time.Hour) {
		t.Error("1h old session should not be expired")
	}
}
