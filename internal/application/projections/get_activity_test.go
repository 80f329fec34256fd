package projections

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	auditStore "flipfit/internal/adapters/storage/audit"
	"flipfit/internal/application/listutil"
	domainAudit "flipfit/internal/domain/audit"
	"flipfit/internal/domain/session"
)

type mockAuditStore struct {
	events    []domainAudit.Event
	total     int
	gotFilter auditStore.Filter
	gotLimit  int
	gotOffset int
	err       error
}

// List implements AuditStore for testing.
func (m *mockAuditStore) List(_ context.Context, filter auditStore.Filter, limit, offset int) ([]domainAudit.Event, error) {
	m.gotFilter = filter
	m.gotLimit = limit
	m.gotOffset = offset
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

// Count implements AuditStore for testing.
func (m *mockAuditStore) Count(_ context.Context, _ auditStore.Filter) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.total == 0 {
		return len(m.events), nil
	}
	return m.total, nil
}

// TestQueryGetActivity_Table verifies events are laid out as table rows.
func TestQueryGetActivity_Table(t *testing.T) {
	actor := session.Session{UserID: 1, Role: session.RoleAdmin, FullName: "Root"}
	e := domainAudit.NewEvent(domainAudit.KindAction, actor, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)).
		WithAction("approve-gym").
		WithCall("POST", "/admin/gyms/approve/4", 200, 120*time.Millisecond)
	store := &mockAuditStore{events: []domainAudit.Event{e}}

	query := GetActivityQuery{
		Filter: auditStore.Filter{Role: session.RoleAdmin},
		Page:   listutil.Page{Number: 1, PerPage: listutil.DefaultPerPage},
	}
	res, err := QueryGetActivity(context.Background(), query, GetActivityDeps{AuditStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.gotLimit != listutil.DefaultPerPage || store.gotFilter.Role != session.RoleAdmin {
		t.Errorf("limit=%d filter=%+v", store.gotLimit, store.gotFilter)
	}
	if len(res.Table.Rows) != 1 {
		t.Fatalf("rows = %d", len(res.Table.Rows))
	}
	want := []string{"2026-03-01 09:30:00", "action", "1", "Root", "ADMIN", "approve-gym", "POST /admin/gyms/approve/4", "200", "ok", "120", ""}
	for i, cell := range res.Table.Rows[0] {
		if cell != want[i] {
			t.Errorf("cell %d (%s) = %q, want %q", i, res.Table.Headers[i], cell, want[i])
		}
	}
	if res.Table.Headers[2] != "Actor Id" {
		t.Errorf("header = %q", res.Table.Headers[2])
	}
}

// TestQueryGetActivity_PageClamped verifies a page past the end is pulled back to the last page.
func TestQueryGetActivity_PageClamped(t *testing.T) {
	store := &mockAuditStore{total: 120}
	query := GetActivityQuery{
		Page:  listutil.Page{Number: 40, PerPage: 50},
		Query: url.Values{"kind": {"login"}},
	}
	res, err := QueryGetActivity(context.Background(), query, GetActivityDeps{AuditStore: store})
	if err != nil {
		t.Fatal(err)
	}
	if res.Page.Page != 3 || store.gotOffset != 100 || store.gotLimit != 50 {
		t.Errorf("page = %d offset = %d limit = %d", res.Page.Page, store.gotOffset, store.gotLimit)
	}
	if got := res.Page.Link(2); got != "?kind=login&page=2" {
		t.Errorf("Link = %q", got)
	}
	if !res.Table.IsEmpty() {
		t.Error("expected empty table")
	}
}

// TestQueryGetActivity_StoreError verifies store failures propagate.
func TestQueryGetActivity_StoreError(t *testing.T) {
	boom := errors.New("boom")
	_, err := QueryGetActivity(context.Background(), GetActivityQuery{}, GetActivityDeps{AuditStore: &mockAuditStore{err: boom}})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
