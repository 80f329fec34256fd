package projections

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	auditStore "flipfit/internal/adapters/storage/audit"
	"flipfit/internal/application/listutil"
	"flipfit/internal/application/render"
	"flipfit/internal/domain/action"
	domainAudit "flipfit/internal/domain/audit"
	"flipfit/internal/domain/backend"
)

// GetActivityQuery carries input for the activity projection.
type GetActivityQuery struct {
	Filter auditStore.Filter
	Page   listutil.Page

	// Query holds the raw filter parameters, echoed into page links.
	Query url.Values
}

// GetActivityDeps holds dependencies for the activity projection.
type GetActivityDeps struct {
	AuditStore AuditStore
}

// ActivityResult carries the output of the activity projection.
type ActivityResult struct {
	Events []domainAudit.Event
	Table  render.Table
	Page   listutil.PageInfo
}

// QueryGetActivity returns one page of audit events, newest first, and the same events as a table.
// PRE: none
// POST: Page is clamped to the pages that exist
func QueryGetActivity(ctx context.Context, query GetActivityQuery, deps GetActivityDeps) (ActivityResult, error) {
	total, err := deps.AuditStore.Count(ctx, query.Filter)
	if err != nil {
		return ActivityResult{}, err
	}
	info := query.Page.Info(total, query.Query)

	events, err := deps.AuditStore.List(ctx, query.Filter, info.PerPage, info.Offset())
	if err != nil {
		return ActivityResult{}, err
	}
	return ActivityResult{Events: events, Table: ActivityTable(events), Page: info}, nil
}

// ActivityTable lays audit events out through the shared table renderer.
func ActivityTable(events []domainAudit.Event) render.Table {
	rows := make([]any, 0, len(events))
	for _, e := range events {
		o := backend.NewObject()
		o.Set("timestamp", e.Timestamp.Format(time.DateTime))
		o.Set("kind", string(e.Kind))
		o.Set("actorId", json.Number(strconv.Itoa(e.ActorID)))
		o.Set("actorName", e.ActorName)
		o.Set("actorRole", string(e.ActorRole))
		o.Set("action", e.Action)
		o.Set("request", e.Method+" "+e.Path)
		o.Set("status", json.Number(strconv.Itoa(e.Status)))
		o.Set("outcome", string(e.Outcome))
		o.Set("durationMs", json.Number(strconv.FormatInt(e.DurationMs(), 10)))
		o.Set("message", e.Message)
		rows = append(rows, o)
	}
	return render.BuildTable(rows, action.CategoryNone)
}
