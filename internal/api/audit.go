package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/teamtrack/teamtrack/internal/audit"
	"github.com/teamtrack/teamtrack/internal/auth"
	"github.com/teamtrack/teamtrack/internal/logger"
	"github.com/teamtrack/teamtrack/internal/ratelimit"
)

// AuditRecorder is implemented by *audit.Collector.
type AuditRecorder interface {
	Record(e audit.Event)
}

// AuditReader is implemented by *audit.Store.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

type nopRecorder struct{}

func (nopRecorder) Record(audit.Event) {}

// auditor turns a request plus an action into an audit event.
type auditor struct {
	rec AuditRecorder
}

func (a auditor) log(r *http.Request, action, resourceType string, resourceID int64) {
	e := audit.Event{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   strconv.FormatInt(resourceID, 10),
		RequestID:    RequestIDFromContext(r.Context()),
		ClientIP:     ratelimit.ClientIP(r),
	}
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		e.ActorID = p.UserID
		e.ActorEmail = p.Email
	}

	logger.FromRequest(r).Info().
		Str("action", e.Action).
		Str("resource_type", e.ResourceType).
		Str("resource_id", e.ResourceID).
		Int64("actor_id", e.ActorID).
		Str("ip", e.ClientIP).
		Msg("audit")

	a.rec.Record(e)
}
