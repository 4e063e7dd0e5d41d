// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/policy/adminpolicy"
	"github.com/dalemusser/taskhub/internal/app/store/audit"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateLayout = "2006-01-02"

// ServeList handles GET /audit. Filters: category, event_type, user_id,
// project_id, start_date and end_date (YYYY-MM-DD, end inclusive).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := adminpolicy.CanViewAudit(actor).Err(); err != nil {
		h.ErrLog.Render(w, r, "audit log", err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Render(w, r, "audit log: filter", err)
		return
	}
	p := paging.Parse(r, h.DefaultPerPage)
	filter.Skip = p.Skip()
	filter.Limit = p.Limit()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		h.ErrLog.Render(w, r, "audit log: count", err)
		return
	}
	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Render(w, r, "audit log: query", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, paging.NewPage(events, p, total))
}

func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	f := audit.QueryFilter{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
	}
	for param, dst := range map[string]**primitive.ObjectID{"user_id": &f.UserID, "project_id": &f.ProjectID} {
		raw := strings.TrimSpace(query.Get(r, param))
		if raw == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return f, apperr.Invalid("Invalid " + param)
		}
		*dst = &id
	}
	if raw := strings.TrimSpace(query.Get(r, "start_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, apperr.Invalid("Invalid start_date")
		}
		f.Since = &t
	}
	if raw := strings.TrimSpace(query.Get(r, "end_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, apperr.Invalid("Invalid end_date")
		}
		next := t.AddDate(0, 0, 1)
		f.Until = &next
	}
	return f, nil
}
