package observability

import (
	"log/slog"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type AuditInput struct {
	EventName   string
	ActorUserID string
	TargetType  string
	TargetID    string
	Action      string
	Outcome     string
	Reason      string
}

func ActorUserID(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// EmitAudit writes one structured audit record for a request-scoped action.
// Audit records are observability output, never part of the response.
func EmitAudit(r *http.Request, in AuditInput, extra ...any) {
	args := []any{
		"event", in.EventName,
		"actor_user_id", in.ActorUserID,
		"target_type", in.TargetType,
		"target_id", in.TargetID,
		"action", in.Action,
		"outcome", in.Outcome,
		"reason", in.Reason,
		"request_id", chimiddleware.GetReqID(r.Context()),
	}
	args = append(args, extra...)
	slog.Default().InfoContext(r.Context(), "audit", args...)
}
