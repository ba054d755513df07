package handler

import (
	"net/http"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/http/response"
	"github.com/atifjaved999/mini-coaching/internal/observability"
	"github.com/atifjaved999/mini-coaching/internal/service"
)

type SessionHandler struct {
	sessionSvc service.SessionServiceInterface
	bookingSvc service.BookingServiceInterface
}

func NewSessionHandler(sessionSvc service.SessionServiceInterface, bookingSvc service.BookingServiceInterface) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, bookingSvc: bookingSvc}
}

type sessionRequest struct {
	service.SessionInput
	ParticipantIDs []uint `json:"participant_ids"`
}

func (h *SessionHandler) Index(w http.ResponseWriter, r *http.Request) {
	views, err := h.sessionSvc.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *SessionHandler) Show(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := uintURLParam(w, r, "session_id")
	if !ok {
		return
	}
	view, err := h.sessionSvc.Get(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := h.sessionSvc.Create(r.Context(), user, req.SessionInput, req.ParticipantIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "session.create",
		ActorUserID: observability.ActorUserID(user.ID),
		TargetType:  "session",
		TargetID:    observability.ActorUserID(view.ID),
		Action:      "create",
		Outcome:     "success",
		Reason:      "session_scheduled",
	}, "scheduled_on", view.ScheduledOn, "start_time", view.StartTime, "end_time", view.EndTime)
	response.JSON(w, r, http.StatusCreated, view)
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := uintURLParam(w, r, "session_id")
	if !ok {
		return
	}
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := h.sessionSvc.Update(r.Context(), user, sessionID, req.SessionInput)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// Patch merges the provided fields over the stored session before running
// the full update, so a title-only body does not have to repeat the
// interval.
func (h *SessionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := uintURLParam(w, r, "session_id")
	if !ok {
		return
	}
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		ScheduledOn *string `json:"scheduled_on"`
		StartTime   *string `json:"start_time"`
		EndTime     *string `json:"end_time"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	current, err := h.sessionSvc.Get(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	input := service.SessionInput{
		Title:       current.Title,
		Description: current.Description,
		ScheduledOn: current.ScheduledOn,
		StartTime:   current.StartTime,
		EndTime:     current.EndTime,
	}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.ScheduledOn != nil {
		input.ScheduledOn = *req.ScheduledOn
	}
	if req.StartTime != nil {
		input.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		input.EndTime = *req.EndTime
	}
	view, err := h.sessionSvc.Update(r.Context(), user, sessionID, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *SessionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := uintURLParam(w, r, "session_id")
	if !ok {
		return
	}
	if err := h.sessionSvc.Destroy(r.Context(), user, sessionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "session.destroy",
		ActorUserID: observability.ActorUserID(user.ID),
		TargetType:  "session",
		TargetID:    observability.ActorUserID(sessionID),
		Action:      "destroy",
		Outcome:     "success",
		Reason:      "session_cancelled",
	})
	response.NoContent(w)
}

func (h *SessionHandler) Book(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := uintURLParam(w, r, "session_id")
	if !ok {
		return
	}
	view, err := h.bookingSvc.Book(r.Context(), user, sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "session.book",
		ActorUserID: observability.ActorUserID(user.ID),
		TargetType:  "session",
		TargetID:    observability.ActorUserID(sessionID),
		Action:      "book",
		Outcome:     "success",
		Reason:      "roster_joined",
	})
	response.JSON(w, r, http.StatusOK, view)
}

func (h *SessionHandler) Available(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	views, err := h.sessionSvc.ListAvailable(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *SessionHandler) ClientSessions(w http.ResponseWriter, r *http.Request) {
	h.listForUser(w, r, domain.RoleClient)
}

func (h *SessionHandler) CoachSessions(w http.ResponseWriter, r *http.Request) {
	h.listForUser(w, r, domain.RoleCoach)
}

func (h *SessionHandler) listForUser(w http.ResponseWriter, r *http.Request, roleName string) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	views, err := h.sessionSvc.ListForUser(r.Context(), user.ID, roleName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *SessionHandler) RosterIndex(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := uintURLParam(w, r, "session_id")
	if !ok {
		return
	}
	roster, err := h.sessionSvc.Roster(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, roster)
}

func (h *SessionHandler) RosterCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := uintURLParam(w, r, "session_id")
	if !ok {
		return
	}
	var req struct {
		UserID uint `json:"user_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	view, err := h.sessionSvc.AddParticipant(r.Context(), user, sessionID, req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, view)
}

func (h *SessionHandler) RosterDestroy(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID, ok := uintURLParam(w, r, "session_id")
	if !ok {
		return
	}
	userID, ok := uintURLParam(w, r, "user_id")
	if !ok {
		return
	}
	if err := h.sessionSvc.RemoveParticipant(r.Context(), user, sessionID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}
