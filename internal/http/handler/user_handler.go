package handler

import (
	"net/http"

	"github.com/atifjaved999/mini-coaching/internal/http/response"
	"github.com/atifjaved999/mini-coaching/internal/observability"
	"github.com/atifjaved999/mini-coaching/internal/service"
)

const maxAvatarFormMemory = 6 << 20

type UserHandler struct {
	users service.UserServiceInterface
}

func NewUserHandler(users service.UserServiceInterface) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) {
	views, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	view, err := h.users.GetByID(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxAvatarFormMemory); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed multipart form", nil)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing avatar file", nil)
		return
	}
	defer file.Close()

	url, err := h.users.UpdateAvatar(r.Context(), user, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "user.avatar_upload",
		ActorUserID: observability.ActorUserID(user.ID),
		TargetType:  "user",
		TargetID:    observability.ActorUserID(user.ID),
		Action:      "avatar_upload",
		Outcome:     "success",
		Reason:      "avatar_replaced",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"avatar_url": url})
}

func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	url, err := h.users.AvatarURL(r.Context(), user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"avatar_url": url})
}
