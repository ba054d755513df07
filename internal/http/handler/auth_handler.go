package handler

import (
	"net/http"

	"github.com/atifjaved999/mini-coaching/internal/http/response"
	"github.com/atifjaved999/mini-coaching/internal/observability"
	"github.com/atifjaved999/mini-coaching/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
}

func NewAuthHandler(authSvc service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input service.SignupInput
	if !decodeBody(w, r, &input) {
		return
	}
	result, err := h.authSvc.Signup(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.signup",
		ActorUserID: observability.ActorUserID(result.User.ID),
		TargetType:  "user",
		TargetID:    observability.ActorUserID(result.User.ID),
		Action:      "signup",
		Outcome:     "success",
		Reason:      "account_created",
	})
	response.JSON(w, r, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	result, err := h.authSvc.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.authSvc.Logout(r.Context(), user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if err := h.authSvc.ForgotPassword(r.Context(), input.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "reset link sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), input.Token, input.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "password updated"})
}
