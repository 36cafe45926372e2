package user

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/staff-portal/internal"
	"github.com/frahmantamala/staff-portal/internal/transport"
	"github.com/frahmantamala/staff-portal/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Images  ImageSaver
}

func NewHandler(svc ServiceAPI, images ImageSaver) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Images:      images,
	}
}

// AdminRegister handles POST /admin/register: creates a user directly with
// no verification token, usable only by an Admin session.
func (h *Handler) AdminRegister(w http.ResponseWriter, r *http.Request) {
	dto, err := DecodeRegisterForm(r, h.Images)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	u, err := h.Service.Register(dto)
	if err != nil {
		h.Logger.Error("admin registration failed", "email", dto.Email, "error", err)
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("%s registered successfully", u.Role),
		"user":    u,
	})
}

// Dashboard handles GET /dashboard for the authenticated user.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.Service.GetProfile(session.UserID)
	if err != nil {
		h.Logger.Error("dashboard lookup failed", "user_id", session.UserID, "error", err)
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Welcome %s, we are glad to have you as a %s", profile.Name, profile.Role),
		"user":    profile,
	})
}

// UpdatePassword handles PUT /password for the authenticated user.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.ChangePassword(session.UserID, dto.NewPassword)
	if err != nil {
		h.Logger.Error("password update failed", "user_id", session.UserID, "error", err)
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "password updated successfully",
		"user":    u,
	})
}

// DecodeRegisterForm reads the multipart registration form shared by the
// admin and self-registration paths, storing the optional profile image.
func DecodeRegisterForm(r *http.Request, images ImageSaver) (RegisterDTO, error) {
	dto := RegisterDTO{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     r.FormValue("role"),
	}

	if err := dto.Validate(); err != nil {
		return dto, err
	}

	image, err := images.Save(r, "image")
	if err != nil {
		return dto, err
	}
	dto.Image = image

	return dto, nil
}
