package verification

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/staff-portal/internal/transport"
	"github.com/frahmantamala/staff-portal/internal/user"
	"github.com/frahmantamala/staff-portal/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Images  user.ImageSaver
}

func NewHandler(svc ServiceAPI, images user.ImageSaver) *Handler {
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

// Register handles public self-registration. The account stays locked until
// the confirmation link from the verification email is followed.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	dto, err := user.DecodeRegisterForm(r, h.Images)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	u, err := h.Service.RegisterWithVerification(dto)
	if err != nil {
		h.Logger.Error("registration failed", "email", dto.Email, "error", err)
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful, verification email sent.",
		"user":    u,
	})
}

// Confirmation consumes the emailed verification link and redirects the
// browser to the role-specific login page.
func (h *Handler) Confirmation(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	tokenValue := chi.URLParam(r, "token")

	redirectURL, err := h.Service.Confirm(email, tokenValue)
	if err != nil {
		h.Logger.Warn("confirmation failed", "email", email, "error", err)
		h.HandleError(w, err)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleError(w, err)
		return
	}

	if err := h.Service.RequestReset(dto.Email); err != nil {
		h.Logger.Error("reset request failed", "email", dto.Email, "error", err)
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Password reset email sent.",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	tokenValue := chi.URLParam(r, "token")

	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleError(w, err)
		return
	}

	if err := h.Service.ConfirmReset(tokenValue, dto.NewPassword); err != nil {
		h.Logger.Warn("password reset failed", "error", err)
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Password has been reset successfully.",
	})
}
