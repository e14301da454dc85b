package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

type VerifyEmailHandler struct {
	AuthService *service.AuthService
}

func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "Token-ul de verificare lipsește")
		return
	}

	if _, err := h.AuthService.VerifyEmail(ctx, req.Token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeError(w, http.StatusBadRequest, "Token invalid sau deja folosit")
			return
		}
		log.Error("email verification failed", "error", err)
		writeServerError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, response{Message: "Email verificat cu succes"})
}

type VerifySMSHandler struct {
	AuthService *service.AuthService
}

func (h *VerifySMSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Numărul de telefon și codul sunt obligatorii")
		return
	}

	if _, err := h.AuthService.VerifySMS(ctx, req.Phone, req.Code); err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			writeError(w, http.StatusBadRequest, "Cod invalid sau deja folosit")
			return
		}
		log.Error("sms verification failed", "error", err)
		writeServerError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, response{Message: "Număr de telefon verificat cu succes"})
}
