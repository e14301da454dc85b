package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/misedainspect/itpnotify/pkg/httpx"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	// Identity accepts either the account email or its phone number.
	Identity string `json:"login"`
	Password string `json:"parola"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpul cererii nu este un JSON valid")
		return
	}
	if req.Identity == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email/telefon și parola sunt obligatorii")
		return
	}

	account, token, err := h.AuthService.Login(ctx, req.Identity, req.Password)
	if err != nil {
		var notVerified *service.NotVerifiedError
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			// One message for unknown identity and wrong password, so
			// the endpoint does not confirm which accounts exist.
			writeError(w, http.StatusUnauthorized, "Email/telefon sau parolă incorectă")
		case errors.As(err, &notVerified):
			httpxUnverified(w, notVerified)
		default:
			log.Error("login failed", "error", err)
			writeServerError(w, err)
		}
		return
	}

	profile := account.Profile()
	writeSuccess(w, http.StatusOK, response{
		Message: "Autentificare reușită",
		Token:   token,
		User:    &profile,
	})
}

func httpxUnverified(w http.ResponseWriter, notVerified *service.NotVerifiedError) {
	httpx.WriteJSON(w, http.StatusUnauthorized, response{
		Success:               false,
		Message:               "Contul nu este verificat",
		NeedsVerification:     true,
		PreferredVerification: notVerified.Channel,
	})
}
