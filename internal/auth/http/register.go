package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

type RegisterHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Surname          string `json:"nume"`
	GivenName        string `json:"prenume"`
	Phone            string `json:"nrTelefon"`
	Email            string `json:"email"`
	Password         string `json:"parola"`
	PasswordConfirm  string `json:"confirmaParola"`
	PreferredChannel string `json:"preferredVerification"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpul cererii nu este un JSON valid")
		return
	}

	account, token, err := h.AuthService.Register(ctx, service.RegisterInput{
		Surname:          req.Surname,
		GivenName:        req.GivenName,
		Phone:            req.Phone,
		Email:            req.Email,
		Password:         req.Password,
		PasswordConfirm:  req.PasswordConfirm,
		PreferredChannel: domain.Channel(req.PreferredChannel),
	})
	if err != nil {
		var verr *domain.ValidationError
		var dup *service.DuplicateError
		switch {
		case errors.As(err, &verr):
			writeValidationError(w, verr)
		case errors.As(err, &dup):
			writeError(w, http.StatusBadRequest, duplicateMessage(dup.Field))
		default:
			log.Error("registration failed", "error", err)
			writeServerError(w, err)
		}
		return
	}

	profile := account.Profile()
	writeSuccess(w, http.StatusCreated, response{
		Message: "Cont creat cu succes. Verifică-ți " + verificationHint(account.PreferredChannel),
		Token:   token,
		User:    &profile,
	})
}

func verificationHint(channel domain.Channel) string {
	if channel == domain.ChannelSMS {
		return "telefonul pentru codul de verificare"
	}
	return "emailul pentru linkul de verificare"
}
