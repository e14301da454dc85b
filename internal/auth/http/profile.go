package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/misedainspect/itpnotify/internal/auth/store"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

// ProfileHandler serves the authenticated account's own profile.
type ProfileHandler struct {
	AuthService *service.AuthService
	Tokens      *service.TokenService
}

// authenticate extracts the bearer token and resolves it to an account id.
// A missing, malformed, or expired token answers 401 and returns "".
func (h *ProfileHandler) authenticate(w http.ResponseWriter, r *http.Request) string {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		writeError(w, http.StatusUnauthorized, "Neautorizat")
		return ""
	}

	accountID, err := h.Tokens.Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Neautorizat")
		return ""
	}
	return accountID
}

func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	profile, err := h.AuthService.Profile(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Valid token for a row that no longer exists.
			writeError(w, http.StatusUnauthorized, "Neautorizat")
			return
		}
		log.Error("profile lookup failed", "error", err)
		writeServerError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, response{User: &profile})
}

type profileUpdateRequest struct {
	Surname   string `json:"nume"`
	GivenName string `json:"prenume"`
	Phone     string `json:"nrTelefon"`
}

func (h *ProfileHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpul cererii nu este un JSON valid")
		return
	}

	profile, err := h.AuthService.UpdateProfile(ctx, accountID, req.Surname, req.GivenName, req.Phone)
	if err != nil {
		var verr *domain.ValidationError
		var dup *service.DuplicateError
		switch {
		case errors.As(err, &verr):
			writeValidationError(w, verr)
		case errors.As(err, &dup):
			writeError(w, http.StatusBadRequest, duplicateMessage(dup.Field))
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusUnauthorized, "Neautorizat")
		default:
			log.Error("profile update failed", "error", err)
			writeServerError(w, err)
		}
		return
	}

	writeSuccess(w, http.StatusOK, response{
		Message: "Profil actualizat cu succes",
		User:    &profile,
	})
}
