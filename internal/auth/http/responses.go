package http

import (
	"net/http"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
	"github.com/misedainspect/itpnotify/pkg/httpx"
)

// All endpoints answer with the same envelope: success flag, a human-readable
// Romanian message, and optional payload fields.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	Token string          `json:"token,omitempty"`
	User  *domain.Profile `json:"user,omitempty"`

	// Errors carries per-field validation messages, keyed by the JSON
	// field name the client submitted.
	Errors map[string]string `json:"errors,omitempty"`

	// NeedsVerification is set on login attempts against an account that
	// has not finished verification; PreferredVerification tells the
	// client which prompt to show.
	NeedsVerification     bool           `json:"needsVerification,omitempty"`
	PreferredVerification domain.Channel `json:"preferredVerification,omitempty"`
}

func writeSuccess(w http.ResponseWriter, code int, resp response) {
	resp.Success = true
	httpx.WriteJSON(w, code, resp)
}

func writeError(w http.ResponseWriter, code int, message string) {
	httpx.WriteJSON(w, code, response{Success: false, Message: message})
}

func writeValidationError(w http.ResponseWriter, verr *domain.ValidationError) {
	httpx.WriteJSON(w, http.StatusBadRequest, response{
		Success: false,
		Message: "Datele introduse nu sunt valide",
		Errors:  verr.Fields,
	})
}

// exposeErrorDetail is enabled outside prod so 500 responses carry the
// underlying error text; production deployments elide it.
var exposeErrorDetail = false

func writeServerError(w http.ResponseWriter, err error) {
	msg := "Eroare internă de server"
	if exposeErrorDetail && err != nil {
		msg += ": " + err.Error()
	}
	writeError(w, http.StatusInternalServerError, msg)
}

func duplicateMessage(field string) string {
	if field == "nrTelefon" {
		return "Există deja un cont cu acest număr de telefon"
	}
	return "Există deja un cont cu acest email"
}
