package http

import "net/http"

// LogoutHandler acknowledges the logout. Session tokens are stateless and
// carry their own expiry, so there is nothing to revoke server-side; the
// client discards its copy.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, response{Message: "Deconectare reușită"})
	}
}
