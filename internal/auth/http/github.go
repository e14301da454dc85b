package http

import (
	"net/http"
	"strings"

	"github.com/misedainspect/itpnotify/internal/auth/oauth"
	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/misedainspect/itpnotify/pkg/cryptox"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

const oauthStateCookie = "oauth_state"

// GithubHandler drives the federated sign-in round trip: the redirect out to
// GitHub and the callback that lands the user back on the client app.
type GithubHandler struct {
	Github        *oauth.GithubClient
	GithubService *service.GithubService

	// ClientURL is where the browser ends up after the flow, with either
	// a session token or an error flag in the query string.
	ClientURL string

	// SecureCookies should be true whenever the service is reached over
	// HTTPS.
	SecureCookies bool
}

// HandleRedirect sends the browser to GitHub's authorization page with a
// fresh CSRF state bound to a short-lived cookie.
func (h *GithubHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		writeServerError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.Github.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback completes the flow. Any failure sends the browser to the
// client's login page with an error flag rather than rendering JSON: the
// user is mid-redirect and a page, not an API response, is expected.
func (h *GithubHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	fail := func(reason string) {
		log.Warn("github callback rejected", "reason", reason)
		http.Redirect(w, r, h.clientBase()+"/login?error=oauth", http.StatusFound)
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		fail("state mismatch")
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		fail("missing code")
		return
	}

	profile, err := h.Github.FetchProfile(ctx, code)
	if err != nil {
		log.Warn("github profile fetch failed", "error", err)
		fail("profile fetch failed")
		return
	}

	_, token, err := h.GithubService.Authenticate(ctx, profile)
	if err != nil {
		log.Error("github authentication failed", "error", err)
		fail("authentication failed")
		return
	}

	http.Redirect(w, r, h.clientBase()+"/auth/callback?token="+token, http.StatusFound)
}

func (h *GithubHandler) clientBase() string {
	return strings.TrimRight(h.ClientURL, "/")
}
