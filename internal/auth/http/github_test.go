package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/misedainspect/itpnotify/internal/auth/oauth"
	"github.com/stretchr/testify/require"
)

func newGithubEnv(t *testing.T) routerEnv {
	t.Helper()

	env := newRouterEnv(t)
	env.router.GithubClient = oauth.NewGithubClient(oauth.GithubConfig{
		ClientID:    "client-id",
		RedirectURL: "https://api.example.ro/auth/github/callback",
	})
	// Re-apply so the github routes are registered.
	env.router.Mux = http.NewServeMux()
	env.router.ApplyRoutes()
	return env
}

func TestGithubRedirect(t *testing.T) {
	env := newGithubEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/github", nil)
	rec := httptest.NewRecorder()
	env.router.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "github.com", location.Host)
	require.Equal(t, "client-id", location.Query().Get("client_id"))

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
			require.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, state, "state cookie must be set")
	require.Equal(t, state, location.Query().Get("state"), "cookie and redirect carry the same state")
}

func TestGithubCallbackSuccessRedirect(t *testing.T) {
	gh := http.NewServeMux()
	gh.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer"}`))
	})
	gh.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":4242,"login":"octocat","name":"Octo Cat","email":"octo@example.com"}`))
	})
	gh.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"email":"octo@example.com","primary":true,"verified":true}]`))
	})
	srv := httptest.NewServer(gh)
	defer srv.Close()

	env := newRouterEnv(t)
	env.router.GithubClient = oauth.NewGithubClient(oauth.GithubConfig{
		ClientID:     "client-id",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/login/oauth/access_token",
		UserURL:      srv.URL + "/user",
		EmailsURL:    srv.URL + "/user/emails",
	})
	env.router.Mux = http.NewServeMux()
	env.router.ApplyRoutes()

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=state-abc&code=auth-code", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-abc"})
	rec := httptest.NewRecorder()
	env.router.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "https://app.example.ro/auth/callback?token="), loc)
	require.NotEmpty(t, strings.TrimPrefix(loc, "https://app.example.ro/auth/callback?token="),
		"redirect must carry the session token")
}

func TestGithubCallbackRejectsBadState(t *testing.T) {
	env := newGithubEnv(t)

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=abc&code=xyz", nil)
		rec := httptest.NewRecorder()
		env.router.Mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "https://app.example.ro/login?error=oauth", rec.Header().Get("Location"))
	})

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=abc&code=xyz", nil)
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "different"})
		rec := httptest.NewRecorder()
		env.router.Mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "https://app.example.ro/login?error=oauth", rec.Header().Get("Location"))
	})

	t.Run("missing code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=abc", nil)
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "abc"})
		rec := httptest.NewRecorder()
		env.router.Mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "https://app.example.ro/login?error=oauth", rec.Header().Get("Location"))
	})
}
