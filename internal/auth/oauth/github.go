// Package oauth implements the GitHub authorization-code flow used for
// federated sign-in.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/misedainspect/itpnotify/internal/auth/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GithubConfig carries the OAuth application credentials.
type GithubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides, used by tests and GitHub Enterprise installs.
	// Empty fields fall back to the public github.com endpoints.
	AuthURL   string
	TokenURL  string
	UserURL   string
	EmailsURL string
}

// GithubClient exchanges authorization codes for GitHub profiles.
type GithubClient struct {
	oauth *oauth2.Config

	userURL   string
	emailsURL string
}

func NewGithubClient(cfg GithubConfig) *GithubClient {
	endpoint := github.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	userURL := cfg.UserURL
	if userURL == "" {
		userURL = "https://api.github.com/user"
	}
	emailsURL := cfg.EmailsURL
	if emailsURL == "" {
		emailsURL = "https://api.github.com/user/emails"
	}

	return &GithubClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     endpoint,
		},
		userURL:   userURL,
		emailsURL: emailsURL,
	}
}

// AuthCodeURL builds the GitHub authorization URL for the given CSRF state.
func (c *GithubClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// FetchProfile exchanges the authorization code and reads the user's
// identity from the GitHub API. The primary verified email is preferred over
// the public profile email, which many accounts leave empty.
func (c *GithubClient) FetchProfile(ctx context.Context, code string) (domain.GithubProfile, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return domain.GithubProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	client := c.oauth.Client(ctx, token)

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, client, c.userURL, &user); err != nil {
		return domain.GithubProfile{}, fmt.Errorf("fetch user: %w", err)
	}

	profile := domain.GithubProfile{
		ID:    strconv.FormatInt(user.ID, 10),
		Login: user.Login,
		Name:  user.Name,
		Email: user.Email,
	}

	if email := c.primaryEmail(ctx, client); email != "" {
		profile.Email = email
	}

	return profile, nil
}

// primaryEmail returns the primary verified address, or "" when the emails
// endpoint is unavailable. Failure here is not fatal: the public profile
// email or a placeholder still lets sign-in proceed.
func (c *GithubClient) primaryEmail(ctx context.Context, client *http.Client) string {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, c.emailsURL, &emails); err != nil {
		return ""
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	return ""
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
