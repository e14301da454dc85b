package service_test

import (
	"context"
	"testing"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func newGithubService(t *testing.T, env testEnv) *service.GithubService {
	t.Helper()
	return &service.GithubService{
		Store:  env.auth.Store,
		Tokens: env.auth.Tokens,
	}
}

func TestGithubAuthenticateProvisionsNewAccount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gh := newGithubService(t, env)

	profile := domain.GithubProfile{
		ID:    "4242",
		Login: "octocat",
		Name:  "Octo Cat",
		Email: "octo@example.com",
	}

	account, token, err := gh.Authenticate(ctx, profile)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.Equal(t, "Cat", account.Surname)
	require.Equal(t, "Octo", account.GivenName)
	require.Equal(t, "octo@example.com", account.Email)
	require.Equal(t, service.PlaceholderPhone, account.Phone)
	require.True(t, account.EmailVerified, "provider-asserted email is trusted")
	require.Equal(t, domain.ChannelEmail, account.PreferredChannel)
	require.NotNil(t, account.GithubID)
	require.Equal(t, "4242", *account.GithubID)

	t.Run("second sign-in resolves the same account", func(t *testing.T) {
		again, _, err := gh.Authenticate(ctx, profile)
		require.NoError(t, err)
		require.Equal(t, account.ID, again.ID)
	})
}

func TestGithubAuthenticateLinksByEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gh := newGithubService(t, env)

	registered, _, err := env.auth.Register(ctx, validInput())
	require.NoError(t, err)
	require.False(t, registered.EmailVerified)

	account, _, err := gh.Authenticate(ctx, domain.GithubProfile{
		ID:    "7",
		Login: "ionp",
		Email: "ion@example.ro",
	})
	require.NoError(t, err)

	require.Equal(t, registered.ID, account.ID, "existing account is linked, not duplicated")
	require.True(t, account.EmailVerified, "linking forces the email-verified flag")

	stored, err := env.auth.Store.Accounts().GetAccountByGithubID(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, registered.ID, stored.ID)
	require.True(t, stored.EmailVerified)
}

func TestGithubAuthenticateProfileFallbacks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gh := newGithubService(t, env)

	account, _, err := gh.Authenticate(ctx, domain.GithubProfile{
		ID:    "99",
		Login: "ghost",
	})
	require.NoError(t, err)

	require.Equal(t, "ghost@github.local", account.Email)
	require.Equal(t, "ghost", account.Surname, "login stands in for a missing display name")
}

func TestGithubAuthenticateSecondProvisionGetsDistinctPhone(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	gh := newGithubService(t, env)

	first, _, err := gh.Authenticate(ctx, domain.GithubProfile{ID: "1", Login: "alpha"})
	require.NoError(t, err)
	require.Equal(t, service.PlaceholderPhone, first.Phone)

	second, _, err := gh.Authenticate(ctx, domain.GithubProfile{ID: "2", Login: "beta"})
	require.NoError(t, err)
	require.NotEqual(t, first.Phone, second.Phone, "phone uniqueness holds across provisioned accounts")
	require.Regexp(t, `^07\d{8}$`, second.Phone)
}
