package service_test

import (
	"testing"
	"time"

	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestTokenIssueAndParse(t *testing.T) {
	svc := &service.TokenService{
		Secret: []byte("test-secret"),
		Issuer: "itpnotify",
	}

	token, err := svc.Issue("acc-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := svc.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "acc-123", accountID)
}

func TestTokenParseRejectsGarbage(t *testing.T) {
	svc := &service.TokenService{Secret: []byte("test-secret"), Issuer: "itpnotify"}

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Parse(raw)
		require.ErrorIs(t, err, service.ErrInvalidSession)
	}
}

func TestTokenParseRejectsWrongSecret(t *testing.T) {
	issuer := &service.TokenService{Secret: []byte("secret-a"), Issuer: "itpnotify"}
	verifier := &service.TokenService{Secret: []byte("secret-b"), Issuer: "itpnotify"}

	token, err := issuer.Issue("acc-123")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	require.ErrorIs(t, err, service.ErrInvalidSession)
}

func TestTokenParseRejectsExpired(t *testing.T) {
	svc := &service.TokenService{
		Secret: []byte("test-secret"),
		Issuer: "itpnotify",
		TTL:    -time.Minute,
	}

	token, err := svc.Issue("acc-123")
	require.NoError(t, err)

	_, err = svc.Parse(token)
	require.ErrorIs(t, err, service.ErrInvalidSession)
}

func TestTokenParseRejectsWrongIssuer(t *testing.T) {
	other := &service.TokenService{Secret: []byte("test-secret"), Issuer: "someone-else"}
	svc := &service.TokenService{Secret: []byte("test-secret"), Issuer: "itpnotify"}

	token, err := other.Issue("acc-123")
	require.NoError(t, err)

	_, err = svc.Parse(token)
	require.ErrorIs(t, err, service.ErrInvalidSession)
}
