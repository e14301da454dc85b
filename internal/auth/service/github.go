package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
	"github.com/misedainspect/itpnotify/internal/auth/store"
	"github.com/misedainspect/itpnotify/pkg/cryptox"
	"github.com/misedainspect/itpnotify/pkg/idx"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

// PlaceholderPhone is stored on accounts provisioned through GitHub, which
// carries no phone number. The owner corrects it from their profile.
const PlaceholderPhone = "0700000000"

// GithubService resolves a GitHub profile to a local account, creating or
// linking one as needed.
type GithubService struct {
	Store  store.Store
	Tokens *TokenService
}

// Authenticate maps a fetched GitHub profile onto a local account and issues
// a session token. Resolution order:
//
//  1. an account already linked to this GitHub id,
//  2. an account holding the profile's email — linked now, and its email
//     marked verified since the provider asserted the address,
//  3. a newly provisioned account.
func (s *GithubService) Authenticate(ctx context.Context, profile domain.GithubProfile) (domain.Account, string, error) {
	l := slogx.FromContext(ctx)

	account, err := s.resolve(ctx, l, profile)
	if err != nil {
		return domain.Account{}, "", err
	}

	token, err := s.Tokens.Issue(account.ID)
	if err != nil {
		return domain.Account{}, "", err
	}
	return account, token, nil
}

func (s *GithubService) resolve(ctx context.Context, l *slog.Logger, profile domain.GithubProfile) (domain.Account, error) {
	accounts := s.Store.Accounts()

	account, err := accounts.GetAccountByGithubID(ctx, profile.ID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, err
	}

	email := domain.NormalizeEmail(profile.EmailOrDefault())

	account, err = accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		if err := accounts.LinkGithub(ctx, account.ID, profile.ID); err != nil {
			return domain.Account{}, err
		}
		account.GithubID = &profile.ID
		account.EmailVerified = true
		l.Info("linked github identity to existing account",
			slog.String("account_id", account.ID))
		return account, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, err
	}

	return s.provision(ctx, l, profile, email)
}

func (s *GithubService) provision(ctx context.Context, l *slog.Logger, profile domain.GithubProfile, email string) (domain.Account, error) {
	// The password is random and never disclosed: until a password-set
	// flow exists the account only opens through the federated route.
	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.Account{}, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		ID:               idx.New().String(),
		Surname:          profile.SurnameOrDefault(),
		GivenName:        profile.GivenNameOrDefault(),
		Phone:            PlaceholderPhone,
		Email:            email,
		PasswordHash:     hash,
		EmailVerified:    true,
		PreferredChannel: domain.ChannelEmail,
		GithubID:         &profile.ID,
	}

	err = s.Store.Accounts().CreateAccount(ctx, account)
	if errors.Is(err, store.ErrAlreadyExists) {
		// The fixed placeholder collides once a second account is
		// provisioned. Derive a per-identity placeholder instead.
		account.Phone = derivedPlaceholderPhone(profile.ID)
		err = s.Store.Accounts().CreateAccount(ctx, account)
	}
	if err != nil {
		return domain.Account{}, err
	}

	l.Info("provisioned account from github profile",
		slog.String("account_id", account.ID))
	return account, nil
}

// derivedPlaceholderPhone builds a syntactically valid placeholder from the
// numeric GitHub id, keeping the phone column's uniqueness satisfied.
func derivedPlaceholderPhone(githubID string) string {
	var n uint64
	for _, r := range githubID {
		if r >= '0' && r <= '9' {
			n = n*10 + uint64(r-'0')
		}
	}
	return fmt.Sprintf("07%08d", n%100000000)
}
