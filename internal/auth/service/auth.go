package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
	"github.com/misedainspect/itpnotify/internal/auth/notify"
	"github.com/misedainspect/itpnotify/internal/auth/store"
	"github.com/misedainspect/itpnotify/pkg/cryptox"
	"github.com/misedainspect/itpnotify/pkg/idx"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_verification_token")
	ErrInvalidCode        = errors.New("invalid_verification_code")
)

// DuplicateError reports which identity field collided with an existing
// account.
type DuplicateError struct {
	Field string // "email" or "nrTelefon"
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// NotVerifiedError is returned by Login when the credentials are correct but
// the account has not completed verification on its preferred channel.
type NotVerifiedError struct {
	Channel domain.Channel
}

func (e *NotVerifiedError) Error() string {
	return fmt.Sprintf("account not verified via %s", e.Channel)
}

// RegisterInput is the raw registration payload, pre-validation.
type RegisterInput struct {
	Surname          string
	GivenName        string
	Phone            string
	Email            string
	Password         string
	PasswordConfirm  string
	PreferredChannel domain.Channel
}

// AuthService implements registration, credential login, verification, and
// profile management.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
	Email  notify.EmailSender
	SMS    notify.SMSSender

	// DispatchTimeout bounds best-effort notification sends so a slow
	// gateway cannot hold a request open. Zero means 10s.
	DispatchTimeout time.Duration
}

// Register creates a new account, issues a session token, and dispatches a
// verification message on the preferred channel. Dispatch is best effort:
// a failed send is logged and the registration still succeeds. The session
// token is usable immediately even though the account is unverified.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.Account, string, error) {
	l := slogx.FromContext(ctx)

	in.Surname = strings.TrimSpace(in.Surname)
	in.GivenName = strings.TrimSpace(in.GivenName)
	in.Email = domain.NormalizeEmail(in.Email)

	if err := domain.ValidateRegistration(in.Surname, in.GivenName, in.Phone, in.Email, in.Password, in.PreferredChannel); err != nil {
		return domain.Account{}, "", err
	}
	if in.Password != in.PasswordConfirm {
		return domain.Account{}, "", &domain.ValidationError{Fields: map[string]string{
			"confirmaParola": "Parolele nu coincid",
		}}
	}

	// Pre-check gives the caller a per-field error message. The unique
	// indexes remain authoritative for concurrent registrations.
	if field, err := s.findCollision(ctx, in.Email, in.Phone); err != nil {
		return domain.Account{}, "", err
	} else if field != "" {
		return domain.Account{}, "", &DuplicateError{Field: field}
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.Account{}, "", err
	}

	emailToken, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return domain.Account{}, "", err
	}
	smsCode, err := cryptox.GenerateSMSCode()
	if err != nil {
		return domain.Account{}, "", err
	}

	account := domain.Account{
		ID:               idx.New().String(),
		Surname:          in.Surname,
		GivenName:        in.GivenName,
		Phone:            in.Phone,
		Email:            in.Email,
		PasswordHash:     hash,
		PreferredChannel: in.PreferredChannel,
		EmailToken:       &emailToken,
		SMSCode:          &smsCode,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the race after the pre-check passed. Look again so
			// the error names the field that actually collided.
			field, ferr := s.findCollision(ctx, in.Email, in.Phone)
			if ferr != nil || field == "" {
				field = "email"
			}
			return domain.Account{}, "", &DuplicateError{Field: field}
		}
		return domain.Account{}, "", err
	}

	token, err := s.Tokens.Issue(account.ID)
	if err != nil {
		return domain.Account{}, "", err
	}

	s.dispatchVerification(ctx, l, account)

	return account, token, nil
}

// Login authenticates by email or phone. Unknown identities and wrong
// passwords are indistinguishable to the caller. Correct credentials on an
// unverified account yield a NotVerifiedError naming the channel the client
// should prompt for.
func (s *AuthService) Login(ctx context.Context, identity, password string) (domain.Account, string, error) {
	l := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByLogin(ctx, identity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, "", ErrInvalidCredentials
		}
		return domain.Account{}, "", err
	}

	if cryptox.VerifyPassword(password, account.PasswordHash) != nil {
		l.Info("login rejected: wrong password", slog.String("account_id", account.ID))
		return domain.Account{}, "", ErrInvalidCredentials
	}

	if !account.VerifiedForLogin() {
		return domain.Account{}, "", &NotVerifiedError{Channel: account.PreferredChannel}
	}

	token, err := s.Tokens.Issue(account.ID)
	if err != nil {
		return domain.Account{}, "", err
	}

	l.Info("login succeeded", slog.String("account_id", account.ID))
	return account, token, nil
}

// VerifyEmail consumes an email verification token. The token works exactly
// once: a second call with the same token returns ErrInvalidToken.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByEmailToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidToken
		}
		return domain.Account{}, err
	}

	if err := s.Store.Accounts().ConsumeEmailToken(ctx, account.ID, token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidToken
		}
		return domain.Account{}, err
	}

	account.EmailVerified = true
	account.EmailToken = nil

	l.Info("email verified", slog.String("account_id", account.ID))
	s.sendWelcome(ctx, l, account)

	return account, nil
}

// VerifySMS consumes the one-time SMS code for the given phone number.
func (s *AuthService) VerifySMS(ctx context.Context, phone, code string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByPhoneAndCode(ctx, phone, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCode
		}
		return domain.Account{}, err
	}

	if err := s.Store.Accounts().ConsumeSMSCode(ctx, account.ID, code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCode
		}
		return domain.Account{}, err
	}

	account.SMSVerified = true
	account.SMSCode = nil

	l.Info("sms verified", slog.String("account_id", account.ID))
	s.sendWelcome(ctx, l, account)

	return account, nil
}

// Profile returns the public profile of an account.
func (s *AuthService) Profile(ctx context.Context, accountID string) (domain.Profile, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.Profile{}, err
	}
	return account.Profile(), nil
}

// UpdateProfile changes the editable identity fields. Email is not editable;
// a phone change does not reset SMS verification (matching the registration
// flow, which verifies one channel only).
func (s *AuthService) UpdateProfile(ctx context.Context, accountID, surname, givenName, phone string) (domain.Profile, error) {
	surname = strings.TrimSpace(surname)
	givenName = strings.TrimSpace(givenName)

	if err := domain.ValidateProfileUpdate(surname, givenName, phone); err != nil {
		return domain.Profile{}, err
	}

	if err := s.Store.Accounts().UpdateProfile(ctx, accountID, surname, givenName, phone); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Profile{}, &DuplicateError{Field: "nrTelefon"}
		}
		return domain.Profile{}, err
	}

	return s.Profile(ctx, accountID)
}

// findCollision reports which identity field ("email" or "nrTelefon")
// already belongs to another account, or "" when both are free.
func (s *AuthService) findCollision(ctx context.Context, email, phone string) (string, error) {
	if _, err := s.Store.Accounts().GetAccountByEmail(ctx, email); err == nil {
		return "email", nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	if _, err := s.Store.Accounts().GetAccountByLogin(ctx, phone); err == nil {
		return "nrTelefon", nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	return "", nil
}

// dispatchVerification sends the verification artifact on the account's
// preferred channel. Failures are logged, never returned: an unreachable
// gateway must not undo a committed registration.
func (s *AuthService) dispatchVerification(ctx context.Context, l *slog.Logger, account domain.Account) {
	ctx, cancel := s.dispatchContext(ctx)
	defer cancel()

	var err error
	switch account.PreferredChannel {
	case domain.ChannelSMS:
		err = s.SMS.SendVerificationSMS(ctx, account.Phone, account.FullName(), *account.SMSCode)
	default:
		err = s.Email.SendVerificationEmail(ctx, account.Email, account.FullName(), *account.EmailToken)
	}

	if err != nil {
		l.Warn("verification dispatch failed",
			slog.String("account_id", account.ID),
			slog.String("channel", string(account.PreferredChannel)),
			slog.Any("error", err),
		)
	}
}

func (s *AuthService) sendWelcome(ctx context.Context, l *slog.Logger, account domain.Account) {
	ctx, cancel := s.dispatchContext(ctx)
	defer cancel()

	if err := s.Email.SendWelcomeEmail(ctx, account.Email, account.FullName()); err != nil {
		l.Warn("welcome email failed", slog.String("account_id", account.ID), slog.Any("error", err))
	}
}

func (s *AuthService) dispatchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.DispatchTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
