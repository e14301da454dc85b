package store

import (
	"context"
	"errors"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Identity uniqueness and single-consumption of verification
// artifacts are enforced here, not in application code: two concurrent
// registrations with the same email race to the unique index and exactly one
// wins.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back on error. Preferred over Tx for multi-step operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email, phone, or github id collides
	// with an existing row.
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByLogin returns the account whose email or phone equals the
	// given login handle. Emails are matched lowercase.
	GetAccountByLogin(ctx context.Context, login string) (domain.Account, error)

	// GetAccountByEmail returns the account with the given (normalized) email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetAccountByGithubID returns the account linked to a GitHub identity.
	GetAccountByGithubID(ctx context.Context, githubID string) (domain.Account, error)

	// GetAccountByEmailToken returns the account holding a still-unconsumed
	// email verification token. Cleared tokens never match.
	GetAccountByEmailToken(ctx context.Context, token string) (domain.Account, error)

	// GetAccountByPhoneAndCode returns the account matching an exact
	// (phone, sms code) pair. Cleared codes never match.
	GetAccountByPhoneAndCode(ctx context.Context, phone, code string) (domain.Account, error)

	// ConsumeEmailToken sets is_email_verified and clears the token in one
	// statement, conditional on the token still being present. Returns
	// ErrNotFound if the token was already consumed — that makes double
	// consumption lose without any app-level locking.
	ConsumeEmailToken(ctx context.Context, accountID, token string) error

	// ConsumeSMSCode is the SMS twin of ConsumeEmailToken.
	ConsumeSMSCode(ctx context.Context, accountID, code string) error

	// LinkGithub sets the github id on an existing account and forces the
	// email-verified flag true (the provider asserted the address).
	LinkGithub(ctx context.Context, accountID, githubID string) error

	// UpdateProfile mutates the editable profile fields and bumps updated_at.
	UpdateProfile(ctx context.Context, accountID, surname, givenName, phone string) error

	// UpdatePasswordHash sets a new password hash (bcrypt) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, accountID, newHash string) error

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)
}
