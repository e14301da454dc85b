package sqlite_test

import (
	"context"
	"testing"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
	"github.com/misedainspect/itpnotify/internal/auth/store"
	"github.com/misedainspect/itpnotify/internal/auth/store/drivers/sqlite"
	"github.com/misedainspect/itpnotify/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func testAccount(email, phone string) domain.Account {
	token := "email-token-" + email
	code := "123456"
	return domain.Account{
		ID:               idx.New().String(),
		Surname:          "Popescu",
		GivenName:        "Ion",
		Phone:            phone,
		Email:            email,
		PasswordHash:     "$2a$12$notarealhashbutgoodenough",
		PreferredChannel: domain.ChannelEmail,
		EmailToken:       &token,
		SMSCode:          &code,
	}
}

func TestCreateAndLookupAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a := testAccount("a@b.ro", "0712345678")
	require.NoError(t, st.Accounts().CreateAccount(ctx, a))

	t.Run("by id", func(t *testing.T) {
		got, err := st.Accounts().GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, a.Email, got.Email)
		require.Equal(t, a.Phone, got.Phone)
		require.False(t, got.EmailVerified)
		require.NotNil(t, got.EmailToken)
		require.NotNil(t, got.SMSCode)
		require.False(t, got.CreatedAt.IsZero())
		require.Nil(t, got.PasswordResetToken)
		require.Nil(t, got.PasswordResetExpiry)
	})

	t.Run("by email as login", func(t *testing.T) {
		got, err := st.Accounts().GetAccountByLogin(ctx, "a@b.ro")
		require.NoError(t, err)
		require.Equal(t, a.ID, got.ID)
	})

	t.Run("login email match is case-insensitive", func(t *testing.T) {
		got, err := st.Accounts().GetAccountByLogin(ctx, "A@B.RO")
		require.NoError(t, err)
		require.Equal(t, a.ID, got.ID)
	})

	t.Run("by phone as login", func(t *testing.T) {
		got, err := st.Accounts().GetAccountByLogin(ctx, "0712345678")
		require.NoError(t, err)
		require.Equal(t, a.ID, got.ID)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, err := st.Accounts().GetAccountByLogin(ctx, "nobody@b.ro")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestCreateAccountUniqueness(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Accounts().CreateAccount(ctx, testAccount("a@b.ro", "0712345678")))

	t.Run("duplicate email rejected", func(t *testing.T) {
		err := st.Accounts().CreateAccount(ctx, testAccount("a@b.ro", "0712345679"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate phone rejected", func(t *testing.T) {
		err := st.Accounts().CreateAccount(ctx, testAccount("c@d.ro", "0712345678"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("no partial row left behind", func(t *testing.T) {
		_, err := st.Accounts().GetAccountByLogin(ctx, "0712345679")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestConsumeEmailToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a := testAccount("a@b.ro", "0712345678")
	require.NoError(t, st.Accounts().CreateAccount(ctx, a))

	found, err := st.Accounts().GetAccountByEmailToken(ctx, *a.EmailToken)
	require.NoError(t, err)
	require.Equal(t, a.ID, found.ID)

	require.NoError(t, st.Accounts().ConsumeEmailToken(ctx, a.ID, *a.EmailToken))

	got, err := st.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, got.EmailVerified)
	require.Nil(t, got.EmailToken, "token must be cleared after consumption")

	// Second consumption affects zero rows
	err = st.Accounts().ConsumeEmailToken(ctx, a.ID, *a.EmailToken)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Cleared token no longer matches lookups either
	_, err = st.Accounts().GetAccountByEmailToken(ctx, *a.EmailToken)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeSMSCode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a := testAccount("a@b.ro", "0712345678")
	require.NoError(t, st.Accounts().CreateAccount(ctx, a))

	found, err := st.Accounts().GetAccountByPhoneAndCode(ctx, a.Phone, *a.SMSCode)
	require.NoError(t, err)
	require.Equal(t, a.ID, found.ID)

	// Wrong code does not match
	_, err = st.Accounts().GetAccountByPhoneAndCode(ctx, a.Phone, "000000")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Accounts().ConsumeSMSCode(ctx, a.ID, *a.SMSCode))

	got, err := st.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, got.SMSVerified)
	require.Nil(t, got.SMSCode)

	err = st.Accounts().ConsumeSMSCode(ctx, a.ID, *a.SMSCode)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLinkGithub(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a := testAccount("a@b.ro", "0712345678")
	require.NoError(t, st.Accounts().CreateAccount(ctx, a))

	require.NoError(t, st.Accounts().LinkGithub(ctx, a.ID, "gh-12345"))

	got, err := st.Accounts().GetAccountByGithubID(ctx, "gh-12345")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.True(t, got.EmailVerified, "provider-asserted email is trusted")

	t.Run("github id is unique", func(t *testing.T) {
		b := testAccount("c@d.ro", "0722345678")
		require.NoError(t, st.Accounts().CreateAccount(ctx, b))

		err := st.Accounts().LinkGithub(ctx, b.ID, "gh-12345")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a := testAccount("a@b.ro", "0712345678")
	require.NoError(t, st.Accounts().CreateAccount(ctx, a))

	require.NoError(t, st.Accounts().UpdateProfile(ctx, a.ID, "Ionescu", "Maria", "0722345678"))

	got, err := st.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Ionescu", got.Surname)
	require.Equal(t, "Maria", got.GivenName)
	require.Equal(t, "0722345678", got.Phone)
	require.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	t.Run("phone collision rejected", func(t *testing.T) {
		b := testAccount("c@d.ro", "0733345678")
		require.NoError(t, st.Accounts().CreateAccount(ctx, b))

		err := st.Accounts().UpdateProfile(ctx, b.ID, "Ionescu", "Maria", "0722345678")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := st.Accounts().UpdateProfile(ctx, "missing", "Ionescu", "Maria", "0744445678")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a := testAccount("a@b.ro", "0712345678")
	require.NoError(t, st.Accounts().CreateAccount(ctx, a))

	require.NoError(t, st.Accounts().UpdatePasswordHash(ctx, a.ID, "$2a$12$replacementhashvalue"))

	got, err := st.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "$2a$12$replacementhashvalue", got.PasswordHash)

	err = st.Accounts().UpdatePasswordHash(ctx, "missing", "$2a$12$x")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sentinel := store.ErrAlreadyExists
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, testAccount("a@b.ro", "0712345678")); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	empty, err := st.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty, "rolled-back insert must not persist")
}
