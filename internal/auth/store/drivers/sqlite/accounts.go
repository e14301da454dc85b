package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/misedainspect/itpnotify/internal/auth/domain"
	"github.com/misedainspect/itpnotify/internal/auth/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, surname, given_name, phone, email, password_hash,
	is_email_verified, is_sms_verified, preferred_verification,
	email_verification_token, sms_verification_code,
	password_reset_token, password_reset_expiry, github_id,
	created_at, updated_at`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, surname, given_name, phone, email, password_hash,
			is_email_verified, is_sms_verified, preferred_verification,
			email_verification_token, sms_verification_code,
			password_reset_token, password_reset_expiry, github_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Surname, a.GivenName, a.Phone, a.Email, a.PasswordHash,
		a.EmailVerified, a.SMSVerified, string(a.PreferredChannel),
		mapOptionalString(a.EmailToken), mapOptionalString(a.SMSCode),
		mapOptionalString(a.PasswordResetToken), mapOptionalTime(a.PasswordResetExpiry),
		mapOptionalString(a.GithubID),
		now, now,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByLogin(ctx context.Context, login string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ? OR phone = ?`,
		domain.NormalizeEmail(login), login)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`,
		domain.NormalizeEmail(email))
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByGithubID(ctx context.Context, githubID string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE github_id = ?`, githubID)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmailToken(ctx context.Context, token string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE email_verification_token = ?`, token)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByPhoneAndCode(ctx context.Context, phone, code string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE phone = ? AND sms_verification_code = ?`, phone, code)
	return scanAccount(row)
}

func (r *accountsRepo) ConsumeEmailToken(ctx context.Context, accountID, token string) error {
	// Conditional on the token still being present: the second of two
	// concurrent consumers affects zero rows and gets ErrNotFound.
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET is_email_verified = 1, email_verification_token = NULL, updated_at = ?
		WHERE id = ? AND email_verification_token = ?`,
		time.Now().UTC(), accountID, token)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *accountsRepo) ConsumeSMSCode(ctx context.Context, accountID, code string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET is_sms_verified = 1, sms_verification_code = NULL, updated_at = ?
		WHERE id = ? AND sms_verification_code = ?`,
		time.Now().UTC(), accountID, code)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *accountsRepo) LinkGithub(ctx context.Context, accountID, githubID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET github_id = ?, is_email_verified = 1, updated_at = ?
		WHERE id = ?`,
		githubID, time.Now().UTC(), accountID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireAffected(res)
}

func (r *accountsRepo) UpdateProfile(ctx context.Context, accountID, surname, givenName, phone string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET surname = ?, given_name = ?, phone = ?, updated_at = ?
		WHERE id = ?`,
		surname, givenName, phone, time.Now().UTC(), accountID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireAffected(res)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), accountID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a           domain.Account
		channel     string
		emailToken  sql.NullString
		smsCode     sql.NullString
		resetToken  sql.NullString
		resetExpiry sql.NullTime
		githubID    sql.NullString
	)

	err := row.Scan(
		&a.ID, &a.Surname, &a.GivenName, &a.Phone, &a.Email, &a.PasswordHash,
		&a.EmailVerified, &a.SMSVerified, &channel,
		&emailToken, &smsCode,
		&resetToken, &resetExpiry, &githubID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.PreferredChannel = domain.Channel(channel)
	a.EmailToken = mapNullString(emailToken)
	a.SMSCode = mapNullString(smsCode)
	a.PasswordResetToken = mapNullString(resetToken)
	a.PasswordResetExpiry = mapNullTime(resetExpiry)
	a.GithubID = mapNullString(githubID)

	return a, nil
}
