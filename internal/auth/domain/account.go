package domain

import "time"

// Channel is the verification channel an account chose at registration.
// It decides which verified flag gates password login.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Valid reports whether c is one of the two supported channels.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// Account is the persisted user record. Email and Phone are each unique
// across all accounts and both work as login handles. The verification
// artifacts (EmailToken, SMSCode) are sparse: present from registration
// until consumed, then cleared for good.
type Account struct {
	ID               string
	Surname          string // nume
	GivenName        string // prenume
	Phone            string // Romanian format, unique
	Email            string // lowercase-normalized, unique
	PasswordHash     string // bcrypt, cost 12
	EmailVerified    bool
	SMSVerified      bool
	PreferredChannel Channel

	EmailToken *string // opaque email verification token
	SMSCode    *string // 6-digit SMS verification code

	// Reserved for a password reset flow; no endpoint writes these yet.
	PasswordResetToken  *string
	PasswordResetExpiry *time.Time

	GithubID *string // set when a GitHub identity is linked

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VerifiedForLogin reports whether the channel-appropriate verification
// flag allows this account to log in.
func (a Account) VerifiedForLogin() bool {
	if a.PreferredChannel == ChannelSMS {
		return a.SMSVerified
	}
	return a.EmailVerified
}

// FullName renders "Nume Prenume" for notification greetings.
func (a Account) FullName() string {
	return a.Surname + " " + a.GivenName
}

// Profile is the only outward representation of an account. The password
// hash and every verification/reset artifact stay out of it unconditionally.
type Profile struct {
	ID               string  `json:"id"`
	Surname          string  `json:"nume"`
	GivenName        string  `json:"prenume"`
	Email            string  `json:"email"`
	Phone            string  `json:"nrTelefon"`
	EmailVerified    bool    `json:"isEmailVerified"`
	SMSVerified      bool    `json:"isSMSVerified"`
	PreferredChannel Channel `json:"preferredVerification"`
}

// Profile projects the account into its public view.
func (a Account) Profile() Profile {
	return Profile{
		ID:               a.ID,
		Surname:          a.Surname,
		GivenName:        a.GivenName,
		Email:            a.Email,
		Phone:            a.Phone,
		EmailVerified:    a.EmailVerified,
		SMSVerified:      a.SMSVerified,
		PreferredChannel: a.PreferredChannel,
	}
}
