// Package notify delivers verification messages to freshly registered
// accounts. Delivery is best effort: registration must never fail because a
// mail relay or SMS gateway is down, so senders report their outcome and the
// caller decides what to log.
package notify

import "context"

// EmailSender delivers account emails through whatever relay is configured.
type EmailSender interface {
	// SendVerificationEmail sends the message carrying the account's
	// email verification link. name is the recipient's full name.
	SendVerificationEmail(ctx context.Context, to, name, token string) error

	// SendWelcomeEmail greets an account after its first successful
	// verification.
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// SMSSender delivers the one-time verification code to a phone number.
type SMSSender interface {
	SendVerificationSMS(ctx context.Context, phone, name, code string) error
}
