package domain

import (
	"regexp"
	"strings"
)

// Field format rules, kept identical to what the registration form promises:
// Romanian mobile/landline numbers with or without country prefix, a basic
// RFC-like email shape, and a password with one of each character class.
var (
	phonePattern    = regexp.MustCompile(`^(\+40|0040|0)[267]\d{8}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSpecial = regexp.MustCompile(`[@$!%*?&]`)
)

// ValidationError carries field-level messages for a rejected candidate.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range []string{"nume", "prenume", "nrTelefon", "email", "parola", "preferredVerification"} {
		if msg, ok := e.Fields[field]; ok {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, ", ")
}

// NormalizeEmail lowercases and trims an email before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateName checks the 2-50 char rule shared by nume and prenume.
// The value is trimmed before measuring.
func ValidateName(name string) bool {
	n := len([]rune(strings.TrimSpace(name)))
	return n >= 2 && n <= 50
}

// ValidatePhone checks the Romanian phone format.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateEmail checks the basic email shape.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(NormalizeEmail(email))
}

// ValidatePassword checks length and character class complexity.
func ValidatePassword(password string) bool {
	return len(password) >= 8 &&
		passwordLower.MatchString(password) &&
		passwordUpper.MatchString(password) &&
		passwordDigit.MatchString(password) &&
		passwordSpecial.MatchString(password)
}

// ValidateRegistration checks every identity field plus the password.
// Returns a *ValidationError naming each offending field, or nil.
func ValidateRegistration(surname, givenName, phone, email, password string, channel Channel) error {
	fields := map[string]string{}

	if !ValidateName(surname) {
		fields["nume"] = "Numele trebuie să aibă între 2 și 50 de caractere"
	}
	if !ValidateName(givenName) {
		fields["prenume"] = "Prenumele trebuie să aibă între 2 și 50 de caractere"
	}
	if !ValidatePhone(phone) {
		fields["nrTelefon"] = "Numărul de telefon nu este valid (format românesc)"
	}
	if !ValidateEmail(email) {
		fields["email"] = "Email-ul nu este valid"
	}
	if !ValidatePassword(password) {
		fields["parola"] = "Parola trebuie să conțină cel puțin 8 caractere, o literă mică, o literă mare, o cifră și un caracter special"
	}
	if !channel.Valid() {
		fields["preferredVerification"] = "Metoda de verificare trebuie să fie email sau sms"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateProfileUpdate checks only the fields a profile update may change.
func ValidateProfileUpdate(surname, givenName, phone string) error {
	fields := map[string]string{}

	if !ValidateName(surname) {
		fields["nume"] = "Numele trebuie să aibă între 2 și 50 de caractere"
	}
	if !ValidateName(givenName) {
		fields["prenume"] = "Prenumele trebuie să aibă între 2 și 50 de caractere"
	}
	if !ValidatePhone(phone) {
		fields["nrTelefon"] = "Numărul de telefon nu este valid (format românesc)"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
