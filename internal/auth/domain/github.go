package domain

import "strings"

// GithubProfile is the externally verified identity handed back by the
// OAuth callback. Only the provider id is guaranteed; everything else may
// be empty depending on the user's GitHub privacy settings.
type GithubProfile struct {
	ID    string // GitHub numeric id, stringified
	Login string // GitHub username
	Name  string // display name, possibly empty
	Email string // primary email, possibly empty
}

// SurnameOrDefault derives a surname from the display name, falling back to
// the login and then a filler value.
func (p GithubProfile) SurnameOrDefault() string {
	if _, surname := splitDisplayName(p.Name); surname != "" {
		return surname
	}
	if p.Login != "" {
		return p.Login
	}
	return "Nume"
}

// GivenNameOrDefault derives a given name from the display name, falling
// back to a filler value.
func (p GithubProfile) GivenNameOrDefault() string {
	if given, _ := splitDisplayName(p.Name); given != "" {
		return given
	}
	return "Prenume"
}

// EmailOrDefault returns the profile email or a provider-local placeholder.
func (p GithubProfile) EmailOrDefault() string {
	if p.Email != "" {
		return NormalizeEmail(p.Email)
	}
	return p.Login + "@github.local"
}

// splitDisplayName treats the first field as the given name and the rest as
// the surname, which is how GitHub display names are usually written.
func splitDisplayName(name string) (given, surname string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
