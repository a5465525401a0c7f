package domain

import (
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Reference is what the creator hands out: the identifier and, when the vault generated
// it, the password.
type Reference struct {
	ID        string
	Password  string
	Generated bool
}

// String renders "id" or "id&password".
func (r Reference) String() string {
	if r.Password == "" {
		return r.ID
	}
	return r.ID + ReferenceSeparator + r.Password
}

// URL builds the share link. A generated password goes into the fragment so browsers
// never send it to the server.
func (r Reference) URL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/") + "/?" + r.ID
	if r.Generated && r.Password != "" {
		return base + "#" + r.Password
	}
	return base
}

// ParseReference splits "id" or "id&password" on the first separator. Whether the vault
// generated the password cannot be recovered from the string, so Generated is left false.
func ParseReference(s string) (Reference, error) {
	id, password, found := strings.Cut(s, ReferenceSeparator)
	if err := ValidateID(id); err != nil {
		return Reference{}, ErrInvalidReference
	}
	if found && password == "" {
		return Reference{}, ErrInvalidReference
	}
	return Reference{ID: id, Password: password}, nil
}

// ValidateID checks an identifier against the URL-safe base64 alphabet.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}
