package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Role determines a user's authorization level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Never expose the password hash.
	Role           Role      `json:"role"`
	Active         bool      `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a new active User with the given name and email.
// It generates a new UUID for the user ID and sets the creation/update
// timestamps. The caller is responsible for hashing the password and
// assigning HashedPassword before the user is stored.
func NewUser(name, email string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      RoleUser,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks the user's fields, collecting every violation.
func (u *User) Validate() error {
	verr := &ValidationError{}

	if u.Name == "" {
		verr.Add("name", "is required")
	} else if utf8.RuneCountInString(u.Name) > 100 {
		verr.Add("name", "must not exceed 100 characters")
	}

	if u.Email == "" {
		verr.Add("email", "is required")
	} else if !validEmailFormat(u.Email) {
		verr.Add("email", "must be a valid email address")
	}

	if !u.Role.Valid() {
		verr.Add("role", "must be user or admin")
	}

	return verr.OrNil()
}

// validEmailFormat performs a structural check: local part, one @, and a
// domain containing an interior dot. Full RFC 5322 validation happens at the
// request layer with the validator package; this guards entities constructed
// outside that path.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
