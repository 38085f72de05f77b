// Package identity manages user accounts and credential checks.
package identity

import "time"

// User is a registered learner or administrator account.
type User struct {
	ID           string    `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"user_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}

// UserUpdate carries partial account changes; nil fields are left untouched.
// A new password is hashed before it reaches storage.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"user_name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// LookupField selects which unique column a lookup matches on. Using a closed
// enum instead of a column-name string keeps unknown fields unrepresentable.
type LookupField int

const (
	ByID LookupField = iota
	ByEmail
	ByUsername
)

func (f LookupField) String() string {
	switch f {
	case ByID:
		return "id"
	case ByEmail:
		return "email"
	case ByUsername:
		return "username"
	default:
		return "unknown"
	}
}

// LookupKey pairs a lookup field with its value.
type LookupKey struct {
	Field LookupField
	Value string
}

// UserByID builds a lookup key matching on user_id.
func UserByID(id string) LookupKey { return LookupKey{Field: ByID, Value: id} }

// UserByEmail builds a lookup key matching on email.
func UserByEmail(email string) LookupKey { return LookupKey{Field: ByEmail, Value: email} }

// UserByUsername builds a lookup key matching on user_name.
func UserByUsername(name string) LookupKey { return LookupKey{Field: ByUsername, Value: name} }
