// Package domain holds the TeamTrack entities and the invariants they enforce
// at construction. Nothing here touches storage or transport.
package domain

import "strings"

// User is an account. ID is zero until the user has been stored. Password
// holds the bcrypt digest once persisted and is never serialised.
type User struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"-"`
	Role        Role   `json:"role"`
}

// NewUser validates u and returns a copy. Checks run in field order and the
// first failure is returned.
func NewUser(u User) (*User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	u.Email = strings.TrimSpace(u.Email)
	return &u, nil
}

func (u *User) Validate() error {
	switch {
	case blank(u.FirstName):
		return ErrFirstNameRequired
	case blank(u.LastName):
		return ErrLastNameRequired
	case blank(u.Email):
		return ErrEmailRequired
	case blank(u.PhoneNumber):
		return ErrPhoneRequired
	case blank(u.Password):
		return ErrPasswordRequired
	case blank(string(u.Role)):
		return ErrRoleRequired
	case !u.Role.Valid():
		return ErrRoleInvalid
	}
	return nil
}

// FullName is "First Last".
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Equal compares every field except ID.
func (u *User) Equal(o *User) bool {
	if u == nil || o == nil {
		return u == o
	}
	return u.FirstName == o.FirstName &&
		u.LastName == o.LastName &&
		u.Email == o.Email &&
		u.PhoneNumber == o.PhoneNumber &&
		u.Password == o.Password &&
		u.Role == o.Role
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
