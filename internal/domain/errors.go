package domain

import (
	"errors"
	"fmt"
)

// ValidationError is returned by constructors and mutators when an invariant
// does not hold. Message is stable and shown to clients verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) *ValidationError { return &ValidationError{Message: msg} }

// Validation errors, compared with errors.Is.
var (
	ErrFirstNameRequired = invalid("First name is required")
	ErrLastNameRequired  = invalid("Last name is required")
	ErrEmailRequired     = invalid("Email is required")
	ErrPhoneRequired     = invalid("Phone number is required")
	ErrPasswordRequired  = invalid("Password is required")
	ErrRoleRequired      = invalid("Role is required")
	ErrRoleInvalid       = invalid("Role must be one of admin, coach, player.")
	ErrRoleImmutable     = invalid("Role cannot be changed.")

	ErrPlayerUserRequired = invalid("Player must be a user")
	ErrCoachUserRequired  = invalid("Coach must be a user")

	ErrTeamNameRequired  = invalid("Team name is required.")
	ErrTeamCoachRequired = invalid("Team must have a coach.")

	ErrGameDateRequired  = invalid("Game date is required.")
	ErrTeamsRequired     = invalid("Teams are required.")
	ErrTwoTeamsRequired  = invalid("Exactly two teams are required.")
	ErrGameTeamsDistinct = invalid("A game needs two different teams.")
)

// NotFoundError reports a lookup key that resolved to nothing.
type NotFoundError struct {
	Kind  string // "User", "Team", ...
	Field string // "id", "email", "user id"
	Value any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %v does not exist.", e.Kind, e.Field, e.Value)
}

// NotFound is shorthand for the common by-id case.
func NotFound(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, Field: "id", Value: id}
}

// ConflictError is returned when a write collides with existing state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

var (
	ErrEmailTaken = &ConflictError{Message: "User with this email already exists."}
	ErrTeamInUse  = &ConflictError{Message: "Team is still scheduled in one or more games."}
)

// AuthenticationError never says which half of the credentials was wrong.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

var ErrInvalidCredentials = &AuthenticationError{Message: "Invalid username or password."}

// StorageMessage is the only text clients see for persistence failures.
const StorageMessage = "Database error, see server log for details."

// StorageError hides a persistence failure behind StorageMessage while
// keeping the cause available to errors.Is/As and to the server log.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return StorageMessage }

func (e *StorageError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
