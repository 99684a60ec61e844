package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NotFound("Game", 99)
	assert.Equal(t, "Game with id 99 does not exist.", err.Error())
	assert.True(t, IsNotFound(err))

	byEmail := &NotFoundError{Kind: "User", Field: "email", Value: "a@b.c"}
	assert.Equal(t, "User with email a@b.c does not exist.", byEmail.Error())
}

func TestStorageErrorHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &StorageError{Err: cause}

	assert.Equal(t, "Database error, see server log for details.", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestErrorKinds(t *testing.T) {
	var conflict *ConflictError
	assert.True(t, errors.As(ErrEmailTaken, &conflict))
	assert.Equal(t, "User with this email already exists.", ErrEmailTaken.Error())

	var authErr *AuthenticationError
	assert.True(t, errors.As(ErrInvalidCredentials, &authErr))
	assert.Equal(t, "Invalid username or password.", ErrInvalidCredentials.Error())

	assert.False(t, IsValidation(ErrEmailTaken))
	assert.True(t, IsValidation(ErrTeamsRequired))
}
