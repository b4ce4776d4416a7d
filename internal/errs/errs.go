package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyTaken is matched by every AlreadyTakenError through errors.Is.
	ErrAlreadyTaken = errors.New("already taken")

	ErrNotFound         = errors.New("not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrWeakPassword     = errors.New("password too weak")
	ErrInvalidUsername  = errors.New("invalid username")
	ErrInvalidName      = errors.New("invalid name")
	ErrRateLimited      = errors.New("rate limited")
	ErrInviteUnusable   = errors.New("invite is expired or exhausted")
	ErrInvalidFlagValue = errors.New("invalid flag value")
)

// AlreadyTakenError reports a uniqueness conflict on a named field.
type AlreadyTakenError struct {
	What    string
	Message string
}

func (e *AlreadyTakenError) Error() string {
	return fmt.Sprintf("%s already taken: %s", e.What, e.Message)
}

func (e *AlreadyTakenError) Is(target error) bool {
	return target == ErrAlreadyTaken
}

// UsernameTaken is the conflict returned when a username insert collides.
func UsernameTaken() *AlreadyTakenError {
	return &AlreadyTakenError{What: "username", Message: "Username is already taken"}
}

// AsAlreadyTaken unwraps err into an AlreadyTakenError if it carries one.
func AsAlreadyTaken(err error) (*AlreadyTakenError, bool) {
	var taken *AlreadyTakenError
	if errors.As(err, &taken) {
		return taken, true
	}
	return nil, false
}
