package repositories

import "errors"

type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "not found"
}

func IsNotFound(err error) bool {
	var target *ErrNotFound
	return errors.As(err, &target)
}

type ErrUserExists struct {
	Username string
}

func (e *ErrUserExists) Error() string {
	return "user already exists: " + e.Username
}

func IsUserExists(err error) bool {
	var target *ErrUserExists
	return errors.As(err, &target)
}
