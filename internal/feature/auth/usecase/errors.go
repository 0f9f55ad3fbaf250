// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login fails. It deliberately does not say
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a password does not meet the minimum length.
	ErrWeakPassword = errors.New("password is too short")

	// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-byte input limit.
	ErrPasswordTooLong = errors.New("password is too long")

	// ErrNameRequired is returned when the name is empty after trimming.
	ErrNameRequired = errors.New("name is required")

	// ErrTokenNotRefreshable is returned when a token is past its refresh window.
	ErrTokenNotRefreshable = errors.New("token can no longer be refreshed")
)
