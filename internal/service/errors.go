package service

import "errors"

var (
	// ErrForbidden is returned by every role or ownership guard; it carries
	// no detail about which check failed.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyBooked is the idempotent-failure outcome of a duplicate
	// booking attempt. The roster is unchanged when it is returned.
	ErrAlreadyBooked = errors.New("session already booked")

	// ErrInvalidInterval covers malformed dates and clock values as well as
	// start >= end.
	ErrInvalidInterval = errors.New("invalid session interval")

	ErrValidation = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAvatarNotSet means the user has never uploaded a profile photo.
	ErrAvatarNotSet = errors.New("no avatar uploaded")
)
