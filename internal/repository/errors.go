package repository

import "errors"

// Integrity errors. Callers are expected to correct their input; none of
// these are retried.
var (
	// ErrDuplicateEmail is returned when inserting an email whose mail id is
	// already stored.
	ErrDuplicateEmail = errors.New("email with this mail id already exists")

	// ErrUnknownThread is returned when inserting a summary for a thread with
	// no stored emails.
	ErrUnknownThread = errors.New("thread has no stored emails")

	// ErrActionNotFound is returned when an action id resolves to nothing.
	ErrActionNotFound = errors.New("action not found")

	// ErrEmailNotFound is returned when a mail id resolves to nothing.
	ErrEmailNotFound = errors.New("email not found")
)
