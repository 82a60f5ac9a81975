package service

import "errors"

var (
	// ErrNotFound means the action referenced a student not in the
	// expected state. No mutation happened.
	ErrNotFound = errors.New("student not found in the expected state")

	// ErrNotApproved means the student has no approved registration.
	ErrNotApproved = errors.New("student is not approved for this exam")

	// ErrAdminRequired means the caller failed admin verification.
	ErrAdminRequired = errors.New("admin access required")

	// ErrNotifyFailed wraps an outbound notification failure. The
	// transition it guarded has been rolled back and may be retried.
	ErrNotifyFailed = errors.New("failed to notify the admin channel")
)
