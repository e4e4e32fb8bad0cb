package database

import "errors"

// Sentinel errors returned by the postgres repositories. Services compare
// against these with errors.Is.
var (
	ErrRecruitmentNotFound   = errors.New("recruitment not found")
	ErrDirectionNotFound     = errors.New("direction not found")
	ErrDirectionUserNotFound = errors.New("direction user not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrCourseNotFound        = errors.New("course not found")
	ErrExamNotFound          = errors.New("exam not found")
	ErrResultNotFound        = errors.New("exam result not found")
	ErrTaskNotFound          = errors.New("provisioning task not found")

	// ErrAlreadyDeclared signals the guarded declare transition hit a row
	// that is already declared. Callers must treat it as a no-op, not a
	// reason to re-notify.
	ErrAlreadyDeclared = errors.New("direction user already declared")

	// ErrDuplicateDirectionUser signals a (direction, user) pair that is
	// already joined.
	ErrDuplicateDirectionUser = errors.New("user already attached to direction")

	// ErrDuplicateRecord signals a lost insert race on the notification
	// dedup table. The round was already sent by another sweep.
	ErrDuplicateRecord = errors.New("notification record already exists")

	// ErrNoTask signals an empty queue on Claim.
	ErrNoTask = errors.New("no queued task")
)
