// internal/common/apperrors/errors.go
// Error taxonomy shared across modules

package apperrors

import "errors"

var (
	// ErrAuth means a mutating operation was attempted without a valid session.
	ErrAuth = errors.New("authentication required")

	// ErrFetch wraps remote read failures. A single attempt per invocation,
	// no retry; callers surface it and may re-trigger via cache invalidation.
	ErrFetch = errors.New("fetch failed")

	// ErrWrite wraps insert/update/delete failures.
	ErrWrite = errors.New("write failed")

	// ErrUpload wraps blob upload failures.
	ErrUpload = errors.New("upload failed")

	// ErrForbidden means the caller does not own the row it tried to mutate.
	// Always surfaced explicitly, never degraded to a zero-row no-op.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is the terminal "no such row" outcome.
	ErrNotFound = errors.New("not found")
)

// IsAuth reports whether err is (or wraps) ErrAuth.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// IsForbidden reports whether err is (or wraps) ErrForbidden.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
