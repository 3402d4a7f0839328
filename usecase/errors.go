package usecase

import "errors"

// Failure classes the handlers translate into HTTP statuses. Ownership
// violations surface as the same not-found errors as missing records so
// callers cannot probe for foreign notes.
var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrVersionNotFound  = errors.New("version not found")
	ErrReminderNotFound = errors.New("no reminder found for this note")

	ErrEmailExists        = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTwoFactorRequired  = errors.New("two-factor code required")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError marks missing or malformed input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err maps to a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoteNotFound) ||
		errors.Is(err, ErrVersionNotFound) ||
		errors.Is(err, ErrReminderNotFound)
}
