package apperrors

import "errors"

// Error kinds shared by the store, the validation layer and the metrics engine.
// Callers classify failures with errors.Is against these sentinels.
var (
	// ErrConflict is a uniqueness violation
	ErrConflict = errors.New("conflict")
	// ErrNotFound means the referenced institution or keyed row is absent
	ErrNotFound = errors.New("not found")
	// ErrRange means a year or amount is outside its permitted bounds
	ErrRange = errors.New("value out of range")
	// ErrValidation means a field value is malformed
	ErrValidation = errors.New("validation failed")
	// ErrDataGap means a metric needs a joined value that is missing
	ErrDataGap = errors.New("data gap")

	// ErrPermissionDenied is returned for writes without the loader role
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTokenExpired is returned for expired bearer tokens
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed or badly signed tokens
	ErrTokenInvalid = errors.New("invalid token")
	// ErrInvalidFormat is returned when the Authorization header cannot be parsed
	ErrInvalidFormat = errors.New("invalid token format")
)

// Institution errors
var (
	ErrInstitutionNotFound      = NewResourceNotFoundError("institution not found")
	ErrInstitutionAlreadyExists = NewConflictError("institution with this name and state already exists")
)

// NewResourceNotFoundError creates a not-found error with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewRangeError creates a range error with a message
func NewRangeError(message string) error {
	return &CustomError{
		Err:     ErrRange,
		Message: message,
	}
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidation,
		Message: message,
	}
}

// NewDataGapError creates a data gap error with a message
func NewDataGapError(message string) error {
	return &CustomError{
		Err:     ErrDataGap,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
