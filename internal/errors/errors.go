package errors

import "fmt"

// ErrorCode represents a Chroni error code.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"         // 404
	ErrReadError       ErrorCode = "READ_ERROR"        // 422
	ErrMalformedDelta  ErrorCode = "MALFORMED_DELTA"   // 500 (stored payload corrupt)
	ErrVersionNotFound ErrorCode = "VERSION_NOT_FOUND" // 404
	ErrVersionConflict ErrorCode = "VERSION_CONFLICT"  // 409
	ErrChainIntegrity  ErrorCode = "CHAIN_INTEGRITY"   // 500 (storage corrupt or prior bug)
	ErrSnapshotExists  ErrorCode = "SNAPSHOT_EXISTS"   // 409
	ErrInternal        ErrorCode = "INTERNAL"          // 500
)

// ChroniError represents a structured error with code, status, and details.
type ChroniError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ChroniError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ChroniError {
	return &ChroniError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a path with no tracking state or history.
func NewNotFound(path string) *ChroniError {
	return &ChroniError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no history for path: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewReadError creates an error for unreadable or non-text file content.
// Encoding failures surface here rather than becoming a phantom version.
func NewReadError(path string, cause error) *ChroniError {
	msg := fmt.Sprintf("cannot read %s as text", path)
	if cause != nil {
		msg = fmt.Sprintf("cannot read %s as text: %v", path, cause)
	}
	return &ChroniError{
		Code:    ErrReadError,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
	}
}

// NewMalformedDelta creates an error for a delta payload that cannot be
// parsed or applied. Fatal for the single materialize call that hit it.
func NewMalformedDelta(msg string) *ChroniError {
	return &ChroniError{
		Code:    ErrMalformedDelta,
		Status:  500,
		Message: msg,
	}
}

// NewVersionNotFound creates a 404 error for an absent (path, version).
func NewVersionNotFound(path string, version int) *ChroniError {
	return &ChroniError{
		Code:    ErrVersionNotFound,
		Status:  404,
		Message: fmt.Sprintf("version %d not found for %s", version, path),
		Details: map[string]any{"path": path, "version": version},
	}
}

// NewVersionConflict creates a 409 error for a (path, version) append
// collision. Recoverable: the caller re-reads the latest version and retries.
func NewVersionConflict(path string, version int) *ChroniError {
	return &ChroniError{
		Code:    ErrVersionConflict,
		Status:  409,
		Message: fmt.Sprintf("version %d already exists for %s", version, path),
		Details: map[string]any{"path": path, "version": version},
	}
}

// NewChainIntegrity creates a 500 error for a corrupt version chain
// (gap in version numbers, or a chain whose first record is not full).
func NewChainIntegrity(path string, msg string) *ChroniError {
	return &ChroniError{
		Code:    ErrChainIntegrity,
		Status:  500,
		Message: fmt.Sprintf("chain for %s: %s", path, msg),
		Details: map[string]any{"path": path},
	}
}

// NewSnapshotNotFound creates a 404 error for an unknown snapshot name.
func NewSnapshotNotFound(name string) *ChroniError {
	return &ChroniError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("snapshot %q not found", name),
		Details: map[string]any{"name": name},
	}
}

// NewSnapshotExists creates a 409 error for a snapshot name collision.
func NewSnapshotExists(name string) *ChroniError {
	return &ChroniError{
		Code:    ErrSnapshotExists,
		Status:  409,
		Message: fmt.Sprintf("snapshot %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ChroniError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ChroniError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a ChroniError with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := err.(*ChroniError); ok {
		return cErr.Code == code
	}
	return false
}
