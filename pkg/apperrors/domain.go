package apperrors

import (
	"net/http"
)

// Factories and predefined variables for domain-level errors.

// ErrNotFound converts a repository miss (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict marks a lost concurrent race. Safe to retry after re-fetching.
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrPermissionDenied marks an authorization-policy rejection from the
// store or the application. Remediation is a policy fix, not a retry.
func ErrPermissionDenied(err error, domain, message string) *AppError {
	return Wrap(err, CodePermissionDenied, domain, message, http.StatusForbidden)
}

// ErrTransientIO marks a network or storage hiccup. Safe to retry with
// backoff; non-critical paths may degrade instead.
func ErrTransientIO(err error, domain string) *AppError {
	return Wrap(err, CodeTransientIO, domain, "Temporary storage failure, retry later", http.StatusServiceUnavailable)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

var ErrInsufficientPermissions = New(
	CodePermissionDenied,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrActivationRequired rejects task actions from writers who have not paid
// the activation fee. Enforced server-side regardless of what the UI shows.
var ErrActivationRequired = New(
	CodePermissionDenied,
	"activation",
	"Account activation required before claiming work",
	http.StatusForbidden,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)
