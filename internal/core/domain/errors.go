package domain

import "errors"

// Stable machine-readable error codes returned in API error envelopes.
const (
	CodeAuthorization = "AUTHORIZATION"
	CodeScope         = "SCOPE"
	CodeValidation    = "VALIDATION"
	CodeConflict      = "CONFLICT"
)

// AuthorizationError means the role is not permitted to use the portal
// pipeline at all (platform owners and tenant admins use the admin track).
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// ScopeError means the role is permitted but resolves to an empty effective
// device set, or a device-level precondition failed (e.g. heartbeat on an
// inactive device).
type ScopeError struct {
	Reason string
}

func (e *ScopeError) Error() string { return e.Reason }

// ValidationError means the input was malformed: short search query, missing
// required branch claim, unknown role.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ErrVersionConflict signals a lost optimistic-concurrency race on a device
// document. It is retried internally and never surfaces to callers.
var ErrVersionConflict = errors.New("device version conflict")

var ErrDeviceNotFound = errors.New("device not found")
var ErrCategoryNotFound = errors.New("category not found")

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
