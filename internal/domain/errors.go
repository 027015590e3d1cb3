package domain

import "errors"

// Error kinds shared by all layers. Package-level sentinels wrap one of
// these so callers can branch on the kind with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrIntegrity     = errors.New("integrity violation")
)
