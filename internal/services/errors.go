package services

import "errors"

// Domain failures the handlers branch on. Anything else coming out of a
// service is a persistence failure and surfaces as a 500.
var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrGuardianConsentRequired = errors.New("guardian consent required")
	ErrJobNotFound             = errors.New("job not found")
	ErrApplicationNotFound     = errors.New("application not found")
	ErrJobNotAccepting         = errors.New("job is not accepting applications")
	ErrDuplicateApplication    = errors.New("already applied to this job")
	ErrInvalidStatus           = errors.New("invalid application status")
)
