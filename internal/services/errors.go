// Package services defines the business logic for provisioning exercise
// records, generating achievement images, minting reward NFTs, analyzing
// exercise videos, accounts and the doctor dashboard. This file centralizes
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"strings"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
)

// Validation errors.
var (
	// ErrMissingField is wrapped by *FieldError when mandatory input is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidInput covers malformed values (range, format, enum).
	ErrInvalidInput = errors.New("invalid input")
)

// Provisioning errors.
var (
	// ErrNoPatientAvailable is returned when no patient id was given and the
	// store holds no patients to fall back to.
	ErrNoPatientAvailable = errors.New("no patient available")

	// ErrNoDoctorAvailable is returned when a routine must be created but no
	// doctor exists to assign it to.
	ErrNoDoctorAvailable = errors.New("no doctor available to assign routine")

	// ErrPatientNotFound indicates an explicit patient id that does not exist.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrCompletionNotFound indicates an explicit completion id that does not exist.
	ErrCompletionNotFound = errors.New("exercise completion not found")
)

// Dashboard errors.
var (
	// ErrExerciseNotFound indicates a routine referencing an unknown exercise.
	ErrExerciseNotFound = errors.New("exercise not found")

	// ErrRoutineExerciseNotFound is returned when a completion names a
	// routine exercise that does not exist or belongs to another patient.
	ErrRoutineExerciseNotFound = errors.New("routine exercise not found")
)

// Collaborator errors.
var (
	// ErrMissingConfig aliases config.ErrMissingConfig so handlers depend on
	// services only.
	ErrMissingConfig = config.ErrMissingConfig

	// ErrMintFailed wraps any failure of the mint collaborator.
	ErrMintFailed = errors.New("mint failed")

	// ErrUpstreamAuth is returned when the AI service rejects the API key.
	ErrUpstreamAuth = errors.New("invalid API key")

	// ErrUpstreamRateLimited is returned when the AI service keeps answering 429.
	ErrUpstreamRateLimited = errors.New("rate limit exceeded, please try again later")

	// ErrAnalysisFailed wraps other AI analysis failures.
	ErrAnalysisFailed = errors.New("video analysis failed")
)

// Account errors.
var (
	// ErrEmailTaken is returned by signup for an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned by signin on unknown email or bad password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrProfileNotFound is returned when an account's profile row is missing.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrForbidden is returned when the caller's role may not perform an action.
	ErrForbidden = errors.New("forbidden")
)

// FieldError lists the mandatory fields that were missing.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Unwrap makes errors.Is(err, ErrMissingField) hold.
func (e *FieldError) Unwrap() error { return ErrMissingField }

// missing returns a *FieldError for the named fields, or nil when none.
func missing(fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return &FieldError{Fields: fields}
}
