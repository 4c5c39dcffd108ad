// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the fail() and failNFT() helpers in this package) and the
// translation of service errors into (status, code, message). Codes give
// clients a stable, machine-readable taxonomy next to the human message.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes (bad_request, unauthorized, not_found) mirror HTTP status
//     semantics; domain codes (mint_failed, email_taken) name the failed step.
//   - Messages of collaborator failures are forwarded verbatim, since clients
//     show them to the user as is.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "missing_field",
//	  "message": "missing required fields: walletAddress"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/tbourn/rehab-rewards-backend/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeMissingField       = "missing_field"
	ErrCodeInvalidInput       = "invalid_input"
	ErrCodeMissingConfig      = "missing_config"
	ErrCodeNoPatient          = "no_patient_available"
	ErrCodeNoDoctor           = "no_doctor_available"
	ErrCodeMintFailed         = "mint_failed"
	ErrCodeAnalysisFailed     = "analysis_failed"
	ErrCodeUpstreamAuth       = "upstream_auth"
	ErrCodeEmailTaken         = "email_taken"
	ErrCodeInvalidCredentials = "invalid_credentials"
)

// classify maps a service error to its HTTP status and code. The message is
// always err.Error(), so wrapped detail (the missing setting, the failing
// collaborator's reason) reaches the client.
func classify(err error) (status int, code string) {
	var fe *services.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, ErrCodeMissingField
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeInvalidInput
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, services.ErrPatientNotFound),
		errors.Is(err, services.ErrCompletionNotFound),
		errors.Is(err, services.ErrExerciseNotFound),
		errors.Is(err, services.ErrRoutineExerciseNotFound),
		errors.Is(err, services.ErrProfileNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, ErrCodeEmailTaken
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeInvalidCredentials
	case errors.Is(err, services.ErrUpstreamAuth):
		return http.StatusUnauthorized, ErrCodeUpstreamAuth
	case errors.Is(err, services.ErrUpstreamRateLimited):
		return http.StatusTooManyRequests, ErrCodeRateLimited
	case errors.Is(err, services.ErrMissingConfig):
		return http.StatusInternalServerError, ErrCodeMissingConfig
	case errors.Is(err, services.ErrNoPatientAvailable):
		return http.StatusInternalServerError, ErrCodeNoPatient
	case errors.Is(err, services.ErrNoDoctorAvailable):
		return http.StatusInternalServerError, ErrCodeNoDoctor
	case errors.Is(err, services.ErrMintFailed):
		return http.StatusInternalServerError, ErrCodeMintFailed
	case errors.Is(err, services.ErrAnalysisFailed):
		return http.StatusInternalServerError, ErrCodeAnalysisFailed
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
