// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared by all endpoints. Two
// envelopes exist:
//
//   - ErrorResponse {request_id, code, message} for auth, analysis and
//     dashboard routes.
//   - NFTResponse {success, data} / {success:false, error, message} for the
//     /api/nft routes, whose clients branch on "success".
//
// fail() and failNFT() centralize error logging: 5xx responses are logged
// with the request-scoped logger.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "patient not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rehab-rewards-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"patient not found"`
}

// NFTResponse is the success envelope of the NFT routes.
type NFTResponse struct {
	Success bool `json:"success" example:"true"`
	Data    any  `json:"data"`
}

// NFTErrorResponse is the failure envelope of the NFT routes. Error is a
// short summary of the failed operation, Message the underlying reason.
type NFTErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error" example:"Failed to generate and mint NFT"`
	Message   string `json:"message" example:"mint failed: insufficient funds"`
	Code      string `json:"code" example:"mint_failed"`
	RequestID string `json:"request_id,omitempty"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	logServerError(c, status, code, msg)
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail(), used by the router for NoRoute.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr translates a service error with classify and calls fail.
func failErr(c *gin.Context, err error) {
	status, code := classify(err)
	fail(c, status, code, err.Error())
}

// failNFT writes the NFT failure envelope. summary names the operation for
// 5xx responses; 4xx responses use a validation summary.
func failNFT(c *gin.Context, err error, summary string) {
	status, code := classify(err)
	if status < http.StatusInternalServerError {
		summary = http.StatusText(status)
		if code == ErrCodeMissingField {
			summary = "Missing required fields"
		}
	}
	logServerError(c, status, code, err.Error())
	c.AbortWithStatusJSON(status, NFTErrorResponse{
		Error:     summary,
		Message:   err.Error(),
		Code:      code,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
	})
}

func logServerError(c *gin.Context, status int, code, msg string) {
	if status < http.StatusInternalServerError {
		return
	}
	middleware.LoggerFrom(c).Error().
		Int("status", status).
		Str("code", code).
		Str("message", msg).
		Msg("api error")
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// okNFT writes the NFT success envelope.
func okNFT(c *gin.Context, data any) {
	c.JSON(http.StatusOK, NFTResponse{Success: true, Data: data})
}
