// Account HTTP handlers.
//
// This file exposes:
//   - POST /api/auth/signup  (create a doctor or patient account)
//   - POST /api/auth/signin  (exchange credentials for a bearer token)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/services"
)

// SigninRequest is the JSON payload of POST /api/auth/signin.
type SigninRequest struct {
	Email    string `json:"email" example:"dr.lee@clinic.example"`
	Password string `json:"password" example:"correct horse battery"`
}

// Signup godoc
// @ID          signup
// @Summary     Register an account
// @Description Creates a doctor (name, license, specialization) or patient (name, walletAddress, medicalConditions) profile with its login, and returns a bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      services.SignupRequest  true  "Account and profile"
// @Success     201   {object}  services.AuthResult
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     409   {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500   {object}  handlers.ErrorResponse
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if h.authSvc == nil {
		failErr(c, config.Missing("auth service"))
		return
	}
	res, err := h.authSvc.Signup(c.Request.Context(), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, res)
}

// Signin godoc
// @ID          signin
// @Summary     Sign in
// @Description Verifies credentials and returns a bearer token with the account's profile.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SigninRequest  true  "Credentials"
// @Success     200   {object}  services.AuthResult
// @Failure     400   {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     404   {object}  handlers.ErrorResponse  "Profile missing"
// @Router      /auth/signin [post]
func (h *Handlers) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if h.authSvc == nil {
		failErr(c, config.Missing("auth service"))
		return
	}
	res, err := h.authSvc.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}
