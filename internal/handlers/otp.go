package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talenthr/talenthr/internal/services"
	"github.com/talenthr/talenthr/pkg/response"
)

// PasswordHandler drives the OTP-backed forgot/reset password flow.
type PasswordHandler struct {
	otps  *services.OTPService
	users *services.UserService
}

// NewPasswordHandler wires the password recovery endpoints.
func NewPasswordHandler(otps *services.OTPService, users *services.UserService) *PasswordHandler {
	return &PasswordHandler{otps: otps, users: users}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Forgot issues a reset code. The response never reveals whether the email
// belongs to an account.
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	_, _ = h.otps.Issue(requestContext(c), req.Email, services.OTPPurposePasswordReset)
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

type resetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6"`
	Password string `json:"password" validate:"required,min=8"`
}

// Reset consumes the code and replaces the password. All sessions of the
// account are revoked.
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := requestContext(c)
	if err := h.otps.Verify(ctx, req.Email, services.OTPPurposePasswordReset, req.Code); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.users.ResetPassword(ctx, req.Email, req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

// OTPHandler exposes the generic one-time code endpoints used for email
// ownership checks.
type OTPHandler struct {
	otps *services.OTPService
}

// NewOTPHandler wires the OTP endpoints.
func NewOTPHandler(otps *services.OTPService) *OTPHandler {
	return &OTPHandler{otps: otps}
}

type otpRequestRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required"`
}

// Request issues a fresh code, replacing any outstanding one for the same
// email and purpose. The response never reveals whether the email is known.
func (h *OTPHandler) Request(c *gin.Context) {
	var req otpRequestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if _, err := h.otps.Issue(requestContext(c), req.Email, req.Purpose); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

type otpVerifyRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"required"`
	Code    string `json:"code" validate:"required,len=6"`
}

// Verify consumes a code. Invalid, expired and mismatched codes all produce
// the same error.
func (h *OTPHandler) Verify(c *gin.Context) {
	var req otpVerifyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.otps.Verify(requestContext(c), req.Email, req.Purpose, req.Code); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true})
}
