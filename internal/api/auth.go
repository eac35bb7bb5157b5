package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"yamdb/internal/auth" // Signup and token exchange
)

// SignupRequest is the payload for self-registration
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150"` // Requested username
	Email    string `json:"email" binding:"required,max=254"`    // Address the code is sent to
}

// SignupResponse echoes the registered account
type SignupResponse struct {
	Username string `json:"username"` // Registered username
	Email    string `json:"email"`    // Registered email
}

// TokenRequest is the payload for exchanging a confirmation code
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`          // Registered username
	ConfirmationCode string `json:"confirmation_code" binding:"required"` // Code delivered at signup
}

// TokenResponse carries the issued access token
type TokenResponse struct {
	Token string `json:"access_token"` // JWT token
}

// SignupHandler registers a user and sends a confirmation code
func SignupHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		u, err := svc.Signup(c.Request.Context(), req.Username, req.Email)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, SignupResponse{Username: u.Username, Email: u.Email})
	}
}

// TokenHandler exchanges a confirmation code for an access token
func TokenHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		token, err := svc.ExchangeToken(c.Request.Context(), req.Username, req.ConfirmationCode)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, TokenResponse{Token: token})
	}
}
