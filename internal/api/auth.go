package api

import (
	"net/http" // HTTP status codes

	"finance_tracker/internal/auth"       // Credential store
	"finance_tracker/internal/middleware" // Identity from context
	"finance_tracker/internal/utils"      // Token issuer

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login; empty fields fail as bad credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Response struct for authentication
type AuthResponse struct {
	AccessToken string `json:"access_token"` // JWT token
	TokenType   string `json:"token_type"`   // Always "Bearer"
	ExpiresIn   int64  `json:"expires_in"`   // Lifetime in seconds
}

// Response struct for the profile endpoint
type ProfileResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// RegisterHandler creates a user from an email and password
func RegisterHandler(creds *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c)
			return
		}
		id, err := creds.Register(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err) // 400, 409 or 500
			return
		}
		// Return success response without any credential material
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "id": id})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(creds *auth.Service, tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		userID, err := creds.Verify(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err) // 401 on bad credentials
			return
		}
		// Generate JWT token
		token, err := tokens.Issue(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(tokens.TTL().Seconds()),
		})
	}
}

// ProfileHandler returns the authenticated user's id and email
func ProfileHandler(creds *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := creds.Profile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err) // 404 when the identity no longer exists
			return
		}
		c.JSON(http.StatusOK, ProfileResponse{ID: user.ID, Email: user.Email})
	}
}
