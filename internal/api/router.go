package api

import (
	"net/http" // HTTP status codes
	"time"     // Uptime

	"finance_tracker/internal/auth"       // Credential store
	"finance_tracker/internal/ledger"     // Transaction ledger
	"finance_tracker/internal/middleware" // Auth and logging middleware
	"finance_tracker/internal/utils"      // Token issuer

	"github.com/gin-gonic/gin" // Gin web framework
)

// Deps are the components the HTTP layer composes
type Deps struct {
	Credentials *auth.Service
	Tokens      *utils.TokenIssuer
	Ledger      *ledger.Ledger
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	started := time.Now()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime": time.Since(started).Truncate(time.Second).String()})
	})

	// Auth routes
	r.POST("/register", RegisterHandler(deps.Credentials))        // Registration endpoint
	r.POST("/login", LoginHandler(deps.Credentials, deps.Tokens)) // Login endpoint

	// Protected routes; the token check runs before any handler
	protected := r.Group("")
	protected.Use(middleware.JWTAuthMiddleware(deps.Tokens))
	protected.GET("/profile", ProfileHandler(deps.Credentials))          // Profile endpoint
	protected.GET("/transactions", ListTransactionsHandler(deps.Ledger)) // Transaction history endpoint
	protected.POST("/transactions", AddTransactionHandler(deps.Ledger))  // Add transaction endpoint
	protected.GET("/transactions/summary", SummaryHandler(deps.Ledger))  // Totals endpoint

	return r
}
