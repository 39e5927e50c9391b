package api

import (
	"net/http" // HTTP status codes

	"finance_tracker/internal/domain"     // Importing domain models
	"finance_tracker/internal/ledger"     // Transaction ledger
	"finance_tracker/internal/middleware" // Identity from context

	"github.com/gin-gonic/gin" // Gin web framework
)

// TransactionRequest represents a new ledger entry
type TransactionRequest struct {
	Description string   `json:"description" binding:"required"` // What the money was for
	Amount      *float64 `json:"amount" binding:"required"`      // Signed amount, zero allowed
	Category    string   `json:"category" binding:"required"`    // Free-form label
}

// TransactionResponse is the public view of a transaction
type TransactionResponse struct {
	ID          uint    `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

func toResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
	}
}

// AddTransactionHandler records a transaction for the authenticated user
func AddTransactionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TransactionRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		tx, err := l.Add(c.Request.Context(), userID, req.Description, *req.Amount, req.Category)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toResponse(tx))
	}
}

// ListTransactionsHandler returns the authenticated user's transactions, newest first
func ListTransactionsHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c) // Get userID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		txs, err := l.ListFor(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]TransactionResponse, len(txs))
		// Map transactions to response format
		for i, t := range txs {
			resp[i] = toResponse(t)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SummaryHandler returns income, expense and per-category totals for the authenticated user
func SummaryHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		summary, err := l.Summarize(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
