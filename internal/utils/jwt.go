package utils

import (
	"errors"  // Error classification
	"strconv" // Subject formatting
	"time"    // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// TokenTTL is the lifetime of every issued token
const TokenTTL = time.Hour

// Token verification failures
var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
)

// JWT Claims
type Claims struct {
	UserID               uint `json:"user_id"` // Custom claim for user ID
	jwt.RegisteredClaims                       // Standard JWT claims
}

// TokenIssuer signs and verifies HS256 bearer tokens with a process-wide secret
type TokenIssuer struct {
	secret []byte           // HMAC key
	ttl    time.Duration    // Token lifetime
	now    func() time.Time // Clock, replaceable in tests
}

// NewTokenIssuer creates an issuer with the fixed one hour TTL
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// WithClock returns a copy of the issuer reading time from now
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *t
	cp.now = now
	return &cp
}

// TTL returns the token lifetime
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue creates a JWT token for a given user ID
func (t *TokenIssuer) Issue(userID uint) (string, error) {
	now := t.now()
	// Set token claims
	claims := Claims{
		UserID: userID, // Custom claim for user ID
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10), // Identity as subject
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),     // Token expires after the TTL
			IssuedAt:  jwt.NewNumericDate(now),                // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(t.secret)                        // Sign the token with the secret
}

// Verify parses and validates a JWT token string and returns the user ID it carries
func (t *TokenIssuer) Verify(tokenStr string) (uint, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), // Reject alg switching
		jwt.WithExpirationRequired(),                                 // Tokens without exp never verify
		jwt.WithTimeFunc(t.now),                                      // Expiry against the issuer clock
	)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return t.secret, nil // Return the secret key for validation
	})
	// Check for parsing errors
	if err != nil {
		return 0, classify(err)
	}
	// Validate token and extract claims
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return 0, ErrTokenMalformed
	}
	return claims.UserID, nil
}

// classify maps jwt library errors onto the issuer's taxonomy
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenBadSignature
	default:
		return ErrTokenMalformed
	}
}
