package domain

import "errors"

// Error taxonomy shared by the services and mapped to HTTP statuses by the API layer
var (
	ErrInvalidInput   = errors.New("invalid input")            // Missing or malformed fields
	ErrDuplicateEmail = errors.New("email already registered") // Conflict on registration
	ErrAuthFailure    = errors.New("invalid credentials")      // Unknown email or wrong password, indistinguishable
	ErrNotFound       = errors.New("not found")                // Referenced identity vanished
)
