// Package storage defines the persistence contract shared by every backend.
package storage

import (
	"context"
	"errors"

	"finance_tracker/internal/domain"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore persists identities and their password hashes.
type UserStore interface {
	// CreateUser inserts the user and sets its ID. Returns ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	FindUserByID(ctx context.Context, id uint) (domain.User, error)
	// DeleteUser removes the user together with every transaction it owns.
	DeleteUser(ctx context.Context, id uint) error
}

// TransactionStore persists ledger entries.
type TransactionStore interface {
	// CreateTransaction inserts the entry and sets its ID.
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	// ListTransactionsByUser returns the owner's entries, newest (highest id) first.
	ListTransactionsByUser(ctx context.Context, userID uint) ([]domain.Transaction, error)
}

// Store is a complete backend.
type Store interface {
	UserStore
	TransactionStore
	Close() error
}
