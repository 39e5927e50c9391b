// Package memstore keeps users and transactions in process memory.
package memstore

import (
	"context"
	"sync"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is an in-memory backend. Each instance owns its data; there is no package-level state.
type Store struct {
	mu       sync.Mutex
	users    []domain.User
	txs      []domain.Transaction
	nextUser uint
	nextTx   uint
}

// New returns an empty store.
func New() *Store {
	return &Store{nextUser: 1, nextTx: 1}
}

// CreateUser appends the user after checking the email is free.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return storage.ErrAlreadyExists
		}
	}
	user.ID = s.nextUser
	s.nextUser++
	s.users = append(s.users, *user)
	return nil
}

// FindUserByEmail looks a user up by email.
func (s *Store) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, storage.ErrNotFound
}

// FindUserByID looks a user up by id.
func (s *Store) FindUserByID(_ context.Context, id uint) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, storage.ErrNotFound
}

// DeleteUser drops the user and its transactions.
func (s *Store) DeleteUser(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, u := range s.users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return storage.ErrNotFound
	}
	s.users = append(s.users[:idx], s.users[idx+1:]...)
	kept := s.txs[:0]
	for _, t := range s.txs {
		if t.UserID != id {
			kept = append(kept, t)
		}
	}
	s.txs = kept
	return nil
}

// CreateTransaction appends the entry.
func (s *Store) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextTx
	s.nextTx++
	stored := *tx
	stored.User = nil
	s.txs = append(s.txs, stored)
	return nil
}

// ListTransactionsByUser walks the log backwards so the newest entry comes first.
func (s *Store) ListTransactionsByUser(_ context.Context, userID uint) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Transaction{}
	for i := len(s.txs) - 1; i >= 0; i-- {
		if s.txs[i].UserID == userID {
			out = append(out, s.txs[i])
		}
	}
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
