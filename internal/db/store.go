package db

import (
	"context" // Request-scoped queries
	"errors"  // Error matching

	"finance_tracker/internal/domain"  // Importing domain models
	"finance_tracker/internal/storage" // Storage contract

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Association clauses
)

var _ storage.Store = (*Store)(nil)

// Store is the GORM-backed implementation of storage.Store
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open GORM connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a user, mapping unique violations to storage.ErrAlreadyExists
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return storage.ErrAlreadyExists
	}
	// Not every driver translates constraint errors, so check for the row directly
	if _, findErr := s.FindUserByEmail(ctx, user.Email); findErr == nil {
		return storage.ErrAlreadyExists
	}
	return err
}

// FindUserByEmail fetches a user by email
func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, notFound(err)
}

// FindUserByID fetches a user by primary key
func (s *Store) FindUserByID(ctx context.Context, id uint) (domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	return user, notFound(err)
}

// DeleteUser removes a user and its transactions atomically
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete owned transactions first; the FK cascade covers drivers where it is enforced
		if err := tx.Where("user_id = ?", id).Delete(&domain.Transaction{}).Error; err != nil {
			return err // Return error to rollback
		}
		res := tx.Delete(&domain.User{}, id)
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound // Nothing to delete, rollback
		}
		return nil // Commit transaction
	})
}

// CreateTransaction inserts a ledger entry without touching the owner row
func (s *Store) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(tx).Error
}

// ListTransactionsByUser returns the owner's entries ordered by id descending
func (s *Store) ListTransactionsByUser(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id desc").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
