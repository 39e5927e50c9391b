// Package auth holds the credential store: registration and password verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// Service registers users and verifies their passwords. Plaintext passwords never leave it.
type Service struct {
	users    storage.UserStore
	validate *validator.Validate
	cost     int
	decoy    *decoyHash
	compare  func(hash, password []byte) error
}

// decoyHash is compared against when the email is unknown, so both login
// failures spend the same bcrypt work.
type decoyHash struct {
	once sync.Once
	cost int
	hash []byte
}

func (d *decoyHash) get() []byte {
	d.once.Do(func() {
		// Fails only for a cost above bcrypt.MaxCost
		d.hash, _ = bcrypt.GenerateFromPassword([]byte("decoy password"), d.cost)
	})
	return d.hash
}

// NewService builds a Service over users hashing at bcrypt.DefaultCost.
func NewService(users storage.UserStore) *Service {
	return &Service{
		users:    users,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
		decoy:    &decoyHash{cost: bcrypt.DefaultCost},
		compare:  bcrypt.CompareHashAndPassword,
	}
}

// WithCost returns a copy hashing at cost. Tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	cp := *s
	cp.cost = cost
	cp.decoy = &decoyHash{cost: cost}
	return &cp
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a new user with a salted hash of password and returns its id.
func (s *Service) Register(ctx context.Context, email, password string) (uint, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return 0, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return 0, fmt.Errorf("%w: email is not a valid address", domain.ErrInvalidInput)
	}
	if len(password) > maxPasswordBytes {
		return 0, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
	}).Info("User registered")
	return user.ID, nil
}

// Verify checks a password against the stored hash. Unknown email and wrong
// password both yield domain.ErrAuthFailure.
func (s *Service) Verify(ctx context.Context, email, password string) (uint, error) {
	user, err := s.users.FindUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = s.compare(s.decoy.get(), []byte(password))
			return 0, domain.ErrAuthFailure
		}
		return 0, fmt.Errorf("find user: %w", err)
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return 0, domain.ErrAuthFailure
	}
	return user.ID, nil
}

// Profile returns the user behind an identity, domain.ErrNotFound if it is gone.
func (s *Service) Profile(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
