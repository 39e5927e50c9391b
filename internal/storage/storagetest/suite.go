// Package storagetest holds a contract suite every storage backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage"

	"github.com/stretchr/testify/suite"
)

// ContractSuite exercises a storage.Store. NewStore must return an empty store.
type ContractSuite struct {
	suite.Suite
	NewStore func(t *testing.T) storage.Store

	store storage.Store
	ctx   context.Context
}

// SetupTest opens a fresh store for every test
func (s *ContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore(s.T())
}

// TearDownTest closes the store
func (s *ContractSuite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
}

func (s *ContractSuite) createUser(email string) domain.User {
	u := domain.User{Email: email, PasswordHash: "hash-of-" + email}
	s.Require().NoError(s.store.CreateUser(s.ctx, &u))
	s.Require().NotZero(u.ID)
	return u
}

func (s *ContractSuite) addTx(owner uint, desc string, amount float64) domain.Transaction {
	t := domain.Transaction{Description: desc, Amount: amount, Category: "misc", UserID: owner}
	s.Require().NoError(s.store.CreateTransaction(s.ctx, &t))
	s.Require().NotZero(t.ID)
	return t
}

func (s *ContractSuite) TestCreateAndFindUser() {
	u := s.createUser("alice@example.com")

	byEmail, err := s.store.FindUserByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
	s.Equal("hash-of-alice@example.com", byEmail.PasswordHash)

	byID, err := s.store.FindUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("alice@example.com", byID.Email)
}

func (s *ContractSuite) TestUserIDsAreDistinct() {
	a := s.createUser("a@example.com")
	b := s.createUser("b@example.com")
	s.NotEqual(a.ID, b.ID)
}

func (s *ContractSuite) TestDuplicateEmailKeepsFirstRecord() {
	first := s.createUser("dup@example.com")

	second := domain.User{Email: "dup@example.com", PasswordHash: "other"}
	err := s.store.CreateUser(s.ctx, &second)
	s.ErrorIs(err, storage.ErrAlreadyExists)

	got, err := s.store.FindUserByEmail(s.ctx, "dup@example.com")
	s.Require().NoError(err)
	s.Equal(first.ID, got.ID)
	s.Equal(first.PasswordHash, got.PasswordHash)
}

func (s *ContractSuite) TestFindMissingUser() {
	_, err := s.store.FindUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, storage.ErrNotFound)

	_, err = s.store.FindUserByID(s.ctx, 4242)
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *ContractSuite) TestListEmptyIsNotNil() {
	u := s.createUser("empty@example.com")
	txs, err := s.store.ListTransactionsByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.NotNil(txs)
	s.Empty(txs)
}

func (s *ContractSuite) TestListIsScopedAndDescending() {
	alice := s.createUser("alice@example.com")
	bob := s.createUser("bob@example.com")

	// Interleave writes across owners
	for i := 0; i < 5; i++ {
		s.addTx(alice.ID, fmt.Sprintf("alice-%d", i), float64(-i))
		s.addTx(bob.ID, fmt.Sprintf("bob-%d", i), float64(i))
	}

	for _, owner := range []domain.User{alice, bob} {
		txs, err := s.store.ListTransactionsByUser(s.ctx, owner.ID)
		s.Require().NoError(err)
		s.Len(txs, 5)
		for i, t := range txs {
			s.Equal(owner.ID, t.UserID)
			if i > 0 {
				s.Greater(txs[i-1].ID, t.ID, "ids must be strictly descending")
			}
		}
	}
}

func (s *ContractSuite) TestTransactionFieldsRoundTrip() {
	u := s.createUser("fields@example.com")
	in := domain.Transaction{Description: "Coffee, large", Amount: -4.5, Category: "food", UserID: u.ID}
	s.Require().NoError(s.store.CreateTransaction(s.ctx, &in))

	txs, err := s.store.ListTransactionsByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal(in.ID, txs[0].ID)
	s.Equal("Coffee, large", txs[0].Description)
	s.Equal(-4.5, txs[0].Amount)
	s.Equal("food", txs[0].Category)
}

func (s *ContractSuite) TestDuplicateTransactionsAllowed() {
	u := s.createUser("twice@example.com")
	a := s.addTx(u.ID, "Rent", -900)
	b := s.addTx(u.ID, "Rent", -900)
	s.NotEqual(a.ID, b.ID)
}

func (s *ContractSuite) TestDeleteUserCascades() {
	gone := s.createUser("gone@example.com")
	kept := s.createUser("kept@example.com")
	s.addTx(gone.ID, "x", 1)
	s.addTx(kept.ID, "y", 2)

	s.Require().NoError(s.store.DeleteUser(s.ctx, gone.ID))

	_, err := s.store.FindUserByID(s.ctx, gone.ID)
	s.ErrorIs(err, storage.ErrNotFound)
	txs, err := s.store.ListTransactionsByUser(s.ctx, gone.ID)
	s.Require().NoError(err)
	s.Empty(txs)

	txs, err = s.store.ListTransactionsByUser(s.ctx, kept.ID)
	s.Require().NoError(err)
	s.Len(txs, 1)
}

func (s *ContractSuite) TestDeleteMissingUser() {
	s.ErrorIs(s.store.DeleteUser(s.ctx, 999), storage.ErrNotFound)
}

func (s *ContractSuite) TestConcurrentAdds() {
	u := s.createUser("busy@example.com")
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			t := domain.Transaction{Description: fmt.Sprintf("t%d", i), Amount: 1, Category: "c", UserID: u.ID}
			errs <- s.store.CreateTransaction(s.ctx, &t)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}
	txs, err := s.store.ListTransactionsByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Len(txs, 20)
}
