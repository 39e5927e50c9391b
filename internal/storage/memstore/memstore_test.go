package memstore

import (
	"context"
	"testing"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage"
	"finance_tracker/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestMemStoreContract(t *testing.T) {
	suite.Run(t, &storagetest.ContractSuite{
		NewStore: func(*testing.T) storage.Store { return New() },
	})
}

func TestStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	a, b := New(), New()

	u := domain.User{Email: "solo@example.com", PasswordHash: "h"}
	require.NoError(t, a.CreateUser(ctx, &u))

	_, err := b.FindUserByEmail(ctx, "solo@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateTransactionDropsUserPointer(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := &domain.User{ID: 7, Email: "x@example.com"}
	tx := domain.Transaction{Description: "d", Amount: 1, Category: "c", UserID: 7, User: owner}
	require.NoError(t, s.CreateTransaction(ctx, &tx))

	txs, err := s.ListTransactionsByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Nil(t, txs[0].User)
}
