package ledger

import (
	"context"
	"math"
	"testing"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage/memstore"
	"finance_tracker/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// LedgerSuite runs the ledger over a memory store, with and without the Redis cache
type LedgerSuite struct {
	suite.Suite
	withCache bool

	store  *memstore.Store
	ledger *Ledger
	mr     *miniredis.Miniredis
	ctx    context.Context
	alice  uint
	bob    uint
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()
	var cache Cache
	if s.withCache {
		s.mr = miniredis.RunT(s.T())
		rdb := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
		s.T().Cleanup(func() { rdb.Close() })
		cache = utils.NewCache(rdb, time.Minute)
	}
	s.ledger = New(s.store, cache)

	s.alice = s.createUser("alice@example.com")
	s.bob = s.createUser("bob@example.com")
}

func (s *LedgerSuite) createUser(email string) uint {
	u := domain.User{Email: email, PasswordHash: "h"}
	s.Require().NoError(s.store.CreateUser(s.ctx, &u))
	return u.ID
}

func (s *LedgerSuite) TestAddReturnsStoredTransaction() {
	tx, err := s.ledger.Add(s.ctx, s.alice, " Coffee ", -4.5, "food")
	s.Require().NoError(err)
	s.NotZero(tx.ID)
	s.Equal("Coffee", tx.Description)
	s.Equal(-4.5, tx.Amount)
	s.Equal(s.alice, tx.UserID)
}

func (s *LedgerSuite) TestAddRejectsInvalidInput() {
	cases := []struct {
		desc, category string
		amount         float64
	}{
		{"", "food", 1},
		{"  ", "food", 1},
		{"Coffee", "", 1},
		{"Coffee", "food", math.NaN()},
		{"Coffee", "food", math.Inf(-1)},
	}
	for _, c := range cases {
		_, err := s.ledger.Add(s.ctx, s.alice, c.desc, c.amount, c.category)
		s.ErrorIs(err, domain.ErrInvalidInput)
	}
	txs, err := s.ledger.ListFor(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Empty(txs)
}

func (s *LedgerSuite) TestListForIsScopedAndNewestFirst() {
	for i, amount := range []float64{10, -20, 30} {
		_, err := s.ledger.Add(s.ctx, s.alice, "a", amount, "c")
		s.Require().NoError(err, "add %d", i)
		_, err = s.ledger.Add(s.ctx, s.bob, "b", amount, "c")
		s.Require().NoError(err)
	}

	txs, err := s.ledger.ListFor(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Require().Len(txs, 3)
	s.Equal(30.0, txs[0].Amount)
	s.Equal(10.0, txs[2].Amount)
	for i, t := range txs {
		s.Equal(s.alice, t.UserID)
		if i > 0 {
			s.Greater(txs[i-1].ID, t.ID)
		}
	}
}

func (s *LedgerSuite) TestListForEmptyOwner() {
	txs, err := s.ledger.ListFor(s.ctx, s.bob)
	s.Require().NoError(err)
	s.NotNil(txs)
	s.Empty(txs)

	// Second read may come from the cache and must still be a non-nil slice
	txs, err = s.ledger.ListFor(s.ctx, s.bob)
	s.Require().NoError(err)
	s.NotNil(txs)
}

func (s *LedgerSuite) TestAddInvalidatesCachedReads() {
	_, err := s.ledger.Add(s.ctx, s.alice, "first", 1, "c")
	s.Require().NoError(err)
	txs, err := s.ledger.ListFor(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Len(txs, 1)
	summary, err := s.ledger.Summarize(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(1, summary.Count)

	_, err = s.ledger.Add(s.ctx, s.alice, "second", 2, "c")
	s.Require().NoError(err)
	txs, err = s.ledger.ListFor(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Len(txs, 2)
	summary, err = s.ledger.Summarize(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(2, summary.Count)
	s.Equal(3.0, summary.Income)
}

func (s *LedgerSuite) TestSummarize() {
	for _, in := range []struct {
		amount   float64
		category string
	}{{5000, "salary"}, {-4.5, "food"}, {-10.5, "food"}, {-85, "rent"}} {
		_, err := s.ledger.Add(s.ctx, s.alice, "entry", in.amount, in.category)
		s.Require().NoError(err)
	}
	summary, err := s.ledger.Summarize(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(4, summary.Count)
	s.Equal(5000.0, summary.Income)
	s.Equal(100.0, summary.Expense)
	s.Equal(4900.0, summary.Balance)
	s.Require().Len(summary.ByCategory, 3)
	s.Equal(domain.CategoryTotal{Category: "food", Amount: -15, Count: 2}, summary.ByCategory[0])
}

func TestLedgerWithoutCache(t *testing.T) {
	suite.Run(t, &LedgerSuite{})
}

func TestLedgerWithRedisCache(t *testing.T) {
	suite.Run(t, &LedgerSuite{withCache: true})
}

func TestListServedFromCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := memstore.New()
	l := New(store, utils.NewCache(rdb, time.Minute))

	u := domain.User{Email: "a@example.com"}
	require.NoError(t, store.CreateUser(ctx, &u))
	_, err := l.Add(ctx, u.ID, "Coffee", -4.5, "food")
	require.NoError(t, err)

	_, err = l.ListFor(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(listKey(u.ID, 2)), "Add bumps the generation before and after the write")

	// A write behind the ledger's back stays invisible until the entry is dropped
	require.NoError(t, store.CreateTransaction(ctx, &domain.Transaction{Description: "x", Amount: 1, Category: "c", UserID: u.ID}))
	txs, err := l.ListFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestCacheOutageRejectsWritesServesReads(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	store := memstore.New()
	l := New(store, utils.NewCache(rdb, time.Minute))
	mr.Close()

	u := domain.User{Email: "a@example.com"}
	require.NoError(t, store.CreateUser(ctx, &u))
	_, err = l.Add(ctx, u.ID, "Coffee", -4.5, "food")
	assert.ErrorIs(t, err, ErrCacheUnavailable)
	stored, err := store.ListTransactionsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored, "nothing is written while reads cannot be retired")

	require.NoError(t, store.CreateTransaction(ctx, &domain.Transaction{Description: "x", Amount: 1, Category: "c", UserID: u.ID}))
	txs, err := l.ListFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

// gatedStore pauses list reads after they have hit the store, and can run a
// hook before each insert.
type gatedStore struct {
	*memstore.Store
	read     chan struct{}
	release  chan struct{}
	onCreate func()
}

func (g *gatedStore) ListTransactionsByUser(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	txs, err := g.Store.ListTransactionsByUser(ctx, userID)
	if g.read != nil {
		g.read <- struct{}{}
		<-g.release
	}
	return txs, err
}

func (g *gatedStore) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	if g.onCreate != nil {
		g.onCreate()
	}
	return g.Store.CreateTransaction(ctx, tx)
}

func TestListRacingAddDoesNotHideTheWrite(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := &gatedStore{Store: memstore.New(), read: make(chan struct{}), release: make(chan struct{})}
	l := New(store, utils.NewCache(rdb, time.Minute))

	u := domain.User{Email: "a@example.com"}
	require.NoError(t, store.CreateUser(ctx, &u))

	done := make(chan error, 1)
	go func() {
		_, err := l.ListFor(ctx, u.ID) // Reads the empty list, then stalls before caching it
		done <- err
	}()
	<-store.read
	_, err := l.Add(ctx, u.ID, "Coffee", -4.5, "food")
	require.NoError(t, err)
	close(store.release)
	require.NoError(t, <-done)

	store.read = nil
	txs, err := l.ListFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	summary, err := l.Summarize(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
}

func TestFailedInvalidationIsReported(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	store := &gatedStore{Store: memstore.New()}
	l := New(store, utils.NewCache(rdb, time.Minute))

	u := domain.User{Email: "a@example.com"}
	require.NoError(t, store.CreateUser(ctx, &u))
	txs, err := l.ListFor(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, txs)

	// Redis goes away between the insert and the second bump
	store.onCreate = func() { mr.SetError("LOADING Redis is loading the dataset in memory") }
	tx, err := l.Add(ctx, u.ID, "Coffee", -4.5, "food")
	assert.ErrorIs(t, err, ErrCacheUnavailable)
	assert.NotZero(t, tx.ID)

	store.onCreate = nil
	mr.SetError("")
	txs, err = l.ListFor(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
