// Package ledger records transactions and answers owner-scoped queries.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage"

	"github.com/sirupsen/logrus"
)

// Cache is the read-through cache used for list and summary reads.
// Entries are keyed by a per-owner generation that every Add bumps, so a
// read that raced a write can only ever fill a key nobody asks for again.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) (int64, error)
}

// ErrCacheUnavailable reports that the owner's cached reads could not be
// retired around a write.
var ErrCacheUnavailable = errors.New("transaction cache unavailable")

// Ledger scopes every read and write to an owner.
type Ledger struct {
	txs   storage.TransactionStore
	cache Cache // nil disables caching
}

// New returns a Ledger over txs. cache may be nil.
func New(txs storage.TransactionStore, cache Cache) *Ledger {
	return &Ledger{txs: txs, cache: cache}
}

func genKey(owner uint) string {
	return "txgen:user:" + strconv.FormatUint(uint64(owner), 10)
}

func listKey(owner uint, gen int64) string {
	return "txhistory:user:" + strconv.FormatUint(uint64(owner), 10) + ":g" + strconv.FormatInt(gen, 10)
}

func summaryKey(owner uint, gen int64) string {
	return "txsummary:user:" + strconv.FormatUint(uint64(owner), 10) + ":g" + strconv.FormatInt(gen, 10)
}

// Add records a transaction for owner and returns it with its id set.
func (l *Ledger) Add(ctx context.Context, owner uint, description string, amount float64, category string) (domain.Transaction, error) {
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	if description == "" || category == "" {
		return domain.Transaction{}, fmt.Errorf("%w: description and category are required", domain.ErrInvalidInput)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return domain.Transaction{}, fmt.Errorf("%w: amount must be a finite number", domain.ErrInvalidInput)
	}
	// Retire cached reads before the write as well as after it; if Redis is
	// unreachable now nothing is stored.
	if err := l.bump(ctx, owner); err != nil {
		return domain.Transaction{}, err
	}
	tx := domain.Transaction{
		Description: description,
		Amount:      amount,
		Category:    category,
		UserID:      owner,
	}
	if err := l.txs.CreateTransaction(ctx, &tx); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": owner,
			"amount":  amount,
			"error":   err.Error(),
		}).Error("Add transaction failed")
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":        owner,
		"transaction_id": tx.ID,
		"amount":         amount,
		"category":       category,
	}).Info("Transaction added")
	return tx, l.bump(ctx, owner)
}

// ListFor returns owner's transactions, highest id first. Never nil.
func (l *Ledger) ListFor(ctx context.Context, owner uint) ([]domain.Transaction, error) {
	gen, cacheable := l.generation(ctx, owner)
	key := listKey(owner, gen)
	var cached []domain.Transaction
	if cacheable && l.cacheGet(ctx, key, &cached) {
		if cached == nil {
			cached = []domain.Transaction{}
		}
		return cached, nil
	}
	txs, err := l.txs.ListTransactionsByUser(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	if cacheable {
		l.cacheSet(ctx, key, txs)
	}
	return txs, nil
}

// Summarize aggregates owner's transactions into totals and per-category sums.
func (l *Ledger) Summarize(ctx context.Context, owner uint) (domain.Summary, error) {
	gen, cacheable := l.generation(ctx, owner)
	key := summaryKey(owner, gen)
	var cached domain.Summary
	if cacheable && l.cacheGet(ctx, key, &cached) {
		return cached, nil
	}
	txs, err := l.ListFor(ctx, owner)
	if err != nil {
		return domain.Summary{}, err
	}
	summary := domain.Summarize(txs)
	if cacheable {
		l.cacheSet(ctx, key, summary)
	}
	return summary, nil
}

// Read-side cache failures degrade to store reads; they are logged, never returned.

func (l *Ledger) generation(ctx context.Context, owner uint) (int64, bool) {
	if l.cache == nil {
		return 0, false
	}
	gen, err := l.cache.Generation(ctx, genKey(owner))
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": owner, "error": err.Error()}).Warn("Cache generation read failed")
		return 0, false
	}
	return gen, true
}

func (l *Ledger) cacheGet(ctx context.Context, key string, dest any) bool {
	if l.cache == nil {
		return false
	}
	found, err := l.cache.Get(ctx, key, dest)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
		return false
	}
	return found
}

func (l *Ledger) cacheSet(ctx context.Context, key string, value any) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(ctx, key, value); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
}

func (l *Ledger) bump(ctx context.Context, owner uint) error {
	if l.cache == nil {
		return nil
	}
	if _, err := l.cache.Bump(ctx, genKey(owner)); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": owner, "error": err.Error()}).Error("Cache invalidation failed")
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
