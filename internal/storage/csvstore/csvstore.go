// Package csvstore persists users and transactions as two CSV files in one directory.
//
// Reads load the whole file; writes append a single record. Deleting a user
// rewrites both files through a temporary file and a rename, after recording
// the next ids in sequence.csv so removed ids are never handed out again.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/storage"
)

const (
	usersFile        = "users.csv"
	transactionsFile = "transactions.csv"
	sequenceFile     = "sequence.csv"
)

var (
	userHeader        = []string{"id", "email", "password_hash"}
	transactionHeader = []string{"id", "description", "amount", "category", "user_id"}
	sequenceHeader    = []string{"table", "next_id"}
)

var _ storage.Store = (*Store)(nil)

// Store is a flat-file backend rooted at a directory.
type Store struct {
	mu       sync.Mutex
	dir      string
	nextUser uint
	nextTx   uint
}

// Open prepares dir, creating the files with their headers when missing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create csv dir: %w", err)
	}
	s := &Store{dir: dir}
	for name, header := range map[string][]string{usersFile: userHeader, transactionsFile: transactionHeader} {
		if err := s.ensureFile(name, header); err != nil {
			return nil, err
		}
	}
	users, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	txs, err := s.readTransactions()
	if err != nil {
		return nil, err
	}
	seq, err := s.readSequence()
	if err != nil {
		return nil, err
	}
	s.nextUser = max(1, seq[usersFile])
	for _, u := range users {
		if u.ID >= s.nextUser {
			s.nextUser = u.ID + 1
		}
	}
	s.nextTx = max(1, seq[transactionsFile])
	for _, t := range txs {
		if t.ID >= s.nextTx {
			s.nextTx = t.ID + 1
		}
	}
	return s, nil
}

// readSequence returns the recorded next id per data file; missing means none recorded.
func (s *Store) readSequence() (map[string]uint, error) {
	seq := map[string]uint{}
	if _, err := os.Stat(s.path(sequenceFile)); errors.Is(err, os.ErrNotExist) {
		return seq, nil
	}
	records, err := s.readAll(sequenceFile)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if len(rec) != len(sequenceHeader) {
			return nil, fmt.Errorf("%s line %d: want %d fields, got %d", sequenceFile, i+2, len(sequenceHeader), len(rec))
		}
		next, err := strconv.ParseUint(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad next_id: %w", sequenceFile, i+2, err)
		}
		seq[rec[0]] = uint(next)
	}
	return seq, nil
}

func (s *Store) writeSequence() error {
	return s.rewrite(sequenceFile, sequenceHeader, [][]string{
		{usersFile, strconv.FormatUint(uint64(s.nextUser), 10)},
		{transactionsFile, strconv.FormatUint(uint64(s.nextTx), 10)},
	})
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) ensureFile(name string, header []string) error {
	_, err := os.Stat(s.path(name))
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	return s.rewrite(name, header, nil)
}

// readAll returns every record of a file, header excluded.
func (s *Store) readAll(name string) ([][]string, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return records, nil
}

// appendRecord writes one record at the end of a file.
func (s *Store) appendRecord(name string, record []string) error {
	f, err := os.OpenFile(s.path(name), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(record); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", name, err)
	}
	return f.Close()
}

// rewrite replaces a file atomically with header plus records.
func (s *Store) rewrite(name string, header []string, records [][]string) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	w := csv.NewWriter(tmp)
	err = w.Write(header)
	if err == nil {
		err = w.WriteAll(records) // WriteAll flushes
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), s.path(name))
}

func (s *Store) readUsers() ([]domain.User, error) {
	records, err := s.readAll(usersFile)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(userHeader) {
			return nil, fmt.Errorf("%s line %d: want %d fields, got %d", usersFile, i+2, len(userHeader), len(rec))
		}
		id, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad id: %w", usersFile, i+2, err)
		}
		users = append(users, domain.User{ID: uint(id), Email: rec[1], PasswordHash: rec[2]})
	}
	return users, nil
}

func (s *Store) readTransactions() ([]domain.Transaction, error) {
	records, err := s.readAll(transactionsFile)
	if err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(transactionHeader) {
			return nil, fmt.Errorf("%s line %d: want %d fields, got %d", transactionsFile, i+2, len(transactionHeader), len(rec))
		}
		id, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad id: %w", transactionsFile, i+2, err)
		}
		amount, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad amount: %w", transactionsFile, i+2, err)
		}
		owner, err := strconv.ParseUint(rec[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad user_id: %w", transactionsFile, i+2, err)
		}
		txs = append(txs, domain.Transaction{
			ID:          uint(id),
			Description: rec[1],
			Amount:      amount,
			Category:    rec[3],
			UserID:      uint(owner),
		})
	}
	return txs, nil
}

func userRecord(u domain.User) []string {
	return []string{strconv.FormatUint(uint64(u.ID), 10), u.Email, u.PasswordHash}
}

func transactionRecord(t domain.Transaction) []string {
	return []string{
		strconv.FormatUint(uint64(t.ID), 10),
		t.Description,
		strconv.FormatFloat(t.Amount, 'f', -1, 64),
		t.Category,
		strconv.FormatUint(uint64(t.UserID), 10),
	}
}

// CreateUser appends a user row unless the email is taken.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.readUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == user.Email {
			return storage.ErrAlreadyExists
		}
	}
	user.ID = s.nextUser
	if err := s.appendRecord(usersFile, userRecord(*user)); err != nil {
		user.ID = 0
		return err
	}
	s.nextUser++
	return nil
}

// FindUserByEmail scans users.csv for the email.
func (s *Store) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.Email == email })
}

// FindUserByID scans users.csv for the id.
func (s *Store) FindUserByID(_ context.Context, id uint) (domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.ID == id })
}

func (s *Store) findUser(match func(domain.User) bool) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.readUsers()
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, storage.ErrNotFound
}

// DeleteUser rewrites both files without the user and its transactions.
// Transactions go first so a failure never leaves rows pointing at a missing user.
func (s *Store) DeleteUser(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.readUsers()
	if err != nil {
		return err
	}
	var keptUsers [][]string
	found := false
	for _, u := range users {
		if u.ID == id {
			found = true
			continue
		}
		keptUsers = append(keptUsers, userRecord(u))
	}
	if !found {
		return storage.ErrNotFound
	}
	txs, err := s.readTransactions()
	if err != nil {
		return err
	}
	var keptTxs [][]string
	for _, t := range txs {
		if t.UserID != id {
			keptTxs = append(keptTxs, transactionRecord(t))
		}
	}
	if err := s.writeSequence(); err != nil {
		return err
	}
	if err := s.rewrite(transactionsFile, transactionHeader, keptTxs); err != nil {
		return err
	}
	return s.rewrite(usersFile, userHeader, keptUsers)
}

// CreateTransaction appends a transaction row.
func (s *Store) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextTx
	if err := s.appendRecord(transactionsFile, transactionRecord(*tx)); err != nil {
		tx.ID = 0
		return err
	}
	s.nextTx++
	return nil
}

// ListTransactionsByUser reads transactions.csv and returns the owner's rows, newest first.
func (s *Store) ListTransactionsByUser(_ context.Context, userID uint) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs, err := s.readTransactions()
	if err != nil {
		return nil, err
	}
	out := []domain.Transaction{}
	for _, t := range txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Close is a no-op; files are opened per operation.
func (s *Store) Close() error {
	return nil
}
