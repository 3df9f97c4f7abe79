package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
)

const (
	AccountsFile     = "accounts.txt"
	CustomersFile    = "customers.txt"
	TransactionsFile = "transactions.txt"
)

// FileStore persists the ledger as three comma-separated text files, each
// starting with a header row.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	return &FileStore{dir: dir, logger: logger}
}

func (s *FileStore) LoadCustomers(ctx context.Context) ([]*models.Customer, error) {
	return readRecords(s, CustomersFile, customerHeader, parseCustomerRecord)
}

func (s *FileStore) LoadAccounts(ctx context.Context) ([]models.Account, error) {
	return readRecords(s, AccountsFile, accountHeader, parseAccountRecord)
}

func (s *FileStore) LoadTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return readRecords(s, TransactionsFile, transactionHeader, parseTransactionRecord)
}

func (s *FileStore) SaveCustomers(ctx context.Context, customers []*models.Customer) error {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, customerRecord(c))
	}
	return s.writeRecords(CustomersFile, customerHeader, rows)
}

func (s *FileStore) SaveAccounts(ctx context.Context, accounts []models.Account) error {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, accountRecord(a))
	}
	return s.writeRecords(AccountsFile, accountHeader, rows)
}

func (s *FileStore) SaveTransactions(ctx context.Context, transactions []*models.Transaction) error {
	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, transactionRecord(t))
	}
	return s.writeRecords(TransactionsFile, transactionHeader, rows)
}

// readRecords parses every data row of name. A missing file is an empty
// collection. Rows that fail to parse are logged and skipped.
func readRecords[T any](s *FileStore, name string, header []string, parse func([]string) (T, error)) ([]T, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var out []T
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if pe, ok := err.(*csv.ParseError); ok {
				s.skip(errors.NewMalformedRecordError(name, pe.Line, "", pe.Err))
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		line, _ := r.FieldPos(0)

		if first {
			first = false
			if isHeader(rec, header) {
				continue
			}
		}

		v, err := parse(rec)
		if err != nil {
			s.skip(errors.NewMalformedRecordError(name, line, strings.Join(rec, ","), err))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func isHeader(rec, header []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), header[0])
}

func (s *FileStore) skip(err error) {
	s.logger.Warn("skipping malformed record", "error", err.Error())
}

// writeRecords writes to a temporary file and renames it over the target, so
// readers never observe a partially written file.
func (s *FileStore) writeRecords(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	w.Write(header)
	w.WriteAll(rows)
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
