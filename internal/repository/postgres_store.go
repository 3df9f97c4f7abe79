package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id   TEXT PRIMARY KEY,
		customer_type TEXT NOT NULL,
		name          TEXT NOT NULL,
		age           INT NOT NULL,
		contact       TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		account_number TEXT PRIMARY KEY,
		account_type   TEXT NOT NULL,
		customer_id    TEXT NOT NULL,
		balance        DOUBLE PRECISION NOT NULL,
		status         TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		seq            BIGINT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		account_number TEXT NOT NULL,
		type           TEXT NOT NULL,
		amount         DOUBLE PRECISION NOT NULL,
		balance_after  DOUBLE PRECISION NOT NULL,
		occurred_at    TIMESTAMPTZ NOT NULL
	)`,
}

// PostgresStore keeps the same three collections as tables. Each save
// replaces a table's contents inside a single database transaction.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the ledger tables if they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) LoadCustomers(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT customer_type, customer_id, name, age, contact, address, email
		FROM customers ORDER BY customer_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for line := 1; rows.Next(); line++ {
		var customerType, id, name, contact, address, email string
		var age int
		if err := rows.Scan(&customerType, &id, &name, &age, &contact, &address, &email); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		c, err := buildCustomer(customerType, id, name, age, contact, address, email)
		if err != nil {
			s.skip("customers", line, id, err)
			continue
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over customers: %w", err)
	}
	return customers, nil
}

func (s *PostgresStore) LoadAccounts(ctx context.Context) ([]models.Account, error) {
	query := `SELECT account_type, account_number, customer_id, balance, status
		FROM accounts ORDER BY account_number`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for line := 1; rows.Next(); line++ {
		var accountType, number, customerID, status string
		var balance float64
		if err := rows.Scan(&accountType, &number, &customerID, &balance, &status); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a, err := buildAccount(accountType, number, customerID, balance)
		if err != nil {
			s.skip("accounts", line, number, err)
			continue
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}
	return accounts, nil
}

func (s *PostgresStore) LoadTransactions(ctx context.Context) ([]*models.Transaction, error) {
	query := `SELECT transaction_id, account_number, type, amount, balance_after, occurred_at
		FROM transactions ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for line := 1; rows.Next(); line++ {
		var id, accountNumber, txType string
		var amount, balanceAfter float64
		var at time.Time
		if err := rows.Scan(&id, &accountNumber, &txType, &amount, &balanceAfter, &at); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t, err := buildTransaction(id, accountNumber, txType, amount, balanceAfter, at.In(time.Local))
		if err != nil {
			s.skip("transactions", line, id, err)
			continue
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}
	return transactions, nil
}

func (s *PostgresStore) SaveCustomers(ctx context.Context, customers []*models.Customer) error {
	return s.replace(ctx, "customers", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO customers
			(customer_id, customer_type, name, age, contact, address, email)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, c := range customers {
			if _, err := stmt.ExecContext(ctx, c.ID, string(c.Type), c.Name, c.Age, c.Contact, c.Address, c.Email); err != nil {
				if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
					return fmt.Errorf("%w: %s", errors.ErrCustomerAlreadyExists, c.ID)
				}
				return fmt.Errorf("insert customer %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) SaveAccounts(ctx context.Context, accounts []models.Account) error {
	return s.replace(ctx, "accounts", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO accounts
			(account_number, account_type, customer_id, balance, status)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range accounts {
			if _, err := stmt.ExecContext(ctx, a.Number(), string(a.Type()), a.CustomerID(), a.Balance(), a.Status()); err != nil {
				if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
					return fmt.Errorf("%w: %s", errors.ErrAccountAlreadyExists, a.Number())
				}
				return fmt.Errorf("insert account %s: %w", a.Number(), err)
			}
		}
		return nil
	})
}

// SaveTransactions bulk loads the log with COPY, keeping append order in seq.
func (s *PostgresStore) SaveTransactions(ctx context.Context, transactions []*models.Transaction) error {
	return s.replace(ctx, "transactions", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("transactions",
			"seq", "transaction_id", "account_number", "type", "amount", "balance_after", "occurred_at"))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range transactions {
			if _, err := stmt.ExecContext(ctx, int64(i+1), t.ID, t.AccountNumber, string(t.Type), t.Amount, t.BalanceAfter, t.Timestamp); err != nil {
				return fmt.Errorf("copy transaction %s: %w", t.ID, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			return fmt.Errorf("flush transactions: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) replace(ctx context.Context, table string, fill func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewTransactionError("begin", err)
	}

	// Ensure rollback on error
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return errors.NewTransactionError("clear "+table, err)
	}
	if err := fill(tx); err != nil {
		return errors.NewTransactionError("save "+table, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewTransactionError("commit", err)
	}
	tx = nil
	return nil
}

func (s *PostgresStore) skip(table string, line int, key string, cause error) {
	err := errors.NewMalformedRecordError(table, line, key, cause)
	s.logger.Warn("skipping malformed record", "error", err.Error())
}
