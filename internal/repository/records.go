package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riteshkumar/account-ledger/internal/models"
)

var (
	accountHeader     = []string{"accountType", "accountNumber", "customerId", "balance", "status"}
	customerHeader    = []string{"customerType", "customerId", "name", "age", "contact", "address", "email"}
	transactionHeader = []string{"transactionId", "accountNumber", "type", "amount", "balanceAfter", "timestamp"}
)

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func parseAmount(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, requireFinite(field, v)
}

func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: %v is not a finite number", field, v)
	}
	return nil
}

func requireFields(rec []string, n int) error {
	if len(rec) < n {
		return fmt.Errorf("expected %d fields, got %d", n, len(rec))
	}
	return nil
}

func requireID(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is empty", field)
	}
	return v, nil
}

func accountRecord(a models.Account) []string {
	return []string{
		string(a.Type()),
		a.Number(),
		a.CustomerID(),
		formatAmount(a.Balance()),
		a.Status(),
	}
}

func parseAccountRecord(rec []string) (models.Account, error) {
	if err := requireFields(rec, len(accountHeader)); err != nil {
		return nil, err
	}
	balance, err := parseAmount("balance", rec[3])
	if err != nil {
		return nil, err
	}
	return buildAccount(rec[0], rec[1], rec[2], balance)
}

func buildAccount(accountType, number, customerID string, balance float64) (models.Account, error) {
	t, err := models.ParseAccountType(accountType)
	if err != nil {
		return nil, err
	}
	if err := requireFinite("balance", balance); err != nil {
		return nil, err
	}
	if number, err = requireID("account number", number); err != nil {
		return nil, err
	}
	if customerID, err = requireID("customer id", customerID); err != nil {
		return nil, err
	}
	return models.RestoreAccount(t, number, customerID, balance)
}

func customerRecord(c *models.Customer) []string {
	return []string{
		string(c.Type),
		c.ID,
		c.Name,
		strconv.Itoa(c.Age),
		c.Contact,
		c.Address,
		c.Email,
	}
}

func parseCustomerRecord(rec []string) (*models.Customer, error) {
	if err := requireFields(rec, len(customerHeader)); err != nil {
		return nil, err
	}
	age, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return nil, fmt.Errorf("age: %w", err)
	}
	return buildCustomer(rec[0], rec[1], rec[2], age, rec[4], rec[5], rec[6])
}

func buildCustomer(customerType, id, name string, age int, contact, address, email string) (*models.Customer, error) {
	t, err := models.ParseCustomerType(customerType)
	if err != nil {
		return nil, err
	}
	if id, err = requireID("customer id", id); err != nil {
		return nil, err
	}
	return &models.Customer{
		ID:      id,
		Type:    t,
		Name:    strings.TrimSpace(name),
		Age:     age,
		Contact: strings.TrimSpace(contact),
		Address: strings.TrimSpace(address),
		Email:   strings.TrimSpace(email),
	}, nil
}

func transactionRecord(t *models.Transaction) []string {
	return []string{
		t.ID,
		t.AccountNumber,
		string(t.Type),
		formatAmount(t.Amount),
		formatAmount(t.BalanceAfter),
		t.FormattedTimestamp(),
	}
}

func parseTransactionRecord(rec []string) (*models.Transaction, error) {
	if err := requireFields(rec, len(transactionHeader)); err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", rec[3])
	if err != nil {
		return nil, err
	}
	balanceAfter, err := parseAmount("balanceAfter", rec[4])
	if err != nil {
		return nil, err
	}
	at, err := models.ParseTimestamp(rec[5])
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}
	return buildTransaction(rec[0], rec[1], rec[2], amount, balanceAfter, at)
}

func buildTransaction(id, accountNumber, txType string, amount, balanceAfter float64, at time.Time) (*models.Transaction, error) {
	t, err := models.ParseTransactionType(txType)
	if err != nil {
		return nil, err
	}
	if id, err = requireID("transaction id", id); err != nil {
		return nil, err
	}
	if accountNumber, err = requireID("account number", accountNumber); err != nil {
		return nil, err
	}
	if !models.IsValidAmount(amount) {
		return nil, fmt.Errorf("amount: %v is not a positive finite number", amount)
	}
	if err := requireFinite("balanceAfter", balanceAfter); err != nil {
		return nil, err
	}
	return models.NewTransaction(id, accountNumber, t, amount, balanceAfter, at), nil
}
