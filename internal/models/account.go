package models

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/riteshkumar/account-ledger/internal/errors"
)

type AccountType string

// Persisted tags: savings rows are written upper-case, checking rows
// title-case.
const (
	AccountTypeSavings  AccountType = "SAVINGS"
	AccountTypeChecking AccountType = "Checking"
)

const (
	AccountStatusActive = "Active"

	SavingsInterestRate   = 3.5
	SavingsMinimumBalance = 500.0

	CheckingOverdraftLimit = 1000.0
	CheckingMonthlyFee     = 10.0
)

// ParseAccountType accepts the persisted tag in any letter case.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SAVINGS":
		return AccountTypeSavings, nil
	case "CHECKING":
		return AccountTypeChecking, nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrInvalidAccountType, s)
}

// IsValidAmount reports whether amount is positive and finite. NaN is not.
func IsValidAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 1)
}

// Account is a ledger account. Deposit and Withdraw are safe for concurrent
// use; each account serialises its own balance updates.
type Account interface {
	Number() string
	CustomerID() string
	Type() AccountType
	Status() string
	Balance() float64
	Deposit(amount float64) (float64, error)
	Withdraw(amount float64) (float64, error)
	Details() AccountDetails
}

// AccountDetails is a read-only projection of an account. Variant-specific
// fields are zero for the other variant.
type AccountDetails struct {
	AccountNumber  string      `json:"account_number"`
	CustomerID     string      `json:"customer_id"`
	CustomerName   string      `json:"customer_name,omitempty"`
	Type           AccountType `json:"type"`
	Status         string      `json:"status"`
	Balance        float64     `json:"balance"`
	InterestRate   float64     `json:"interest_rate,omitempty"`
	MinimumBalance float64     `json:"minimum_balance,omitempty"`
	Interest       float64     `json:"interest,omitempty"`
	OverdraftLimit float64     `json:"overdraft_limit,omitempty"`
	MonthlyFee     float64     `json:"monthly_fee,omitempty"`
}

type baseAccount struct {
	mu         sync.Mutex
	number     string
	customerID string
	status     string
	balance    float64
}

func (a *baseAccount) Number() string { return a.number }
func (a *baseAccount) CustomerID() string { return a.customerID }
func (a *baseAccount) Status() string { return a.status }

func (a *baseAccount) Balance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *baseAccount) Deposit(amount float64) (float64, error) {
	if !IsValidAmount(amount) {
		return 0, errors.ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance += amount
	return a.balance, nil
}

// withdraw runs the variant policy against the balance held under the lock,
// so the check and the debit cannot be split by another writer.
func (a *baseAccount) withdraw(amount float64, policy func(balance, amount float64) error) (float64, error) {
	if !IsValidAmount(amount) {
		return 0, errors.ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := policy(a.balance, amount); err != nil {
		return 0, err
	}
	a.balance -= amount
	return a.balance, nil
}

func (a *baseAccount) details(t AccountType) AccountDetails {
	return AccountDetails{
		AccountNumber: a.number,
		CustomerID:    a.customerID,
		Type:          t,
		Status:        a.status,
		Balance:       a.Balance(),
	}
}

type SavingsAccount struct {
	baseAccount
	interestRate   float64
	minimumBalance float64
}

// NewSavingsAccount opens a savings account funded with initialDeposit.
func NewSavingsAccount(number, customerID string, initialDeposit float64) (*SavingsAccount, error) {
	if !IsValidAmount(initialDeposit) {
		return nil, errors.ErrInvalidAmount
	}
	return newSavings(number, customerID, initialDeposit), nil
}

func newSavings(number, customerID string, balance float64) *SavingsAccount {
	return &SavingsAccount{
		baseAccount: baseAccount{
			number:     number,
			customerID: customerID,
			status:     AccountStatusActive,
			balance:    balance,
		},
		interestRate:   SavingsInterestRate,
		minimumBalance: SavingsMinimumBalance,
	}
}

func (s *SavingsAccount) Type() AccountType { return AccountTypeSavings }
func (s *SavingsAccount) InterestRate() float64 { return s.interestRate }
func (s *SavingsAccount) MinimumBalance() float64 { return s.minimumBalance }

func (s *SavingsAccount) CalculateInterest() float64 {
	return s.Balance() * (s.interestRate / 100)
}

func (s *SavingsAccount) Withdraw(amount float64) (float64, error) {
	return s.withdraw(amount, func(balance, amount float64) error {
		if balance-amount < s.minimumBalance {
			return errors.ErrInsufficientFunds
		}
		return nil
	})
}

func (s *SavingsAccount) Details() AccountDetails {
	d := s.details(AccountTypeSavings)
	d.InterestRate = s.interestRate
	d.MinimumBalance = s.minimumBalance
	d.Interest = d.Balance * (s.interestRate / 100)
	return d
}

type CheckingAccount struct {
	baseAccount
	overdraftLimit float64
	monthlyFee     float64
}

// NewCheckingAccount opens a checking account funded with initialDeposit.
func NewCheckingAccount(number, customerID string, initialDeposit float64) (*CheckingAccount, error) {
	if !IsValidAmount(initialDeposit) {
		return nil, errors.ErrInvalidAmount
	}
	return newChecking(number, customerID, initialDeposit), nil
}

func newChecking(number, customerID string, balance float64) *CheckingAccount {
	return &CheckingAccount{
		baseAccount: baseAccount{
			number:     number,
			customerID: customerID,
			status:     AccountStatusActive,
			balance:    balance,
		},
		overdraftLimit: CheckingOverdraftLimit,
		monthlyFee:     CheckingMonthlyFee,
	}
}

func (c *CheckingAccount) Type() AccountType { return AccountTypeChecking }
func (c *CheckingAccount) OverdraftLimit() float64 { return c.overdraftLimit }
func (c *CheckingAccount) MonthlyFee() float64 { return c.monthlyFee }

func (c *CheckingAccount) Withdraw(amount float64) (float64, error) {
	return c.withdraw(amount, func(balance, amount float64) error {
		if amount-balance > c.overdraftLimit {
			return errors.ErrOverdraftExceeded
		}
		return nil
	})
}

// ApplyMonthlyFee deducts the monthly fee only when the balance exceeds it.
func (c *CheckingAccount) ApplyMonthlyFee() (fee, balance float64, applied bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance <= c.monthlyFee {
		return 0, c.balance, false
	}
	c.balance -= c.monthlyFee
	return c.monthlyFee, c.balance, true
}

func (c *CheckingAccount) Details() AccountDetails {
	d := c.details(AccountTypeChecking)
	d.OverdraftLimit = c.overdraftLimit
	d.MonthlyFee = c.monthlyFee
	return d
}

// RestoreAccount rebuilds an account from persisted values. Number and
// balance are taken verbatim.
func RestoreAccount(t AccountType, number, customerID string, balance float64) (Account, error) {
	if math.IsNaN(balance) || math.IsInf(balance, 0) {
		return nil, fmt.Errorf("%w: balance %v", errors.ErrInvalidAmount, balance)
	}
	switch t {
	case AccountTypeSavings:
		return newSavings(number, customerID, balance), nil
	case AccountTypeChecking:
		return newChecking(number, customerID, balance), nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrInvalidAccountType, t)
}
