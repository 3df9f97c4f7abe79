package models

import (
	"fmt"
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionDeposit     TransactionType = "DEPOSIT"
	TransactionWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTransferOut TransactionType = "TRANSFER_OUT"
)

// TimestampLayout is dd-MM-yyyy HH:mm:ss.
const TimestampLayout = "02-01-2006 15:04:05"

var TransactionTypes = []TransactionType{
	TransactionDeposit,
	TransactionWithdrawal,
	TransactionTransferIn,
	TransactionTransferOut,
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range TransactionTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction is an immutable record of one ledger event.
type Transaction struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"`
	BalanceAfter  float64         `json:"balance_after"`
	Timestamp     time.Time       `json:"timestamp"`
}

func NewTransaction(id, accountNumber string, t TransactionType, amount, balanceAfter float64, at time.Time) *Transaction {
	return &Transaction{
		ID:            id,
		AccountNumber: accountNumber,
		Type:          t,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		Timestamp:     at.Truncate(time.Second),
	}
}

func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionDeposit || t.Type == TransactionTransferIn
}

func (t *Transaction) FormattedTimestamp() string {
	return t.Timestamp.Format(TimestampLayout)
}

// ParseTimestamp reads a persisted timestamp in the local zone.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.Local)
}

// TransactionFilter is a conjunction of optional criteria. Zero values leave
// a criterion unset.
type TransactionFilter struct {
	AccountNumber string
	Type          TransactionType
	MinAmount     float64
	MaxAmount     float64
	// Days keeps transactions dated on or after the start of the day Days
	// days before now.
	Days int
}

func (f TransactionFilter) Match(t *Transaction, now time.Time) bool {
	if f.AccountNumber != "" && t.AccountNumber != f.AccountNumber {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.MinAmount > 0 && t.Amount < f.MinAmount {
		return false
	}
	if f.MaxAmount > 0 && t.Amount > f.MaxAmount {
		return false
	}
	if f.Days > 0 {
		y, m, d := now.AddDate(0, 0, -f.Days).Date()
		if t.Timestamp.Before(time.Date(y, m, d, 0, 0, 0, 0, now.Location())) {
			return false
		}
	}
	return true
}

type TransactionTotals struct {
	AccountNumber     string                  `json:"account_number,omitempty"`
	TotalDeposits     float64                 `json:"total_deposits"`
	TotalWithdrawals  float64                 `json:"total_withdrawals"`
	TotalTransfersIn  float64                 `json:"total_transfers_in"`
	TotalTransfersOut float64                 `json:"total_transfers_out"`
	Net               float64                 `json:"net"`
	Count             int                     `json:"count"`
	CountByType       map[TransactionType]int `json:"count_by_type"`
}

// Add folds t into the totals.
func (s *TransactionTotals) Add(t *Transaction) {
	if s.CountByType == nil {
		s.CountByType = make(map[TransactionType]int, len(TransactionTypes))
	}
	switch t.Type {
	case TransactionDeposit:
		s.TotalDeposits += t.Amount
	case TransactionWithdrawal:
		s.TotalWithdrawals += t.Amount
	case TransactionTransferIn:
		s.TotalTransfersIn += t.Amount
	case TransactionTransferOut:
		s.TotalTransfersOut += t.Amount
	}
	if t.IsCredit() {
		s.Net += t.Amount
	} else {
		s.Net -= t.Amount
	}
	s.Count++
	s.CountByType[t.Type]++
}

// TransferResult holds the two records a transfer appends.
type TransferResult struct {
	Debit  *Transaction
	Credit *Transaction
}
