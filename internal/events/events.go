package events

import "time"

const LedgerStream = "ledger.events"

const (
	AccountOpened       = "account.opened"
	TransactionRecorded = "transaction.recorded"
)

type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type AccountOpenedEvent struct {
	AccountNumber  string  `json:"accountNumber"`
	CustomerID     string  `json:"customerId"`
	AccountType    string  `json:"accountType"`
	InitialDeposit float64 `json:"initialDeposit"`
}

type TransactionRecordedEvent struct {
	TransactionID string  `json:"transactionId"`
	AccountNumber string  `json:"accountNumber"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	BalanceAfter  float64 `json:"balanceAfter"`
}
