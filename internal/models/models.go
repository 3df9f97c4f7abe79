package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	OldValue   json.RawMessage `json:"old_value,omitempty"`
	NewValue   json.RawMessage `json:"new_value"`
	CreatedAt  time.Time       `json:"created_at"`
}

const (
	AuditActionCreate = "CREATE"
	AuditActionDebit  = "DEBIT"
	AuditActionCredit = "CREDIT"
)

const EntityTypeAccount = "ACCOUNT"

type AccountBalanceSnapshot struct {
	AccountNumber string  `json:"account_number"`
	Balance       float64 `json:"balance"`
}

type CreateCustomerRequest struct {
	Type    string `json:"type" validate:"required,oneof=Regular Premium REGULAR PREMIUM regular premium"`
	Name    string `json:"name" validate:"required"`
	Age     int    `json:"age" validate:"gte=0"`
	Contact string `json:"contact"`
	Address string `json:"address"`
	Email   string `json:"email" validate:"omitempty,email"`
}

type OpenAccountRequest struct {
	CustomerID     string  `json:"customer_id" validate:"required"`
	Type           string  `json:"type" validate:"required"`
	InitialDeposit float64 `json:"initial_deposit"`
}

type AmountRequest struct {
	Amount float64 `json:"amount"`
}

type TransferRequest struct {
	FromAccountNumber string  `json:"from_account_number" validate:"required"`
	ToAccountNumber   string  `json:"to_account_number" validate:"required"`
	Amount            float64 `json:"amount"`
}

type SimulationRequest struct {
	AccountNumber string  `json:"account_number" validate:"required"`
	Deposits      int     `json:"deposits" validate:"gte=0"`
	Withdrawals   int     `json:"withdrawals" validate:"gte=0"`
	Amount        float64 `json:"amount" validate:"gte=0"`
}

type TransactionResponse struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"`
	BalanceAfter  float64         `json:"balance_after"`
	Timestamp     string          `json:"timestamp"`
}

func NewTransactionResponse(t *Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		AccountNumber: t.AccountNumber,
		Type:          t.Type,
		Amount:        t.Amount,
		BalanceAfter:  t.BalanceAfter,
		Timestamp:     t.FormattedTimestamp(),
	}
}

type TransferResponse struct {
	Debit  TransactionResponse `json:"debit"`
	Credit TransactionResponse `json:"credit"`
}

type AccountListResponse struct {
	Accounts     []AccountDetails `json:"accounts"`
	Count        int              `json:"count"`
	TotalBalance float64          `json:"total_balance"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Totals       *TransactionTotals    `json:"totals,omitempty"`
}

func NewTransactionListResponse(ts []*Transaction, totals *TransactionTotals) TransactionListResponse {
	out := make([]TransactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, NewTransactionResponse(t))
	}
	return TransactionListResponse{Transactions: out, Count: len(out), Totals: totals}
}

type CustomerListResponse struct {
	Customers []*Customer `json:"customers"`
	Count     int         `json:"count"`
}
