package models

import (
	"fmt"
	"strings"

	"github.com/riteshkumar/account-ledger/internal/errors"
)

type CustomerType string

const (
	CustomerTypeRegular CustomerType = "Regular"
	CustomerTypePremium CustomerType = "Premium"
)

func ParseCustomerType(s string) (CustomerType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REGULAR":
		return CustomerTypeRegular, nil
	case "PREMIUM":
		return CustomerTypePremium, nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrInvalidCustomerType, s)
}

// Customer owns no money; accounts refer to it by ID.
type Customer struct {
	ID      string       `json:"id"`
	Type    CustomerType `json:"type"`
	Name    string       `json:"name"`
	Age     int          `json:"age"`
	Contact string       `json:"contact"`
	Address string       `json:"address"`
	Email   string       `json:"email"`
}

// HasWaivedFees is true for premium customers, whose checking accounts are
// never charged the monthly fee.
func (c *Customer) HasWaivedFees() bool {
	return c.Type == CustomerTypePremium
}
