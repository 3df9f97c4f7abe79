// Package idgen hands out the human-readable sequence identifiers used for
// customers, accounts and transactions.
package idgen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type Kind int

const (
	Customer Kind = iota
	Account
	Transaction
)

var prefixes = [...]string{
	Customer:    "CUS",
	Account:     "ACC",
	Transaction: "TXN",
}

func (k Kind) Prefix() string { return prefixes[k] }

func (k Kind) String() string {
	switch k {
	case Customer:
		return "customer"
	case Account:
		return "account"
	case Transaction:
		return "transaction"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Generator keeps one monotonic counter per kind. The zero value is ready to
// use and starts every counter at zero, so the first ID of a kind is PREFIX001.
type Generator struct {
	mu       sync.Mutex
	counters [len(prefixes)]int
}

func New() *Generator {
	return &Generator{}
}

// Next increments the counter for kind and returns the formatted ID.
func (g *Generator) Next(kind Kind) string {
	g.mu.Lock()
	g.counters[kind]++
	n := g.counters[kind]
	g.mu.Unlock()
	return Format(kind, n)
}

// Restore raises the counter for kind to highWaterMark. It never lowers it.
func (g *Generator) Restore(kind Kind, highWaterMark int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if highWaterMark > g.counters[kind] {
		g.counters[kind] = highWaterMark
	}
}

func (g *Generator) Current(kind Kind) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counters[kind]
}

func Format(kind Kind, n int) string {
	return fmt.Sprintf("%s%03d", kind.Prefix(), n)
}

// Suffix returns the numeric part of id when it carries the prefix of kind.
func Suffix(kind Kind, id string) (int, bool) {
	digits, ok := strings.CutPrefix(strings.TrimSpace(id), kind.Prefix())
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// HighWaterMark is the largest suffix among ids of the given kind, or zero.
// IDs that do not parse are ignored.
func HighWaterMark(kind Kind, ids ...string) int {
	hwm := 0
	for _, id := range ids {
		if n, ok := Suffix(kind, id); ok && n > hwm {
			hwm = n
		}
	}
	return hwm
}
