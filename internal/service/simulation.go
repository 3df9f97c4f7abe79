package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riteshkumar/account-ledger/internal/errors"
	"github.com/riteshkumar/account-ledger/internal/models"
)

const (
	DefaultSimulationOperations = 100
	DefaultSimulationAmount     = 10.0
	MaxSimulationWorkers        = 100
)

type SimulationConfig struct {
	Deposits    int
	Withdrawals int
	Amount      float64
	Workers     int
	Timeout     time.Duration
}

type SimulationReport struct {
	AccountNumber        string        `json:"account_number"`
	StartBalance         float64       `json:"start_balance"`
	FinalBalance         float64       `json:"final_balance"`
	SucceededDeposits    int64         `json:"succeeded_deposits"`
	SucceededWithdrawals int64         `json:"succeeded_withdrawals"`
	Failed               int64         `json:"failed"`
	Duration             time.Duration `json:"duration_ns"`
}

func (c SimulationConfig) withDefaults() SimulationConfig {
	if c.Deposits == 0 && c.Withdrawals == 0 {
		c.Deposits, c.Withdrawals = DefaultSimulationOperations, DefaultSimulationOperations
	}
	if !models.IsValidAmount(c.Amount) {
		c.Amount = DefaultSimulationAmount
	}
	if total := c.Deposits + c.Withdrawals; c.Workers <= 0 || c.Workers > total {
		c.Workers = min(total, MaxSimulationWorkers)
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Minute
	}
	return c
}

// RunSimulation fires the configured deposits and then withdrawals at one
// account through a bounded worker pool. The operations go straight to the
// account and are not recorded as transactions. If they do not all finish
// within the timeout, the partial report is returned with ErrSimulationTimeout.
func RunSimulation(ctx context.Context, account models.Account, cfg SimulationConfig, logger *slog.Logger) (*SimulationReport, error) {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	report := &SimulationReport{
		AccountNumber: account.Number(),
		StartBalance:  account.Balance(),
	}
	start := time.Now()

	var deposits, withdrawals, failed atomic.Int64
	jobs := make(chan bool)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for deposit := range jobs {
				var err error
				if deposit {
					if _, err = account.Deposit(cfg.Amount); err == nil {
						deposits.Add(1)
					}
				} else {
					if _, err = account.Withdraw(cfg.Amount); err == nil {
						withdrawals.Add(1)
					}
				}
				if err != nil {
					failed.Add(1)
					logger.Debug("simulated operation failed",
						"account_number", account.Number(),
						"deposit", deposit,
						"error", err.Error(),
					)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Deposits+cfg.Withdrawals; i++ {
			select {
			case jobs <- i < cfg.Deposits:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		select {
		case <-done:
		default:
			err = errors.ErrSimulationTimeout
			if ctx.Err() == context.Canceled {
				err = ctx.Err()
			}
		}
	}

	report.SucceededDeposits = deposits.Load()
	report.SucceededWithdrawals = withdrawals.Load()
	report.Failed = failed.Load()
	report.FinalBalance = account.Balance()
	report.Duration = time.Since(start)

	logger.Info("simulation finished",
		"account_number", account.Number(),
		"start_balance", report.StartBalance,
		"final_balance", report.FinalBalance,
		"failed", report.Failed,
		"timed_out", err != nil,
	)
	return report, err
}
