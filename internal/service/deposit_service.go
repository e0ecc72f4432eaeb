package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/contracts-service/internal/model"
	"github.com/nurpe/contracts-service/internal/repository"
)

var defaultDepositCapRatio = decimal.RequireFromString("0.25")

type DepositService struct {
	uow      repository.UnitOfWork
	capRatio decimal.Decimal
	retry    RetryPolicy
	log      zerolog.Logger
}

func NewDepositService(uow repository.UnitOfWork, capRatio decimal.Decimal, retry RetryPolicy, log zerolog.Logger) *DepositService {
	if !capRatio.IsPositive() {
		capRatio = defaultDepositCapRatio
	}
	return &DepositService{
		uow:      uow,
		capRatio: capRatio,
		retry:    retry,
		log:      log.With().Str("component", "deposit").Logger(),
	}
}

// Deposit credits a client's balance and returns the new balance. The amount
// may not exceed the cap ratio of the client's outstanding job total; with no
// outstanding jobs nothing can be deposited.
func (s *DepositService) Deposit(ctx context.Context, clientID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if !model.IsWholeCents(amount) {
		return decimal.Zero, fmt.Errorf("%w: amount has more than %d decimal places", ErrInvalidArgument, model.AmountPlaces)
	}
	if amount.GreaterThan(model.MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: amount exceeds %s", ErrInvalidArgument, model.MaxAmount)
	}

	balance, err := runUnitOfWork(ctx, s.retry, s.log, "deposit", func() (decimal.Decimal, error) {
		var balance decimal.Decimal
		err := s.uow.Do(ctx, func(ledger repository.Ledger) error {
			var err error
			balance, err = s.deposit(ctx, ledger, clientID, amount)
			return err
		})
		return balance, err
	})
	if err != nil {
		event := s.log.Info()
		if !isDomainError(err) {
			event = s.log.Error()
		}
		event.Err(err).Int64("client_id", clientID).Str("amount", amount.String()).Msg("deposit rejected")
		return decimal.Zero, err
	}

	s.log.Info().
		Int64("client_id", clientID).
		Str("amount", amount.String()).
		Str("balance", balance.String()).
		Msg("deposit accepted")
	return balance, nil
}

func (s *DepositService) deposit(ctx context.Context, ledger repository.Ledger, clientID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	profile, err := ledger.LockProfile(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return decimal.Zero, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
		}
		return decimal.Zero, err
	}
	if profile.Type != model.ProfileTypeClient {
		return decimal.Zero, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
	}

	outstanding, err := ledger.OutstandingJobsTotal(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	limit := outstanding.Mul(s.capRatio)
	if amount.GreaterThan(limit) {
		return decimal.Zero, &DepositCapError{Ratio: s.capRatio, Limit: limit}
	}
	if profile.Balance.Add(amount).GreaterThan(model.MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: balance would exceed %s", ErrInvalidArgument, model.MaxAmount)
	}

	updated, err := ledger.AddBalance(ctx, clientID, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return updated.Balance, nil
}
