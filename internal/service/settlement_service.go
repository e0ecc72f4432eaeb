package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/contracts-service/internal/model"
	"github.com/nurpe/contracts-service/internal/repository"
)

type SettlementService struct {
	uow   repository.UnitOfWork
	retry RetryPolicy
	log   zerolog.Logger
	now   func() time.Time
}

func NewSettlementService(uow repository.UnitOfWork, retry RetryPolicy, log zerolog.Logger) *SettlementService {
	return &SettlementService{
		uow:   uow,
		retry: retry,
		log:   log.With().Str("component", "settlement").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// PayJob transfers the job price from the contract's client to its
// contractor and marks the job paid. Every precondition is checked before
// the first write; any failure leaves balances and the job untouched.
func (s *SettlementService) PayJob(ctx context.Context, actingProfileID, jobID int64) (*model.Job, error) {
	job, err := runUnitOfWork(ctx, s.retry, s.log, "pay job", func() (*model.Job, error) {
		var paid *model.Job
		err := s.uow.Do(ctx, func(ledger repository.Ledger) error {
			var err error
			paid, err = s.payJob(ctx, ledger, actingProfileID, jobID)
			return err
		})
		return paid, err
	})
	if err != nil {
		s.logRejection(err, actingProfileID, jobID)
		return nil, err
	}

	s.log.Info().
		Int64("job_id", job.ID).
		Int64("profile_id", actingProfileID).
		Str("amount", job.Price.String()).
		Msg("job paid")
	return job, nil
}

func (s *SettlementService) payJob(ctx context.Context, ledger repository.Ledger, actingProfileID, jobID int64) (*model.Job, error) {
	settlement, err := ledger.LockJobSettlement(ctx, jobID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrJobNotFound):
			return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
		case errors.Is(err, repository.ErrContractNotFound), errors.Is(err, repository.ErrProfileNotFound):
			return nil, fmt.Errorf("%w: contract parties of job %d", ErrNotFound, jobID)
		}
		return nil, err
	}

	contract := settlement.Contract
	if !contract.HasParty(actingProfileID) {
		return nil, fmt.Errorf("%w: profile %d is not a party to contract %d", ErrUnauthorized, actingProfileID, contract.ID)
	}
	if !contract.IsActive() {
		return nil, ErrContractNotActive
	}
	if settlement.Job.Paid {
		return nil, ErrAlreadyPaid
	}
	price := settlement.Job.Price
	if settlement.Client.Balance.LessThan(price) {
		return nil, ErrInsufficientBalance
	}

	if _, err := ledger.AddBalance(ctx, contract.ClientID, price.Neg()); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}
	if _, err := ledger.AddBalance(ctx, contract.ContractorID, price); err != nil {
		return nil, err
	}
	job, err := ledger.MarkJobPaid(ctx, jobID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}
	return job, nil
}

func (s *SettlementService) logRejection(err error, actingProfileID, jobID int64) {
	event := s.log.Info()
	if !isDomainError(err) {
		event = s.log.Error()
	}
	event.Err(err).
		Int64("job_id", jobID).
		Int64("profile_id", actingProfileID).
		Msg("job payment rejected")
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidArgument)
}
