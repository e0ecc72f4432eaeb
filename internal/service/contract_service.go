package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/contracts-service/internal/model"
	"github.com/nurpe/contracts-service/internal/repository"
)

type ContractReader interface {
	GetContract(ctx context.Context, id int64) (*model.Contract, error)
	ListOpenContracts(ctx context.Context, profileID int64) ([]model.Contract, error)
	ListUnpaidJobs(ctx context.Context, profileID int64) ([]model.Job, error)
	GetJobSettlement(ctx context.Context, jobID int64) (*model.JobSettlement, error)
}

type ReceiptGenerator interface {
	Generate(receipt model.JobReceipt) ([]byte, error)
}

type ContractService struct {
	repo     ContractReader
	receipts ReceiptGenerator
	now      func() time.Time
}

type ReceiptResult struct {
	FileName string
	Content  []byte
}

func NewContractService(repo ContractReader, receipts ReceiptGenerator) *ContractService {
	return &ContractService{
		repo:     repo,
		receipts: receipts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetContract returns the contract only to its parties; anyone else gets ErrNotFound.
func (s *ContractService) GetContract(ctx context.Context, principal model.Principal, id int64) (*model.Contract, error) {
	contract, err := s.repo.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d", ErrNotFound, id)
		}
		return nil, err
	}
	if !contract.HasParty(principal.ProfileID) {
		return nil, fmt.Errorf("%w: contract %d", ErrNotFound, id)
	}
	return contract, nil
}

func (s *ContractService) ListContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	return s.repo.ListOpenContracts(ctx, principal.ProfileID)
}

func (s *ContractService) ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error) {
	return s.repo.ListUnpaidJobs(ctx, principal.ProfileID)
}

func (s *ContractService) JobReceipt(ctx context.Context, principal model.Principal, jobID int64) (*ReceiptResult, error) {
	settlement, err := s.repo.GetJobSettlement(ctx, jobID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrJobNotFound),
			errors.Is(err, repository.ErrContractNotFound),
			errors.Is(err, repository.ErrProfileNotFound):
			return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
		}
		return nil, err
	}
	if !settlement.Contract.HasParty(principal.ProfileID) {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if !settlement.Job.Paid {
		return nil, ErrJobNotPaid
	}

	content, err := s.receipts.Generate(model.JobReceipt{
		Settlement: *settlement,
		IssuedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	return &ReceiptResult{
		FileName: fmt.Sprintf("receipt-job-%d.pdf", jobID),
		Content:  content,
	}, nil
}
