package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/contracts-service/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) GetContract(ctx context.Context, id int64) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).First(&contract, id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// ListOpenContracts returns the non-terminated contracts the profile is a party to.
func (r *ContractRepository) ListOpenContracts(ctx context.Context, profileID int64) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("(client_id = ? OR contractor_id = ?) AND status <> ?",
			profileID, profileID, string(model.ContractStatusTerminated)).
		Order("id ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

// ListUnpaidJobs returns unpaid jobs on the profile's in-progress contracts.
func (r *ContractRepository) ListUnpaidJobs(ctx context.Context, profileID int64) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = jobs.contract_id").
		Where("(contracts.client_id = ? OR contracts.contractor_id = ?) AND contracts.status = ? AND jobs.paid = ?",
			profileID, profileID, string(model.ContractStatusInProgress), false).
		Order("jobs.id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobSettlement is the lock-free variant of Ledger.LockJobSettlement for read paths.
func (r *ContractRepository) GetJobSettlement(ctx context.Context, jobID int64) (*model.JobSettlement, error) {
	return loadSettlement(r.db.WithContext(ctx), jobID, false)
}
