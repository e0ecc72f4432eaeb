package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/contracts-service/internal/model"
)

type LedgerRepository struct {
	db        *gorm.DB
	txTimeout time.Duration
}

func NewLedgerRepository(db *gorm.DB, txTimeout time.Duration) *LedgerRepository {
	return &LedgerRepository{db: db, txTimeout: txTimeout}
}

func (r *LedgerRepository) Do(ctx context.Context, fn func(ledger Ledger) error) error {
	if r.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.txTimeout)
		defer cancel()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedger{tx: tx})
	})
}

type gormLedger struct {
	tx *gorm.DB
}

func (l *gormLedger) LockJobSettlement(ctx context.Context, jobID int64) (*model.JobSettlement, error) {
	return loadSettlement(l.tx.WithContext(ctx), jobID, true)
}

func (l *gormLedger) LockProfile(ctx context.Context, profileID int64) (*model.Profile, error) {
	var profile model.Profile
	err := l.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (l *gormLedger) OutstandingJobsTotal(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	var rows []struct {
		Price decimal.Decimal
	}
	err := l.tx.WithContext(ctx).Raw(`
		SELECT j.price AS price
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = ?
			AND c.status <> ?
	`, clientID, string(model.ContractStatusTerminated)).Scan(&rows).Error
	if err != nil {
		return decimal.Zero, err
	}

	// Summed here rather than with SUM(): sqlite aggregates in floating point.
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Price)
	}
	return total, nil
}

// AddBalance computes the new balance from the locked row and writes it back
// only if the stored balance is still the one that was read.
func (l *gormLedger) AddBalance(ctx context.Context, profileID int64, delta decimal.Decimal) (*model.Profile, error) {
	tx := l.tx.WithContext(ctx)

	var profile model.Profile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStaleWrite
	}
	if err != nil {
		return nil, err
	}

	next := profile.Balance.Add(delta)
	if next.IsNegative() {
		return nil, ErrStaleWrite
	}

	now := time.Now().UTC()
	res := tx.Model(&model.Profile{}).
		Where("id = ? AND balance = ?", profileID, profile.Balance).
		Updates(map[string]interface{}{
			"balance":    next,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleWrite
	}

	profile.Balance = next
	profile.UpdatedAt = now
	return &profile, nil
}

func (l *gormLedger) MarkJobPaid(ctx context.Context, jobID int64, paidAt time.Time) (*model.Job, error) {
	tx := l.tx.WithContext(ctx)
	res := tx.Model(&model.Job{}).
		Where("id = ? AND paid = ?", jobID, false).
		Updates(map[string]interface{}{
			"paid":         true,
			"payment_date": paidAt,
			"updated_at":   paidAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleWrite
	}

	var job model.Job
	if err := tx.First(&job, jobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// loadSettlement reads a job, its contract and both parties. With lock set the
// job and profile rows are selected FOR UPDATE, profiles in ascending id order
// so concurrent settlements on the same parties cannot deadlock.
func loadSettlement(tx *gorm.DB, jobID int64, lock bool) (*model.JobSettlement, error) {
	query := func() *gorm.DB {
		if lock {
			return tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		return tx
	}

	var job model.Job
	if err := query().First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var contract model.Contract
	if err := tx.First(&contract, job.ContractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}

	var profiles []model.Profile
	err := query().
		Where("id IN ?", []int64{contract.ClientID, contract.ContractorID}).
		Order("id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}

	settlement := &model.JobSettlement{Job: job, Contract: contract}
	var foundClient, foundContractor bool
	for _, profile := range profiles {
		if profile.ID == contract.ClientID {
			settlement.Client = profile
			foundClient = true
		}
		if profile.ID == contract.ContractorID {
			settlement.Contractor = profile
			foundContractor = true
		}
	}
	if !foundClient || !foundContractor {
		return nil, ErrProfileNotFound
	}
	return settlement, nil
}
