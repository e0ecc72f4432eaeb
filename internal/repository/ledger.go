package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nurpe/contracts-service/internal/model"
)

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrContractNotFound = errors.New("contract not found")
	ErrProfileNotFound  = errors.New("profile not found")

	// ErrStaleWrite is returned when a guarded update matched no row because
	// the row no longer satisfies the guard.
	ErrStaleWrite = errors.New("stale write")

	// ErrSerialization reports a transaction that lost a race and may be retried.
	ErrSerialization = errors.New("could not serialize access")
)

// Ledger is the set of reads and writes available inside one unit of work.
type Ledger interface {
	// LockJobSettlement loads a job with its contract and both parties and
	// holds their rows until the unit of work ends.
	LockJobSettlement(ctx context.Context, jobID int64) (*model.JobSettlement, error)
	LockProfile(ctx context.Context, profileID int64) (*model.Profile, error)
	// OutstandingJobsTotal sums the price of every job, paid or not, on the
	// client's contracts that are not terminated.
	OutstandingJobsTotal(ctx context.Context, clientID int64) (decimal.Decimal, error)
	// AddBalance applies delta to the profile balance. The balance never goes
	// below zero: such an update fails with ErrStaleWrite.
	AddBalance(ctx context.Context, profileID int64, delta decimal.Decimal) (*model.Profile, error)
	// MarkJobPaid flips an unpaid job to paid. An already paid job fails with
	// ErrStaleWrite.
	MarkJobPaid(ctx context.Context, jobID int64, paidAt time.Time) (*model.Job, error)
}

// UnitOfWork runs fn in a single transaction. A non-nil error from fn rolls
// back every write made through the Ledger.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ledger Ledger) error) error
}

// IsTransient reports whether err is a storage failure after which the whole
// unit of work can be retried from scratch.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSerialization) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"57014": // query_canceled (statement timeout)
			return true
		}
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}
