package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/contracts-service/internal/model"
	"github.com/nurpe/contracts-service/internal/repository"
)

const (
	clientID     int64 = 1
	contractorID int64 = 7
	outsiderID   int64 = 99
	contractID   int64 = 2
	jobID        int64 = 1
)

var testRetry = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// seedSettlement builds the canonical fixture: contract 2 in progress between
// client 1 and contractor 7, job 1 priced at 200 and unpaid.
func seedSettlement(t *testing.T, clientBalance, contractorBalance, price string) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutProfile(model.Profile{ID: clientID, FirstName: "Harry", LastName: "Potter", Type: model.ProfileTypeClient, Balance: amount(clientBalance)})
	store.PutProfile(model.Profile{ID: contractorID, FirstName: "Ash", LastName: "Kethcum", Profession: "Pokemon master", Type: model.ProfileTypeContractor, Balance: amount(contractorBalance)})
	store.PutProfile(model.Profile{ID: outsiderID, FirstName: "Eve", Type: model.ProfileTypeClient, Balance: amount("5000")})
	store.PutContract(model.Contract{ID: contractID, Status: model.ContractStatusInProgress, ClientID: clientID, ContractorID: contractorID})
	store.PutJob(model.Job{ID: jobID, Description: "work", Price: amount(price), ContractID: contractID})
	return store
}

func newSettlement(store repository.UnitOfWork) *SettlementService {
	svc := NewSettlementService(store, testRetry, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func balances(t *testing.T, store *repository.MemoryStore) (decimal.Decimal, decimal.Decimal) {
	t.Helper()
	client, ok := store.Profile(clientID)
	require.True(t, ok)
	contractor, ok := store.Profile(contractorID)
	require.True(t, ok)
	return client.Balance, contractor.Balance
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, amount(want).Equal(got), "want %s, got %s", want, got)
}

func TestPayJobTransfersPriceAndMarksJobPaid(t *testing.T) {
	store := seedSettlement(t, "1000", "50", "200")
	svc := newSettlement(store)

	job, err := svc.PayJob(context.Background(), clientID, jobID)
	require.NoError(t, err)

	assert.True(t, job.Paid)
	require.NotNil(t, job.PaymentDate)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), *job.PaymentDate)

	client, contractor := balances(t, store)
	assertAmount(t, "800", client)
	assertAmount(t, "250", contractor)

	stored, ok := store.Job(jobID)
	require.True(t, ok)
	assert.True(t, stored.Paid)
}

func TestPayJobByContractorIsAllowed(t *testing.T) {
	store := seedSettlement(t, "1000", "50", "200")

	_, err := newSettlement(store).PayJob(context.Background(), contractorID, jobID)
	require.NoError(t, err)

	client, contractor := balances(t, store)
	assertAmount(t, "800", client)
	assertAmount(t, "250", contractor)
}

func TestPayJobTwiceIsRejected(t *testing.T) {
	store := seedSettlement(t, "1000", "50", "200")
	svc := newSettlement(store)

	_, err := svc.PayJob(context.Background(), clientID, jobID)
	require.NoError(t, err)

	_, err = svc.PayJob(context.Background(), clientID, jobID)
	require.ErrorIs(t, err, ErrAlreadyPaid)
	require.ErrorIs(t, err, ErrConflict)

	client, contractor := balances(t, store)
	assertAmount(t, "800", client)
	assertAmount(t, "250", contractor)
}

func TestPayJobInsufficientBalance(t *testing.T) {
	store := seedSettlement(t, "100", "50", "200")

	_, err := newSettlement(store).PayJob(context.Background(), clientID, jobID)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	client, contractor := balances(t, store)
	assertAmount(t, "100", client)
	assertAmount(t, "50", contractor)
	job, _ := store.Job(jobID)
	assert.False(t, job.Paid)
}

func TestPayJobExactBalanceSucceeds(t *testing.T) {
	store := seedSettlement(t, "200", "0", "200")

	_, err := newSettlement(store).PayJob(context.Background(), clientID, jobID)
	require.NoError(t, err)

	client, contractor := balances(t, store)
	assertAmount(t, "0", client)
	assertAmount(t, "200", contractor)
}

func TestPayJobByOutsiderIsUnauthorized(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(store *repository.MemoryStore)
	}{
		{name: "active contract"},
		{
			name: "terminated contract",
			mutate: func(store *repository.MemoryStore) {
				store.PutContract(model.Contract{ID: contractID, Status: model.ContractStatusTerminated, ClientID: clientID, ContractorID: contractorID})
			},
		},
		{
			name: "paid job",
			mutate: func(store *repository.MemoryStore) {
				paidAt := time.Now().UTC()
				store.PutJob(model.Job{ID: jobID, Price: amount("200"), Paid: true, PaymentDate: &paidAt, ContractID: contractID})
			},
		},
		{
			name: "empty client balance",
			mutate: func(store *repository.MemoryStore) {
				store.PutProfile(model.Profile{ID: clientID, Type: model.ProfileTypeClient, Balance: decimal.Zero})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedSettlement(t, "1000", "50", "200")
			if tt.mutate != nil {
				tt.mutate(store)
			}
			clientBefore, contractorBefore := balances(t, store)

			_, err := newSettlement(store).PayJob(context.Background(), outsiderID, jobID)
			require.ErrorIs(t, err, ErrUnauthorized)

			clientAfter, contractorAfter := balances(t, store)
			assert.True(t, clientBefore.Equal(clientAfter))
			assert.True(t, contractorBefore.Equal(contractorAfter))
		})
	}
}

func TestPayJobRequiresActiveContract(t *testing.T) {
	for _, status := range []model.ContractStatus{model.ContractStatusNew, model.ContractStatusTerminated} {
		t.Run(string(status), func(t *testing.T) {
			store := seedSettlement(t, "1000", "50", "200")
			store.PutContract(model.Contract{ID: contractID, Status: status, ClientID: clientID, ContractorID: contractorID})

			_, err := newSettlement(store).PayJob(context.Background(), clientID, jobID)
			require.ErrorIs(t, err, ErrContractNotActive)

			client, contractor := balances(t, store)
			assertAmount(t, "1000", client)
			assertAmount(t, "50", contractor)
		})
	}
}

func TestPayJobNotFound(t *testing.T) {
	t.Run("missing job", func(t *testing.T) {
		store := seedSettlement(t, "1000", "50", "200")
		_, err := newSettlement(store).PayJob(context.Background(), clientID, 404)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing contract", func(t *testing.T) {
		store := seedSettlement(t, "1000", "50", "200")
		store.PutJob(model.Job{ID: 5, Price: amount("10"), ContractID: 404})
		_, err := newSettlement(store).PayJob(context.Background(), clientID, 5)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing contractor profile", func(t *testing.T) {
		store := seedSettlement(t, "1000", "50", "200")
		store.PutContract(model.Contract{ID: 3, Status: model.ContractStatusInProgress, ClientID: clientID, ContractorID: 404})
		store.PutJob(model.Job{ID: 6, Price: amount("10"), ContractID: 3})
		_, err := newSettlement(store).PayJob(context.Background(), clientID, 6)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPayJobFailureLeavesNoPartialTransfer(t *testing.T) {
	for _, op := range []string{repository.OpAddBalance, repository.OpMarkJobPaid, repository.OpCommit} {
		t.Run(op, func(t *testing.T) {
			store := seedSettlement(t, "1000", "50", "200")
			writeErr := errors.New("write failed")
			store.FailNext(op, writeErr)

			_, err := newSettlement(store).PayJob(context.Background(), clientID, jobID)
			require.ErrorIs(t, err, writeErr)

			client, contractor := balances(t, store)
			assertAmount(t, "1000", client)
			assertAmount(t, "50", contractor)
			job, _ := store.Job(jobID)
			assert.False(t, job.Paid)
			assert.Nil(t, job.PaymentDate)
		})
	}
}

func TestPayJobRetriesTransientFailures(t *testing.T) {
	store := seedSettlement(t, "1000", "50", "200")
	store.FailNext(repository.OpMarkJobPaid, repository.ErrSerialization)
	store.FailNext(repository.OpLockJobSettlement, repository.ErrSerialization)

	job, err := newSettlement(store).PayJob(context.Background(), clientID, jobID)
	require.NoError(t, err)
	assert.True(t, job.Paid)

	client, contractor := balances(t, store)
	assertAmount(t, "800", client)
	assertAmount(t, "250", contractor)
}

func TestPayJobGivesUpAfterMaxAttempts(t *testing.T) {
	store := seedSettlement(t, "1000", "50", "200")
	for range testRetry.MaxAttempts {
		store.FailNext(repository.OpCommit, repository.ErrSerialization)
	}

	_, err := newSettlement(store).PayJob(context.Background(), clientID, jobID)
	require.ErrorIs(t, err, ErrTransient)

	client, contractor := balances(t, store)
	assertAmount(t, "1000", client)
	assertAmount(t, "50", contractor)
}

func TestPayJobConcurrentAttemptsPayOnce(t *testing.T) {
	store := seedSettlement(t, "1000", "50", "200")
	svc := newSettlement(store)

	const attempts = 16
	results := make([]error, attempts)
	var g errgroup.Group
	for i := range attempts {
		g.Go(func() error {
			_, results[i] = svc.PayJob(context.Background(), clientID, jobID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	}
	assert.Equal(t, 1, successes)

	client, contractor := balances(t, store)
	assertAmount(t, "800", client)
	assertAmount(t, "250", contractor)
}

func TestPayJobConcurrentJobsRespectBalance(t *testing.T) {
	store := seedSettlement(t, "300", "0", "200")
	store.PutJob(model.Job{ID: 2, Price: amount("200"), ContractID: contractID})
	svc := newSettlement(store)

	results := make([]error, 2)
	var g errgroup.Group
	for i, id := range []int64{1, 2} {
		g.Go(func() error {
			_, results[i] = svc.PayJob(context.Background(), clientID, id)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	}
	assert.Equal(t, 1, successes)

	client, contractor := balances(t, store)
	assertAmount(t, "100", client)
	assertAmount(t, "200", contractor)
	assert.True(t, client.Add(contractor).Equal(amount("300")))
}

func TestPayJobConservesMoney(t *testing.T) {
	prices := []string{"0.01", "19.99", "200", "999.50"}
	for _, price := range prices {
		t.Run(price, func(t *testing.T) {
			store := seedSettlement(t, "1000", "12.34", price)
			clientBefore, contractorBefore := balances(t, store)

			_, err := newSettlement(store).PayJob(context.Background(), clientID, jobID)
			require.NoError(t, err)

			clientAfter, contractorAfter := balances(t, store)
			assert.True(t, clientBefore.Add(contractorBefore).Equal(clientAfter.Add(contractorAfter)))
			assert.True(t, clientBefore.Sub(clientAfter).Equal(amount(price)))
		})
	}
}
