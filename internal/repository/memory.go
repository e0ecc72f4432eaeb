package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/contracts-service/internal/model"
)

// Operation names accepted by MemoryStore.FailNext.
const (
	OpLockJobSettlement    = "LockJobSettlement"
	OpLockProfile          = "LockProfile"
	OpOutstandingJobsTotal = "OutstandingJobsTotal"
	OpAddBalance           = "AddBalance"
	OpMarkJobPaid          = "MarkJobPaid"
	OpCommit               = "Commit"
)

// MemoryStore is an in-process UnitOfWork. Units of work run one at a time
// against a private copy of the data that replaces the shared state only on
// commit, which gives serializable isolation and full rollback.
type MemoryStore struct {
	mu        sync.Mutex
	profiles  map[int64]model.Profile
	contracts map[int64]model.Contract
	jobs      map[int64]model.Job
	faults    map[string][]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[int64]model.Profile),
		contracts: make(map[int64]model.Contract),
		jobs:      make(map[int64]model.Job),
		faults:    make(map[string][]error),
	}
}

func (s *MemoryStore) PutProfile(profile model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
}

func (s *MemoryStore) PutContract(contract model.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[contract.ID] = contract
}

func (s *MemoryStore) PutJob(job model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *MemoryStore) Profile(id int64) (model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[id]
	return profile, ok
}

func (s *MemoryStore) Job(id int64) (model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

// FailNext makes the next call of op fail with err. Calls queue up per op.
func (s *MemoryStore) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], err)
}

func (s *MemoryStore) Do(ctx context.Context, fn func(ledger Ledger) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryLedger{
		store:     s,
		profiles:  cloneMap(s.profiles),
		contracts: cloneMap(s.contracts),
		jobs:      cloneMap(s.jobs),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := s.takeFault(OpCommit); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.profiles = tx.profiles
	s.contracts = tx.contracts
	s.jobs = tx.jobs
	return nil
}

// takeFault must be called with mu held.
func (s *MemoryStore) takeFault(op string) error {
	queued := s.faults[op]
	if len(queued) == 0 {
		return nil
	}
	err := queued[0]
	s.faults[op] = queued[1:]
	return err
}

type memoryLedger struct {
	store     *MemoryStore
	profiles  map[int64]model.Profile
	contracts map[int64]model.Contract
	jobs      map[int64]model.Job
}

func (l *memoryLedger) LockJobSettlement(ctx context.Context, jobID int64) (*model.JobSettlement, error) {
	if err := l.store.takeFault(OpLockJobSettlement); err != nil {
		return nil, err
	}
	job, ok := l.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	contract, ok := l.contracts[job.ContractID]
	if !ok {
		return nil, ErrContractNotFound
	}
	client, ok := l.profiles[contract.ClientID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	contractor, ok := l.profiles[contract.ContractorID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &model.JobSettlement{
		Job:        job,
		Contract:   contract,
		Client:     client,
		Contractor: contractor,
	}, nil
}

func (l *memoryLedger) LockProfile(ctx context.Context, profileID int64) (*model.Profile, error) {
	if err := l.store.takeFault(OpLockProfile); err != nil {
		return nil, err
	}
	profile, ok := l.profiles[profileID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func (l *memoryLedger) OutstandingJobsTotal(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	if err := l.store.takeFault(OpOutstandingJobsTotal); err != nil {
		return decimal.Zero, err
	}

	ids := make([]int64, 0, len(l.jobs))
	for id := range l.jobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := decimal.Zero
	for _, id := range ids {
		job := l.jobs[id]
		contract, ok := l.contracts[job.ContractID]
		if !ok || contract.ClientID != clientID || contract.Status == model.ContractStatusTerminated {
			continue
		}
		total = total.Add(job.Price)
	}
	return total, nil
}

func (l *memoryLedger) AddBalance(ctx context.Context, profileID int64, delta decimal.Decimal) (*model.Profile, error) {
	if err := l.store.takeFault(OpAddBalance); err != nil {
		return nil, err
	}
	profile, ok := l.profiles[profileID]
	if !ok {
		return nil, ErrStaleWrite
	}
	next := profile.Balance.Add(delta)
	if next.IsNegative() {
		return nil, ErrStaleWrite
	}
	profile.Balance = next
	profile.UpdatedAt = time.Now().UTC()
	l.profiles[profileID] = profile
	return &profile, nil
}

func (l *memoryLedger) MarkJobPaid(ctx context.Context, jobID int64, paidAt time.Time) (*model.Job, error) {
	if err := l.store.takeFault(OpMarkJobPaid); err != nil {
		return nil, err
	}
	job, ok := l.jobs[jobID]
	if !ok || job.Paid {
		return nil, ErrStaleWrite
	}
	job.Paid = true
	job.PaymentDate = &paidAt
	job.UpdatedAt = paidAt
	l.jobs[jobID] = job
	return &job, nil
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
