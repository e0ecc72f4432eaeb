package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/contracts-service/internal/model"
	"github.com/nurpe/contracts-service/internal/repository"
	"github.com/nurpe/contracts-service/internal/repository/testutil"
)

func day(d int) *time.Time {
	t := time.Date(2026, 2, d, 9, 30, 0, 0, time.UTC)
	return &t
}

func seedReport(t *testing.T) *gorm.DB {
	t.Helper()
	database := testutil.DB(t)
	testutil.CreateProfile(t, database, model.Profile{ID: 1, FirstName: "Harry", LastName: "Potter", Type: model.ProfileTypeClient})
	testutil.CreateProfile(t, database, model.Profile{ID: 2, FirstName: "Mr", LastName: "Robot", Type: model.ProfileTypeClient})
	testutil.CreateProfile(t, database, model.Profile{ID: 3, FirstName: "John", LastName: "Snow", Type: model.ProfileTypeClient})
	testutil.CreateProfile(t, database, model.Profile{ID: 10, FirstName: "Linus", Profession: "Programmer", Type: model.ProfileTypeContractor})
	testutil.CreateProfile(t, database, model.Profile{ID: 11, FirstName: "Ada", Profession: "Programmer", Type: model.ProfileTypeContractor})
	testutil.CreateProfile(t, database, model.Profile{ID: 12, FirstName: "Alan", Profession: "Musician", Type: model.ProfileTypeContractor})

	testutil.CreateContract(t, database, model.Contract{ID: 1, Status: model.ContractStatusInProgress, ClientID: 1, ContractorID: 10})
	testutil.CreateContract(t, database, model.Contract{ID: 2, Status: model.ContractStatusTerminated, ClientID: 2, ContractorID: 11})
	testutil.CreateContract(t, database, model.Contract{ID: 3, Status: model.ContractStatusInProgress, ClientID: 3, ContractorID: 12})

	testutil.CreateJob(t, database, model.Job{ID: 1, Price: testutil.Amount("200"), Paid: true, PaymentDate: day(1), ContractID: 1})
	testutil.CreateJob(t, database, model.Job{ID: 2, Price: testutil.Amount("150"), Paid: true, PaymentDate: day(2), ContractID: 2})
	testutil.CreateJob(t, database, model.Job{ID: 3, Price: testutil.Amount("300"), Paid: true, PaymentDate: day(3), ContractID: 3})
	testutil.CreateJob(t, database, model.Job{ID: 4, Price: testutil.Amount("900"), ContractID: 3})
	testutil.CreateJob(t, database, model.Job{ID: 5, Price: testutil.Amount("1000"), Paid: true, PaymentDate: day(20), ContractID: 1})
	return database
}

func TestReportRepositoryProfessionEarnings(t *testing.T) {
	repo := repository.NewReportRepository(seedReport(t))
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	rows, err := repo.ProfessionEarnings(context.Background(), from, to, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Programmer", rows[0].Profession)
	assert.True(t, rows[0].Total.Equal(testutil.Amount("350")))
	assert.Equal(t, "Musician", rows[1].Profession)
	assert.True(t, rows[1].Total.Equal(testutil.Amount("300")))

	rows, err = repo.ProfessionEarnings(context.Background(), from, to, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Programmer", rows[0].Profession)
}

func TestReportRepositoryProfessionEarningsOutsidePeriod(t *testing.T) {
	repo := repository.NewReportRepository(seedReport(t))
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	rows, err := repo.ProfessionEarnings(context.Background(), from, to, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReportRepositoryClientSpending(t *testing.T) {
	repo := repository.NewReportRepository(seedReport(t))
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	rows, err := repo.ClientSpending(context.Background(), from, to, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, "Harry Potter", rows[0].FullName)
	assert.True(t, rows[0].Paid.Equal(testutil.Amount("1200")))
	assert.Equal(t, int64(3), rows[1].ID)
	assert.True(t, rows[1].Paid.Equal(testutil.Amount("300")))

	rows, err = repo.ClientSpending(context.Background(), from, to, 5)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReportRepositorySumsCentsExactly(t *testing.T) {
	database := testutil.DB(t)
	testutil.CreateProfile(t, database, model.Profile{ID: 1, FirstName: "Harry", LastName: "Potter", Type: model.ProfileTypeClient})
	testutil.CreateProfile(t, database, model.Profile{ID: 10, FirstName: "Linus", Profession: "Programmer", Type: model.ProfileTypeContractor})
	testutil.CreateContract(t, database, model.Contract{ID: 1, Status: model.ContractStatusInProgress, ClientID: 1, ContractorID: 10})
	testutil.CreateJob(t, database, model.Job{ID: 1, Price: testutil.Amount("0.1"), Paid: true, PaymentDate: day(1), ContractID: 1})
	testutil.CreateJob(t, database, model.Job{ID: 2, Price: testutil.Amount("0.2"), Paid: true, PaymentDate: day(2), ContractID: 1})
	repo := repository.NewReportRepository(database)
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	professions, err := repo.ProfessionEarnings(context.Background(), from, to, 10)
	require.NoError(t, err)
	require.Len(t, professions, 1)
	assert.Equal(t, "0.3", professions[0].Total.String())

	clients, err := repo.ClientSpending(context.Background(), from, to, 10)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "0.3", clients[0].Paid.String())
}
