package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contracts-service/internal/config"
	"github.com/nurpe/contracts-service/internal/db"
	"github.com/nurpe/contracts-service/internal/model"
)

var dbSeq atomic.Int64

// DB returns a migrated in-memory sqlite database private to the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	return open(tb, dsn, 1)
}

// FileDB returns a migrated sqlite database file in a temporary directory.
// Unlike DB it can hand out several connections, so transactions really run
// side by side.
func FileDB(tb testing.TB, maxOpenConns int) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(tb.TempDir(), "contracts.db"))
	return open(tb, dsn, maxOpenConns)
}

func open(tb testing.TB, dsn string, maxOpenConns int) *gorm.DB {
	tb.Helper()

	database, err := db.Open(config.DBConfig{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: maxOpenConns,
		MaxIdleConns: maxOpenConns,
	}, zerolog.Nop())
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database
}

func CreateProfile(tb testing.TB, database *gorm.DB, profile model.Profile) model.Profile {
	tb.Helper()
	if err := database.Create(&profile).Error; err != nil {
		tb.Fatalf("create profile: %v", err)
	}
	return profile
}

func CreateContract(tb testing.TB, database *gorm.DB, contract model.Contract) model.Contract {
	tb.Helper()
	if err := database.Create(&contract).Error; err != nil {
		tb.Fatalf("create contract: %v", err)
	}
	return contract
}

func CreateJob(tb testing.TB, database *gorm.DB, job model.Job) model.Job {
	tb.Helper()
	if err := database.Create(&job).Error; err != nil {
		tb.Fatalf("create job: %v", err)
	}
	return job
}

func GetProfile(tb testing.TB, database *gorm.DB, id int64) model.Profile {
	tb.Helper()
	var profile model.Profile
	if err := database.First(&profile, id).Error; err != nil {
		tb.Fatalf("get profile %d: %v", id, err)
	}
	return profile
}

func GetJob(tb testing.TB, database *gorm.DB, id int64) model.Job {
	tb.Helper()
	var job model.Job
	if err := database.First(&job, id).Error; err != nil {
		tb.Fatalf("get job %d: %v", id, err)
	}
	return job
}

func Amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
