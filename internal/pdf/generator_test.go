package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/contracts-service/internal/model"
)

func TestGenerateReceipt(t *testing.T) {
	paidAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	receipt := model.JobReceipt{
		Settlement: model.JobSettlement{
			Job:        model.Job{ID: 1, Description: "foundation", Price: decimal.RequireFromString("200"), Paid: true, PaymentDate: &paidAt, ContractID: 2},
			Contract:   model.Contract{ID: 2, Terms: "build a tower"},
			Client:     model.Profile{ID: 1, FirstName: "Harry", LastName: "Potter"},
			Contractor: model.Profile{ID: 7, FirstName: "Ash", Profession: "Wizard"},
		},
		IssuedAt: paidAt.Add(time.Hour),
	}

	content, err := NewGenerator().Generate(receipt)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

func TestGenerateReceiptRequiresPaidJob(t *testing.T) {
	_, err := NewGenerator().Generate(model.JobReceipt{
		Settlement: model.JobSettlement{Job: model.Job{ID: 5}},
	})
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	long := strings.Repeat("x", 100)
	got := truncate(long, 20)
	assert.Len(t, got, 10)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "-", safeValue("  "))
	assert.Equal(t, "12.50", formatAmount(decimal.RequireFromString("12.5")))
	assert.Equal(t, "-", formatDateTime(time.Time{}))
	assert.Equal(t, "2026-03-10 12:00 UTC", formatDateTime(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)))
}
