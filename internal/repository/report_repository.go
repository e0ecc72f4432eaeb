package repository

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contracts-service/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// paidJobRow is one job paid in the report period with the party it is
// attributed to.
type paidJobRow struct {
	ProfileID  int64
	FirstName  string
	LastName   string
	Profession string
	Price      decimal.Decimal
}

// ProfessionEarnings ranks contractor professions by the amount earned from
// jobs paid in [from, to).
func (r *ReportRepository) ProfessionEarnings(
	ctx context.Context,
	from, to time.Time,
	limit int,
) ([]model.ProfessionEarnings, error) {
	rows, err := r.paidJobs(ctx, "c.contractor_id", from, to)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		totals[row.Profession] = totals[row.Profession].Add(row.Price)
	}
	result := make([]model.ProfessionEarnings, 0, len(totals))
	for profession, total := range totals {
		result = append(result, model.ProfessionEarnings{Profession: profession, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Total.Cmp(result[j].Total); c != 0 {
			return c > 0
		}
		return result[i].Profession < result[j].Profession
	})
	return truncate(result, limit), nil
}

// ClientSpending ranks clients by the amount paid for jobs in [from, to).
func (r *ReportRepository) ClientSpending(
	ctx context.Context,
	from, to time.Time,
	limit int,
) ([]model.ClientSpending, error) {
	rows, err := r.paidJobs(ctx, "c.client_id", from, to)
	if err != nil {
		return nil, err
	}

	byClient := make(map[int64]*model.ClientSpending)
	for _, row := range rows {
		entry, ok := byClient[row.ProfileID]
		if !ok {
			profile := model.Profile{FirstName: row.FirstName, LastName: row.LastName}
			entry = &model.ClientSpending{ID: row.ProfileID, FullName: profile.FullName(), Paid: decimal.Zero}
			byClient[row.ProfileID] = entry
		}
		entry.Paid = entry.Paid.Add(row.Price)
	}
	result := make([]model.ClientSpending, 0, len(byClient))
	for _, entry := range byClient {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Paid.Cmp(result[j].Paid); c != 0 {
			return c > 0
		}
		return result[i].ID < result[j].ID
	})
	return truncate(result, limit), nil
}

// paidJobs lists the jobs paid in [from, to) joined to the profile named by
// partyColumn. Amounts are summed by the callers: sqlite's SUM is floating
// point.
func (r *ReportRepository) paidJobs(ctx context.Context, partyColumn string, from, to time.Time) ([]paidJobRow, error) {
	var rows []paidJobRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id AS profile_id,
			p.first_name AS first_name,
			p.last_name AS last_name,
			p.profession AS profession,
			j.price AS price
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = `+partyColumn+`
		WHERE j.paid = ?
			AND j.payment_date >= ?
			AND j.payment_date < ?
	`, true, from, to).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
