package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/contracts-service/internal/model"
)

type ReportReader interface {
	ProfessionEarnings(ctx context.Context, from, to time.Time, limit int) ([]model.ProfessionEarnings, error)
	ClientSpending(ctx context.Context, from, to time.Time, limit int) ([]model.ClientSpending, error)
}

type ExcelGenerator interface {
	Generate(report model.AdminReport) ([]byte, error)
}

type ReportService struct {
	repo         ReportReader
	excel        ExcelGenerator
	clientsLimit int
}

type ReportInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Limit       int
	Principal   model.Principal
}

type ReportResult struct {
	FileName string
	Content  []byte
}

// professionsInExport caps the profession ranking written to the workbook.
const professionsInExport = 50

func NewReportService(repo ReportReader, excel ExcelGenerator, clientsLimit int) *ReportService {
	if clientsLimit < 1 {
		clientsLimit = 2
	}
	return &ReportService{
		repo:         repo,
		excel:        excel,
		clientsLimit: clientsLimit,
	}
}

// BestProfession returns the profession that earned the most in the period.
func (s *ReportService) BestProfession(ctx context.Context, input ReportInput) (*model.ProfessionEarnings, error) {
	from, to, err := s.period(input)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ProfessionEarnings(ctx, from, to, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no paid jobs in period", ErrNotFound)
	}
	return &rows[0], nil
}

func (s *ReportService) BestClients(ctx context.Context, input ReportInput) ([]model.ClientSpending, error) {
	from, to, err := s.period(input)
	if err != nil {
		return nil, err
	}
	return s.repo.ClientSpending(ctx, from, to, s.limit(input.Limit))
}

func (s *ReportService) ExportReport(ctx context.Context, input ReportInput) (*ReportResult, error) {
	from, to, err := s.period(input)
	if err != nil {
		return nil, err
	}

	professions, err := s.repo.ProfessionEarnings(ctx, from, to, professionsInExport)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.ClientSpending(ctx, from, to, s.limit(input.Limit))
	if err != nil {
		return nil, err
	}

	report := model.AdminReport{
		PeriodStart: dateOnly(input.PeriodStart),
		PeriodEnd:   dateOnly(input.PeriodEnd),
		Professions: professions,
		Clients:     clients,
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}
	return &ReportResult{
		FileName: buildFileName(report),
		Content:  content,
	}, nil
}

// period validates the input and turns the inclusive day range into a
// half-open [from, to) interval.
func (s *ReportService) period(input ReportInput) (time.Time, time.Time, error) {
	if !input.Principal.IsAdmin() {
		return time.Time{}, time.Time{}, ErrForbidden
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: period dates are required", ErrInvalidArgument)
	}
	if input.Limit < 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: limit must be positive", ErrInvalidArgument)
	}

	periodStart := dateOnly(input.PeriodStart)
	periodEnd := dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start must be before or equal to end", ErrInvalidArgument)
	}
	return periodStart, periodEnd.Add(24 * time.Hour), nil
}

func (s *ReportService) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.clientsLimit
}

func buildFileName(report model.AdminReport) string {
	period := fmt.Sprintf("%s-%s", report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	return fmt.Sprintf("admin-report-%s.xlsx", period)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
