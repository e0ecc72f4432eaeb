package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/contracts-service/internal/model"
)

const (
	summarySheet     = "Summary"
	professionsSheet = "Professions"
	clientsSheet     = "Clients"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.AdminReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, report)

	if _, err := file.NewSheet(professionsSheet); err != nil {
		return nil, err
	}
	g.writeProfessions(file, report.Professions)

	if _, err := file.NewSheet(clientsSheet); err != nil {
		return nil, err
	}
	g.writeClients(file, report.Clients)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.AdminReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	set("A1", "Period start")
	set("B1", formatDate(report.PeriodStart))
	set("A2", "Period end")
	set("B2", formatDate(report.PeriodEnd))
	set("A3", "Best profession")
	set("A4", "Earned by best profession")
	if len(report.Professions) > 0 {
		set("B3", report.Professions[0].Profession)
		set("B4", formatAmount(report.Professions[0].Total))
	}
	set("A5", "Paid by listed clients")
	set("B5", formatAmount(sumClients(report.Clients)))

	_ = file.SetColWidth(summarySheet, "A", "A", 30)
	_ = file.SetColWidth(summarySheet, "B", "B", 24)
}

func (g *Generator) writeProfessions(file *excelize.File, rows []model.ProfessionEarnings) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(professionsSheet, cell, value)
	}

	set("A1", "Rank")
	set("B1", "Profession")
	set("C1", "Earned")
	for i, row := range rows {
		line := i + 2
		set(fmt.Sprintf("A%d", line), i+1)
		set(fmt.Sprintf("B%d", line), row.Profession)
		set(fmt.Sprintf("C%d", line), formatAmount(row.Total))
	}

	_ = file.SetColWidth(professionsSheet, "A", "A", 8)
	_ = file.SetColWidth(professionsSheet, "B", "B", 32)
	_ = file.SetColWidth(professionsSheet, "C", "C", 16)
}

func (g *Generator) writeClients(file *excelize.File, rows []model.ClientSpending) {
	headers := []string{"Rank", "Client ID", "Full name", "Paid"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(clientsSheet, cell, header)
	}

	for i, row := range rows {
		line := i + 2
		_ = file.SetCellValue(clientsSheet, fmt.Sprintf("A%d", line), i+1)
		_ = file.SetCellValue(clientsSheet, fmt.Sprintf("B%d", line), row.ID)
		_ = file.SetCellValue(clientsSheet, fmt.Sprintf("C%d", line), row.FullName)
		_ = file.SetCellValue(clientsSheet, fmt.Sprintf("D%d", line), formatAmount(row.Paid))
	}

	_ = file.SetColWidth(clientsSheet, "A", "B", 10)
	_ = file.SetColWidth(clientsSheet, "C", "C", 32)
	_ = file.SetColWidth(clientsSheet, "D", "D", 16)
}

func sumClients(rows []model.ClientSpending) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Paid)
	}
	return total
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}
