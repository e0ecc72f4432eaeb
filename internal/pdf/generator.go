package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/contracts-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the payment receipt of a settled job.
func (g *Generator) Generate(receipt model.JobReceipt) ([]byte, error) {
	settlement := receipt.Settlement
	if !settlement.Job.Paid || settlement.Job.PaymentDate == nil {
		return nil, fmt.Errorf("job %d is not paid", settlement.Job.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Payment receipt", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Job #%d, contract #%d", settlement.Job.ID, settlement.Contract.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Paid on %s", formatDateTime(*settlement.Job.PaymentDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addPartyBlock(pdf, g.fontName, "Client", settlement.Client)
	pdf.Ln(2)
	addPartyBlock(pdf, g.fontName, "Contractor", settlement.Contractor)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Settlement", "", 1, "L", false, 0, "")

	headers := []string{"Description", "Contract terms", "Amount"}
	colWidths := []float64{80, 65, 35}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	drawTableRow(pdf, g.fontName, []string{
		safeValue(settlement.Job.Description),
		safeValue(settlement.Contract.Terms),
		formatAmount(settlement.Job.Price),
	}, colWidths, false)

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Issued %s", formatDateTime(receipt.IssuedAt)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addPartyBlock(pdf *gofpdf.Fpdf, fontName, title string, profile model.Profile) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		fmt.Sprintf("%s (profile #%d)", safeValue(profile.FullName()), profile.ID),
	}
	if profile.Profession != "" {
		lines = append(lines, fmt.Sprintf("Profession: %s", profile.Profession))
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, truncate(col, widths[i]), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// truncate keeps a cell on one line, roughly two characters per millimetre
// at 10pt.
func truncate(value string, width float64) string {
	limit := int(width / 2)
	if len(value) <= limit || limit < 4 {
		return value
	}
	return value[:limit-3] + "..."
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}
