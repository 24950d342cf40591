package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 28, "L"},
	{"Product", 62, "L"},
	{"Qty", 22, "R"},
	{"Price", 30, "R"},
	{"Total", 34, "R"},
}

// WritePDF renders the statement as an A4 PDF with one table per customer.
func WritePDF(w io.Writer, statement domain.Statement) error {
	if err := CheckRange(statement.From, statement.To); err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Delivery statement", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s", statement.From, statement.To), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(statement.Customers) == 0 {
		pdf.CellFormat(0, 6, "No orders in this period.", "", 1, "L", false, 0, "")
	}

	for _, c := range statement.Customers {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(c.CustomerName), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, day := range c.Days {
			for _, item := range day.Items {
				cells := []string{
					day.Date,
					tr(item.ProductName),
					item.Quantity.String() + " " + tr(item.Unit),
					amount(item.UnitPrice),
					amount(item.Total),
				}
				for i, col := range pdfColumns {
					pdf.CellFormat(col.width, 6, cells[i], "1", 0, col.align, false, 0, "")
				}
				pdf.Ln(-1)
			}
		}

		pdf.SetFont("Helvetica", "B", 9)
		totalLine(pdf, "Total", c.TotalAmount)
		totalLine(pdf, "Paid", c.TotalPaid)
		totalLine(pdf, "Pending", c.Pending)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	totalLine(pdf, "Grand total", statement.GrandTotal)
	totalLine(pdf, "Grand paid", statement.GrandPaid)
	totalLine(pdf, "Grand pending", statement.GrandPending)

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func totalLine(pdf *fpdf.Fpdf, label string, value decimal.Decimal) {
	pdf.CellFormat(142, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(34, 6, amount(value), "", 1, "R", false, 0, "")
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
