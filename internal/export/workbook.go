package export

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/ledger"
)

// MaxWorkbookDays bounds the range of a workbook export; every day can become a sheet.
const MaxWorkbookDays = 92

var ErrRangeTooLarge = errors.New("export range too large")

const summarySheet = "Summary"

var dayHeader = []any{"Customer", "Product", "Quantity", "Unit", "Price", "Total"}

// CheckRange validates the range of an export.
func CheckRange(from string, to string) error {
	days, err := ledger.DaysBetween(from, to)
	if err != nil {
		return err
	}
	if len(days) > MaxWorkbookDays {
		return fmt.Errorf("%w: %d days requested, at most %d allowed", ErrRangeTooLarge, len(days), MaxWorkbookDays)
	}
	return nil
}

// WriteWorkbook renders the statement as an XLSX workbook: a Summary sheet followed by
// one sheet per date that has orders.
func WriteWorkbook(w io.Writer, statement domain.Statement) error {
	if err := CheckRange(statement.From, statement.To); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	styles, err := newCellStyles(f)
	if err != nil {
		return err
	}

	if err := writeSummary(f, styles, statement); err != nil {
		return err
	}

	for _, day := range statementDays(statement) {
		if _, err := f.NewSheet(day); err != nil {
			return err
		}
		if err := writeDay(f, styles, day, statement); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// quantity is written as an exact number without the money format.
type quantity decimal.Decimal

// cellStyles holds the style ids of a workbook. Money cells use the built-in "0.00"
// number format.
type cellStyles struct {
	bold      int
	money     int
	boldMoney int
}

func newCellStyles(f *excelize.File) (cellStyles, error) {
	var styles cellStyles
	var err error
	if styles.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return styles, err
	}
	if styles.money, err = f.NewStyle(&excelize.Style{NumFmt: 2}); err != nil {
		return styles, err
	}
	if styles.boldMoney, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 2}); err != nil {
		return styles, err
	}
	return styles, nil
}

func writeSummary(f *excelize.File, styles cellStyles, statement domain.Statement) error {
	rows := [][]any{
		{"Statement", statement.From + " to " + statement.To},
		{},
		{"Customer", "Orders", "Total", "Paid", "Pending"},
	}
	for _, c := range statement.Customers {
		rows = append(rows, []any{c.CustomerName, c.OrderCount, c.TotalAmount, c.TotalPaid, c.Pending})
	}
	rows = append(rows, []any{"Grand total", "", statement.GrandTotal, statement.GrandPaid, statement.GrandPending})

	return setRows(f, summarySheet, rows, styles, map[int]bool{3: true, len(rows): true})
}

func writeDay(f *excelize.File, styles cellStyles, day string, statement domain.Statement) error {
	rows := [][]any{dayHeader}
	boldRows := map[int]bool{1: true}
	dayTotal := decimal.Zero

	for _, c := range statement.Customers {
		for _, summary := range c.Days {
			if summary.Date != day {
				continue
			}
			for _, item := range summary.Items {
				rows = append(rows, []any{c.CustomerName, item.ProductName, quantity(item.Quantity), item.Unit, item.UnitPrice, item.Total})
			}
			rows = append(rows, []any{"Subtotal " + c.CustomerName, "", "", "", "", summary.TotalAmount})
			boldRows[len(rows)] = true
			dayTotal = dayTotal.Add(summary.TotalAmount)
		}
	}
	rows = append(rows, []any{"Grand total", "", "", "", "", dayTotal})
	boldRows[len(rows)] = true

	if err := setRows(f, day, rows, styles, boldRows); err != nil {
		return err
	}
	return f.SetColWidth(day, "A", "B", 24)
}

// setRows writes rows from A1. Decimals are stored as their exact decimal text.
func setRows(f *excelize.File, sheet string, rows [][]any, styles cellStyles, boldRows map[int]bool) error {
	for i, row := range rows {
		bold := boldRows[i+1]
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			style := 0
			if bold {
				style = styles.bold
			}
			switch v := value.(type) {
			case decimal.Decimal:
				err = f.SetCellDefault(sheet, cell, v.StringFixed(2))
				style = styles.money
				if bold {
					style = styles.boldMoney
				}
			case quantity:
				err = f.SetCellDefault(sheet, cell, decimal.Decimal(v).String())
			default:
				err = f.SetCellValue(sheet, cell, v)
			}
			if err != nil {
				return err
			}
			if style != 0 {
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// statementDays lists the dates that have orders, oldest first.
func statementDays(statement domain.Statement) []string {
	seen := make(map[string]struct{})
	days := make([]string, 0)
	for _, c := range statement.Customers {
		for _, summary := range c.Days {
			if _, ok := seen[summary.Date]; ok {
				continue
			}
			seen[summary.Date] = struct{}{}
			days = append(days, summary.Date)
		}
	}
	slices.Sort(days)
	return days
}
