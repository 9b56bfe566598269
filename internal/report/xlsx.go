package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"checkparser/pkg/models"
)

// SheetName is the worksheet holding the check register.
const SheetName = "Check Register"

// colWidths are the fixed report column widths: narrow sequence number,
// wide payer and bank columns, and so on.
var colWidths = []float64{4, 45, 12, 13, 35, 16, 12, 12, 20}

const moneyFormat = "$#,##0.00"

// styleSet holds the workbook style IDs reused across rows.
type styleSet struct {
	header      int
	cell        int
	cellAlt     int
	center      int
	centerAlt   int
	money       int
	moneyAlt    int
	totalLabel  int
	totalAmount int
}

// WriteXLSX serializes records as a formatted XLSX workbook: styled header
// row, alternating fill on even data rows, currency-formatted amount
// column, a total row with a SUM formula, frozen header and an auto filter
// over the data range.
func WriteXLSX(records []models.IndexedRecord, totalCents int64) ([]byte, error) {
	const op = "WriteXLSX"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("%s: rename sheet: %w", op, err)
	}

	styles, err := buildStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := writeHeader(f, styles); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, r := range records {
		if err := writeRecord(f, styles, r); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	totalRow := len(records) + 2
	if err := writeTotalRow(f, styles, totalRow); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("%s: set column width: %w", op, err)
		}
	}

	if err := f.AutoFilter(SheetName, fmt.Sprintf("A1:I%d", totalRow-1), nil); err != nil {
		return nil, fmt.Errorf("%s: set auto filter: %w", op, err)
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("%s: freeze header: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write workbook: %w", op, err)
	}
	return buf.Bytes(), nil
}

func buildStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	thin := []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
	boldArial := excelize.Font{Bold: true, Family: "Arial", Size: 10}
	altFill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D6E4F0"}}
	money := moneyFormat

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Family: "Arial", Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E79"}},
		Border:    thin,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}

	if s.cell, err = f.NewStyle(&excelize.Style{Border: thin}); err != nil {
		return s, fmt.Errorf("cell style: %w", err)
	}
	if s.cellAlt, err = f.NewStyle(&excelize.Style{Border: thin, Fill: altFill}); err != nil {
		return s, fmt.Errorf("alt cell style: %w", err)
	}

	center := &excelize.Alignment{Horizontal: "center"}
	if s.center, err = f.NewStyle(&excelize.Style{Border: thin, Alignment: center}); err != nil {
		return s, fmt.Errorf("center style: %w", err)
	}
	if s.centerAlt, err = f.NewStyle(&excelize.Style{Border: thin, Fill: altFill, Alignment: center}); err != nil {
		return s, fmt.Errorf("alt center style: %w", err)
	}

	if s.money, err = f.NewStyle(&excelize.Style{Border: thin, CustomNumFmt: &money}); err != nil {
		return s, fmt.Errorf("money style: %w", err)
	}
	if s.moneyAlt, err = f.NewStyle(&excelize.Style{Border: thin, Fill: altFill, CustomNumFmt: &money}); err != nil {
		return s, fmt.Errorf("alt money style: %w", err)
	}

	if s.totalLabel, err = f.NewStyle(&excelize.Style{Font: &boldArial}); err != nil {
		return s, fmt.Errorf("total label style: %w", err)
	}
	if s.totalAmount, err = f.NewStyle(&excelize.Style{Font: &boldArial, Border: thin, CustomNumFmt: &money}); err != nil {
		return s, fmt.Errorf("total amount style: %w", err)
	}

	return s, nil
}

func writeHeader(f *excelize.File, styles styleSet) error {
	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, styles.header); err != nil {
			return fmt.Errorf("style header cell %s: %w", cell, err)
		}
	}
	return nil
}

func writeRecord(f *excelize.File, styles styleSet, r models.IndexedRecord) error {
	row := r.Seq + 1
	values := []any{r.Seq, r.Payer, r.Date, r.Amount(), r.Bank, r.CheckNumber, r.Account, r.Routing, r.Claim}
	alt := r.Seq%2 == 0

	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}

		style := styles.cell
		switch col + 1 {
		case 1, 3, 6: // sequence, date, check number are centered
			style = styles.center
			if alt {
				style = styles.centerAlt
			}
		case 4: // amount is currency formatted
			style = styles.money
			if alt {
				style = styles.moneyAlt
			}
		default:
			if alt {
				style = styles.cellAlt
			}
		}
		if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return fmt.Errorf("style cell %s: %w", cell, err)
		}
	}
	return nil
}

func writeTotalRow(f *excelize.File, styles styleSet, totalRow int) error {
	labelCell, _ := excelize.CoordinatesToCellName(3, totalRow)
	if err := f.SetCellValue(SheetName, labelCell, "TOTAL"); err != nil {
		return fmt.Errorf("write total label: %w", err)
	}
	if err := f.SetCellStyle(SheetName, labelCell, labelCell, styles.totalLabel); err != nil {
		return fmt.Errorf("style total label: %w", err)
	}

	amountCell, _ := excelize.CoordinatesToCellName(4, totalRow)
	if err := f.SetCellFormula(SheetName, amountCell, fmt.Sprintf("SUM(D2:D%d)", totalRow-1)); err != nil {
		return fmt.Errorf("write total formula: %w", err)
	}
	if err := f.SetCellStyle(SheetName, amountCell, amountCell, styles.totalAmount); err != nil {
		return fmt.Errorf("style total amount: %w", err)
	}
	return nil
}
