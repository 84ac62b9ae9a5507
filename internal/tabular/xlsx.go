package tabular

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/germplasm-cli/internal/normalize"
)

func readXLSX(path string) ([][]any, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("tabular: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]any, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		values := make([]any, len(row.Cells))
		for j, cell := range row.Cells {
			values[j] = cellValue(cell, f.Date1904)
		}
		rows = append(rows, values)
	}
	return rows, nil
}

// cellValue converts a cell to nil, string, float64, bool or time.Time.
func cellValue(cell *xlsx.Cell, date1904 bool) any {
	if cell == nil {
		return nil
	}
	switch cell.Type() {
	case xlsx.CellTypeBool:
		return cell.Bool()
	case xlsx.CellTypeNumeric, xlsx.CellTypeDate:
		if cell.Value == "" {
			return nil
		}
		if cell.IsTime() {
			if t, err := cell.GetTime(date1904); err == nil {
				return t
			}
		}
		if v, err := cell.Float(); err == nil {
			return v
		}
	}

	s := strings.TrimSpace(cell.String())
	if s == "" {
		return nil
	}
	return s
}

func writeXLSX(w io.Writer, sheetName string, columns []string, rows [][]any) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "tabular: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range columns {
		header.AddCell().SetString(c)
	}

	for _, values := range rows {
		row := sheet.AddRow()
		for i := range columns {
			var v any
			if i < len(values) {
				v = values[i]
			}
			setCell(row.AddCell(), v)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "tabular: write xlsx")
	}
	return nil
}

func setCell(cell *xlsx.Cell, v any) {
	switch t := v.(type) {
	case nil:
		cell.SetString("")
	case string:
		cell.SetString(t)
	case int64:
		cell.SetInt64(t)
	case int:
		cell.SetInt(t)
	case float64:
		cell.SetFloat(t)
	case bool:
		cell.SetBool(t)
	case time.Time:
		cell.SetDate(t)
	default:
		cell.SetString(normalize.Text(t))
	}
}
