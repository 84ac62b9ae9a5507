// Package tabular reads input spreadsheets into source records and writes the
// normalized output table. The format follows the file extension: .xlsx or
// .csv.
package tabular

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/germplasm-cli/internal/model"
)

// Table is a fully loaded input sheet.
type Table struct {
	Columns []string
	Records []model.SourceRecord
}

// Format identifies a supported file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", eris.Errorf("tabular: unsupported file type %q", filepath.Ext(path))
	}
}

// Read loads the first sheet of path. The first row is the header.
func Read(path string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var rows [][]any
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(path)
	case FormatCSV:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	return newTable(rows), nil
}

// Write replaces path with a table of columns and rows. The file is written
// to a temporary sibling and renamed into place, so a failed write leaves
// nothing behind.
func Write(path, sheet string, columns []string, rows [][]any) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "tabular: create temp file")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	switch format {
	case FormatXLSX:
		err = writeXLSX(tmp, sheet, columns, rows)
	case FormatCSV:
		err = writeCSV(tmp, columns, rows)
	}
	if err != nil {
		return err
	}

	if err := tmp.Sync(); err != nil {
		return eris.Wrap(err, "tabular: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "tabular: close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrap(err, "tabular: rename into place")
	}
	committed = true
	return nil
}

// newTable turns raw rows into records. Blank header cells become
// "Unnamed: i" and repeated headers get ".1", ".2" suffixes so that every
// column name is unique. Rows with no values are skipped.
func newTable(rows [][]any) *Table {
	t := &Table{}
	if len(rows) == 0 {
		return t
	}

	seen := map[string]int{}
	for i, v := range rows[0] {
		name := strings.TrimSpace(cellText(v))
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		t.Columns = append(t.Columns, name)
	}

	for _, row := range rows[1:] {
		values := make([]any, len(t.Columns))
		blank := true
		for i := range values {
			if i < len(row) && !model.IsEmpty(row[i]) {
				values[i] = row[i]
				blank = false
			}
		}
		if blank {
			continue
		}
		t.Records = append(t.Records, model.SourceRecord{Columns: t.Columns, Values: values})
	}
	return t
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// OutputPath derives the default output path by inserting suffix before the
// extension of input.
func OutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}
