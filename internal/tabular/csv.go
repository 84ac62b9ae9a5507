package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/germplasm-cli/internal/normalize"
)

func readCSV(path string) ([][]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: open csv")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	var rows [][]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "tabular: read csv row")
		}
		values := make([]any, len(record))
		for i, field := range record {
			field = strings.TrimSpace(field)
			if field != "" {
				values[i] = field
			}
		}
		rows = append(rows, values)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		if s, ok := rows[0][0].(string); ok {
			rows[0][0] = strings.TrimPrefix(s, "\ufeff")
		}
	}
	return rows, nil
}

func writeCSV(w io.Writer, columns []string, rows [][]any) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return eris.Wrap(err, "tabular: write csv header")
	}

	record := make([]string, len(columns))
	for _, values := range rows {
		for i := range record {
			record[i] = ""
			if i < len(values) {
				record[i] = normalize.Text(values[i])
			}
		}
		if err := writer.Write(record); err != nil {
			return eris.Wrap(err, "tabular: write csv row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return eris.Wrap(err, "tabular: flush csv")
	}
	return nil
}
