package pipeline

import "github.com/sells-group/germplasm-cli/internal/model"

// Project lays records out in schema order. Missing fields become "".
func Project(records []model.Fields, schema []string) [][]any {
	rows := make([][]any, len(records))
	for i, f := range records {
		row := make([]any, len(schema))
		for j, col := range schema {
			if v, ok := f[col]; ok && !model.IsEmpty(v) {
				row[j] = v
			} else {
				row[j] = ""
			}
		}
		rows[i] = row
	}
	return rows
}
