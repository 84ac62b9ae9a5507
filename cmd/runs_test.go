package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/germplasm-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			InputPath:  "requests/june.xlsx",
			Status:     model.RunStatusComplete,
			Result:     &model.RunResult{RowsRead: 4, RowsWritten: 7},
			StartedAt:  now,
			FinishedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			InputPath: "requests/july.csv",
			Status:    model.RunStatusRunning,
			StartedAt: now.Add(-1 * time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "INPUT")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "requests/june.xlsx")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "7/4")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "2m0s")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
}

func TestFormatRunsList_LongInputPath(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	long := "/data/shipments/2025/requests/international/partners/batch-0042.xlsx"
	runs := []model.Run{{
		ID:         "1",
		InputPath:  long,
		Status:     model.RunStatusFailed,
		Error:      "tabular: open xlsx",
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
	}}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "...")
	assert.Contains(t, output, "batch-0042.xlsx")
	assert.NotContains(t, output, long)
	assert.Contains(t, output, "failed")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
