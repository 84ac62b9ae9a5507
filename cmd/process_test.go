package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/germplasm-cli/internal/config"
	"github.com/sells-group/germplasm-cli/internal/inference"
	"github.com/sells-group/germplasm-cli/internal/species"
	"github.com/sells-group/germplasm-cli/internal/store"
	"github.com/sells-group/germplasm-cli/internal/tabular"
)

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 1024, RequestsPerSecond: 2, Burst: 1},
		Extract:   config.ExtractConfig{MaxAttempts: 3, InitialBackoffMs: 1000, Multiplier: 2},
		Species:   config.SpeciesConfig{Strategy: config.SpeciesStatic},
		Store:     config.StoreConfig{Driver: config.DriverNone},
		Output:    config.OutputConfig{Suffix: "_processed", Sheet: "Sheet1"},
	}
}

func TestNewInferer_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		offline bool
	}{
		{"no key", "", false},
		{"offline with key", "sk-ant-test", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			c.Anthropic.Key = tt.key

			inf, available := newInferer(c, nil, tt.offline)
			assert.False(t, available)

			_, err := inf.Infer(context.Background(), "prompt", 16)
			assert.True(t, inference.IsUnavailable(err))
		})
	}
}

func TestNewInferer_Available(t *testing.T) {
	c := testConfig()
	c.Anthropic.Key = "sk-ant-test"

	inf, available := newInferer(c, nil, false)
	assert.True(t, available)
	assert.IsType(t, &inference.Anthropic{}, inf)
}

func TestNewSpeciesResolver(t *testing.T) {
	c := testConfig()
	assert.IsType(t, &species.Static{}, newSpeciesResolver(c, inference.Unavailable(), true))

	c.Species.Strategy = config.SpeciesRemote
	assert.IsType(t, &species.Static{}, newSpeciesResolver(c, inference.Unavailable(), false))

	r := newSpeciesResolver(c, inference.Unavailable(), true)
	_, isStatic := r.(*species.Static)
	assert.False(t, isStatic)

	// Remote fails with unavailable, static answers.
	sp, err := r.Resolve(context.Background(), "rice", "IR64")
	require.NoError(t, err)
	assert.Equal(t, "Oryza sativa", sp.LatinName)
}

func TestInitStore(t *testing.T) {
	ctx := context.Background()

	c := testConfig()
	st, err := initStore(ctx, c)
	require.NoError(t, err)
	assert.Nil(t, st)

	c.Store.Driver = config.DriverSQLite
	c.Store.DatabaseURL = filepath.Join(t.TempDir(), "runs.db")
	c.Store.CacheTTLHours = 1
	st, err = initStore(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(ctx, store.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)

	c.Store.Driver = "mysql"
	_, err = initStore(ctx, c)
	assert.Error(t, err)
}

func TestProcessCommand_Offline(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("GERMPLASM_LOG_LEVEL", "error")
	t.Setenv("GERMPLASM_STORE_DRIVER", "sqlite")
	t.Setenv("GERMPLASM_STORE_DATABASE_URL", filepath.Join(dir, "runs.db"))

	in := filepath.Join(dir, "requests.csv")
	require.NoError(t, tabular.Write(in, "", []string{"Entry No.", "Address", "Plant Name", "Material"}, [][]any{
		{"E1", "Dr. Jane Doe, Seed Bank, 12 Elm St, Nairobi, Kenya", "Rice", "A, B"},
	}))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"process", in, "--offline"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		processOffline = false
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "2 rows written")

	table, err := tabular.Read(filepath.Join(dir, "requests_processed.csv"))
	require.NoError(t, err)
	assert.Len(t, table.Records, 2)

	st, err := initStore(context.Background(), cfg)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "complete", string(runs[0].Status))
}

func TestProcessCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("GERMPLASM_LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"process", filepath.Join(dir, "missing.xlsx"), "--offline"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		processOffline = false
	})

	assert.Error(t, rootCmd.Execute())
	_, err := os.Stat(filepath.Join(dir, "missing_processed.xlsx"))
	assert.True(t, os.IsNotExist(err))
}
