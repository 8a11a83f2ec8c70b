package config

import (
	"os"
	"path/filepath"
	"testing"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/reverse"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvParallelism, "")

	cfg, err := Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, "dcf.yaml", `
server:
  addr: ":9000"
parallelism: 2
search_range: {min_growth: -0.1, max_growth: 0.3, step: 0.005}
sensitivity_grids:
  tax_rate: [-0.1, 0.1]
`)
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvParallelism, "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, reverse.SearchRange{MinGrowth: -0.1, MaxGrowth: 0.3, Step: 0.005}, cfg.SearchRange)
	assert.Equal(t, map[string][]float64{"tax_rate": {-0.1, 0.1}}, cfg.SensitivityGrids)
	assert.Equal(t, Default().ReverseSensitivityGrids, cfg.ReverseSensitivityGrids)
}

func TestLoad_EnvConfigPath(t *testing.T) {
	path := writeFile(t, "alt.yaml", "server:\n  addr: \":7000\"\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvParallelism, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoad_BadParallelism(t *testing.T) {
	t.Setenv(EnvParallelism, "many")
	_, err := Load(writeFile(t, "dcf.yaml", "parallelism: 1\n"))
	require.Error(t, err)
}

func TestLoad_UnknownGridVariable(t *testing.T) {
	t.Setenv(EnvParallelism, "")
	_, err := Load(writeFile(t, "dcf.yaml", "sensitivity_grids:\n  years: [0.1]\n"))
	require.ErrorIs(t, err, assumption.ErrUnknownVariable)
}

func TestSensitivitySpecs_Ordered(t *testing.T) {
	specs, err := Default().SensitivitySpecs()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, assumption.FieldDiscountRate, specs[0].Variable)
	assert.Equal(t, assumption.FieldTerminalGrowthRate, specs[1].Variable)

	rspecs, err := Default().ReverseSensitivitySpecs()
	require.NoError(t, err)
	require.Len(t, rspecs, 2)
	assert.Equal(t, reverse.QueryDiscountRate, rspecs[0].Variable)
	assert.Equal(t, reverse.QueryTerminalGrowthRate, rspecs[1].Variable)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, "test.env", "DCF_TEST_DOTENV=loaded\n")
	t.Setenv("DCF_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("DCF_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("DCF_TEST_DOTENV"))
}

func TestShippedConfigParses(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvParallelism, "")
	cfg, err := Load(filepath.Join("..", "..", "config", "dcf.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Parallelism)
	specs, err := cfg.SensitivitySpecs()
	require.NoError(t, err)
	assert.Len(t, specs, 3)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
