package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	t.Setenv("HOME", dir)
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultCatalog, cfg.Catalog)
	assert.Equal(t, []string{DefaultUnitOut, DefaultE2EOut}, cfg.Results)
	assert.Equal(t, DefaultReportOut, cfg.ReportOut)
	assert.Equal(t, DefaultBaseURL, cfg.E2E.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.E2E.Timeout)
	assert.True(t, cfg.E2E.Headless)
	assert.False(t, cfg.NoColor)
	assert.Empty(t, ConfigFile(v))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `catalog: cases.yaml
results: [unit.json]
e2e:
  base_url: http://localhost:9000/
  timeout: 3s
unit_cases:
  - test: example.com/x.TestFoo
    case: TC042
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tcr.yaml"), []byte(yaml), 0o644))

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "cases.yaml", cfg.Catalog)
	assert.Equal(t, []string{"unit.json"}, cfg.Results)
	assert.Equal(t, "http://localhost:9000/", cfg.E2E.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.E2E.Timeout)
	assert.Equal(t, map[string]string{"example.com/x.TestFoo": "TC042"}, cfg.CaseBindings())
	assert.NotEmpty(t, ConfigFile(v))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tcr.yaml"), []byte("catalog: from-file.yaml\n"), 0o644))
	t.Setenv("TCR_CATALOG", "from-env.yaml")
	t.Setenv("TCR_E2E_BASE_URL", "http://env:1/")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "from-env.yaml", cfg.Catalog)
	assert.Equal(t, "http://env:1/", cfg.E2E.BaseURL)
}

func TestLoad_CIImpliesNoColor(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CI", "true")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.True(t, cfg.CI)
	assert.True(t, cfg.NoColor)
}

func TestLoad_NoColorEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("NO_COLOR", "1")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
}

func TestLoad_InvalidValues(t *testing.T) {
	chdirTemp(t)

	v, err := New("")
	require.NoError(t, err)
	v.Set("format", "llm")
	_, err = Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Format")

	v, err = New("")
	require.NoError(t, err)
	v.Set("server.db_driver", "oracle")
	_, err = Load(v)
	assert.Error(t, err)

	v, err = New("")
	require.NoError(t, err)
	v.Set("unit_cases", []map[string]any{{"test": "TestX"}})
	_, err = Load(v)
	assert.Error(t, err, "binding without a case id")
}

func TestNew_ExplicitPathMustExist(t *testing.T) {
	dir := chdirTemp(t)

	_, err := New(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
