package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/sidegen/sidegen/internal/model"
)

func TestDefaults(t *testing.T) {
	s := Defaults()

	assert.Equal(t, m.DefaultFilter, s.Filter)
	assert.Equal(t, "suite", s.Mode)
	assert.Zero(t, s.Parallel)
	assert.False(t, s.Debug)
}

func TestLoad_MissingFilesYieldDefaults(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	doc := "base_url: https://staging.example.com\nmode: test\nparallel: 4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0o600))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com", s.BaseURL)
	assert.Equal(t, "test", s.Mode)
	assert.Equal(t, 4, s.Parallel)
	// Untouched keys keep their defaults.
	assert.Equal(t, m.DefaultFilter, s.Filter)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("mode: [unclosed"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	doc := "mode: test\nfilter: smoke\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0o600))

	t.Setenv("SIDEGEN_MODE", "suite")
	t.Setenv("SIDEGEN_PARALLEL", "8")
	t.Setenv("SIDEGEN_DEBUG", "true")

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "suite", s.Mode)
	assert.Equal(t, "smoke", s.Filter)
	assert.Equal(t, 8, s.Parallel)
	assert.True(t, s.Debug)
}

func TestLoad_DotEnvFillsGaps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SIDEGEN_REPORT=runs/report.json\n"), 0o600))

	// godotenv writes into the process environment; clean up so other
	// tests never see the key.
	t.Cleanup(func() { os.Unsetenv("SIDEGEN_REPORT") })

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "runs/report.json", s.Report)
}

func TestLoad_RealEnvBeatsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SIDEGEN_BASE_URL=https://dotenv.example.com\n"), 0o600))

	t.Setenv("SIDEGEN_BASE_URL", "https://real.example.com")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://real.example.com", s.BaseURL)
}

func TestLoad_InvalidNumericEnv(t *testing.T) {
	t.Setenv("SIDEGEN_PARALLEL", "many")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIDEGEN_PARALLEL")
}

func TestLoad_InvalidBoolEnv(t *testing.T) {
	t.Setenv("SIDEGEN_DEBUG", "yep")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIDEGEN_DEBUG")
}
