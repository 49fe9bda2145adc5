package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesFullConfig(t *testing.T) {
	path := writeConfig(t, `{
		"queries": ["data analyst", "sql developer"],
		"include_keywords": ["Data"],
		"exclude_keywords": ["Manager"],
		"job_limit": 25,
		"headless": true,
		"data_dir": "/tmp/autopilot",
		"email": "me@example.com",
		"verbose": true
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"data analyst", "sql developer"}, cfg.Queries)
	require.Equal(t, []string{"Data"}, cfg.IncludeKeywords)
	require.Equal(t, []string{"Manager"}, cfg.ExcludeKeywords)
	require.Equal(t, 25, cfg.JobLimit)
	require.True(t, cfg.Headless)
	require.Equal(t, "/tmp/autopilot", cfg.DataDir)
	require.Equal(t, "me@example.com", cfg.Email)
	require.True(t, cfg.Verbose)
	require.NoError(t, cfg.Validate())
}

func TestLoadDefaultsDataDir(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"queries": ["data"]}`))
	require.NoError(t, err)
	require.Equal(t, DefaultDataDir, cfg.DataDir)
}

func TestLoadRejectsMissingQueries(t *testing.T) {
	_, err := Load(writeConfig(t, `{"job_limit": 5}`))
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Errors)
}

func TestLoadRejectsWrongTypes(t *testing.T) {
	_, err := Load(writeConfig(t, `{"queries": ["data"], "job_limit": "many"}`))
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestLoadRejectsNegativeJobLimit(t *testing.T) {
	_, err := Load(writeConfig(t, `{"queries": ["data"], "job_limit": -1}`))
	require.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(writeConfig(t, `{"queries": ["data"`))
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestValidateRejectsEmptyQueriesAfterOverride(t *testing.T) {
	// A flag override can empty the query list; Validate must catch it.
	cfg := &Config{Queries: nil}
	require.Error(t, cfg.Validate())

	cfg = &Config{Queries: []string{""}}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadEmail(t *testing.T) {
	cfg := &Config{Queries: []string{"data"}, Email: "not-an-email"}
	require.Error(t, cfg.Validate())
}
